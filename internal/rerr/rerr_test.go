package rerr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/rerr"
)

func Test_Error_FormatsPrefixAndMessage(t *testing.T) {
	t.Parallel()

	err := rerr.New(rerr.ERR, "bad thing: %d", 42)
	require.Equal(t, "ERR bad thing: 42", err.Error())
	require.Equal(t, rerr.ERR, err.Prefix)
}

func Test_ConstructorsUseTheirDocumentedPrefix(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		err    *rerr.Error
		prefix rerr.Prefix
	}{
		{"WrongTypeErr", rerr.WrongTypeErr(), rerr.WrongType},
		{"NoAuthErr", rerr.NoAuthErr(), rerr.NoAuth},
		{"WrongPassErr", rerr.WrongPassErr(), rerr.WrongPass},
		{"OOMErr", rerr.OOMErr(), rerr.OOM},
		{"SyntaxErr", rerr.SyntaxErr(), rerr.ERR},
		{"NotIntegerErr", rerr.NotIntegerErr(), rerr.ERR},
		{"NotFloatErr", rerr.NotFloatErr(), rerr.ERR},
		{"ExecAbortErr", rerr.ExecAbortErr(), rerr.ExecAbort},
		{"NoScriptErr", rerr.NoScriptErr(), rerr.NoScript},
		{"ReadOnlyErr", rerr.ReadOnlyErr(), rerr.ReadOnly},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.prefix, tc.err.Prefix)
			require.NotEmpty(t, tc.err.Message)
		})
	}
}

func Test_WrongArityErr_NamesTheCommand(t *testing.T) {
	t.Parallel()

	err := rerr.WrongArityErr("get")
	require.Equal(t, rerr.ERR, err.Prefix)
	require.Contains(t, err.Message, "'get'")
}

func Test_UnknownCommandErr_NamesTheCommand(t *testing.T) {
	t.Parallel()

	err := rerr.UnknownCommandErr("frobnicate")
	require.Contains(t, err.Message, "'frobnicate'")
}
