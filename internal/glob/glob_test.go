package glob_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/glob"
)

func Test_Match(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		pat  string
		s    string
		want bool
	}{
		{"exact match", "hello", "hello", true},
		{"exact mismatch", "hello", "helloo", false},
		{"star matches everything", "*", "anything at all", true},
		{"star matches empty", "*", "", true},
		{"star suffix", "user:*", "user:123", true},
		{"star suffix mismatch", "user:*", "order:123", false},
		{"star in the middle", "a*c", "abbbc", true},
		{"consecutive stars collapse", "a**c", "abc", true},
		{"question mark matches one byte", "h?llo", "hello", true},
		{"question mark requires a byte", "h?llo", "hllo", false},
		{"simple class", "[abc]", "b", true},
		{"simple class miss", "[abc]", "d", false},
		{"range class", "[a-z]", "m", true},
		{"range class miss", "[a-z]", "M", false},
		{"negated class", "[^abc]", "d", true},
		{"negated class miss", "[^abc]", "a", false},
		{"escaped star literal", `\*`, "*", true},
		{"escaped star literal mismatch", `\*`, "x", false},
		{"unterminated class matches literally", "[abc", "[abc", true},
		{"combined pattern", "h[ae]llo", "hello", true},
		{"combined pattern other branch", "h[ae]llo", "hallo", true},
		{"combined pattern miss", "h[ae]llo", "hillo", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, glob.Match(tc.pat, tc.s), "Match(%q, %q)", tc.pat, tc.s)
		})
	}
}
