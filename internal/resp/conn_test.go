package resp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/rerr"
)

// loopback is a minimal io.ReadWriter over two independent buffers, so
// writes made by the Conn under test don't feed back into its own reads.
type loopback struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func (l *loopback) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *loopback) Write(p []byte) (int, error) { return l.out.Write(p) }

func newConn(input string) (*resp.Conn, *loopback) {
	lb := &loopback{in: bytes.NewBufferString(input), out: &bytes.Buffer{}}
	return resp.NewConn(lb, resp.Limits{}), lb
}

func Test_ReadCommand_ParsesRESPArray(t *testing.T) {
	t.Parallel()

	c, _ := newConn("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n")
	argv, err := c.ReadCommand()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("GET"), []byte("foo")}, argv)
}

func Test_ReadCommand_ParsesInlineCommand(t *testing.T) {
	t.Parallel()

	c, _ := newConn("PING\r\n")
	argv, err := c.ReadCommand()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("PING")}, argv)
}

func Test_ReadCommand_EmptyInlineReturnsNilWithoutError(t *testing.T) {
	t.Parallel()

	c, _ := newConn("\r\n")
	argv, err := c.ReadCommand()
	require.NoError(t, err)
	require.Nil(t, argv)
}

func Test_ReadCommand_RejectsArrayLenOverLimit(t *testing.T) {
	t.Parallel()

	lb := &loopback{in: bytes.NewBufferString("*5\r\n"), out: &bytes.Buffer{}}
	c := resp.NewConn(lb, resp.Limits{MaxArrayLen: 2})
	_, err := c.ReadCommand()
	require.ErrorIs(t, err, resp.ErrProtocol)
}

func Test_ReadCommand_RejectsBulkLenOverLimit(t *testing.T) {
	t.Parallel()

	lb := &loopback{in: bytes.NewBufferString("*1\r\n$100\r\n"), out: &bytes.Buffer{}}
	c := resp.NewConn(lb, resp.Limits{MaxBulkBytes: 10})
	_, err := c.ReadCommand()
	require.ErrorIs(t, err, resp.ErrProtocol)
}

func Test_WriteReply_SimpleString(t *testing.T) {
	t.Parallel()

	c, lb := newConn("")
	require.NoError(t, c.WriteReply(resp.OK))
	require.Equal(t, "+OK\r\n", lb.out.String())
}

func Test_WriteReply_Error(t *testing.T) {
	t.Parallel()

	c, lb := newConn("")
	require.NoError(t, c.WriteReply(resp.Err(rerr.WrongTypeErr())))
	require.Equal(t, "-WRONGTYPE Operation against a key holding the wrong kind of value\r\n", lb.out.String())
}

func Test_WriteReply_Integer(t *testing.T) {
	t.Parallel()

	c, lb := newConn("")
	require.NoError(t, c.WriteReply(resp.Int(42)))
	require.Equal(t, ":42\r\n", lb.out.String())
}

func Test_WriteReply_BulkStringAndNilBulk(t *testing.T) {
	t.Parallel()

	c, lb := newConn("")
	require.NoError(t, c.WriteReply(resp.Bulk([]byte("hi"))))
	require.Equal(t, "$2\r\nhi\r\n", lb.out.String())

	c2, lb2 := newConn("")
	require.NoError(t, c2.WriteReply(resp.Bulk(nil)))
	require.Equal(t, "$-1\r\n", lb2.out.String())
}

func Test_WriteReply_Array(t *testing.T) {
	t.Parallel()

	c, lb := newConn("")
	require.NoError(t, c.WriteReply(resp.ArrOf(resp.Int(1), resp.BulkStr("two"))))
	require.Equal(t, "*2\r\n:1\r\n$3\r\ntwo\r\n", lb.out.String())
}

func Test_WriteReply_NilArray(t *testing.T) {
	t.Parallel()

	c, lb := newConn("")
	require.NoError(t, c.WriteReply(resp.NilArray{}))
	require.Equal(t, "*-1\r\n", lb.out.String())
}
