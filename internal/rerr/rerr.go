// Package rerr defines the wire-level error taxonomy described in
// spec.md §6/§7: a small set of error prefixes and the canonical message
// strings a handful of Redis client libraries parse directly.
package rerr

import "fmt"

// Prefix identifies the leading error-code token that follows the `-`
// in a RESP2 error reply.
type Prefix string

const (
	ERR       Prefix = "ERR"
	WrongType Prefix = "WRONGTYPE"
	NoAuth    Prefix = "NOAUTH"
	WrongPass Prefix = "WRONGPASS"
	OOM       Prefix = "OOM"
	ReadOnly  Prefix = "READONLY"
	NoScript  Prefix = "NOSCRIPT"
	ExecAbort Prefix = "EXECABORT"
)

// Error is a command-level error with a wire prefix and message. It never
// carries a stack trace or wraps an internal error directly into the
// client-visible message; internal causes are logged separately.
type Error struct {
	Prefix  Prefix
	Message string
}

func (e *Error) Error() string { return string(e.Prefix) + " " + e.Message }

// New builds an Error with the given prefix and formatted message.
func New(prefix Prefix, format string, args ...any) *Error {
	return &Error{Prefix: prefix, Message: fmt.Sprintf(format, args...)}
}

// Generic wire-error constructors matching Redis's own phrasing for the
// messages a known client library parses (spec.md §6).
func Generic(format string, args ...any) *Error { return New(ERR, format, args...) }

func WrongTypeErr() *Error {
	return New(WrongType, "Operation against a key holding the wrong kind of value")
}

func NoAuthErr() *Error {
	return New(NoAuth, "Authentication required.")
}

func WrongPassErr() *Error {
	return New(WrongPass, "invalid password")
}

func OOMErr() *Error {
	return New(OOM, "command not allowed when used memory > 'maxmemory'.")
}

func SyntaxErr() *Error {
	return New(ERR, "syntax error")
}

func NotIntegerErr() *Error {
	return New(ERR, "value is not an integer or out of range")
}

func NotFloatErr() *Error {
	return New(ERR, "value is not a valid float")
}

func WrongArityErr(cmd string) *Error {
	return New(ERR, "wrong number of arguments for '%s' command", cmd)
}

func UnknownCommandErr(cmd string) *Error {
	return New(ERR, "unknown command '%s'", cmd)
}

func ExecAbortErr() *Error {
	return New(ExecAbort, "Transaction discarded because of previous errors.")
}

func NoScriptErr() *Error {
	return New(NoScript, "No matching script.")
}

func ReadOnlyErr() *Error {
	return New(ReadOnly, "You can't write against a read only instance.")
}
