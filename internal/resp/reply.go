package resp

import "github.com/edirooss/rediskv-server/internal/rerr"

// Reply is anything a command handler can return to the dispatcher; the
// writer serializes it to RESP2 bytes (spec.md §6).
type Reply interface{ isReply() }

type SimpleString string

func (SimpleString) isReply() {}

type Error struct{ Err *rerr.Error }

func (Error) isReply() {}

func Err(err *rerr.Error) Error { return Error{Err: err} }

type Integer int64

func (Integer) isReply() {}

// BulkString is a present bulk string. Nil-ness is modeled by NilBulk.
type BulkString []byte

func (BulkString) isReply() {}

type NilBulk struct{}

func (NilBulk) isReply() {}

// Array is a present array reply. Nil-ness is modeled by NilArray.
type Array []Reply

func (Array) isReply() {}

type NilArray struct{}

func (NilArray) isReply() {}

// OK is the canonical +OK reply.
var OK = SimpleString("OK")

func Bulk(b []byte) Reply {
	if b == nil {
		return NilBulk{}
	}
	return BulkString(b)
}

func BulkStr(s string) Reply { return BulkString(s) }

func Int(n int64) Reply { return Integer(n) }

func ArrOf(items ...Reply) Reply { return Array(items) }

func BulkArray(items [][]byte) Reply {
	out := make(Array, len(items))
	for i, it := range items {
		out[i] = Bulk(it)
	}
	return out
}

func StrArray(items []string) Reply {
	out := make(Array, len(items))
	for i, it := range items {
		out[i] = BulkStr(it)
	}
	return out
}
