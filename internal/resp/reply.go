// Package resp implements the Redis Serialization Protocol: frame parsing
// from a byte stream and Reply encoding back to bytes.
package resp

import "strconv"

// Kind tags which RESP value a Reply holds; exactly one Reply field applies
// per Kind. The zero Kind is KindSimpleString, so the zero Reply encodes as
// an empty simple string.
type Kind int

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulk
	KindNilBulk
	KindArray
	KindNilArray
)

// Reply is a single RESP value produced by the command dispatcher.
type Reply struct {
	Kind    Kind
	Str     string  // SimpleString
	ErrPfx  string  // Error prefix, e.g. "ERR", "WRONGTYPE"
	ErrMsg  string  // Error message body
	Int     int64   // Integer
	Bulk    []byte  // Bulk (nil distinct from empty: len 0 vs KindNilBulk)
	Array   []Reply // Array
}

func OK() Reply { return Reply{Kind: KindSimpleString, Str: "OK"} }

func SimpleString(s string) Reply { return Reply{Kind: KindSimpleString, Str: s} }

func Error(prefix, msg string) Reply { return Reply{Kind: KindError, ErrPfx: prefix, ErrMsg: msg} }

// Err builds a generic "-ERR <msg>" reply.
func Err(msg string) Reply { return Error("ERR", msg) }

// WrongType is the one fixed-text error the wire format pins bit-exact (§6).
func WrongType() Reply {
	return Error("WRONGTYPE", "Operation against a key holding the wrong kind of value")
}

func Integer(i int64) Reply { return Reply{Kind: KindInteger, Int: i} }

func Bulk(b []byte) Reply { return Reply{Kind: KindBulk, Bulk: b} }

func BulkString(s string) Reply { return Reply{Kind: KindBulk, Bulk: []byte(s)} }

func NilBulk() Reply { return Reply{Kind: KindNilBulk} }

func Array(items []Reply) Reply { return Reply{Kind: KindArray, Array: items} }

func NilArray() Reply { return Reply{Kind: KindNilArray} }

// Encode serializes r per §4.A's bit-exact wire grammar.
func Encode(r Reply) []byte {
	buf := make([]byte, 0, 64)
	return appendReply(buf, r)
}

func appendReply(buf []byte, r Reply) []byte {
	switch r.Kind {
	case KindSimpleString:
		buf = append(buf, '+')
		buf = append(buf, r.Str...)
		return append(buf, '\r', '\n')
	case KindError:
		buf = append(buf, '-')
		buf = append(buf, r.ErrPfx...)
		buf = append(buf, ' ')
		buf = append(buf, r.ErrMsg...)
		return append(buf, '\r', '\n')
	case KindInteger:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, r.Int, 10)
		return append(buf, '\r', '\n')
	case KindBulk:
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(r.Bulk)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, r.Bulk...)
		return append(buf, '\r', '\n')
	case KindNilBulk:
		return append(buf, '$', '-', '1', '\r', '\n')
	case KindNilArray:
		return append(buf, '*', '-', '1', '\r', '\n')
	case KindArray:
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(r.Array)), 10)
		buf = append(buf, '\r', '\n')
		for _, item := range r.Array {
			buf = appendReply(buf, item)
		}
		return buf
	default:
		return append(buf, '$', '-', '1', '\r', '\n')
	}
}
