package dispatch

import (
	"strings"

	"github.com/ferrodb/ferrodb/internal/resp"
)

func (d *Dispatcher) registerListCommands() {
	d.register([]string{"LPUSH"}, handleLPush)
	d.register([]string{"RPUSH"}, handleRPush)
	d.register([]string{"LPUSHX"}, handleLPushX)
	d.register([]string{"RPUSHX"}, handleRPushX)
	d.register([]string{"LPOP"}, handleLPop)
	d.register([]string{"RPOP"}, handleRPop)
	d.register([]string{"LLEN"}, handleLLen)
	d.register([]string{"LRANGE"}, handleLRange)
	d.register([]string{"LINDEX"}, handleLIndex)
	d.register([]string{"LSET"}, handleLSet)
	d.register([]string{"LREM"}, handleLRem)
	d.register([]string{"LTRIM"}, handleLTrim)
	d.register([]string{"LINSERT"}, handleLInsert)
	d.register([]string{"LPOS"}, handleLPos)
}

func handleLPush(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("LPUSH"))
	}
	n, err := d.Store.LPush(string(args[1]), args[2:]...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleRPush(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("RPUSH"))
	}
	n, err := d.Store.RPush(string(args[1]), args[2:]...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleLPushX(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("LPUSHX"))
	}
	n, err := d.Store.LPushX(string(args[1]), args[2:]...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleRPushX(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("RPUSHX"))
	}
	n, err := d.Store.RPushX(string(args[1]), args[2:]...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleLPop(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 || len(args) > 3 {
		return one(wrongArgs("LPOP"))
	}
	count := 1
	multi := len(args) == 3
	if multi {
		n, ok := parseInt(args[2])
		if !ok || n < 0 {
			return one(resp.Err("value is out of range, must be positive"))
		}
		count = n
	}
	vals, err := d.Store.LPop(string(args[1]), count)
	if err != nil {
		return one(errReply(err))
	}
	if vals == nil {
		if multi {
			return one(resp.NilArray())
		}
		return one(resp.NilBulk())
	}
	if !multi {
		return one(resp.Bulk(vals[0]))
	}
	return one(bulkBytes(vals))
}

func handleRPop(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 || len(args) > 3 {
		return one(wrongArgs("RPOP"))
	}
	count := 1
	multi := len(args) == 3
	if multi {
		n, ok := parseInt(args[2])
		if !ok || n < 0 {
			return one(resp.Err("value is out of range, must be positive"))
		}
		count = n
	}
	vals, err := d.Store.RPop(string(args[1]), count)
	if err != nil {
		return one(errReply(err))
	}
	if vals == nil {
		if multi {
			return one(resp.NilArray())
		}
		return one(resp.NilBulk())
	}
	if !multi {
		return one(resp.Bulk(vals[0]))
	}
	return one(bulkBytes(vals))
}

func handleLLen(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("LLEN"))
	}
	n, err := d.Store.LLen(string(args[1]))
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleLRange(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 4 {
		return one(wrongArgs("LRANGE"))
	}
	start, ok1 := parseInt(args[2])
	stop, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return one(resp.Err("value is not an integer or out of range"))
	}
	vals, err := d.Store.LRange(string(args[1]), start, stop)
	if err != nil {
		return one(errReply(err))
	}
	return one(bulkBytes(vals))
}

func handleLIndex(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("LINDEX"))
	}
	idx, ok := parseInt(args[2])
	if !ok {
		return one(resp.Err("value is not an integer or out of range"))
	}
	v, found, err := d.Store.LIndex(string(args[1]), idx)
	if err != nil {
		return one(errReply(err))
	}
	if !found {
		return one(resp.NilBulk())
	}
	return one(resp.Bulk(v))
}

func handleLSet(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 4 {
		return one(wrongArgs("LSET"))
	}
	idx, ok := parseInt(args[2])
	if !ok {
		return one(resp.Err("value is not an integer or out of range"))
	}
	done, err := d.Store.LSet(string(args[1]), idx, args[3])
	if err != nil {
		return one(errReply(err))
	}
	if !done {
		return one(resp.Err("no such key or index out of range"))
	}
	return one(resp.OK())
}

func handleLRem(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 4 {
		return one(wrongArgs("LREM"))
	}
	count, ok := parseInt(args[2])
	if !ok {
		return one(resp.Err("value is not an integer or out of range"))
	}
	n, err := d.Store.LRem(string(args[1]), count, args[3])
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleLTrim(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 4 {
		return one(wrongArgs("LTRIM"))
	}
	start, ok1 := parseInt(args[2])
	stop, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return one(resp.Err("value is not an integer or out of range"))
	}
	if err := d.Store.LTrim(string(args[1]), start, stop); err != nil {
		return one(errReply(err))
	}
	return one(resp.OK())
}

func handleLInsert(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 5 {
		return one(wrongArgs("LINSERT"))
	}
	var before bool
	switch strings.ToUpper(string(args[2])) {
	case "BEFORE":
		before = true
	case "AFTER":
		before = false
	default:
		return one(resp.Err("syntax error"))
	}
	n, err := d.Store.LInsert(string(args[1]), before, args[3], args[4])
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleLPos(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("LPOS"))
	}
	idx, found, err := d.Store.LPos(string(args[1]), args[2])
	if err != nil {
		return one(errReply(err))
	}
	if !found {
		return one(resp.NilBulk())
	}
	return one(resp.Integer(int64(idx)))
}
