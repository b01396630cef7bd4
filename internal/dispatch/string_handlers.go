package dispatch

import (
	"strings"
	"time"

	"github.com/ferrodb/ferrodb/internal/resp"
)

func (d *Dispatcher) registerStringCommands() {
	d.register([]string{"SET"}, handleSet)
	d.register([]string{"SETNX"}, handleSetNX)
	d.register([]string{"GETSET"}, handleGetSet)
	d.register([]string{"GET"}, handleGet)
	d.register([]string{"APPEND"}, handleAppend)
	d.register([]string{"STRLEN"}, handleStrlen)
	d.register([]string{"MSET"}, handleMSet)
	d.register([]string{"MSETNX"}, handleMSetNX)
	d.register([]string{"MGET"}, handleMGet)
	d.register([]string{"INCR"}, handleIncr)
	d.register([]string{"DECR"}, handleDecr)
	d.register([]string{"INCRBY"}, handleIncrBy)
	d.register([]string{"DECRBY"}, handleDecrBy)
}

// handleSet implements `SET k v [EX s]` (§4.B). No other SET options are
// part of the spec's string contract.
func handleSet(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("SET"))
	}
	var expiresAt *time.Time
	if len(args) >= 5 && strings.EqualFold(string(args[3]), "EX") {
		secs, ok := parseInt64(args[4])
		if !ok || secs <= 0 {
			return one(resp.Err("invalid expire time in 'set' command"))
		}
		t := time.Now().Add(time.Duration(secs) * time.Second)
		expiresAt = &t
	} else if len(args) != 3 {
		return one(resp.Err("syntax error"))
	}
	d.Store.Set(string(args[1]), args[2], expiresAt)
	return one(resp.OK())
}

func handleSetNX(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("SETNX"))
	}
	ok := d.Store.SetNX(string(args[1]), args[2], nil)
	return one(boolInt(ok))
}

func handleGetSet(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("GETSET"))
	}
	prev, existed, err := d.Store.GetSet(string(args[1]), args[2])
	if err != nil {
		return one(errReply(err))
	}
	if !existed {
		return one(resp.NilBulk())
	}
	return one(resp.Bulk(prev))
}

func handleGet(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("GET"))
	}
	v, ok, err := d.Store.Get(string(args[1]))
	if err != nil {
		return one(errReply(err))
	}
	if !ok {
		return one(resp.NilBulk())
	}
	return one(resp.Bulk(v))
}

func handleAppend(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("APPEND"))
	}
	n, err := d.Store.Append(string(args[1]), args[2])
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleStrlen(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("STRLEN"))
	}
	n, err := d.Store.Strlen(string(args[1]))
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

// handleMSet implements MSET atomically (§4.B, §5).
func handleMSet(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 || len(args)%2 != 1 {
		return one(wrongArgs("MSET"))
	}
	pairs := make(map[string][]byte, (len(args)-1)/2)
	for i := 1; i < len(args); i += 2 {
		pairs[string(args[i])] = args[i+1]
	}
	d.Store.MSet(pairs)
	return one(resp.OK())
}

func handleMSetNX(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 || len(args)%2 != 1 {
		return one(wrongArgs("MSETNX"))
	}
	pairs := make(map[string][]byte, (len(args)-1)/2)
	for i := 1; i < len(args); i += 2 {
		pairs[string(args[i])] = args[i+1]
	}
	ok := d.Store.MSetNX(pairs)
	return one(boolInt(ok))
}

func handleMGet(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 {
		return one(wrongArgs("MGET"))
	}
	keys := make([]string, len(args)-1)
	for i, a := range args[1:] {
		keys[i] = string(a)
	}
	return one(bulkBytes(d.Store.MGet(keys)))
}

func handleIncr(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("INCR"))
	}
	n, err := d.Store.IncrBy(string(args[1]), 1)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(n))
}

func handleDecr(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("DECR"))
	}
	n, err := d.Store.IncrBy(string(args[1]), -1)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(n))
}

func handleIncrBy(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("INCRBY"))
	}
	delta, ok := parseInt64(args[2])
	if !ok {
		return one(resp.Err("value is not an integer or out of range"))
	}
	n, err := d.Store.IncrBy(string(args[1]), delta)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(n))
}

func handleDecrBy(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("DECRBY"))
	}
	delta, ok := parseInt64(args[2])
	if !ok {
		return one(resp.Err("value is not an integer or out of range"))
	}
	n, err := d.Store.IncrBy(string(args[1]), -delta)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(n))
}

func boolInt(b bool) resp.Reply {
	if b {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}
