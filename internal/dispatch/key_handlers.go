package dispatch

import (
	"time"

	"github.com/ferrodb/ferrodb/internal/resp"
)

func (d *Dispatcher) registerKeyCommands() {
	d.register([]string{"DEL", "UNLINK"}, handleDel)
	d.register([]string{"EXISTS"}, handleExists)
	d.register([]string{"EXPIRE"}, handleExpire)
	d.register([]string{"EXPIREAT"}, handleExpireAt)
	d.register([]string{"PEXPIRE"}, handlePExpire)
	d.register([]string{"PEXPIREAT"}, handlePExpireAt)
	d.register([]string{"PERSIST"}, handlePersist)
	d.register([]string{"TTL"}, handleTTL)
	d.register([]string{"PTTL"}, handlePTTL)
	d.register([]string{"TYPE"}, handleType)
	d.register([]string{"RENAME"}, handleRename)
	d.register([]string{"RENAMENX"}, handleRenameNX)
	d.register([]string{"RANDOMKEY"}, handleRandomKey)
}

func handleDel(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 {
		return one(wrongArgs("DEL"))
	}
	keys := make([]string, len(args)-1)
	for i, a := range args[1:] {
		keys[i] = string(a)
	}
	return one(resp.Integer(int64(d.Store.Del(keys...))))
}

func handleExists(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 {
		return one(wrongArgs("EXISTS"))
	}
	keys := make([]string, len(args)-1)
	for i, a := range args[1:] {
		keys[i] = string(a)
	}
	return one(resp.Integer(int64(d.Store.Exists(keys...))))
}

func handleExpire(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("EXPIRE"))
	}
	secs, ok := parseInt64(args[2])
	if !ok {
		return one(resp.Err("value is not an integer or out of range"))
	}
	at := time.Now().Add(time.Duration(secs) * time.Second)
	return one(boolInt(d.Store.Expire(string(args[1]), at)))
}

func handleExpireAt(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("EXPIREAT"))
	}
	secs, ok := parseInt64(args[2])
	if !ok {
		return one(resp.Err("value is not an integer or out of range"))
	}
	at := time.Unix(secs, 0)
	return one(boolInt(d.Store.Expire(string(args[1]), at)))
}

func handlePExpire(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("PEXPIRE"))
	}
	millis, ok := parseInt64(args[2])
	if !ok {
		return one(resp.Err("value is not an integer or out of range"))
	}
	at := time.Now().Add(time.Duration(millis) * time.Millisecond)
	return one(boolInt(d.Store.Expire(string(args[1]), at)))
}

func handlePExpireAt(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("PEXPIREAT"))
	}
	millis, ok := parseInt64(args[2])
	if !ok {
		return one(resp.Err("value is not an integer or out of range"))
	}
	at := time.UnixMilli(millis)
	return one(boolInt(d.Store.Expire(string(args[1]), at)))
}

func handlePersist(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("PERSIST"))
	}
	return one(boolInt(d.Store.Persist(string(args[1]))))
}

func handleTTL(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("TTL"))
	}
	return one(resp.Integer(d.Store.TTLSeconds(string(args[1]))))
}

func handlePTTL(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("PTTL"))
	}
	return one(resp.Integer(d.Store.PTTLMillis(string(args[1]))))
}

func handleType(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("TYPE"))
	}
	typ, ok := d.Store.Type(string(args[1]))
	if !ok {
		return one(resp.SimpleString("none"))
	}
	return one(resp.SimpleString(typ.String()))
}

func handleRename(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("RENAME"))
	}
	if !d.Store.Rename(string(args[1]), string(args[2])) {
		return one(resp.Err("no such key"))
	}
	return one(resp.OK())
}

func handleRenameNX(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("RENAMENX"))
	}
	return one(boolInt(d.Store.RenameNX(string(args[1]), string(args[2]))))
}

func handleRandomKey(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	k, ok := d.Store.RandomKey()
	if !ok {
		return one(resp.NilBulk())
	}
	return one(resp.BulkString(k))
}
