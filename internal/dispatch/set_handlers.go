package dispatch

import (
	"github.com/ferrodb/ferrodb/internal/resp"
)

func (d *Dispatcher) registerSetCommands() {
	d.register([]string{"SADD"}, handleSAdd)
	d.register([]string{"SREM"}, handleSRem)
	d.register([]string{"SISMEMBER"}, handleSIsMember)
	d.register([]string{"SMEMBERS"}, handleSMembers)
	d.register([]string{"SCARD"}, handleSCard)
	d.register([]string{"SRANDMEMBER"}, handleSRandMember)
	d.register([]string{"SPOP"}, handleSPop)
	d.register([]string{"SINTER"}, handleSInter)
	d.register([]string{"SUNION"}, handleSUnion)
	d.register([]string{"SDIFF"}, handleSDiff)
	d.register([]string{"SINTERSTORE"}, handleSInterStore)
	d.register([]string{"SUNIONSTORE"}, handleSUnionStore)
	d.register([]string{"SDIFFSTORE"}, handleSDiffStore)
	d.register([]string{"SMOVE"}, handleSMove)
}

func argStrings(args [][]byte) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}

func handleSAdd(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("SADD"))
	}
	n, err := d.Store.SAdd(string(args[1]), argStrings(args[2:])...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleSRem(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("SREM"))
	}
	n, err := d.Store.SRem(string(args[1]), argStrings(args[2:])...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleSIsMember(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("SISMEMBER"))
	}
	ok, err := d.Store.SIsMember(string(args[1]), string(args[2]))
	if err != nil {
		return one(errReply(err))
	}
	return one(boolInt(ok))
}

func handleSMembers(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("SMEMBERS"))
	}
	members, err := d.Store.SMembers(string(args[1]))
	if err != nil {
		return one(errReply(err))
	}
	return one(bulkStrings(members))
}

func handleSCard(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("SCARD"))
	}
	n, err := d.Store.SCard(string(args[1]))
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleSRandMember(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 || len(args) > 3 {
		return one(wrongArgs("SRANDMEMBER"))
	}
	count := 1
	multi := len(args) == 3
	if multi {
		n, ok := parseInt(args[2])
		if !ok {
			return one(resp.Err("value is not an integer or out of range"))
		}
		count = n
	}
	members, err := d.Store.SRandMember(string(args[1]), count)
	if err != nil {
		return one(errReply(err))
	}
	if !multi {
		if len(members) == 0 {
			return one(resp.NilBulk())
		}
		return one(resp.BulkString(members[0]))
	}
	return one(bulkStrings(members))
}

func handleSPop(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 || len(args) > 3 {
		return one(wrongArgs("SPOP"))
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
	members, err := d.Store.SPop(string(args[1]), count)
	if err != nil {
		return one(errReply(err))
	}
	if !multi {
		if len(members) == 0 {
			return one(resp.NilBulk())
		}
		return one(resp.BulkString(members[0]))
	}
	return one(bulkStrings(members))
}

func handleSInter(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 {
		return one(wrongArgs("SINTER"))
	}
	members, err := d.Store.SInter(argStrings(args[1:])...)
	if err != nil {
		return one(errReply(err))
	}
	return one(bulkStrings(members))
}

func handleSUnion(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 {
		return one(wrongArgs("SUNION"))
	}
	members, err := d.Store.SUnion(argStrings(args[1:])...)
	if err != nil {
		return one(errReply(err))
	}
	return one(bulkStrings(members))
}

func handleSDiff(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 {
		return one(wrongArgs("SDIFF"))
	}
	members, err := d.Store.SDiff(argStrings(args[1:])...)
	if err != nil {
		return one(errReply(err))
	}
	return one(bulkStrings(members))
}

func handleSInterStore(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("SINTERSTORE"))
	}
	n, err := d.Store.SInterStore(string(args[1]), argStrings(args[2:])...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleSUnionStore(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("SUNIONSTORE"))
	}
	n, err := d.Store.SUnionStore(string(args[1]), argStrings(args[2:])...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleSDiffStore(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("SDIFFSTORE"))
	}
	n, err := d.Store.SDiffStore(string(args[1]), argStrings(args[2:])...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleSMove(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 4 {
		return one(wrongArgs("SMOVE"))
	}
	ok, err := d.Store.SMove(string(args[1]), string(args[2]), string(args[3]))
	if err != nil {
		return one(errReply(err))
	}
	return one(boolInt(ok))
}
