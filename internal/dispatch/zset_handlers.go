package dispatch

import (
	"strings"

	"github.com/ferrodb/ferrodb/internal/resp"
	"github.com/ferrodb/ferrodb/internal/store"
)

func (d *Dispatcher) registerZSetCommands() {
	d.register([]string{"ZADD"}, handleZAdd)
	d.register([]string{"ZREM"}, handleZRem)
	d.register([]string{"ZSCORE"}, handleZScore)
	d.register([]string{"ZCARD"}, handleZCard)
	d.register([]string{"ZRANK"}, handleZRank)
	d.register([]string{"ZREVRANK"}, handleZRevRank)
	d.register([]string{"ZRANGE"}, handleZRange)
	d.register([]string{"ZREVRANGE"}, handleZRevRange)
	d.register([]string{"ZRANGEBYSCORE"}, handleZRangeByScore)
	d.register([]string{"ZREVRANGEBYSCORE"}, handleZRevRangeByScore)
	d.register([]string{"ZCOUNT"}, handleZCount)
	d.register([]string{"ZINCRBY"}, handleZIncrBy)
	d.register([]string{"ZPOPMIN"}, handleZPopMin)
	d.register([]string{"ZPOPMAX"}, handleZPopMax)
	d.register([]string{"ZREMRANGEBYSCORE"}, handleZRemRangeByScore)
	d.register([]string{"ZREMRANGEBYRANK"}, handleZRemRangeByRank)
}

func handleZAdd(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 4 || len(args)%2 != 0 {
		return one(wrongArgs("ZADD"))
	}
	members := make(map[string]float64, (len(args)-2)/2)
	for i := 2; i < len(args); i += 2 {
		score, ok := parseFloat(args[i])
		if !ok {
			return one(resp.Err("value is not a valid float"))
		}
		members[string(args[i+1])] = score
	}
	n, err := d.Store.ZAdd(string(args[1]), members)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleZRem(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 3 {
		return one(wrongArgs("ZREM"))
	}
	n, err := d.Store.ZRem(string(args[1]), argStrings(args[2:])...)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleZScore(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("ZSCORE"))
	}
	score, ok, err := d.Store.ZScore(string(args[1]), string(args[2]))
	if err != nil {
		return one(errReply(err))
	}
	if !ok {
		return one(resp.NilBulk())
	}
	return one(resp.BulkString(formatFloat(score)))
}

func handleZCard(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 2 {
		return one(wrongArgs("ZCARD"))
	}
	n, err := d.Store.ZCard(string(args[1]))
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleZRank(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("ZRANK"))
	}
	rank, ok, err := d.Store.ZRank(string(args[1]), string(args[2]))
	if err != nil {
		return one(errReply(err))
	}
	if !ok {
		return one(resp.NilBulk())
	}
	return one(resp.Integer(int64(rank)))
}

func handleZRevRank(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("ZREVRANK"))
	}
	rank, ok, err := d.Store.ZRevRank(string(args[1]), string(args[2]))
	if err != nil {
		return one(errReply(err))
	}
	if !ok {
		return one(resp.NilBulk())
	}
	return one(resp.Integer(int64(rank)))
}

// parseWithScores reports whether the optional trailing WITHSCORES flag is
// present starting at args[from]; ok is false on any other trailing token.
func parseWithScores(args [][]byte, from int) (withScores, ok bool) {
	if len(args) == from {
		return false, true
	}
	if len(args) == from+1 && strings.EqualFold(string(args[from]), "WITHSCORES") {
		return true, true
	}
	return false, false
}

func handleZRange(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 4 {
		return one(wrongArgs("ZRANGE"))
	}
	start, ok1 := parseInt(args[2])
	stop, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return one(resp.Err("value is not an integer or out of range"))
	}
	withScores, ok := parseWithScores(args, 4)
	if !ok {
		return one(resp.Err("syntax error"))
	}
	members, serr := d.Store.ZRange(string(args[1]), start, stop)
	if serr != nil {
		return one(errReply(serr))
	}
	return one(zMembersReply(members, withScores))
}

func handleZRevRange(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 4 {
		return one(wrongArgs("ZREVRANGE"))
	}
	start, ok1 := parseInt(args[2])
	stop, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return one(resp.Err("value is not an integer or out of range"))
	}
	withScores, ok := parseWithScores(args, 4)
	if !ok {
		return one(resp.Err("syntax error"))
	}
	members, serr := d.Store.ZRevRange(string(args[1]), start, stop)
	if serr != nil {
		return one(errReply(serr))
	}
	return one(zMembersReply(members, withScores))
}

func handleZRangeByScore(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 4 {
		return one(wrongArgs("ZRANGEBYSCORE"))
	}
	min, ok1 := parseFloat(args[2])
	max, ok2 := parseFloat(args[3])
	if !ok1 || !ok2 {
		return one(resp.Err("min or max is not a float"))
	}
	withScores, ok := parseWithScores(args, 4)
	if !ok {
		return one(resp.Err("syntax error"))
	}
	members, serr := d.Store.ZRangeByScore(string(args[1]), min, max)
	if serr != nil {
		return one(errReply(serr))
	}
	return one(zMembersReply(members, withScores))
}

func handleZRevRangeByScore(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 4 {
		return one(wrongArgs("ZREVRANGEBYSCORE"))
	}
	max, ok1 := parseFloat(args[2])
	min, ok2 := parseFloat(args[3])
	if !ok1 || !ok2 {
		return one(resp.Err("min or max is not a float"))
	}
	withScores, ok := parseWithScores(args, 4)
	if !ok {
		return one(resp.Err("syntax error"))
	}
	members, serr := d.Store.ZRevRangeByScore(string(args[1]), min, max)
	if serr != nil {
		return one(errReply(serr))
	}
	return one(zMembersReply(members, withScores))
}

func handleZCount(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 4 {
		return one(wrongArgs("ZCOUNT"))
	}
	min, ok1 := parseFloat(args[2])
	max, ok2 := parseFloat(args[3])
	if !ok1 || !ok2 {
		return one(resp.Err("min or max is not a float"))
	}
	n, err := d.Store.ZCount(string(args[1]), min, max)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleZIncrBy(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 4 {
		return one(wrongArgs("ZINCRBY"))
	}
	delta, ok := parseFloat(args[2])
	if !ok {
		return one(resp.Err("value is not a valid float"))
	}
	score, err := d.Store.ZIncrBy(string(args[1]), string(args[3]), delta)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.BulkString(formatFloat(score)))
}

func handleZPopMin(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	return zPop(d, args, "ZPOPMIN", d.Store.ZPopMin)
}

func handleZPopMax(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	return zPop(d, args, "ZPOPMAX", d.Store.ZPopMax)
}

func zPop(d *Dispatcher, args [][]byte, name string, pop func(key string, count int) ([]store.ZMember, error)) []resp.Reply {
	if len(args) < 2 || len(args) > 3 {
		return one(wrongArgs(name))
	}
	count := 1
	if len(args) == 3 {
		n, ok := parseInt(args[2])
		if !ok || n < 0 {
			return one(resp.Err("value is out of range, must be positive"))
		}
		count = n
	}
	members, err := pop(string(args[1]), count)
	if err != nil {
		return one(errReply(err))
	}
	return one(zMembersReply(members, true))
}

func handleZRemRangeByScore(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 4 {
		return one(wrongArgs("ZREMRANGEBYSCORE"))
	}
	min, ok1 := parseFloat(args[2])
	max, ok2 := parseFloat(args[3])
	if !ok1 || !ok2 {
		return one(resp.Err("min or max is not a float"))
	}
	n, err := d.Store.ZRemRangeByScore(string(args[1]), min, max)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}

func handleZRemRangeByRank(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 4 {
		return one(wrongArgs("ZREMRANGEBYRANK"))
	}
	start, ok1 := parseInt(args[2])
	stop, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return one(resp.Err("value is not an integer or out of range"))
	}
	n, err := d.Store.ZRemRangeByRank(string(args[1]), start, stop)
	if err != nil {
		return one(errReply(err))
	}
	return one(resp.Integer(int64(n)))
}
