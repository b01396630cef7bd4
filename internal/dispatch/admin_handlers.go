package dispatch

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/ferrodb/ferrodb/internal/resp"
	"github.com/ferrodb/ferrodb/internal/snapshot"
	"github.com/ferrodb/ferrodb/internal/store"
)

func (d *Dispatcher) registerAdminCommands() {
	d.register([]string{"PING"}, handlePing)
	d.register([]string{"DBSIZE"}, handleDBSize)
	d.register([]string{"FLUSHALL", "FLUSHDB"}, handleFlushAll)
	d.register([]string{"SAVE"}, handleSave)
	d.register([]string{"BGSAVE"}, handleBGSave)
	d.register([]string{"BGREWRITEAOF"}, handleBGRewriteAOF)
}

func handlePing(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) > 2 {
		return one(wrongArgs("PING"))
	}
	if len(args) == 2 {
		return one(resp.Bulk(args[1]))
	}
	return one(resp.SimpleString("PONG"))
}

func handleDBSize(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	return one(resp.Integer(int64(d.Store.Size())))
}

func handleFlushAll(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	d.Store.Flush()
	return one(resp.OK())
}

// handleSave runs SAVE synchronously: Store.Snapshot deep-clones the
// keyspace under its read lock, and the clone is written to disk before the
// reply is sent. The read lock is released once the clone is taken, so it
// is not held while the file is written.
func handleSave(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	entries := d.Store.Snapshot()
	if err := snapshot.Save(d.SnapshotPath, entries); err != nil {
		d.Log.Error("save failed", zap.Error(err))
		return one(resp.Err("snapshot save failed: " + err.Error()))
	}
	return one(resp.OK())
}

// handleBGSave clones the keyspace under a read lock synchronously, then
// writes the clone to disk on a background goroutine, matching the
// teacher's BGSAVE/BGREWRITEAOF shape of a fast synchronous snapshot
// followed by a slow background write.
func handleBGSave(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	entries := d.Store.Snapshot()
	go func() {
		if err := snapshot.Save(d.SnapshotPath, entries); err != nil {
			d.Log.Error("background save failed", zap.Error(err))
			return
		}
		d.Log.Info("background save completed")
	}()
	return one(resp.SimpleString("Background saving started"))
}

// handleBGRewriteAOF builds the minimal constructive command sequence for
// the current keyspace (§4.C) and hands it to the AOF writer's buffered
// rewrite.
func handleBGRewriteAOF(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if d.AOF == nil {
		return one(resp.Err("AOF is not enabled"))
	}
	entries := d.Store.Snapshot()
	go func() {
		commands := rewriteCommands(entries)
		if err := d.AOF.Rewrite(commands); err != nil {
			d.Log.Error("aof rewrite failed", zap.Error(err))
			return
		}
		d.Log.Info("aof rewrite completed", zap.Int("commands", len(commands)))
	}()
	return one(resp.SimpleString("Background append only file rewriting started"))
}

// rewriteCommands renders entries as the constructive command sequence
// named in §4.C: SET/RPUSH/SADD/ZADD per value type, followed by EXPIREAT
// for any key carrying a TTL.
func rewriteCommands(entries []store.SnapshotEntry) [][][]byte {
	commands := make([][][]byte, 0, len(entries))
	for _, e := range entries {
		switch e.Type {
		case store.TypeString:
			commands = append(commands, [][]byte{[]byte("SET"), []byte(e.Key), e.Str})
		case store.TypeList:
			if len(e.List) == 0 {
				continue
			}
			cmd := append([][]byte{[]byte("RPUSH"), []byte(e.Key)}, e.List...)
			commands = append(commands, cmd)
		case store.TypeSet:
			if len(e.Set) == 0 {
				continue
			}
			cmd := [][]byte{[]byte("SADD"), []byte(e.Key)}
			for _, m := range e.Set {
				cmd = append(cmd, []byte(m))
			}
			commands = append(commands, cmd)
		case store.TypeZSet:
			if len(e.ZSet) == 0 {
				continue
			}
			cmd := [][]byte{[]byte("ZADD"), []byte(e.Key)}
			for _, m := range e.ZSet {
				cmd = append(cmd, []byte(formatFloat(m.Score)), []byte(m.Member))
			}
			commands = append(commands, cmd)
		}
		if e.ExpiresAt != nil {
			commands = append(commands, [][]byte{
				[]byte("EXPIREAT"), []byte(e.Key), []byte(strconv.FormatInt(e.ExpiresAt.Unix(), 10)),
			})
		}
	}
	return commands
}
