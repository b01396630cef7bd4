// Package dispatch binds parsed RESP commands to the store, AOF, and
// pub/sub collaborators (§4.F): it matches the command name
// case-insensitively, runs the handler, and decides whether the command's
// effect belongs in the AOF. A command is logged when it is a known write
// command (internal/aof.IsWriteCommand) AND it actually mutated the
// keyspace, detected by diffing store.Store.Mutations() around the call —
// a no-op write (SETNX on an existing key, EXPIRE on a missing key) never
// reaches the log.
package dispatch

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ferrodb/ferrodb/internal/aof"
	"github.com/ferrodb/ferrodb/internal/pubsub"
	"github.com/ferrodb/ferrodb/internal/resp"
	"github.com/ferrodb/ferrodb/internal/store"
)

// Handler executes one command and returns the replies to send back. Most
// commands produce exactly one; SUBSCRIBE/UNSUBSCRIBE produce one per
// channel (§4.E).
type Handler func(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply

// Session is a single connection's dispatch-visible state: its identity in
// the pub/sub hub. A QUIT request is reported by Execute's return value,
// not stored here.
type Session struct {
	ID string
}

func NewSession(id string) *Session {
	return &Session{ID: id}
}

// subscribedModeAllowed is the command allowlist while a session holds at
// least one subscription (§4.E).
var subscribedModeAllowed = map[string]bool{
	"SUBSCRIBE": true, "UNSUBSCRIBE": true, "PING": true, "QUIT": true,
}

// Dispatcher owns the command table and the collaborators every handler
// needs.
type Dispatcher struct {
	Store        *store.Store
	AOF          *aof.Writer
	Hub          *pubsub.Hub
	Log          *zap.Logger
	SnapshotPath string // destination for SAVE/BGSAVE (§4.D)

	table map[string]Handler
}

func New(st *store.Store, aofWriter *aof.Writer, hub *pubsub.Hub, snapshotPath string, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{Store: st, AOF: aofWriter, Hub: hub, SnapshotPath: snapshotPath, Log: log}
	d.table = make(map[string]Handler)
	d.registerStringCommands()
	d.registerKeyCommands()
	d.registerListCommands()
	d.registerSetCommands()
	d.registerZSetCommands()
	d.registerPubSubCommands()
	d.registerAdminCommands()
	return d
}

func (d *Dispatcher) register(names []string, h Handler) {
	for _, n := range names {
		d.table[n] = h
	}
}

// Execute runs one parsed command and reports whether the connection
// should close afterward (QUIT).
func (d *Dispatcher) Execute(sess *Session, cmd *resp.Command) ([]resp.Reply, bool) {
	if len(cmd.Args) == 0 {
		return []resp.Reply{resp.Err("empty command")}, false
	}
	name := cmd.Name()

	if name == "QUIT" {
		return []resp.Reply{resp.OK()}, true
	}

	if d.Hub.SubscriptionCount(sess.ID) > 0 && !subscribedModeAllowed[name] {
		return []resp.Reply{resp.Err("Can't execute '" + strings.ToLower(name) + "': only (P)SUBSCRIBE / (P)UNSUBSCRIBE / PING / QUIT are allowed in this context")}, false
	}

	handler, ok := d.table[name]
	if !ok {
		return []resp.Reply{resp.Err("unknown command '" + name + "'")}, false
	}

	if aof.IsWriteCommand(name) && d.AOF != nil && d.AOF.Refusing() {
		return []resp.Reply{resp.Err(aof.ErrBackgroundSaveError.Error())}, false
	}

	before := d.Store.Mutations()
	replies := handler(d, sess, cmd.Args)
	after := d.Store.Mutations()

	if after != before && aof.IsWriteCommand(name) && d.AOF != nil {
		if err := d.AOF.WriteCommand(cmd.Args); err != nil {
			d.Log.Warn("aof write failed", zap.String("command", name), zap.Error(err))
			return []resp.Reply{errReply(err)}, false
		}
	}

	return replies, false
}

func one(r resp.Reply) []resp.Reply { return []resp.Reply{r} }

func wrongArgs(name string) resp.Reply {
	return resp.Err("wrong number of arguments for '" + strings.ToLower(name) + "' command")
}

func errReply(err error) resp.Reply {
	if err == store.ErrWrongType {
		return resp.WrongType()
	}
	return resp.Err(err.Error())
}
