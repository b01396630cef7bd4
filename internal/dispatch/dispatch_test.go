package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ferrodb/ferrodb/internal/aof"
	"github.com/ferrodb/ferrodb/internal/pubsub"
	"github.com/ferrodb/ferrodb/internal/resp"
	"github.com/ferrodb/ferrodb/internal/store"
)

func newTestDispatcher() *Dispatcher {
	return New(store.New(), nil, pubsub.NewHub(), "", zap.NewNop())
}

func cmd(args ...string) *resp.Command {
	out := make([][]byte, len(args))
	for i, a := range args {
		out[i] = []byte(a)
	}
	return &resp.Command{Args: out}
}

func TestPingWithAndWithoutMessage(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("s1")

	replies, closeConn := d.Execute(sess, cmd("PING"))
	require.False(t, closeConn)
	require.Len(t, replies, 1)
	assert.Equal(t, resp.SimpleString("PONG"), replies[0])

	replies, _ = d.Execute(sess, cmd("PING", "hello"))
	assert.Equal(t, resp.Bulk([]byte("hello")), replies[0])
}

func TestSetGetRoundTrip(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("s1")

	replies, _ := d.Execute(sess, cmd("SET", "k", "v"))
	assert.Equal(t, resp.OK(), replies[0])

	replies, _ = d.Execute(sess, cmd("GET", "k"))
	assert.Equal(t, resp.Bulk([]byte("v")), replies[0])
}

func TestGetMissingKeyReturnsNilBulk(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("s1")

	replies, _ := d.Execute(sess, cmd("GET", "missing"))
	assert.Equal(t, resp.NilBulk(), replies[0])
}

func TestWrongTypeErrorFromListOpOnString(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("s1")

	d.Execute(sess, cmd("SET", "k", "v"))
	replies, _ := d.Execute(sess, cmd("LPUSH", "k", "x"))
	assert.Equal(t, resp.WrongType(), replies[0])
}

func TestQuitSignalsConnectionClose(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("s1")

	replies, closeConn := d.Execute(sess, cmd("QUIT"))
	assert.True(t, closeConn)
	assert.Equal(t, resp.OK(), replies[0])
}

func TestUnknownCommand(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("s1")

	replies, _ := d.Execute(sess, cmd("NOTACOMMAND"))
	require.Len(t, replies, 1)
	assert.Equal(t, resp.KindError, replies[0].Kind)
}

// TestSubscribedModeRestrictsCommands exercises §4.E's allowlist: once a
// session holds a subscription, only (UN)SUBSCRIBE/PING/QUIT may run.
func TestSubscribedModeRestrictsCommands(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("s1")

	replies, _ := d.Execute(sess, cmd("SUBSCRIBE", "ch"))
	require.Len(t, replies, 1)

	replies, _ = d.Execute(sess, cmd("SET", "k", "v"))
	require.Len(t, replies, 1)
	assert.Equal(t, resp.KindError, replies[0].Kind)

	replies, _ = d.Execute(sess, cmd("PING"))
	assert.Equal(t, resp.SimpleString("PONG"), replies[0])
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	d := newTestDispatcher()
	sub := NewSession("subscriber")
	pub := NewSession("publisher")

	d.Execute(sub, cmd("SUBSCRIBE", "news"))
	replies, _ := d.Execute(pub, cmd("PUBLISH", "news", "hello"))
	assert.Equal(t, resp.Integer(1), replies[0])
}

func TestDBSizeAndFlushAll(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("s1")

	d.Execute(sess, cmd("SET", "a", "1"))
	d.Execute(sess, cmd("SET", "b", "2"))

	replies, _ := d.Execute(sess, cmd("DBSIZE"))
	assert.Equal(t, resp.Integer(2), replies[0])

	replies, _ = d.Execute(sess, cmd("FLUSHALL"))
	assert.Equal(t, resp.OK(), replies[0])

	replies, _ = d.Execute(sess, cmd("DBSIZE"))
	assert.Equal(t, resp.Integer(0), replies[0])
}

func TestZAddAndZRangeWithScores(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("s1")

	replies, _ := d.Execute(sess, cmd("ZADD", "z", "1", "one", "2", "two"))
	assert.Equal(t, resp.Integer(2), replies[0])

	replies, _ = d.Execute(sess, cmd("ZRANGE", "z", "0", "-1", "WITHSCORES"))
	require.Len(t, replies, 1)
	assert.Equal(t, resp.Array([]resp.Reply{
		resp.BulkString("one"), resp.BulkString("1"),
		resp.BulkString("two"), resp.BulkString("2"),
	}), replies[0])
}

// TestBackgroundSaveErrorRefusesWrites exercises §7's durability contract:
// once the AOF writer has failed a background fsync, write commands are
// refused with "-ERR background save error" rather than silently
// succeeding without being logged. The failure itself is forced by closing
// the writer's file out from under it (see aof.TestWriteCommandRefusesAfterSyncFailure
// for the writer-level assertion); here the dispatcher-level wiring is
// what's under test: it must check Refusing() up front and must turn a
// failed WriteCommand into an error reply rather than the handler's own
// success reply.
func TestBackgroundSaveErrorRefusesWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := aof.NewWriter(aof.Config{Enabled: true, Path: dir + "/appendonly.aof", SyncPolicy: aof.SyncAlways, BufferSize: 4096}, zap.NewNop())
	require.NoError(t, err)

	st := store.New()
	d := New(st, w, pubsub.NewHub(), "", zap.NewNop())
	sess := NewSession("s1")

	replies, _ := d.Execute(sess, cmd("SET", "a", "1"))
	assert.Equal(t, resp.OK(), replies[0])
	assert.False(t, w.Refusing())

	// Force the next fsync to fail by closing the underlying file while
	// the writer still believes it's open.
	require.NoError(t, w.CloseUnderlyingFile())

	replies, _ = d.Execute(sess, cmd("SET", "b", "2"))
	require.Len(t, replies, 1)
	assert.Equal(t, resp.KindError, replies[0].Kind)
	assert.Equal(t, "ERR", replies[0].ErrPfx)
	assert.Equal(t, "background save error", replies[0].ErrMsg)
	assert.True(t, w.Refusing())

	_, ok, _ := st.Get("b")
	assert.True(t, ok, "the handler still applies the mutation; only the AOF log refuses it")

	// A subsequent write is now refused before the handler even runs.
	replies, _ = d.Execute(sess, cmd("SET", "c", "3"))
	assert.Equal(t, "background save error", replies[0].ErrMsg)
	_, ok, _ = st.Get("c")
	assert.False(t, ok, "once refusing, the write command must not reach the store at all")
}

func TestSetNXNoOpDoesNotReachAOF(t *testing.T) {
	st := store.New()
	hub := pubsub.NewHub()
	d := New(st, nil, hub, "", zap.NewNop())
	sess := NewSession("s1")

	d.Execute(sess, cmd("SETNX", "k", "v1"))
	before := st.Mutations()
	replies, _ := d.Execute(sess, cmd("SETNX", "k", "v2"))
	assert.Equal(t, resp.Integer(0), replies[0])
	assert.Equal(t, before, st.Mutations())
}
