package dispatch

import (
	"strings"

	"github.com/ferrodb/ferrodb/internal/resp"
)

func (d *Dispatcher) registerPubSubCommands() {
	d.register([]string{"SUBSCRIBE"}, handleSubscribe)
	d.register([]string{"UNSUBSCRIBE"}, handleUnsubscribe)
	d.register([]string{"PUBLISH"}, handlePublish)
	d.register([]string{"PUBSUB"}, handlePubSub)
}

func handleSubscribe(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 {
		return one(wrongArgs("SUBSCRIBE"))
	}
	channels := argStrings(args[1:])
	joined := d.Hub.Subscribe(sess.ID, channels...)
	replies := make([]resp.Reply, len(joined))
	for i, ch := range joined {
		replies[i] = resp.Array([]resp.Reply{
			resp.BulkString("subscribe"),
			resp.BulkString(ch),
			resp.Integer(int64(d.Hub.SubscriptionCount(sess.ID))),
		})
	}
	return replies
}

func handleUnsubscribe(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	channels := argStrings(args[1:])
	left := d.Hub.Unsubscribe(sess.ID, channels...)
	if len(left) == 0 {
		return one(resp.Array([]resp.Reply{
			resp.BulkString("unsubscribe"),
			resp.NilBulk(),
			resp.Integer(0),
		}))
	}
	replies := make([]resp.Reply, len(left))
	for i, ch := range left {
		replies[i] = resp.Array([]resp.Reply{
			resp.BulkString("unsubscribe"),
			resp.BulkString(ch),
			resp.Integer(int64(d.Hub.SubscriptionCount(sess.ID))),
		})
	}
	return replies
}

func handlePublish(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) != 3 {
		return one(wrongArgs("PUBLISH"))
	}
	n := d.Hub.Publish(string(args[1]), args[2])
	return one(resp.Integer(int64(n)))
}

// handlePubSub implements the read-only PUBSUB introspection subcommands
// (§4.F admin category: read-only operations over the hub's own maps).
func handlePubSub(d *Dispatcher, sess *Session, args [][]byte) []resp.Reply {
	if len(args) < 2 {
		return one(wrongArgs("PUBSUB"))
	}
	switch strings.ToUpper(string(args[1])) {
	case "CHANNELS":
		return one(bulkStrings(d.Hub.Channels()))
	case "NUMSUB":
		counts := d.Hub.NumSub(argStrings(args[2:])...)
		items := make([]resp.Reply, 0, len(args[2:])*2)
		for _, ch := range args[2:] {
			items = append(items, resp.BulkString(string(ch)), resp.Integer(int64(counts[string(ch)])))
		}
		return one(resp.Array(items))
	case "NUMPAT":
		return one(resp.Integer(int64(d.Hub.NumPat())))
	default:
		return one(resp.Err("unknown PUBSUB subcommand"))
	}
}
