package server

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ferrodb/ferrodb/internal/dispatch"
	"github.com/ferrodb/ferrodb/internal/pubsub"
	"github.com/ferrodb/ferrodb/internal/resp"
)

// handleConnection runs one client's command loop until it disconnects,
// sends QUIT, or the server shuts down. Pipelined commands are read and
// answered in arrival order (§4.A); a second goroutine delivers pub/sub
// messages as they arrive, interleaved with command replies under a
// shared write lock.
func (s *Server) handleConnection(ctx context.Context, id string, conn net.Conn) {
	defer conn.Close()

	sess := dispatch.NewSession(id)
	defer s.hub.RemoveSubscriber(id)

	var writeMu sync.Mutex
	write := func(b []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_, err := conn.Write(b)
		return err
	}

	connDone := make(chan struct{})
	defer close(connDone)
	go s.forwardNotifications(id, conn, &writeMu, connDone)

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 64*1024)

	for {
		cmd, consumed, perr := resp.ParseCommand(buf)
		switch perr {
		case nil:
			buf = buf[consumed:]
			replies, closeConn := s.dispatcher.Execute(sess, cmd)
			out := make([]byte, 0, 64)
			for _, r := range replies {
				out = append(out, resp.Encode(r)...)
			}
			if len(out) > 0 {
				if err := write(out); err != nil {
					return
				}
			}
			if closeConn {
				return
			}
			continue
		case resp.ErrIncomplete:
			// fall through to read more bytes below
		default:
			write(resp.Encode(resp.Err("Protocol error: " + perr.Error())))
			return
		}

		conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				s.log.Debug("connection read error", zap.String("conn", id), zap.Error(err))
			}
			return
		}
	}
}

// forwardNotifications waits for id to gain at least one subscription,
// then relays every published message to conn until the connection ends.
// Subscriptions are created lazily by the hub on first SUBSCRIBE, so this
// polls briefly until the queue exists, and keeps polling so that a queue
// recreated by a SUBSCRIBE after unsubscribing from everything is picked up.
func (s *Server) forwardNotifications(id string, conn net.Conn, writeMu *sync.Mutex, done <-chan struct{}) {
	var notify chan pubsub.Message
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for notify == nil {
		select {
		case <-done:
			return
		case <-ticker.C:
			if ch, ok := s.hub.NotifyChannel(id); ok {
				notify = ch
			}
		}
	}

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if ch, ok := s.hub.NotifyChannel(id); ok {
				notify = ch
			}
		case msg := <-notify:
			reply := resp.Array([]resp.Reply{
				resp.BulkString("message"),
				resp.BulkString(msg.Channel),
				resp.Bulk(msg.Payload),
			})
			writeMu.Lock()
			_, err := conn.Write(resp.Encode(reply))
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
