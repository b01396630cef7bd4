package server

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ferrodb/ferrodb/internal/config"
)

func startTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	cfg := &config.Config{
		Bind:       "127.0.0.1",
		Port:       0,
		Dir:        t.TempDir(),
		AppendOnly: true,
		SavePoints: []config.SavePoint{{Seconds: 3600, Changes: 1 << 30}},
		LogFormat:  "text",
		LogLevel:   "error",
	}
	srv, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	return srv, func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down in time")
		}
	}
}

func dial(t *testing.T, addr net.Addr) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	return conn, bufio.NewReader(conn)
}

func sendCommand(t *testing.T, conn net.Conn, args ...string) {
	t.Helper()
	out := []byte("*" + strconv.Itoa(len(args)) + "\r\n")
	for _, a := range args {
		out = append(out, []byte("$"+strconv.Itoa(len(a))+"\r\n"+a+"\r\n")...)
	}
	_, err := conn.Write(out)
	require.NoError(t, err)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestServerRespondsToPing(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, r := dial(t, srv.Addr())
	defer conn.Close()

	sendCommand(t, conn, "PING")
	assert.Equal(t, "+PONG\r\n", readLine(t, r))
}

func TestServerSetGetOverWire(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, r := dial(t, srv.Addr())
	defer conn.Close()

	sendCommand(t, conn, "SET", "k", "v")
	assert.Equal(t, "+OK\r\n", readLine(t, r))

	sendCommand(t, conn, "GET", "k")
	assert.Equal(t, "$1\r\n", readLine(t, r))
	assert.Equal(t, "v\r\n", readLine(t, r))
}

func TestServerQuitClosesConnection(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, r := dial(t, srv.Addr())
	defer conn.Close()

	sendCommand(t, conn, "QUIT")
	assert.Equal(t, "+OK\r\n", readLine(t, r))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := r.ReadByte()
	assert.Error(t, err)
}

func TestServerPersistsAcrossRestart(t *testing.T) {
	cfg := &config.Config{
		Bind:       "127.0.0.1",
		Port:       0,
		Dir:        t.TempDir(),
		AppendOnly: true,
		SavePoints: []config.SavePoint{{Seconds: 3600, Changes: 1 << 30}},
		LogFormat:  "text",
		LogLevel:   "error",
	}

	srv1, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx1, cancel1 := context.WithCancel(context.Background())
	done1 := make(chan error, 1)
	go func() { done1 <- srv1.Run(ctx1) }()

	conn, r := dial(t, srv1.Addr())
	sendCommand(t, conn, "SET", "durable", "yes")
	assert.Equal(t, "+OK\r\n", readLine(t, r))
	conn.Close()

	cancel1()
	select {
	case <-done1:
	case <-time.After(5 * time.Second):
		t.Fatal("first server did not shut down")
	}

	srv2, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx2, cancel2 := context.WithCancel(context.Background())
	done2 := make(chan error, 1)
	go func() { done2 <- srv2.Run(ctx2) }()
	defer func() {
		cancel2()
		<-done2
	}()

	conn2, r2 := dial(t, srv2.Addr())
	defer conn2.Close()
	sendCommand(t, conn2, "GET", "durable")
	assert.Equal(t, "$3\r\n", readLine(t, r2))
	assert.Equal(t, "yes\r\n", readLine(t, r2))
}
