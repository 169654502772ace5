package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukluk/redikv/internal/blocking"
	"github.com/lukluk/redikv/internal/pubsub"
	"github.com/lukluk/redikv/internal/replication"
	"github.com/lukluk/redikv/internal/session"
	"github.com/lukluk/redikv/internal/store"
)

func newTestDeps() session.Deps {
	st := store.New(nil)
	return session.Deps{
		Store:  st,
		Coord:  blocking.New(st, nil),
		PubSub: pubsub.New(),
		Repl:   replication.NewManager(nil, nil),
	}
}

func TestServerAcceptsAndHandlesConnections(t *testing.T) {
	srv := New("127.0.0.1:0", "", newTestDeps(), nil)
	go func() {
		_ = srv.Run()
	}()
	defer srv.Close()

	addr := srv.Addr().String()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+PONG\r\n", line)
}

func TestServerCloseStopsAccepting(t *testing.T) {
	srv := New("127.0.0.1:0", "", newTestDeps(), nil)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	addr := srv.Addr().String()
	srv.Close()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}

	_, err := net.Dial("tcp", addr)
	require.Error(t, err)
}
