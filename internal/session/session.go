// Package session implements the per-connection client state machine:
// mode transitions (Normal/Subscribed/ReplicaLink), the command dispatch
// table, and the wiring between the wire codec and every shared
// collaborator (store, blocking coordinator, transaction buffer, pub/sub
// registry, replication manager). Grounded on lukluk-rendang's
// handleConnection/forwardWithPrefix: one goroutine owns a connection's
// read loop, logs structured per-connection events, and cleans up
// per-connection state on exit — generalized here from "forward bytes
// between two sockets" into "parse, dispatch, reply".
package session

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lukluk/redikv/internal/blocking"
	"github.com/lukluk/redikv/internal/metrics"
	"github.com/lukluk/redikv/internal/pubsub"
	"github.com/lukluk/redikv/internal/replication"
	"github.com/lukluk/redikv/internal/rerr"
	"github.com/lukluk/redikv/internal/resp"
	"github.com/lukluk/redikv/internal/store"
	"github.com/lukluk/redikv/internal/txn"
)

// Mode is the session's current dispatch context, spec §4.10.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSubscribed
	ModeReplicaLink
)

// Deps bundles every shared collaborator a session needs; one Deps is
// constructed at startup and handed to every accepted connection.
type Deps struct {
	Store   *store.Store
	Coord   *blocking.Coordinator
	PubSub  *pubsub.Registry
	Repl    *replication.Manager
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Session drives one client connection end to end.
type Session struct {
	conn net.Conn
	deps Deps
	log  *zap.Logger

	reader *resp.Reader
	writer *resp.Writer
	wmu    sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	mode Mode
	txn  txn.Buffer

	// inExec is true while EXEC is replaying its queued commands:
	// blocking commands must degrade to their non-blocking form, spec
	// §4.8.
	inExec bool

	replicaLink *replication.Link
}

// New wraps conn in a Session ready to Run.
func New(conn net.Conn, deps Deps) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		conn:   conn,
		deps:   deps,
		log:    logger.With(zap.String("remote", conn.RemoteAddr().String())),
		reader: resp.NewReader(conn),
		writer: resp.NewWriter(conn),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run drives the connection until it closes or a protocol error occurs.
// It blocks the calling goroutine; callers run it via `go session.Run()`
// from the accept loop, one goroutine per connection per spec §5.
func (s *Session) Run() {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ConnectionsActive.Inc()
		s.deps.Metrics.ConnectionsTotal.Inc()
		defer s.deps.Metrics.ConnectionsActive.Dec()
	}
	defer s.cleanup()

	cmds := make(chan [][]byte)
	readErr := make(chan error, 1)
	go s.readLoop(cmds, readErr)

	for {
		select {
		case argv, ok := <-cmds:
			if !ok {
				return
			}
			if argv == nil {
				continue
			}
			s.dispatch(argv)
		case err := <-readErr:
			if errors.Is(err, resp.ErrProtocol) {
				s.write(resp.ErrorReply(rerr.ErrProtocol.Error()))
			} else if err != nil && !errors.Is(err, io.EOF) {
				s.log.Debug("connection read error", zap.Error(err))
			}
			return
		}
	}
}

func (s *Session) readLoop(cmds chan<- [][]byte, errc chan<- error) {
	defer close(cmds)
	for {
		argv, err := s.reader.ReadCommand()
		if err != nil {
			// Cancel first so a BLPOP/XREAD BLOCK parked in the processor
			// goroutine is aborted when the client goes away.
			s.cancel()
			errc <- err
			return
		}
		select {
		case cmds <- argv:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) cleanup() {
	s.cancel()
	s.txn.Reset()
	s.deps.PubSub.Disconnect(s)
	if s.replicaLink != nil {
		s.deps.Repl.Detach(s.replicaLink)
	}
	s.conn.Close()
	s.log.Debug("connection closed")
}

// write sends v to the client, serialized against concurrent writers (the
// pub/sub fan-out and the replication link both write to the same
// connection's underlying socket from other goroutines).
func (s *Session) write(v resp.Value) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.writer.WriteValue(v)
}

// rawWriter serializes direct writes to the connection's socket under the
// same lock as write, so a promoted replica link (which writes pre-encoded
// frames rather than resp.Value replies) can't interleave bytes with a
// reply still in flight.
type rawWriter struct{ s *Session }

func (w rawWriter) Write(p []byte) (int, error) {
	w.s.wmu.Lock()
	defer w.s.wmu.Unlock()
	return w.s.conn.Write(p)
}

// SendMessage implements pubsub.Client: delivers a ["message", channel,
// payload] array to this connection, per spec §4.6.
func (s *Session) SendMessage(channel string, payload []byte) error {
	return s.write(resp.Array(
		resp.BulkString("message"),
		resp.BulkString(channel),
		resp.Bulk(payload),
	))
}

// blockingDeadline converts a Redis-style timeout argument (seconds, as a
// float-capable decimal, "0" meaning no deadline) into a time.Duration.
func blockingDeadline(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
