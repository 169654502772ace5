// Package server owns the TCP accept loop: listening for connections,
// spawning one session.Session per connection, and shutting down cleanly
// on SIGINT/SIGTERM. Grounded on lukluk-rendang's RedisProxy.Start/
// handleConnection — the same net.Listen-then-Accept-loop-then-
// signal.Notify shape, generalized from "dial a second connection and
// forward bytes" into "hand the connection to a Session".
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lukluk/redikv/internal/session"
)

// metricsSampleInterval is how often Run polls the coordinator and
// replication manager to refresh the gauges that have no natural
// update-on-event site (blocked waiter counts, attached replica links,
// replication offset).
const metricsSampleInterval = time.Second

// Server listens for client connections and drives their sessions.
type Server struct {
	addr        string
	metricsAddr string
	deps        session.Deps
	log         *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
	ready    chan struct{}
}

func New(addr, metricsAddr string, deps session.Deps, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{addr: addr, metricsAddr: metricsAddr, deps: deps, log: log, ready: make(chan struct{})}
}

// Run listens on s.addr and blocks accepting connections until a SIGINT or
// SIGTERM arrives (or Close is called), at which point it closes the
// listener, waits for every open connection's session to end, and returns
// nil. Shutdown does not close open client connections, so Run returns
// only once those clients have disconnected.
func (s *Server) Run() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	close(s.ready)
	defer listener.Close()

	s.log.Info("listening", zap.String("addr", listener.Addr().String()))

	if s.metricsAddr != "" && s.deps.Metrics != nil {
		go s.serveMetrics()
	}
	if s.deps.Metrics != nil {
		sampleCtx, cancelSample := context.WithCancel(context.Background())
		defer cancelSample()
		go s.sampleMetrics(sampleCtx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		s.log.Info("shutting down")
		s.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.wg.Wait()
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Close stops accepting new connections; Run returns once the blocked
// Accept call unblocks and every open session has ended.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}

// Addr blocks until Run has bound its listener and returns its address;
// used by tests that bind to ":0" and need the actual chosen port.
func (s *Server) Addr() net.Addr {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener.Addr()
}

func (s *Server) handleConnection(conn net.Conn) {
	s.log.Debug("connection accepted", zap.String("remote", conn.RemoteAddr().String()))
	deps := s.deps
	deps.Logger = s.log
	sess := session.New(conn, deps)
	sess.Run()
}

// sampleMetrics periodically refreshes the gauges that reflect point-in-time
// coordinator/replication state rather than a discrete event — there is no
// single call site to update them from, so Run polls instead.
func (s *Server) sampleMetrics(ctx context.Context) {
	ticker := time.NewTicker(metricsSampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lists, streams := s.deps.Coord.BlockedWaiterCount()
			s.deps.Metrics.BlockedListWaiters.Set(float64(lists))
			s.deps.Metrics.BlockedXReadWaiters.Set(float64(streams))
			s.deps.Metrics.ReplicaLinks.Set(float64(s.deps.Repl.ConnectedReplicas()))
			s.deps.Metrics.ReplicationOffset.Set(float64(s.deps.Repl.Offset()))
		}
	}
}

func (s *Server) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.deps.Metrics.Handler())
	if err := http.ListenAndServe(s.metricsAddr, mux); err != nil && err != http.ErrServerClosed {
		s.log.Warn("metrics server stopped", zap.Error(err))
	}
}
