package replication

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReplicaOf names the master a server was started against via
// --replicaof, putting the server in replica mode per spec §4.9.
type ReplicaOf struct {
	Host string
	Port int
}

// Manager owns the replication log, the attached replica links, and this
// server's own replica-mode state. One Manager is shared across every
// connection. Grounded on faizanhussain2310-GoRedis's ReplicationManager
// (GetInfo/AddReplica/role bookkeeping), trimmed of the RDB-snapshot and
// partial-resync machinery spec §4.9 does not require: this server only
// performs the "start streaming log entries" handshake side effect, never
// a backlog-based partial resync.
type Manager struct {
	runID     string
	log       *Log
	replicaOf *ReplicaOf
	logger    *logrus.Logger

	mu    sync.Mutex
	links map[*Link]struct{}
}

func NewManager(replicaOf *ReplicaOf, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{
		runID:     uuid.NewString(),
		log:       NewLog(),
		replicaOf: replicaOf,
		logger:    logger,
		links:     make(map[*Link]struct{}),
	}
}

// IsReplica reports whether this server was started with --replicaof,
// i.e. whether spec §4.9's write-protection applies.
func (m *Manager) IsReplica() bool { return m.replicaOf != nil }

func (m *Manager) ReplicaOf() *ReplicaOf { return m.replicaOf }

func (m *Manager) RunID() string { return m.runID }

// Capture appends argv to the replication log; callers invoke this only
// after the mutation it describes has committed, per spec §4.9.
func (m *Manager) Capture(argv [][]byte) {
	m.log.Append(argv)
}

// StartFullResync registers a new replica link starting from the log's
// current tail (this server keeps no RDB snapshot, so every attach is
// logically a "full resync" whose payload is simply "stream from now
// on" — spec §4.9 only requires the handshake's observable side effect,
// not byte-for-byte RDB compatibility) and returns the run id and offset
// the PSYNC handshake's +FULLRESYNC reply names. The link's delivery
// goroutine is not started yet — the caller must write its +FULLRESYNC
// reply and then call link.Start(), so no replicated frame can reach the
// wire ahead of the handshake reply it belongs after.
func (m *Manager) StartFullResync(addr string, w io.Writer) (runID string, offset int64, link *Link) {
	offset = m.log.Offset()
	link = NewLink(addr, w, m.log, offset, m.logger)

	m.mu.Lock()
	m.links[link] = struct{}{}
	m.mu.Unlock()

	return m.runID, offset, link
}

// Detach stops and forgets link, called when its owning connection closes.
func (m *Manager) Detach(link *Link) {
	link.Stop()
	m.mu.Lock()
	delete(m.links, link)
	m.mu.Unlock()
}

// ConnectedReplicas reports the current attached-link count, for INFO and
// the metrics gauge.
func (m *Manager) ConnectedReplicas() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links)
}

// Offset reports the replication log's current tail offset, for the
// metrics gauge.
func (m *Manager) Offset() int64 {
	return m.log.Offset()
}

// InfoReplication renders the "# Replication" section text INFO returns.
func (m *Manager) InfoReplication() string {
	var b strings.Builder
	b.WriteString("# Replication\r\n")
	if m.IsReplica() {
		b.WriteString("role:slave\r\n")
		fmt.Fprintf(&b, "master_host:%s\r\n", m.replicaOf.Host)
		fmt.Fprintf(&b, "master_port:%d\r\n", m.replicaOf.Port)
		b.WriteString("master_link_status:up\r\n")
	} else {
		b.WriteString("role:master\r\n")
		fmt.Fprintf(&b, "connected_slaves:%d\r\n", m.ConnectedReplicas())
	}
	fmt.Fprintf(&b, "master_replid:%s\r\n", m.runID)
	fmt.Fprintf(&b, "master_repl_offset:%d\r\n", m.log.Offset())
	return b.String()
}

// CapturingCommands lists the write commands spec §4.9 names as captured
// into the replication log; the session dispatcher consults this to
// decide whether a just-executed command should be replicated.
var CapturingCommands = map[string]bool{
	"SET": true, "DEL": true, "INCR": true,
	"RPUSH": true, "LPUSH": true, "LPOP": true,
	"ZADD": true, "ZREM": true, "XADD": true,
	"PUBLISH": true,
}
