package replication

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Link is one attached replica connection: an offset cursor plus the raw
// writer it streams re-encoded frames to. A link's goroutine pulls frames
// from the shared Log in strict order and writes them one at a time,
// matching spec §4.9's "ordering to a given replica is strictly the log
// order"; a write failure detaches the link and the replica is left to
// reconnect, per spec.
type Link struct {
	Addr   string
	w      io.Writer
	log    *Log
	from   int64
	stop   chan struct{}
	logger *logrus.Entry
}

// NewLink constructs a Link streaming frames to w beginning at fromOffset,
// without starting its delivery goroutine yet — callers that need to write
// a handshake reply before any replicated bytes reach the same connection
// call Start once that reply is flushed. The returned Link's Stop method
// detaches it either before or after Start.
func NewLink(addr string, w io.Writer, log *Log, fromOffset int64, logger *logrus.Logger) *Link {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Link{
		Addr:   addr,
		w:      w,
		log:    log,
		from:   fromOffset,
		stop:   make(chan struct{}),
		logger: logger.WithField("component", "replication").WithField("replica", addr),
	}
}

// Start begins the link's delivery goroutine.
func (l *Link) Start() {
	go l.run(l.from)
}

func (l *Link) run(from int64) {
	l.logger.WithField("offset", from).Info("replica link attached")
	for {
		frames := l.log.Since(from, l.stop)
		if frames == nil {
			select {
			case <-l.stop:
				l.logger.Info("replica link detached")
				return
			default:
			}
		}
		for _, f := range frames {
			if _, err := l.w.Write(Encode(f)); err != nil {
				l.logger.WithError(err).Warn("replica link write failed, detaching")
				close(l.stop)
				return
			}
			from = f.Offset + 1
		}
	}
}

// Stop detaches the link without waiting for its goroutine to observe it.
func (l *Link) Stop() {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
}
