package store

import (
	"sync"
	"time"

	"github.com/lukluk/redikv/internal/rerr"
)

// StreamEntry is one appended record: an id plus ordered field/value pairs.
type StreamEntry struct {
	ID     StreamID
	Fields [][2]string
}

type streamLog struct {
	entries []StreamEntry
	last    StreamID
}

// Stream holds keyed append-only logs of (id, field-value pairs) with
// strictly increasing ids. Grounded on evanstukalov-redis-in-go's
// XAddCommand/XRangeCommand/XReadCommand id-resolution and reply shapes.
type Stream struct {
	mu       sync.Mutex
	data     map[string]*streamLog
	notifier Notifier
	nowFunc  func() time.Time
}

func NewStream(n Notifier) *Stream {
	if n == nil {
		n = noopNotifier{}
	}
	return &Stream{data: make(map[string]*streamLog), notifier: n, nowFunc: time.Now}
}

// XAdd resolves idSpec against the stream's last id per spec §4.5 and, on
// success, appends the entry and notifies the coordinator.
func (s *Stream) XAdd(key, idSpec string, fields [][2]string) (StreamID, error) {
	s.mu.Lock()
	log, ok := s.data[key]
	if !ok {
		log = &streamLog{}
	}
	id, err := s.resolveID(log.last, idSpec)
	if err != nil {
		s.mu.Unlock()
		return StreamID{}, err
	}
	if id.IsZero() {
		s.mu.Unlock()
		return StreamID{}, rerr.ErrXaddZero
	}
	log.entries = append(log.entries, StreamEntry{ID: id, Fields: fields})
	log.last = id
	s.data[key] = log
	s.mu.Unlock()

	s.notifier.NotifyStreamAppend(key)
	return id, nil
}

func (s *Stream) resolveID(last StreamID, idSpec string) (StreamID, error) {
	nowMs := uint64(s.nowFunc().UnixMilli())

	if idSpec == "*" {
		ms := nowMs
		if ms < last.Ms {
			ms = last.Ms
		}
		seq := uint64(0)
		if ms == last.Ms {
			seq = last.Seq + 1
		}
		return StreamID{Ms: ms, Seq: seq}, nil
	}

	ms, seq, hasSeq, err := splitID(idSpec)
	if err != nil {
		return StreamID{}, err
	}
	if !hasSeq {
		// "<ms>-*"
		if ms < last.Ms {
			return StreamID{}, rerr.ErrXaddSmaller
		}
		s := uint64(0)
		if ms == last.Ms {
			s = last.Seq + 1
		}
		return StreamID{Ms: ms, Seq: s}, nil
	}

	id := StreamID{Ms: ms, Seq: seq}
	if id.IsZero() {
		return StreamID{}, rerr.ErrXaddZero
	}
	if !last.Less(id) {
		return StreamID{}, rerr.ErrXaddSmaller
	}
	return id, nil
}

// XRange returns entries with from <= id <= to, inclusive, ascending.
func (s *Stream) XRange(key string, from, to StreamID) []StreamEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.data[key]
	if !ok {
		return nil
	}
	var out []StreamEntry
	for _, e := range log.entries {
		if from.LessEqual(e.ID) && e.ID.LessEqual(to) {
			out = append(out, e)
		}
	}
	return out
}

// EntriesAfter returns entries with id strictly greater than after.
func (s *Stream) EntriesAfter(key string, after StreamID) []StreamEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.data[key]
	if !ok {
		return nil
	}
	var out []StreamEntry
	for _, e := range log.entries {
		if after.Less(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// LastID returns the stream's current top id, used to capture the "$"
// sentinel's last_seen at XREAD BLOCK registration time.
func (s *Stream) LastID(key string) StreamID {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.data[key]
	if !ok {
		return minStreamID
	}
	return log.last
}

func (s *Stream) Del(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	delete(s.data, key)
	return ok
}

func (s *Stream) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func (s *Stream) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out
}
