package store

import (
	"strconv"
	"sync"
	"time"

	"github.com/lukluk/redikv/internal/rerr"
)

type kvEntry struct {
	value     []byte
	expireAt  time.Time
	hasExpire bool
}

func (e kvEntry) expired(now time.Time) bool {
	return e.hasExpire && !e.expireAt.After(now)
}

// KV holds keyed byte strings with an optional absolute expiry, lazily
// evicted on read. Grounded on evanstukalov-redis-in-go's store.Store
// Set/Get/Incr shape, reimplemented with an explicit expireAt field and a
// single RWMutex per the "single-writer/multi-reader per store" model.
type KV struct {
	mu   sync.RWMutex
	data map[string]kvEntry
}

func NewKV() *KV {
	return &KV{data: make(map[string]kvEntry)}
}

// Set always succeeds, overwriting any existing string entry for key;
// clearing a list/zset/stream entry of the same key is Store.SetString's
// job (Open Question #1 in DESIGN.md). hasExpire false means no TTL.
func (s *KV) Set(key string, value []byte, expireAt time.Time, hasExpire bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = kvEntry{value: value, expireAt: expireAt, hasExpire: hasExpire}
}

// Get applies lazy expiry before returning.
func (s *KV) Get(key string) ([]byte, bool) {
	now := time.Now()
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		s.mu.Lock()
		if cur, ok := s.data[key]; ok && cur.expired(time.Now()) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Incr parses the current value as a signed 64-bit integer (treating a
// missing key as "0") and stores value+1 as decimal text.
func (s *KV) Incr(key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var cur int64
	if e, ok := s.data[key]; ok && !e.expired(now) {
		n, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, rerr.ErrNotInteger
		}
		cur = n
	}
	next := cur + 1
	s.data[key] = kvEntry{value: []byte(strconv.FormatInt(next, 10))}
	return next, nil
}

// Del removes key if present, returning whether a live (unexpired) entry
// was removed.
func (s *KV) Del(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return false
	}
	delete(s.data, key)
	return !e.expired(time.Now())
}

// Exists reports whether key is present and unexpired, without removing it
// eagerly (Get's lazy-delete path still applies on the next read).
func (s *KV) Exists(key string) bool {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return !e.expired(time.Now())
}

// Keys returns all live keys in this store.
func (s *KV) Keys() []string {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.data))
	for k, e := range s.data {
		if !e.expired(now) {
			out = append(out, k)
		}
	}
	return out
}
