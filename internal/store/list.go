package store

import "sync"

// List holds keyed ordered sequences of byte strings; empty lists are
// deleted so the key disappears once drained. Grounded on messdev072's
// shard.go LPush/RPush/LRange dispatch shape, adapted from a channel-actor
// store into a mutex-guarded one.
type List struct {
	mu       sync.Mutex
	data     map[string][][]byte
	notifier Notifier
}

func NewList(n Notifier) *List {
	if n == nil {
		n = noopNotifier{}
	}
	return &List{data: make(map[string][][]byte), notifier: n}
}

// RPush appends elems in argument order and returns the resulting length.
func (s *List) RPush(key string, elems ...[]byte) int64 {
	s.mu.Lock()
	s.data[key] = append(s.data[key], elems...)
	n := int64(len(s.data[key]))
	s.mu.Unlock()
	s.notifier.NotifyListPush(key)
	return n
}

// LPush prepends elems left-to-right, so `lpush k a b c` yields head order
// c, b, a ahead of any prior head.
func (s *List) LPush(key string, elems ...[]byte) int64 {
	s.mu.Lock()
	cur := s.data[key]
	fresh := make([][]byte, 0, len(elems)+len(cur))
	for i := len(elems) - 1; i >= 0; i-- {
		fresh = append(fresh, elems[i])
	}
	fresh = append(fresh, cur...)
	s.data[key] = fresh
	n := int64(len(fresh))
	s.mu.Unlock()
	s.notifier.NotifyListPush(key)
	return n
}

// LPop pops up to count elements from the head. existed reports whether the
// key was present before the call (so the caller can reply null on a
// missing key vs. an empty result).
func (s *List) LPop(key string, count int) (popped [][]byte, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.data[key]
	if !ok {
		return nil, false
	}
	if count > len(cur) {
		count = len(cur)
	}
	popped = append(popped, cur[:count]...)
	rest := cur[count:]
	if len(rest) == 0 {
		delete(s.data, key)
	} else {
		s.data[key] = rest
	}
	return popped, true
}

func (s *List) LLen(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.data[key]))
}

// LRange normalizes negative indices from the tail, clamps stop to
// length-1, and returns empty when start is beyond the list or start>stop.
func (s *List) LRange(key string, start, stop int64) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.data[key]
	length := int64(len(cur))
	if length == 0 {
		return nil
	}
	start, stop = normalizeRange(start, stop, length)
	if start > stop {
		return nil
	}
	out := make([][]byte, stop-start+1)
	copy(out, cur[start:stop+1])
	return out
}

func (s *List) Del(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	delete(s.data, key)
	return ok
}

func (s *List) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func (s *List) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out
}

// normalizeRange converts list/zset-style possibly-negative start/stop
// indices into clamped, non-negative bounds over a sequence of the given
// length. Shared by List.LRange and ZSet.ZRange.
func normalizeRange(start, stop, length int64) (int64, int64) {
	if start < 0 {
		start += length
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += length
		if stop < 0 {
			stop = -1
		}
	}
	if start >= length {
		return 1, 0 // empty range: start>stop
	}
	if stop >= length {
		stop = length - 1
	}
	return start, stop
}
