package store

import (
	"sort"
	"sync"
)

// Member is a single (member, score) pair as returned by ZRange.
type Member struct {
	Member string
	Score  float64
}

func lessMember(a, b Member) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Member < b.Member
}

type zsetEntry struct {
	scores  map[string]float64
	ordered []Member // kept sorted by (score, member) for O(log n) rank/range
}

func (e *zsetEntry) indexOf(m Member) int {
	return sort.Search(len(e.ordered), func(i int) bool {
		return !lessMember(e.ordered[i], m)
	})
}

func (e *zsetEntry) insert(m Member) {
	i := e.indexOf(m)
	e.ordered = append(e.ordered, Member{})
	copy(e.ordered[i+1:], e.ordered[i:])
	e.ordered[i] = m
}

func (e *zsetEntry) remove(m Member) {
	i := e.indexOf(m)
	if i < len(e.ordered) && e.ordered[i] == m {
		e.ordered = append(e.ordered[:i], e.ordered[i+1:]...)
	}
}

// ZSet holds keyed sets ordered by (score ascending, member lexicographic
// ascending), with at most one entry per member. Grounded on messdev072's
// shard.go ZAdd/ZRange(WITHSCORES) operation set; the spec requires
// correctness over a specific structure, so membership is a hash map for
// O(1) score lookup and a maintained sorted slice for O(log n) rank/range.
type ZSet struct {
	mu   sync.Mutex
	data map[string]*zsetEntry
}

func NewZSet() *ZSet {
	return &ZSet{data: make(map[string]*zsetEntry)}
}

// ZAdd inserts or updates member's score, returning true when member is new.
func (s *ZSet) ZAdd(key, member string, score float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		e = &zsetEntry{scores: make(map[string]float64)}
		s.data[key] = e
	}
	old, existed := e.scores[member]
	if existed {
		if old == score {
			return false
		}
		e.remove(Member{Member: member, Score: old})
	}
	e.scores[member] = score
	e.insert(Member{Member: member, Score: score})
	return !existed
}

func (s *ZSet) ZScore(key, member string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return 0, false
	}
	score, ok := e.scores[member]
	return score, ok
}

// ZRank returns member's 0-based position in (score, member) order.
func (s *ZSet) ZRank(key, member string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return 0, false
	}
	score, ok := e.scores[member]
	if !ok {
		return 0, false
	}
	i := e.indexOf(Member{Member: member, Score: score})
	return int64(i), true
}

func (s *ZSet) ZCard(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return 0
	}
	return int64(len(e.ordered))
}

// ZRange uses the same negative-index/clamping semantics as List.LRange.
func (s *ZSet) ZRange(key string, start, stop int64) []Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return nil
	}
	length := int64(len(e.ordered))
	if length == 0 {
		return nil
	}
	start, stop = normalizeRange(start, stop, length)
	if start > stop {
		return nil
	}
	out := make([]Member, stop-start+1)
	copy(out, e.ordered[start:stop+1])
	return out
}

// ZRem removes member, deleting the key once cardinality reaches zero.
func (s *ZSet) ZRem(key, member string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return false
	}
	score, ok := e.scores[member]
	if !ok {
		return false
	}
	delete(e.scores, member)
	e.remove(Member{Member: member, Score: score})
	if len(e.scores) == 0 {
		delete(s.data, key)
	}
	return true
}

func (s *ZSet) Del(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	delete(s.data, key)
	return ok
}

func (s *ZSet) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func (s *ZSet) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out
}
