// Package store implements the core keyed data types: strings with TTL,
// lists, sorted sets, and streams, plus the cross-store operations (TYPE,
// DEL, KEYS, EXISTS, DBSIZE) spec §4.2 and §9 say must consult all four.
package store

import (
	"strings"
	"time"
)

// Store aggregates the four independent per-type stores into the single
// flat key namespace spec §3 describes: a key resolves to exactly one type.
type Store struct {
	KV     *KV
	List   *List
	ZSet   *ZSet
	Stream *Stream
}

func New(notifier Notifier) *Store {
	return &Store{
		KV:     NewKV(),
		List:   NewList(notifier),
		ZSet:   NewZSet(),
		Stream: NewStream(notifier),
	}
}

// Type dispatches to each store in turn; re-typing happens only by creation
// after removal, so at most one store holds a live entry for key.
func (s *Store) Type(key string) string {
	switch {
	case s.KV.Exists(key):
		return "string"
	case s.List.Exists(key):
		return "list"
	case s.ZSet.Exists(key):
		return "zset"
	case s.Stream.Exists(key):
		return "stream"
	default:
		return "none"
	}
}

// SetString writes value as a string at key, first clearing any list/zset/
// stream entry that key previously held — SET always overwrites regardless
// of the key's prior type (DESIGN.md Open Question #1).
func (s *Store) SetString(key string, value []byte, expireAt time.Time, hasExpire bool) {
	s.List.Del(key)
	s.ZSet.Del(key)
	s.Stream.Del(key)
	s.KV.Set(key, value, expireAt, hasExpire)
}

// Del removes key from whichever store holds it, across all given keys,
// returning the count actually removed.
func (s *Store) Del(keys ...string) int64 {
	var n int64
	for _, k := range keys {
		if s.KV.Del(k) {
			n++
			continue
		}
		if s.List.Del(k) {
			n++
			continue
		}
		if s.ZSet.Del(k) {
			n++
			continue
		}
		if s.Stream.Del(k) {
			n++
		}
	}
	return n
}

// Exists returns the count of the given keys that are present in any store.
func (s *Store) Exists(keys ...string) int64 {
	var n int64
	for _, k := range keys {
		if s.KV.Exists(k) || s.List.Exists(k) || s.ZSet.Exists(k) || s.Stream.Exists(k) {
			n++
		}
	}
	return n
}

// Keys returns all keys across stores matching pattern. Only "*" wildcards
// (any number of them) are interpreted; "?" and character classes are
// matched as literal characters (DESIGN.md Open Question #2).
func (s *Store) Keys(pattern string) []string {
	all := make([]string, 0)
	all = append(all, s.KV.Keys()...)
	all = append(all, s.List.Keys()...)
	all = append(all, s.ZSet.Keys()...)
	all = append(all, s.Stream.Keys()...)

	if pattern == "*" || pattern == "" {
		return all
	}

	out := make([]string, 0, len(all))
	for _, k := range all {
		if globMatch(pattern, k) {
			out = append(out, k)
		}
	}
	return out
}

// DBSize returns the total live key count across all four stores.
func (s *Store) DBSize() int64 {
	return int64(len(s.KV.Keys()) + len(s.List.Keys()) + len(s.ZSet.Keys()) + len(s.Stream.Keys()))
}

// globMatch matches pattern against s where pattern is a literal string
// with zero or more '*' wildcards, each matching any (possibly empty) run
// of characters.
func globMatch(pattern, s string) bool {
	segments := strings.Split(pattern, "*")
	if len(segments) == 1 {
		return pattern == s
	}

	if !strings.HasPrefix(s, segments[0]) {
		return false
	}
	s = s[len(segments[0]):]

	last := len(segments) - 1
	if !strings.HasSuffix(s, segments[last]) {
		return false
	}
	if last > 0 {
		s = s[:len(s)-len(segments[last])]
	}

	for _, seg := range segments[1:last] {
		if seg == "" {
			continue
		}
		idx := strings.Index(s, seg)
		if idx < 0 {
			return false
		}
		s = s[idx+len(seg):]
	}
	return true
}

// Exported stream-id parsing helpers for the command layer.

func ParseStreamID(s string) (StreamID, error) { return parseStreamID(s) }

func ParseRangeLower(s string) (StreamID, error) { return parseRangeLower(s) }

func ParseRangeUpper(s string) (StreamID, error) { return parseRangeUpper(s) }

func MinStreamID() StreamID { return minStreamID }
