package store

import (
	"testing"
	"time"

	"github.com/lukluk/redikv/internal/rerr"
	"github.com/stretchr/testify/require"
)

func TestKVSetGet(t *testing.T) {
	kv := NewKV()
	kv.Set("k", []byte("v"), time.Time{}, false)
	v, ok := kv.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", string(v))
}

func TestKVExpiry(t *testing.T) {
	kv := NewKV()
	kv.Set("k", []byte("v"), time.Now().Add(-time.Millisecond), true)
	_, ok := kv.Get("k")
	require.False(t, ok)
}

func TestKVIncr(t *testing.T) {
	kv := NewKV()
	n, err := kv.Incr("ctr")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = kv.Incr("ctr")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	kv.Set("bad", []byte("notanumber"), time.Time{}, false)
	_, err = kv.Incr("bad")
	require.Error(t, err)
}

func TestListPushRange(t *testing.T) {
	l := NewList(nil)
	l.RPush("k", []byte("a"), []byte("b"), []byte("c"))
	got := l.LRange("k", 0, -1)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, got)
}

func TestListLeftPushOrder(t *testing.T) {
	l := NewList(nil)
	l.LPush("k", []byte("a"), []byte("b"), []byte("c"))
	got := l.LRange("k", 0, -1)
	require.Equal(t, [][]byte{[]byte("c"), []byte("b"), []byte("a")}, got)
}

func TestListPopDeletesWhenEmpty(t *testing.T) {
	l := NewList(nil)
	l.RPush("k", []byte("a"))
	popped, existed := l.LPop("k", 5)
	require.True(t, existed)
	require.Equal(t, [][]byte{[]byte("a")}, popped)
	require.False(t, l.Exists("k"))

	_, existed = l.LPop("missing", 1)
	require.False(t, existed)
}

func TestListRangeBoundaries(t *testing.T) {
	l := NewList(nil)
	l.RPush("k", []byte("a"), []byte("b"), []byte("c"))
	require.Nil(t, l.LRange("k", 10, 20))
	require.Equal(t, [][]byte{[]byte("c")}, l.LRange("k", -1, -1))
}

func TestZSetAddUpdateRank(t *testing.T) {
	z := NewZSet()
	require.True(t, z.ZAdd("k", "m", 1))
	require.False(t, z.ZAdd("k", "m", 2))

	score, ok := z.ZScore("k", "m")
	require.True(t, ok)
	require.Equal(t, 2.0, score)
}

func TestZSetOrdering(t *testing.T) {
	z := NewZSet()
	z.ZAdd("k", "b", 1)
	z.ZAdd("k", "a", 1)
	z.ZAdd("k", "c", 0)

	members := z.ZRange("k", 0, -1)
	require.Equal(t, []string{"c", "a", "b"}, memberNames(members))

	rank, ok := z.ZRank("k", "a")
	require.True(t, ok)
	require.Equal(t, int64(1), rank)
}

func TestZSetRemDeletesEmptyKey(t *testing.T) {
	z := NewZSet()
	z.ZAdd("k", "m", 1)
	require.True(t, z.ZRem("k", "m"))
	require.False(t, z.Exists("k"))
	require.False(t, z.ZRem("k", "m"))
}

func memberNames(ms []Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Member
	}
	return out
}

func TestStreamXAddMonotonic(t *testing.T) {
	s := NewStream(nil)
	id1, err := s.XAdd("s", "2000-0", [][2]string{{"x", "1"}})
	require.NoError(t, err)
	require.Equal(t, StreamID{2000, 0}, id1)

	_, err = s.XAdd("s", "1000-0", [][2]string{{"y", "2"}})
	require.Error(t, err)

	entries := s.XRange("s", minStreamID, maxStreamID)
	require.Len(t, entries, 1)
	require.Equal(t, "2000-0", entries[0].ID.String())
}

func TestStreamXAddZeroRejected(t *testing.T) {
	s := NewStream(nil)
	_, err := s.XAdd("s", "0-0", nil)
	require.ErrorIs(t, err, rerr.ErrXaddZero)
}

func TestStreamStarAutoSeq(t *testing.T) {
	s := NewStream(nil)
	id1, err := s.XAdd("s", "5-*", nil)
	require.NoError(t, err)
	require.Equal(t, StreamID{5, 0}, id1)

	id2, err := s.XAdd("s", "5-*", nil)
	require.NoError(t, err)
	require.Equal(t, StreamID{5, 1}, id2)
}

func TestStoreTypeAndDel(t *testing.T) {
	st := New(nil)
	st.KV.Set("str", []byte("v"), time.Time{}, false)
	st.List.RPush("lst", []byte("a"))

	require.Equal(t, "string", st.Type("str"))
	require.Equal(t, "list", st.Type("lst"))
	require.Equal(t, "none", st.Type("missing"))

	require.Equal(t, int64(2), st.Del("str", "lst", "missing"))
	require.Equal(t, "none", st.Type("str"))
}

func TestStoreSetStringOverwritesOtherType(t *testing.T) {
	st := New(nil)
	st.List.RPush("k", []byte("a"), []byte("b"))
	require.Equal(t, "list", st.Type("k"))

	st.SetString("k", []byte("v"), time.Time{}, false)
	require.Equal(t, "string", st.Type("k"))
	require.False(t, st.List.Exists("k"))

	v, ok := st.KV.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", string(v))
}

func TestStoreKeysGlob(t *testing.T) {
	st := New(nil)
	st.KV.Set("foo:1", []byte("v"), time.Time{}, false)
	st.KV.Set("foo:2", []byte("v"), time.Time{}, false)
	st.KV.Set("bar", []byte("v"), time.Time{}, false)

	got := st.Keys("foo:*")
	require.ElementsMatch(t, []string{"foo:1", "foo:2"}, got)
}
