// Package blocking parks clients executing BLPOP or XREAD BLOCK and wakes
// them when a qualifying write lands, in the global per-key FIFO order
// spec §4.7 requires. There is no direct blocking-wait example in the
// retrieved pack (every retrieved repo is a client, proxy, or exporter), so
// this is built from first principles using Go channels as the "explicit
// wait record + notification primitive per waiter" spec §9 calls for,
// inside the same one-goroutine-per-connection model lukluk-rendang uses.
package blocking

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lukluk/redikv/internal/store"
)

type listResult struct {
	key   string
	value []byte
}

type listWaiter struct {
	seq       uint64
	keys      []string
	done      chan listResult
	delivered bool
}

type streamResult struct {
	streams map[string][]store.StreamEntry
}

type streamWaiter struct {
	seq       uint64
	keys      []string
	lastSeen  map[string]store.StreamID
	done      chan streamResult
	delivered bool
}

// Coordinator owns every parked waiter. All waiter-state transitions
// (registration, delivery, removal) happen under a single mutex: blocking
// commands are rare relative to the data-plane traffic they park against,
// so the simplicity of one global lock is worth more than per-key sharding
// here (spec §5 permits either).
type Coordinator struct {
	store *store.Store
	log   *logrus.Logger

	mu            sync.Mutex
	seq           uint64
	listWaiters   map[string][]*listWaiter
	streamWaiters map[string][]*streamWaiter
}

// SetStore rebinds the coordinator to s. Used once during startup wiring to
// break the New(store)/store.New(notifier) construction cycle: the
// coordinator is built first against a placeholder store, then rebound to
// the real store that was constructed with the coordinator as its notifier.
func (c *Coordinator) SetStore(s *store.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = s
}

func New(s *store.Store, log *logrus.Logger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		store:         s,
		log:           log,
		listWaiters:   make(map[string][]*listWaiter),
		streamWaiters: make(map[string][]*streamWaiter),
	}
}

// BLPop first attempts an immediate LPOP across keys in argument order; if
// none yields an element it parks the caller until woken, cancelled via
// ctx, or timeout elapses (timeout == 0 means no deadline). The sweep and
// the registration that follows it run under one unbroken c.mu critical
// section: NotifyListPush also takes c.mu before looking at
// c.listWaiters[key], so a push that lands between "sweep found nothing"
// and "waiter registered" cannot be missed — it either gets serviced by
// the sweep (it's already in the store) or blocks on c.mu until the
// waiter is registered and then wakes it. Dropping the lock in between, as
// the RPUSH/LPUSH call that notifies us does for its own map, would open
// exactly that gap.
func (c *Coordinator) BLPop(ctx context.Context, keys []string, timeout time.Duration) (key string, value []byte, ok bool) {
	c.mu.Lock()
	for _, k := range keys {
		popped, existed := c.store.List.LPop(k, 1)
		if existed && len(popped) > 0 {
			c.mu.Unlock()
			return k, popped[0], true
		}
	}

	c.seq++
	w := &listWaiter{seq: c.seq, keys: keys, done: make(chan listResult, 1)}
	for _, k := range keys {
		c.listWaiters[k] = append(c.listWaiters[k], w)
	}
	c.mu.Unlock()
	c.log.WithFields(logrus.Fields{"keys": keys, "seq": w.seq}).Debug("blpop: parked waiter")

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case res := <-w.done:
		return res.key, res.value, true
	case <-timeoutCh:
		return c.resolveListTimeout(w)
	case <-ctx.Done():
		return c.resolveListTimeout(w)
	}
}

func (c *Coordinator) resolveListTimeout(w *listWaiter) (string, []byte, bool) {
	c.mu.Lock()
	if w.delivered {
		c.mu.Unlock()
		res := <-w.done
		return res.key, res.value, true
	}
	c.removeListWaiterLocked(w)
	c.mu.Unlock()
	return "", nil, false
}

func (c *Coordinator) removeListWaiterLocked(w *listWaiter) {
	for _, k := range w.keys {
		waiters := c.listWaiters[k]
		for i, cur := range waiters {
			if cur == w {
				c.listWaiters[k] = append(waiters[:i], waiters[i+1:]...)
				break
			}
		}
		if len(c.listWaiters[k]) == 0 {
			delete(c.listWaiters, k)
		}
	}
}

// NotifyListPush is called by the list store after a successful
// RPUSH/LPUSH commits. A single push call can land more than one element,
// so this wakes the oldest waiter on key, attempts a pop on its behalf, and
// repeats for the next-oldest waiter as long as both elements and waiters
// remain — otherwise a batched push would only ever wake one of several
// parked callers, losing the rest's wakeup until some unrelated push
// happened to retrigger it. If a pop comes up empty (a competing waiter
// already drained the key, e.g. via an immediate BLPOP) the loop stops,
// per spec §4.7 step 3.
func (c *Coordinator) NotifyListPush(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		waiters := c.listWaiters[key]
		if len(waiters) == 0 {
			return
		}
		w := waiters[0]

		popped, existed := c.store.List.LPop(key, 1)
		if !existed {
			return
		}
		c.removeListWaiterLocked(w)
		w.delivered = true
		w.done <- listResult{key: key, value: popped[0]}
	}
}

// XReadBlock first checks each stream for entries newer than lastSeen; if
// any qualify it returns immediately. Otherwise it parks until woken,
// cancelled, or timeout elapses (timeout == 0 means no deadline). As with
// BLPop, the initial check and the registration run under one unbroken
// c.mu critical section so a concurrent NotifyStreamAppend (which also
// takes c.mu before consulting c.streamWaiters[key]) can never run in the
// gap between "found nothing" and "registered" and conclude there was no
// waiter to wake.
func (c *Coordinator) XReadBlock(ctx context.Context, keys []string, lastSeen map[string]store.StreamID, timeout time.Duration) (map[string][]store.StreamEntry, bool) {
	c.mu.Lock()
	if result := c.collectStreamEntries(keys, lastSeen); len(result) > 0 {
		c.mu.Unlock()
		return result, true
	}

	c.seq++
	w := &streamWaiter{seq: c.seq, keys: keys, lastSeen: lastSeen, done: make(chan streamResult, 1)}
	for _, k := range keys {
		c.streamWaiters[k] = append(c.streamWaiters[k], w)
	}
	c.mu.Unlock()
	c.log.WithFields(logrus.Fields{"keys": keys, "seq": w.seq}).Debug("xread: parked waiter")

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case res := <-w.done:
		return res.streams, true
	case <-timeoutCh:
		return c.resolveStreamTimeout(w)
	case <-ctx.Done():
		return c.resolveStreamTimeout(w)
	}
}

func (c *Coordinator) collectStreamEntries(keys []string, lastSeen map[string]store.StreamID) map[string][]store.StreamEntry {
	result := make(map[string][]store.StreamEntry)
	for _, k := range keys {
		entries := c.store.Stream.EntriesAfter(k, lastSeen[k])
		if len(entries) > 0 {
			result[k] = entries
		}
	}
	return result
}

func (c *Coordinator) resolveStreamTimeout(w *streamWaiter) (map[string][]store.StreamEntry, bool) {
	c.mu.Lock()
	if w.delivered {
		c.mu.Unlock()
		res := <-w.done
		return res.streams, true
	}
	c.removeStreamWaiterLocked(w)
	c.mu.Unlock()
	return nil, false
}

func (c *Coordinator) removeStreamWaiterLocked(w *streamWaiter) {
	for _, k := range w.keys {
		waiters := c.streamWaiters[k]
		for i, cur := range waiters {
			if cur == w {
				c.streamWaiters[k] = append(waiters[:i], waiters[i+1:]...)
				break
			}
		}
		if len(c.streamWaiters[k]) == 0 {
			delete(c.streamWaiters, k)
		}
	}
}

// NotifyStreamAppend wakes every waiter registered on key whose requested
// streams now have at least one qualifying entry. Unlike BLPOP, multiple
// XREAD BLOCK waiters on the same stream are independent readers, not
// competitors for a single item, so all qualifying waiters are woken.
func (c *Coordinator) NotifyStreamAppend(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	waiters := append([]*streamWaiter(nil), c.streamWaiters[key]...)
	for _, w := range waiters {
		if w.delivered {
			continue
		}
		result := c.collectStreamEntries(w.keys, w.lastSeen)
		if len(result) == 0 {
			continue
		}
		c.removeStreamWaiterLocked(w)
		w.delivered = true
		w.done <- streamResult{streams: result}
	}
}

// BlockedWaiterCount reports the number of distinct parked BLPOP and
// XREAD BLOCK callers, for the metrics gauge.
func (c *Coordinator) BlockedWaiterCount() (lists int, streams int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[uint64]struct{})
	for _, ws := range c.listWaiters {
		for _, w := range ws {
			seen[w.seq] = struct{}{}
		}
	}
	lists = len(seen)
	seen = make(map[uint64]struct{})
	for _, ws := range c.streamWaiters {
		for _, w := range ws {
			seen[w.seq] = struct{}{}
		}
	}
	streams = len(seen)
	return lists, streams
}
