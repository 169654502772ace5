// Package txn implements the per-client MULTI/EXEC/DISCARD queueing state
// machine. Grounded on faizanhussain2310-GoRedis's transaction.go
// (Transaction/TransactionManager, QueuedCommand, +QUEUED/+OK/error
// replies) with the WatchedKeys/Dirty machinery dropped: WATCH is a no-op
// here per spec Non-goals (DESIGN.md Open Question #3).
package txn

import "github.com/lukluk/redikv/internal/rerr"

// QueuedCommand is one command captured while a client is InMulti.
type QueuedCommand struct {
	Argv [][]byte
}

// Buffer holds one client's transaction state.
type Buffer struct {
	inMulti bool
	queue   []QueuedCommand
}

func (b *Buffer) InMulti() bool { return b.inMulti }

// Multi enters InMulti and clears the queue, or reports the nested-MULTI
// error without leaving InMulti.
func (b *Buffer) Multi() error {
	if b.inMulti {
		return rerr.ErrMultiNested
	}
	b.inMulti = true
	b.queue = b.queue[:0]
	return nil
}

// Queue appends argv to the buffer; callers only invoke this once InMulti
// is confirmed true.
func (b *Buffer) Queue(argv [][]byte) {
	b.queue = append(b.queue, QueuedCommand{Argv: argv})
}

// Discard clears the queue and leaves InMulti, or reports the
// without-MULTI error.
func (b *Buffer) Discard() error {
	if !b.inMulti {
		return rerr.ErrDiscardNoMulti
	}
	b.inMulti = false
	b.queue = nil
	return nil
}

// Exec leaves InMulti and returns the queued commands for the dispatcher to
// run, or reports the without-MULTI error.
func (b *Buffer) Exec() ([]QueuedCommand, error) {
	if !b.inMulti {
		return nil, rerr.ErrExecWithoutMulti
	}
	b.inMulti = false
	queue := b.queue
	b.queue = nil
	return queue, nil
}

// Reset discards any in-flight transaction without error, used on
// disconnect and on RESET.
func (b *Buffer) Reset() {
	b.inMulti = false
	b.queue = nil
}
