package distq

import (
	"sync/atomic"

	"github.com/ailidani/bus1/ts"
)

// TX represents one atomically-ordered multicast. It holds a single atomic
// timestamp and a reference count; once committed (LSB set) the timestamp
// never changes again.
type TX struct {
	refs      atomic.Int32
	timestamp atomic.Int64
}

// NewTX allocates a zero-value, unclaimed transaction.
func NewTX() *TX {
	return &TX{}
}

// Claim initializes a freshly allocated TX's refcount to 1.
func (tx *TX) Claim() {
	assertf(tx.refs.Load() == 0, "distq: tx claimed with non-zero refcount")
	tx.refs.Store(1)
}

// Ref adds a strong reference and returns tx, for chaining.
func (tx *TX) Ref() *TX {
	if tx != nil {
		tx.refs.Add(1)
	}
	return tx
}

// Unref drops a strong reference. It reports whether this was the last one,
// so callers with no GC-independent teardown step can detect double-frees.
func (tx *TX) Unref() bool {
	if tx == nil {
		return false
	}
	return tx.refs.Add(-1) == 0
}

// RefCount returns the current reference count, for invariant checks in tests.
func (tx *TX) RefCount() int32 {
	return tx.refs.Load()
}

// Timestamp returns the current value: even/tentative until Commit runs,
// odd/frozen afterwards.
func (tx *TX) Timestamp() int64 {
	return tx.timestamp.Load()
}

// Committed reports whether the transaction's timestamp has been frozen.
func (tx *TX) Committed() bool {
	return ts.Committed(tx.timestamp.Load())
}

// Commit forward-syncs tx's timestamp to at least sender's clock, then
// freezes it by incrementing it by one (flipping the LSB). The
// acquire/release edge that matters lives on n_committed, not here, so
// relaxed ordering is sufficient.
func (tx *TX) Commit(sender *Peer) {
	ts.ForceSync(&tx.timestamp, sender.clock.Load())
	tx.timestamp.Add(1)
}
