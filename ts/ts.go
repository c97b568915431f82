// Package ts implements the even/odd timestamp algebra shared by the distq
// transaction and peer clocks: an even value is tentative and may still
// grow, an odd value is committed and frozen. A tick always advances by 2,
// so the LSB alone communicates "freeze" without a companion flag.
package ts

import (
	"sync/atomic"

	"github.com/ailidani/bus1/internal/log"
)

// Committed reports whether v carries the committed (odd) bit.
func Committed(v int64) bool {
	return v&1 != 0
}

// ForceSync atomically raises t to at least to. to must be even (tentative);
// the call is undefined (and logged) if t is already committed, since a
// committed timestamp must never change again.
//
// No ordering is provided beyond what CompareAndSwap guarantees at the
// memory-model level: synchronizing the scalar publishes no other state, so
// relaxed semantics are sufficient (the one ordering edge that matters,
// n_committed's release/acquire, lives in the distq package).
func ForceSync(t *atomic.Int64, to int64) {
	if Committed(to) {
		log.Warningf("ts: ForceSync target %d is committed", to)
	}
	for {
		v := t.Load()
		if v >= to {
			return
		}
		if Committed(v) {
			log.Warningf("ts: ForceSync on already-committed timestamp %d", v)
			return
		}
		if t.CompareAndSwap(v, to) {
			return
		}
	}
}

// TrySync behaves like ForceSync, but leaves a committed t untouched. It
// returns the value of t after the operation (which may be below to if t
// was already committed at a lower value).
func TrySync(t *atomic.Int64, to int64) int64 {
	if Committed(to) {
		log.Warningf("ts: TrySync target %d is committed", to)
	}
	for {
		v := t.Load()
		if v >= to || Committed(v) {
			return v
		}
		if t.CompareAndSwap(v, to) {
			return to
		}
	}
}
