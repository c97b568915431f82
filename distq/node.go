package distq

import (
	"sync/atomic"

	"github.com/ailidani/bus1/internal/log"
	"github.com/ailidani/bus1/ts"
)

// tailNode is the distinguished non-nil sentinel meaning "empty but open"
// for the incoming/busy singly-linked lists. A plain nil would be
// indistinguishable from the closed state a finalized peer's incoming list
// is set to; see SPEC_FULL.md's design notes.
var tailNode = &Node{}

// Node is one pending delivery to one destination peer. It is normally
// embedded directly in the message/event struct that owns it (see
// SPEC_FULL.md §9) rather than allocated separately per delivery.
type Node struct {
	refs atomic.Int32

	// Userdata is an opaque tag the caller may use to distinguish node
	// kinds (e.g. message variant); distq never inspects it.
	Userdata int

	// Owner lets a caller that embeds Node inside a larger struct (the
	// intrusive-linkage pattern SPEC_FULL.md §9 asks for) recover that
	// struct from a bare *Node, e.g. one walked off a Finalize chain.
	// distq never inspects it.
	Owner interface{}

	tx        *TX
	nextQueue *Node // incoming/busy list link; owner-only once past queue()
	timestamp int64 // resolved ready-timestamp; 0 means "not yet resolved"
}

// Claim initializes a freshly allocated node's refcount to 1.
func (n *Node) Claim() {
	assertf(n.refs.Load() == 0, "distq: node claimed with non-zero refcount")
	n.refs.Store(1)
}

// Ref adds a strong reference and returns n, for chaining.
func (n *Node) Ref() *Node {
	if n != nil {
		n.refs.Add(1)
	}
	return n
}

// Unref drops a strong reference, reporting whether it was the last one.
func (n *Node) Unref() bool {
	if n == nil {
		return false
	}
	return n.refs.Add(-1) == 0
}

// RefCount returns the current reference count, for invariant checks in tests.
func (n *Node) RefCount() int32 {
	return n.refs.Load()
}

// TX returns the node's transaction, or nil once Finalize has run.
func (n *Node) TX() *TX {
	return n.tx
}

// Timestamp returns the resolved commit timestamp. Valid only once the node
// has appeared in a peer's ready set, i.e. after a Peek that returned it.
func (n *Node) Timestamp() int64 {
	return n.timestamp
}

// Finalize detaches and returns the node's TX reference, for the caller to
// drop once the node itself has no remaining references.
func (n *Node) Finalize() *TX {
	tx := n.tx
	n.tx = nil
	return tx
}

// Next returns the list link set by Peer.Finalize, for callers walking the
// chain it returns. It is meaningless in any other context.
func (n *Node) Next() *Node {
	return n.nextQueue
}

// Queue links node at the head of dest's incoming list via CAS and
// forward-syncs tx's timestamp up to dest's current clock. If dest is
// closed (finalized), the node is dropped immediately instead, emulating an
// instant dequeue-and-discard.
//
// Precondition: node.tx == nil && node's list link is unset (the node is
// not already queued anywhere).
func (n *Node) Queue(tx *TX, dest *Peer) {
	assertf(n.tx == nil && n.nextQueue == nil, "distq: node requeued while still linked")

	n.refs.Add(1)
	tx.refs.Add(1)
	n.tx = tx

	for {
		head := dest.incoming.Load()
		if head == nil {
			// Closed: every further destruction/release already settled at
			// a higher timestamp than anything we could still deliver, so
			// we never queue the node rather than queue-then-never-dequeue.
			n.nextQueue = nil
			if n.refs.Add(-1) == 0 {
				log.Warningf("distq: node dropped to zero refs on closed peer")
			}
			return
		}
		n.nextQueue = head
		if dest.incoming.CompareAndSwap(head, n) {
			break
		}
	}

	// The CAS above makes node visible to the receiver before we read their
	// clock here, so this sync cannot regress dest's view of tx.
	ts.ForceSync(&tx.timestamp, dest.clock.Load())
}

// Commit publishes node to dest: it bumps dest's ready counter (waking any
// waiter) and narrows, but does not close, a race where side-channel
// messages could arrive with a timestamp lower than this multicast's.
func (n *Node) Commit(dest *Peer) {
	assertf(n.tx != nil, "distq: commit of node without a transaction")

	if dest.nCommitted.Add(1) > 0 {
		dest.wake()
	}

	target := n.tx.timestamp.Load() + 1
	ts.ForceSync(&dest.clock, target)
}
