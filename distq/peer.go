package distq

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/btree"

	"github.com/ailidani/bus1/internal/log"
	"github.com/ailidani/bus1/ts"
)

const readyTreeDegree = 32

// Peer owns a local clock and the three queues (incoming, busy, ready)
// described in SPEC_FULL.md §3. All mutating receive-side operations (Peek,
// Pop, Finalize) are single-writer: the owner must serialize them as if
// holding a write lock on Peer. Queue and Commit (called on a Node against a
// destination Peer) are concurrent with each other and with the receiver.
type Peer struct {
	clock      atomic.Int64
	local      int64 // owner-only: last value peer.clock was synchronized to
	nCommitted atomic.Int32

	incoming atomic.Pointer[Node] // MPSC; nil = closed, tailNode = empty-open

	busy                  *Node // owner-only singly-linked list
	ready                 *btree.BTreeG[*Node]
	readyFirst, readyLast *Node

	notifyMu sync.Mutex
	notifyCh chan struct{}
}

// NewPeer returns an initialized, empty, open peer with clock 0.
func NewPeer() *Peer {
	p := &Peer{
		busy:     tailNode,
		ready:    btree.NewG[*Node](readyTreeDegree, nodeLess),
		notifyCh: make(chan struct{}),
	}
	p.incoming.Store(tailNode)
	return p
}

// Clock returns the peer's current tentative clock value.
func (p *Peer) Clock() int64 {
	return p.clock.Load()
}

func (p *Peer) wake() {
	p.notifyMu.Lock()
	close(p.notifyCh)
	p.notifyCh = make(chan struct{})
	p.notifyMu.Unlock()
}

// Wait blocks until Poll would return true or ctx is cancelled. It exists
// only for callers outside the engine that want to block for readiness;
// cancellation is the caller's responsibility, and Wait takes no part in
// the engine's own ordering guarantees.
func (p *Peer) Wait(ctx context.Context) error {
	for {
		p.notifyMu.Lock()
		ch := p.notifyCh
		p.notifyMu.Unlock()
		if p.Poll() {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Poll acquire-loads n_committed and reports whether it is >0. Paired with
// the release-ordered increment in Node.Commit: an observed "ready" implies
// all of that message's state is visible.
func (p *Peer) Poll() bool {
	return p.nCommitted.Load() > 0
}

func (p *Peer) pushReady(n *Node) {
	p.ready.ReplaceOrInsert(n)
	if p.readyFirst == nil || nodeLess(n, p.readyFirst) {
		p.readyFirst = n
	}
	if p.readyLast == nil || nodeLess(p.readyLast, n) {
		p.readyLast = n
	}
}

func (p *Peer) popReadyFront() *Node {
	n := p.readyFirst
	if n == nil {
		return nil
	}
	p.ready.Delete(n)
	if first, ok := p.ready.Min(); ok {
		p.readyFirst = first
	} else {
		p.readyFirst = nil
		p.readyLast = nil
	}
	return n
}

// prefetch walks busy once, draining incoming onto its end exactly once,
// promoting any node whose tx has already committed into ready.
func (p *Peer) prefetch() {
	slot := &p.busy
	for pass := 0; pass < 2; pass++ {
		for *slot != tailNode {
			node := *slot
			tsv := node.tx.timestamp.Load()
			if ts.Committed(tsv) {
				*slot = node.nextQueue
				node.nextQueue = nil
				if node.timestamp == 0 {
					node.timestamp = tsv
				}
				p.pushReady(node)
			} else {
				slot = &node.nextQueue
			}
		}
		if pass == 0 {
			*slot = p.incoming.Swap(tailNode)
		}
	}
}

// sync forces the queue's view of "current" up to to, synchronizing every
// busy node's tx at least that far and promoting any that become committed.
func (p *Peer) sync(to int64) {
	if ts.Committed(to) || to <= p.local {
		log.Warningf("distq: peer sync(%d) invalid given local=%d", to, p.local)
		return
	}

	p.local = to
	ts.ForceSync(&p.clock, to)

	slot := &p.busy
	for pass := 0; pass < 2; pass++ {
		for *slot != tailNode {
			node := *slot
			tsv := ts.TrySync(&node.tx.timestamp, to)
			if ts.Committed(tsv) {
				*slot = node.nextQueue
				node.nextQueue = nil
				if node.timestamp == 0 {
					node.timestamp = tsv
				}
				p.pushReady(node)
			} else {
				slot = &node.nextQueue
			}
		}
		if pass == 0 {
			*slot = p.incoming.Swap(tailNode)
		}
	}
}

// Peek returns the front of peer's queue, performing queue maintenance if
// the front entry is new. The returned node is valid until the next call to
// Peek, Pop, or Finalize, or until the caller drops its semantic write lock
// on peer, whichever comes first. The caller must serialize access as if
// holding a write lock on peer.
func (p *Peer) Peek() *Node {
	first := p.readyFirst
	if first == nil {
		p.prefetch()
		first = p.readyFirst
		if first == nil {
			return nil
		}
	}

	if first.timestamp >= p.local {
		// The front entry isn't synchronized against our local view yet:
		// there may be incoming entries that would still order before it.
		// Sync the whole chain against the ready tail so every conflict in
		// the currently-visible window is resolved at once.
		target := p.readyLast.timestamp + 1
		p.sync(target)
		first = p.readyFirst
		assertf(first != nil, "distq: ready front vanished during sync")
	}

	return first
}

// Pop removes node from the front of peer's queue. The caller must
// guarantee node == Peek(peer); only the front of the queue can be dropped
// directly. Once Pop returns, node is no longer queued on peer.
func (p *Peer) Pop(n *Node) {
	popped := p.popReadyFront()
	assertf(n == popped, "distq: pop called on a node that isn't the queue front")
	p.nCommitted.Add(-1)
}

// Finalize tears peer's queue down: future Queue calls against peer drop
// their node immediately. It returns every node that was still queued (in
// incoming, busy, or ready) as a singly-linked chain via each node's list
// link, for the caller to unref. Finalize is idempotent: calls after the
// first return the empty chain.
func (p *Peer) Finalize() *Node {
	list := p.incoming.Swap(nil)
	if list == nil {
		return tailNode
	}

	slot := &p.busy
	for *slot != tailNode {
		slot = &(*slot).nextQueue
	}
	*slot = list
	list = p.busy
	p.busy = tailNode

	p.ready.Ascend(func(n *Node) bool {
		n.nextQueue = list
		list = n
		return true
	})
	p.ready.Clear(false)
	p.readyFirst = nil
	p.readyLast = nil

	return list
}

// Tail is the sentinel empty-but-open list value, exported so callers
// walking a Finalize chain can recognize its natural end.
func Tail() *Node {
	return tailNode
}
