package bus1

import (
	"sync"

	"github.com/ailidani/bus1/distq"
)

// Peer is a local endpoint: the owner-side view over a distq.Peer plus the
// bookkeeping (handle-list lock, accounting quota) the engine itself has no
// opinion about.
type Peer struct {
	ID ID

	distq *distq.Peer
	mu    sync.Mutex // guards objects this peer owns: their handle lists
	quota *Quota
}

// NewPeer returns a peer with no accounting quota (unlimited).
func NewPeer() *Peer {
	return &Peer{ID: newID(), distq: distq.NewPeer()}
}

// NewPeerWithQuota returns a peer whose inbound queue depth is bounded by quota.
func NewPeerWithQuota(quota *Quota) *Peer {
	p := NewPeer()
	p.quota = quota
	return p
}

// Distq exposes the underlying engine peer, for collaborators (debug
// surface, tests) that need direct access to Peek/Poll/clock state.
func (p *Peer) Distq() *distq.Peer { return p.distq }

// Recv pops the front of p's queue and returns the Message it belongs to.
// It returns nil if nothing is ready yet.
func (p *Peer) Recv() *Message {
	n := p.distq.Peek()
	if n == nil {
		return nil
	}
	p.distq.Pop(n)

	m := messageOf(n)
	if n.Unref() {
		releaseMessage(m)
		if p.quota != nil {
			p.quota.release()
		}
	}
	return m
}

// Finalize tears p's queue down, releasing every message still queued
// against it, and returns them for the caller's visibility (logging,
// tests). Finalize is idempotent.
func (p *Peer) Finalize() []*Message {
	var out []*Message
	for n := p.distq.Finalize(); n != distq.Tail(); n = n.Next() {
		m := messageOf(n)
		if n.Unref() {
			releaseMessage(m)
		}
		out = append(out, m)
	}
	return out
}
