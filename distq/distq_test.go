package distq

import (
	"context"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestPeerEmptyPeek(t *testing.T) {
	p := NewPeer()
	if n := p.Peek(); n != nil {
		t.Fatalf("expected empty peer to have nothing ready, got %v", n)
	}
}

func TestPeerDoubleFinalizeIsIdempotent(t *testing.T) {
	p := NewPeer()
	first := p.Finalize()
	second := p.Finalize()
	if first != tailNode || second != tailNode {
		t.Fatalf("finalize of an empty peer should return the tail sentinel both times")
	}
}

func TestUnicastIsolated(t *testing.T) {
	sender := NewPeer()
	dest := NewPeer()

	tx := NewTX()
	tx.Claim()
	n := &Node{}
	n.Claim()
	n.Queue(tx, dest)
	tx.Commit(sender)
	n.Commit(dest)

	got := dest.Peek()
	if got != n {
		t.Fatalf("expected the queued node to be ready, got %v", got)
	}
	dest.Pop(got)

	if got.Finalize() != tx {
		t.Fatalf("node's tx should still be reachable before the first finalize call")
	}
}

func TestUnicastContested(t *testing.T) {
	dest := NewPeer()

	s1, s2 := NewPeer(), NewPeer()
	s1.clock.Store(10)
	s2.clock.Store(4)

	tx1, tx2 := NewTX(), NewTX()
	tx1.Claim()
	tx2.Claim()

	n1, n2 := &Node{}, &Node{}
	n1.Claim()
	n2.Claim()

	// n2 queues first (sees dest.clock==0) but commits with the lower
	// sender clock; n1 queues second and commits with the higher one. The
	// final order must follow the committed timestamps, not arrival order.
	n2.Queue(tx2, dest)
	n1.Queue(tx1, dest)

	tx2.Commit(s2)
	tx1.Commit(s1)
	n2.Commit(dest)
	n1.Commit(dest)

	var order []*Node
	for {
		n := dest.Peek()
		if n == nil {
			break
		}
		dest.Pop(n)
		order = append(order, n)
	}

	if len(order) != 2 {
		t.Fatalf("expected both nodes to become ready, got %d", len(order))
	}
	if order[0].Timestamp() > order[1].Timestamp() {
		t.Fatalf("ready order violates timestamp order: %d before %d", order[0].Timestamp(), order[1].Timestamp())
	}
}

func TestMulticastAtomicity(t *testing.T) {
	const fanout = 8
	dests := make([]*Peer, fanout)
	for i := range dests {
		dests[i] = NewPeer()
	}
	sender := NewPeer()

	tx := NewTX()
	tx.Claim()

	nodes := make([]*Node, fanout)
	for i := range nodes {
		nodes[i] = &Node{}
		nodes[i].Claim()
		nodes[i].Queue(tx, dests[i])
	}

	tx.Commit(sender)
	for i := range nodes {
		nodes[i].Commit(dests[i])
	}

	var ts int64
	for i, d := range dests {
		n := d.Peek()
		if n == nil {
			t.Fatalf("destination %d never became ready", i)
		}
		if i == 0 {
			ts = n.Timestamp()
		} else if n.Timestamp() != ts {
			t.Fatalf("destination %d observed timestamp %d, want %d", i, n.Timestamp(), ts)
		}
	}
}

func TestCloseRace(t *testing.T) {
	dest := NewPeer()
	sender := NewPeer()

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		i := i
		g.Go(func() error {
			tx := NewTX()
			tx.Claim()
			n := &Node{}
			n.Claim()
			n.Queue(tx, dest)
			tx.Commit(sender)
			n.Commit(dest)
			_ = i
			return nil
		})
	}

	g.Go(func() error {
		dest.Finalize()
		return nil
	})

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestWaitUnblocksOnCommit(t *testing.T) {
	dest := NewPeer()
	sender := NewPeer()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- dest.Wait(ctx) }()

	tx := NewTX()
	tx.Claim()
	n := &Node{}
	n.Claim()
	n.Queue(tx, dest)
	tx.Commit(sender)
	n.Commit(dest)

	if err := <-done; err != nil {
		t.Fatalf("Wait returned %v, want nil", err)
	}
}

func TestRefcountBalance(t *testing.T) {
	dest := NewPeer()
	sender := NewPeer()

	tx := NewTX()
	tx.Claim()
	n := &Node{}
	n.Claim()
	n.Queue(tx, dest)
	if got := n.RefCount(); got != 2 {
		t.Fatalf("node refcount after queue = %d, want 2", got)
	}

	tx.Commit(sender)
	n.Commit(dest)

	popped := dest.Peek()
	dest.Pop(popped)
	if !popped.Unref() {
		t.Fatalf("expected the receiver's unref to be the last reference")
	}
	if tx.RefCount() != 1 {
		t.Fatalf("tx refcount before node.Finalize = %d, want 1", tx.RefCount())
	}
	finalTX := popped.Finalize()
	if finalTX.Unref() != true {
		t.Fatalf("expected dropping the node's tx reference to be the last one")
	}
}
