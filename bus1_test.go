package bus1

import "testing"

func TestStageCommitCustomDelivers(t *testing.T) {
	sender := NewPeer()
	dest := NewPeer()

	s := NewStage(sender)
	s.AddCustom(dest, nil, []byte("hello"))
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit() = %v, want nil", err)
	}

	m := dest.Recv()
	if m == nil {
		t.Fatal("expected a message to be ready at dest")
	}
	if m.Kind() != MessageCustom {
		t.Errorf("Kind() = %v, want MessageCustom", m.Kind())
	}
	if string(m.Data) != "hello" {
		t.Errorf("Data = %q, want %q", m.Data, "hello")
	}
}

func TestStageCommitEmptyIsNoop(t *testing.T) {
	s := NewStage(NewPeer())
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit() on an empty stage = %v, want nil", err)
	}
}

func TestObjectReleaseDetachesHandles(t *testing.T) {
	owner := NewPeer()
	holder := NewPeer()

	o := NewObject(owner)
	h := NewHandle(holder, o)

	s := NewStage(owner)
	if err := s.AddObjectRelease(o); err != nil {
		t.Fatalf("AddObjectRelease() = %v, want nil", err)
	}
	if h.linked {
		t.Error("handle should be detached once its object is staged for release")
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit() = %v, want nil", err)
	}

	ownerMsg := owner.Recv()
	if ownerMsg == nil || ownerMsg.Kind() != MessageObjectRelease {
		t.Fatalf("owner should receive the object's own release notice, got %v", ownerMsg)
	}

	holderMsg := holder.Recv()
	if holderMsg == nil || holderMsg.Kind() != MessageHandleDestruction {
		t.Fatalf("handle holder should receive a destruction notice, got %v", holderMsg)
	}
}

func TestHandleReleaseOnlyStagesOnce(t *testing.T) {
	owner := NewPeer()
	holder := NewPeer()

	o := NewObject(owner)
	h := NewHandle(holder, o)

	s := NewStage(holder)
	if err := s.AddHandleRelease(h); err != nil {
		t.Fatalf("first AddHandleRelease() = %v, want nil", err)
	}
	if err := s.AddHandleRelease(h); err != ErrAlreadyStaged {
		t.Fatalf("second AddHandleRelease() = %v, want ErrAlreadyStaged", err)
	}
}

func TestQuotaExceededBlocksCommit(t *testing.T) {
	dest := NewPeerWithQuota(NewQuota(1))
	sender := NewPeer()

	s1 := NewStage(sender)
	s1.AddCustom(dest, nil, []byte("a"))
	if err := s1.Commit(); err != nil {
		t.Fatalf("first Commit() = %v, want nil", err)
	}

	s2 := NewStage(sender)
	s2.AddCustom(dest, nil, []byte("b"))
	if err := s2.Commit(); err != ErrQuotaExceeded {
		t.Fatalf("second Commit() = %v, want ErrQuotaExceeded", err)
	}

	// Draining the first message returns its quota token.
	if dest.Recv() == nil {
		t.Fatal("expected the first message to still be queued")
	}
	if err := s2.Commit(); err != nil {
		t.Fatalf("Commit() after drain = %v, want nil", err)
	}
}

func TestMulticastAcrossPeersSharesTimestamp(t *testing.T) {
	sender := NewPeer()
	a, b, c := NewPeer(), NewPeer(), NewPeer()

	s := NewStage(sender)
	s.AddCustom(a, nil, []byte("x"))
	s.AddCustom(b, nil, []byte("x"))
	s.AddCustom(c, nil, []byte("x"))
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit() = %v, want nil", err)
	}

	var timestamps []int64
	for _, p := range []*Peer{a, b, c} {
		m := p.Recv()
		if m == nil {
			t.Fatal("expected every destination to have a ready message")
		}
		timestamps = append(timestamps, m.Node().Timestamp())
	}
	for i := 1; i < len(timestamps); i++ {
		if timestamps[i] != timestamps[0] {
			t.Errorf("destination %d observed timestamp %d, want %d (same as destination 0)", i, timestamps[i], timestamps[0])
		}
	}
}

func TestDirectoryRoundTrip(t *testing.T) {
	dir := NewDirectory()
	p := NewPeer()
	dir.Put(p.ID, p)

	got, ok := dir.Peer(p.ID)
	if !ok || got != p {
		t.Fatalf("Peer(%v) = (%v, %v), want (%v, true)", p.ID, got, ok, p)
	}

	dir.Delete(p.ID)
	if _, ok := dir.Peer(p.ID); ok {
		t.Error("expected the entry to be gone after Delete")
	}
}
