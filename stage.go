package bus1

// stageTail is the stage-local analogue of distq's tailNode: a distinguished
// sentinel meaning "empty" for a stage's own pending list, distinct from nil
// so a never-staged message (m.next == nil) can be told apart from one
// currently linked into some stage.
var stageTail = &Message{}

// Stage is scoped to one sender peer and accumulates a set of pre-shaped
// messages, committing them as a single, atomically-ordered multicast: every
// destination observes the identical transaction timestamp.
type Stage struct {
	sender *Peer
	list   *Message
}

// NewStage returns a stage scoped to sender.
func NewStage(sender *Peer) *Stage {
	return &Stage{sender: sender, list: stageTail}
}

func (s *Stage) push(m *Message) {
	m.next = s.list
	s.list = m
}

// AddCustom stages a unicast or multicast custom message carrying data and
// any transferred handles. The message may be committed by s at most once.
func (s *Stage) AddCustom(dest *Peer, handles []*Handle, data []byte) *Message {
	m := &Message{kind: MessageCustom, dest: dest, Handles: handles, Data: data}
	m.node.Owner = m
	s.push(m)
	return m
}

// AddObjectRelease stages o's release notice to o's owner, along with a
// HANDLE_DESTRUCTION for every handle still pointing at o. It takes
// o.owner's lock.
func (s *Stage) AddObjectRelease(o *Object) error {
	o.owner.mu.Lock()
	defer o.owner.mu.Unlock()
	return s.AddObjectReleaseLocked(o)
}

// AddObjectReleaseLocked is the locked variant of AddObjectRelease: the
// caller must already hold o.owner's lock.
func (s *Stage) AddObjectReleaseLocked(o *Object) error {
	if o.release.next != nil {
		return ErrAlreadyStaged
	}
	if o.owner != s.sender {
		return ErrDetached
	}

	s.push(&o.release)

	for h := o.handles; h != nil; {
		next := h.nextInObject
		h.detachLocked()
		s.push(&h.destruction)
		h = next
	}
	o.handles = nil

	return nil
}

// AddHandleRelease stages h's release notice to h's object's owner. It
// takes h.object.owner's lock. A handle that is no longer linked to its
// object stages nothing, and the call returns nil.
func (s *Stage) AddHandleRelease(h *Handle) error {
	h.object.owner.mu.Lock()
	defer h.object.owner.mu.Unlock()
	return s.AddHandleReleaseLocked(h)
}

// AddHandleReleaseLocked is the locked variant of AddHandleRelease: the
// caller must already hold h.object.owner's lock.
func (s *Stage) AddHandleReleaseLocked(h *Handle) error {
	if h.release.next != nil {
		return ErrAlreadyStaged
	}
	if h.linked {
		h.detachLocked()
		s.push(&h.release)
	}
	return nil
}

func (s *Stage) dest(m *Message) *Peer {
	switch m.kind {
	case MessageCustom:
		return m.dest
	case MessageObjectRelease:
		return m.object.owner
	case MessageHandleRelease:
		return m.handle.object.owner
	case MessageHandleDestruction:
		return m.handle.owner
	default:
		panic("bus1: unknown message kind")
	}
}

// Commit performs the three-phase protocol: submit (queue every staged
// message to its destination's incoming list, adopting one shared
// transaction), settle (freeze the transaction's timestamp against the
// sender's clock, then publish each message to its destination), and
// cleanup (drop the stage's own hold on each message).
//
// The only failure Commit can report is ErrQuotaExceeded, checked before
// submit begins; once submit begins, commit cannot fail.
func (s *Stage) Commit() error {
	if s.list == stageTail {
		return nil
	}

	var acquired []*Quota
	for m := s.list; m != stageTail; m = m.next {
		q := s.dest(m).quota
		if q == nil {
			continue
		}
		if !q.tryAcquire() {
			for _, qq := range acquired {
				qq.release()
			}
			return ErrQuotaExceeded
		}
		acquired = append(acquired, q)
	}

	tx := &s.list.tx
	tx.Claim()

	for m := s.list; m != stageTail; m = m.next {
		m.node.Claim()
		m.node.Queue(tx, s.dest(m).distq)
	}

	tx.Commit(s.sender.distq)

	for m := s.list; m != stageTail; {
		next := m.next
		m.next = nil

		dp := s.dest(m)
		m.node.Commit(dp.distq)
		if m.node.Unref() {
			releaseMessage(m)
			if dp.quota != nil {
				dp.quota.release()
			}
		}

		m = next
	}
	tx.Unref()

	s.list = stageTail
	return nil
}
