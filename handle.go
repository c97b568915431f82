package bus1

// Handle is a transferable capability pointing at one Object. It is owned
// by some Peer, not necessarily the object's owner. Releasing the handle
// notifies the object's owner; destroying it (when its object is released)
// notifies the handle's owner.
type Handle struct {
	ID ID

	owner  *Peer
	object *Object

	nextInObject, prevInObject *Handle
	linked                     bool

	release     Message
	destruction Message
}

// NewHandle creates a handle to object, owned by owner, and attaches it to
// object's handle list, taking object's owner's lock for the attach.
func NewHandle(owner *Peer, object *Object) *Handle {
	object.owner.mu.Lock()
	defer object.owner.mu.Unlock()
	return NewHandleLocked(owner, object)
}

// NewHandleLocked is the locked variant of NewHandle: the caller must
// already hold object.owner's lock.
func NewHandleLocked(owner *Peer, object *Object) *Handle {
	h := &Handle{ID: newID(), owner: owner}
	h.release = Message{kind: MessageHandleRelease, handle: h}
	h.release.node.Owner = &h.release
	h.destruction = Message{kind: MessageHandleDestruction, handle: h}
	h.destruction.node.Owner = &h.destruction
	object.attach(h)
	return h
}

// Owner returns the peer that holds h.
func (h *Handle) Owner() *Peer { return h.owner }

// Object returns the object h points at.
func (h *Handle) Object() *Object { return h.object }

// detachLocked unlinks h from its object's handle list. The caller must
// hold object.owner's lock.
func (h *Handle) detachLocked() {
	if !h.linked {
		return
	}
	if h.prevInObject != nil {
		h.prevInObject.nextInObject = h.nextInObject
	} else {
		h.object.handles = h.nextInObject
	}
	if h.nextInObject != nil {
		h.nextInObject.prevInObject = h.prevInObject
	}
	h.nextInObject = nil
	h.prevInObject = nil
	h.linked = false
}
