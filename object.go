package bus1

// Object is an owner-controlled entity addressed only through handles.
// Exactly one peer owns it; other peers reach it only via a Handle they
// hold, never directly.
type Object struct {
	ID ID

	owner   *Peer
	handles *Handle // head of the intrusive doubly-linked handle list
	release Message
}

// NewObject creates a new object owned by owner. The caller is responsible
// for publishing its ID (e.g. via a Directory) before handing out handles.
func NewObject(owner *Peer) *Object {
	o := &Object{ID: newID(), owner: owner}
	o.release = Message{kind: MessageObjectRelease, object: o}
	o.release.node.Owner = &o.release
	return o
}

// Owner returns the peer that owns o.
func (o *Object) Owner() *Peer { return o.owner }

// attach links h into o's handle list. The caller must hold o.owner's lock.
func (o *Object) attach(h *Handle) {
	h.nextInObject = o.handles
	if o.handles != nil {
		o.handles.prevInObject = h
	}
	h.prevInObject = nil
	o.handles = h
	h.object = o
	h.linked = true
}
