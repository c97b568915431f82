package bus1

import "github.com/puzpuzpuz/xsync"

// Directory maps IDs to the live entity they name: a Peer, Object, or
// Handle. It never participates in ordering; it is purely the lookup table
// the debug/monitor surfaces and a cmd/bus1ctl session use to resolve a
// destination before calling into the engine.
type Directory struct {
	m *xsync.MapOf[string, interface{}]
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{m: xsync.NewMapOf[interface{}]()}
}

// Put publishes v under id, replacing any previous entry.
func (d *Directory) Put(id ID, v interface{}) {
	d.m.Store(string(id), v)
}

// Delete removes id from the directory.
func (d *Directory) Delete(id ID) {
	d.m.Delete(string(id))
}

// Peer looks up id as a *Peer.
func (d *Directory) Peer(id ID) (*Peer, bool) {
	v, ok := d.m.Load(string(id))
	if !ok {
		return nil, false
	}
	p, ok := v.(*Peer)
	return p, ok
}

// Object looks up id as an *Object.
func (d *Directory) Object(id ID) (*Object, bool) {
	v, ok := d.m.Load(string(id))
	if !ok {
		return nil, false
	}
	o, ok := v.(*Object)
	return o, ok
}

// Handle looks up id as a *Handle.
func (d *Directory) Handle(id ID) (*Handle, bool) {
	v, ok := d.m.Load(string(id))
	if !ok {
		return nil, false
	}
	h, ok := v.(*Handle)
	return h, ok
}

// Len reports the number of entries currently published.
func (d *Directory) Len() int {
	return d.m.Size()
}
