package bus1

import "github.com/ailidani/bus1/distq"

// MessageKind tags the four carrier variants a Stage can commit.
type MessageKind int

const (
	MessageCustom MessageKind = iota
	MessageObjectRelease
	MessageHandleRelease
	MessageHandleDestruction
)

func (k MessageKind) String() string {
	switch k {
	case MessageCustom:
		return "CUSTOM"
	case MessageObjectRelease:
		return "OBJECT_RELEASE"
	case MessageHandleRelease:
		return "HANDLE_RELEASE"
	case MessageHandleDestruction:
		return "HANDLE_DESTRUCTION"
	default:
		return "UNKNOWN"
	}
}

// Message is the carrier every staged delivery rides on: a stage-pending
// link, an embedded distq transaction, and an embedded distq node. A CUSTOM
// message additionally carries an explicit destination and payload; the
// other three derive their destination from the object or handle they
// belong to (see Stage.dest).
type Message struct {
	next *Message
	tx   distq.TX
	node distq.Node
	kind MessageKind

	object *Object
	handle *Handle

	dest    *Peer
	Handles []*Handle
	Data    []byte
}

// Kind reports which of the four carrier variants m is.
func (m *Message) Kind() MessageKind { return m.kind }

// Node exposes the embedded distq node, for collaborators (debug surface,
// tests) that need to inspect queue membership without reaching into
// package-private fields.
func (m *Message) Node() *distq.Node { return &m.node }

// TX exposes the embedded transaction.
func (m *Message) TX() *distq.TX { return &m.tx }

func messageOf(n *distq.Node) *Message {
	return n.Owner.(*Message)
}

// releaseMessage drops m's node's final TX reference. It is called once a
// node's refcount reaches zero, whether because a receiver consumed it or
// because it was dropped onto a closed destination without ever landing.
func releaseMessage(m *Message) {
	tx := m.node.Finalize()
	tx.Unref()
}
