package distq

import "unsafe"

// nodeLess orders the ready set by the lexicographic tuple (timestamp,
// tx identity, node identity). Timestamps tie when two sends issue from the
// same sender in the same tick; tie-breaking by pointer identity gives a
// well-defined order every receiver agrees on, since both see the same
// addresses in this process.
func nodeLess(a, b *Node) bool {
	if a.timestamp != b.timestamp {
		return a.timestamp < b.timestamp
	}
	at, bt := uintptr(unsafe.Pointer(a.tx)), uintptr(unsafe.Pointer(b.tx))
	if at != bt {
		return at < bt
	}
	return uintptr(unsafe.Pointer(a)) < uintptr(unsafe.Pointer(b))
}
