package bus1

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// ID names a Peer, Object, or Handle. The engine itself never looks at an
// ID; it exists for the naming collaborator (Directory) and for debug/
// monitor surfaces to refer to entities across a wire.
type ID string

var (
	idMu  sync.Mutex
	idGen = ulid.Monotonic(rand.Reader, 0)
)

func newID() ID {
	idMu.Lock()
	defer idMu.Unlock()
	return ID(ulid.MustNew(ulid.Now(), idGen).String())
}
