package distq

import "fmt"

// assertf reports a contract violation. Per SPEC_FULL.md §7, violations of
// contract (re-queueing a linked node, committing without a tx, popping a
// node that isn't at the head, ...) are programming errors: they panic
// rather than return an error, and are never recovered by engine code.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
