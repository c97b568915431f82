// Package bus1 implements a local capability-based IPC substrate: peers
// exchange messages and transfer handles to objects, with every delivery
// ordered by the distq engine's global total order.
//
// A Peer owns objects and holds handles to objects owned by others. A Stage
// batches a set of outgoing messages — custom payloads, object releases,
// handle releases, handle destructions — and commits them as one atomic
// multicast: every destination peer observes the identical transaction
// timestamp, so no receiver can observe a partial view of the batch.
package bus1
