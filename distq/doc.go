// Package distq implements the distributed queue with transactional
// multicast ordering described in SPEC_FULL.md: a single global total order
// over unicasts, multicasts, releases and destructions, maintained without a
// central broker or process-wide lock.
//
// Three types cooperate: TX (one atomically-ordered multicast), Node (one
// pending delivery to one destination Peer), and Peer (a local endpoint
// owning a clock and three queues). Producers call Queue/Commit/TX.Commit
// concurrently with each other and with the single-writer receive path
// (Peek/Pop/Finalize), which the destination peer's owner must serialize
// externally.
package distq
