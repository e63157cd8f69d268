// Package app composes the narrative runtime, coherence gates, orchestrator,
// and state repository into the operations exposed to callers.
//
// Every operation loads the world state, computes a new snapshot, and saves it
// before returning. A Service serializes its own operations; separate
// processes writing the same store still race with last-writer-wins.
package app
