package knitout

import "sync/atomic"

// idCounter is a module-local monotonic counter used to stamp creation
// order onto instructions, carriage passes, and loops, so that deep
// copies and re-sorted collections can still be ordered stably. Tests may
// rely on relative order, never on specific values.
type idCounter struct{ n uint64 }

func (c *idCounter) next() uint64 {
	return atomic.AddUint64(&c.n, 1)
}

var (
	instructionIDs idCounter
	passIDs        idCounter
	loopIDs        idCounter
)
