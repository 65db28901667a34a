package knitout

import (
	"fmt"

	"github.com/knitout-go/knitout/internal/arena"
)

// LoopID identifies a Loop for the lifetime of an execution run. It is
// stable across the loop's transfers and is the unit of identity recorded
// in an Instruction's MadeLoops/MovedLoops/DroppedLoops fields.
type LoopID uint64

func (id LoopID) String() string { return fmt.Sprintf("loop#%d", uint64(id)) }

// NewLoopID mints a fresh, globally-unique loop id. A Machine
// implementation calls this whenever it forms a new loop, so that the id
// it hands back to the engine is ready to be registered into a LoopArena
// without any coordination beyond this shared counter.
func NewLoopID() LoopID { return LoopID(loopIDs.next()) }

// Loop tracks one stitch's life from the instruction that made it, through
// any number of transfers between needles, to the instruction that (at
// most once) drops it off the bed entirely.
type Loop struct {
	id LoopID

	// Source is the needle the loop was made on; it is fixed at creation
	// and never modified.
	Source            Needle
	SourceInstruction uint64 // Instruction.ID() of the knit/tuck/split that made it

	// History records every needle the loop has occupied, in order,
	// starting with Source; its current needle is always its last entry.
	History []Needle

	dropped         bool
	DropInstruction uint64
	DropNeedle      Needle
}

// newLoop constructs a loop made by the instruction sourceInstruction at
// needle source. It is unexported: loops are only ever created through a
// LoopArena, so that every Loop has a registered, retrievable id.
func newLoop(id LoopID, source Needle, sourceInstruction uint64) *Loop {
	return &Loop{
		id:                id,
		Source:            source,
		SourceInstruction: sourceInstruction,
		History:           []Needle{source},
	}
}

// ID returns the loop's stable id.
func (l *Loop) ID() LoopID { return l.id }

// Current returns the needle the loop presently occupies.
func (l *Loop) Current() Needle { return l.History[len(l.History)-1] }

// Dropped reports whether the loop has been terminally dropped.
func (l *Loop) Dropped() bool { return l.dropped }

// RecordTransfer appends to needle to the loop's history, reflecting an
// xfer or split move. It panics with an
// InvariantViolationError if the loop has already been dropped: a dropped
// loop cannot move.
func (l *Loop) RecordTransfer(to Needle) {
	if l.dropped {
		panic(InvariantViolationError{What: fmt.Sprintf("%v transferred after being dropped", l.id)})
	}
	l.History = append(l.History, to)
}

// RecordDrop marks the loop as terminally off the bed, dropped by the
// instruction dropInstruction while sitting at needle at. It panics with an
// InvariantViolationError if the loop was already dropped: a loop's
// terminal drop may be set at most once.
func (l *Loop) RecordDrop(at Needle, dropInstruction uint64) {
	if l.dropped {
		panic(InvariantViolationError{What: fmt.Sprintf("%v dropped twice", l.id)})
	}
	l.dropped = true
	l.DropNeedle = at
	l.DropInstruction = dropInstruction
}

// LoopArena is the id-keyed store of every loop created during an
// execution run, backed by internal/arena's paged, id-keyed store.
type LoopArena struct {
	store arena.Arena[*Loop]
}

// New mints a fresh id and registers a loop made by sourceInstruction at
// needle source, returning it. Used when the caller (typically a test, or
// a Machine that keeps its own private loop bookkeeping) has no
// externally-minted id to register against.
func (la *LoopArena) New(source Needle, sourceInstruction uint64) *Loop {
	return la.Register(NewLoopID(), source, sourceInstruction)
}

// Register records a loop under an id that was minted elsewhere (by
// NewLoopID, typically inside a Machine implementation as it forms a new
// loop), setting its source exactly once at registration. It panics with
// an InvariantViolationError if id is already registered.
func (la *LoopArena) Register(id LoopID, source Needle, sourceInstruction uint64) *Loop {
	if prev, ok := la.Get(id); ok && prev != nil {
		panic(InvariantViolationError{What: fmt.Sprintf("%v source set twice", id)})
	}
	l := newLoop(id, source, sourceInstruction)
	la.store.Set(uint(id), l)
	return l
}

// Get returns the loop registered under id, if any.
func (la *LoopArena) Get(id LoopID) (*Loop, bool) {
	return la.store.Get(uint(id))
}

// Len reports one past the highest LoopID ever allocated into this arena.
func (la *LoopArena) Len() uint { return la.store.Len() }

// Each calls f for every loop in this arena, in ascending id order.
func (la *LoopArena) Each(f func(id LoopID, l *Loop)) {
	la.store.Each(func(id uint, l *Loop) { f(LoopID(id), l) })
}
