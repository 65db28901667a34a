package knitout

// ViolationKind names one of the machine-state violations whose policy the
// engine can relax away from the default fatal behavior.
type ViolationKind uint8

const (
	ViolationInactiveCarrier ViolationKind = iota
	ViolationMisalignedTransfer
	ViolationUnhookedRelease
	ViolationEmptyNeedle
	ViolationOccupiedNeedle
	ViolationRackOutOfRange
)

func (v ViolationKind) String() string {
	switch v {
	case ViolationInactiveCarrier:
		return "inactive-carrier"
	case ViolationMisalignedTransfer:
		return "misaligned-transfer"
	case ViolationUnhookedRelease:
		return "unhooked-release"
	case ViolationEmptyNeedle:
		return "empty-needle"
	case ViolationOccupiedNeedle:
		return "occupied-needle"
	case ViolationRackOutOfRange:
		return "rack-out-of-range"
	default:
		return "unknown-violation"
	}
}

// Policy is how a Machine should react when one of its ViolationKinds
// occurs: raise a MachineStateError (the default), proceed but surface a
// Warning, or proceed silently.
type Policy uint8

const (
	PolicyRaise Policy = iota
	PolicyWarn
	PolicyIgnore
)

// Snapshot is an opaque, immutable capture of machine state at one point
// in execution. Its only use is later inspection by whatever called
// Machine.Snapshot; the engine never looks inside one.
type Snapshot interface{}

// Machine is the contract the engine depends on for the actual knitting
// bed/carrier/rack/loop-graph state. The engine never mutates machine
// state except by calling these operations; a violation of the active
// Policy for its kind returns an error (nil when Policy is Ignore).
type Machine interface {
	// Rack sets the racking to r, returning whether it actually changed.
	Rack(r Racking) (changed bool, err error)

	// Knit forms a new loop at needle n, moving in direction dir, over
	// whatever loop was already there (which is dropped).
	Knit(cs CarrierSet, n Needle, dir Direction) (dropped, made []LoopID, err error)

	// Tuck forms a new loop at needle without dropping any loop under it.
	Tuck(cs CarrierSet, n Needle, dir Direction) (made []LoopID, err error)

	// Miss moves a carrier's position to needle without forming a loop.
	Miss(cs CarrierSet, n Needle, dir Direction) error

	// Split forms a new loop at from and moves from's existing loop(s) to
	// to, which must be the needle currently aligned with from under
	// racking (else a ViolationMisalignedTransfer).
	Split(cs CarrierSet, from, to Needle, dir Direction) (made, moved []LoopID, err error)

	// Xfer moves from's loop(s) to to, which must be the needle currently
	// aligned with from under racking (else a ViolationMisalignedTransfer).
	Xfer(from, to Needle) (moved []LoopID, err error)

	// Drop removes whatever loop(s) sit at needle from the bed.
	Drop(n Needle) (dropped []LoopID, err error)

	BringIn(cid int) error
	InHook(cid int) error
	Out(cid int) error
	OutHook(cid int) error
	ReleaseHook(cid int) error

	// AlignedNeedle returns the opposite-bed needle currently aligned
	// with n under the active racking.
	AlignedNeedle(n Needle, alignedSlider bool) Needle

	// Snapshot captures an immutable deep copy of the current state.
	Snapshot() Snapshot

	// SetPolicy configures how future violations of kind are handled.
	SetPolicy(kind ViolationKind, policy Policy)
}
