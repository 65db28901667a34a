// Package machinesim is a minimal, in-memory implementation of the
// knitout.Machine contract: needle beds as loop stacks, a carrier system
// with an inserting hook, and a rack offset. It exists to make the engine
// runnable and testable end-to-end; it is not itself the subject of this
// module's design effort.
package machinesim

import (
	"fmt"

	"github.com/knitout-go/knitout"
)

// Option configures a new Machine.
type Option func(*Machine)

// WithWarnFunc installs the sink for non-fatal Warnings raised by this
// Machine -- the caller typically shares the same sink with the
// Executer's own WithWarnFunc, so both surfaces end up in one place.
func WithWarnFunc(fn knitout.WarnFunc) Option {
	return func(m *Machine) { m.warn = fn }
}

type carrierState struct {
	active   bool
	position *knitout.Needle
}

// Machine is a straightforward simulation of a V-bed machine's physical
// state: what loops sit on which needle, which carriers are active and
// where they last fed, the inserting hook, and the current racking.
type Machine struct {
	spec knitout.MachineSpec
	warn knitout.WarnFunc

	beds     map[knitout.Needle][]knitout.LoopID
	carriers map[int]*carrierState
	hooked   int // carrier id currently on the inserting hook, 0 if none

	rack     knitout.Racking
	policies map[knitout.ViolationKind]knitout.Policy
}

// New constructs a Machine configured from spec.
func New(spec knitout.MachineSpec, opts ...Option) *Machine {
	m := &Machine{
		spec:     spec,
		beds:     make(map[knitout.Needle][]knitout.LoopID),
		carriers: make(map[int]*carrierState),
		policies: make(map[knitout.ViolationKind]knitout.Policy),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) SetPolicy(kind knitout.ViolationKind, policy knitout.Policy) {
	m.policies[kind] = policy
}

func (m *Machine) violate(kind knitout.ViolationKind, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	switch m.policies[kind] { // zero value is PolicyRaise
	case knitout.PolicyWarn:
		m.warnIf(msg)
		return nil
	case knitout.PolicyIgnore:
		return nil
	default:
		return fmt.Errorf("%s: %s", kind, msg)
	}
}

func (m *Machine) warnIf(what string) {
	if m.warn != nil {
		m.warn(knitout.Warning{What: what})
	}
}

func (m *Machine) carrier(cid int) *carrierState {
	c, ok := m.carriers[cid]
	if !ok {
		c = &carrierState{}
		m.carriers[cid] = c
	}
	return c
}

func (m *Machine) checkActive(cs knitout.CarrierSet) error {
	for _, cid := range cs {
		if !m.carrier(cid).active {
			if err := m.violate(knitout.ViolationInactiveCarrier, "carrier %d is not in", cid); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Machine) moveCarriers(cs knitout.CarrierSet, n knitout.Needle) {
	for _, cid := range cs {
		pos := n
		m.carrier(cid).position = &pos
	}
}

func (m *Machine) Rack(r knitout.Racking) (bool, error) {
	changed := r.Value != m.rack.Value || r.AllNeedle != m.rack.AllNeedle
	m.rack = r
	return changed, nil
}

func (m *Machine) Knit(cs knitout.CarrierSet, n knitout.Needle, dir knitout.Direction) ([]knitout.LoopID, []knitout.LoopID, error) {
	if err := m.checkActive(cs); err != nil {
		return nil, nil, err
	}
	dropped := m.beds[n]
	id := knitout.NewLoopID()
	m.beds[n] = []knitout.LoopID{id}
	m.moveCarriers(cs, n)
	return dropped, []knitout.LoopID{id}, nil
}

func (m *Machine) Tuck(cs knitout.CarrierSet, n knitout.Needle, dir knitout.Direction) ([]knitout.LoopID, error) {
	if err := m.checkActive(cs); err != nil {
		return nil, err
	}
	id := knitout.NewLoopID()
	m.beds[n] = append(m.beds[n], id)
	m.moveCarriers(cs, n)
	return []knitout.LoopID{id}, nil
}

func (m *Machine) Miss(cs knitout.CarrierSet, n knitout.Needle, dir knitout.Direction) error {
	if err := m.checkActive(cs); err != nil {
		return err
	}
	m.moveCarriers(cs, n)
	return nil
}

func (m *Machine) checkAligned(from, to knitout.Needle) error {
	want := m.AlignedNeedle(from, to.IsSlider)
	if want != to {
		return m.violate(knitout.ViolationMisalignedTransfer,
			"needle %v is not aligned with %v under rack %d (expected %v)", to, from, m.rack.Value, want)
	}
	return nil
}

func (m *Machine) Split(cs knitout.CarrierSet, from, to knitout.Needle, dir knitout.Direction) ([]knitout.LoopID, []knitout.LoopID, error) {
	if err := m.checkActive(cs); err != nil {
		return nil, nil, err
	}
	if err := m.checkAligned(from, to); err != nil {
		return nil, nil, err
	}
	moved := m.beds[from]
	if len(moved) > 0 {
		m.beds[to] = append(m.beds[to], moved...)
	}
	id := knitout.NewLoopID()
	m.beds[from] = []knitout.LoopID{id}
	m.moveCarriers(cs, from)
	return []knitout.LoopID{id}, moved, nil
}

func (m *Machine) Xfer(from, to knitout.Needle) ([]knitout.LoopID, error) {
	if err := m.checkAligned(from, to); err != nil {
		return nil, err
	}
	moved := m.beds[from]
	if len(moved) > 0 {
		m.beds[to] = append(m.beds[to], moved...)
	}
	delete(m.beds, from)
	return moved, nil
}

func (m *Machine) Drop(n knitout.Needle) ([]knitout.LoopID, error) {
	dropped := m.beds[n]
	delete(m.beds, n)
	return dropped, nil
}

func (m *Machine) BringIn(cid int) error {
	m.carrier(cid).active = true
	return nil
}

func (m *Machine) InHook(cid int) error {
	m.carrier(cid).active = true
	m.hooked = cid
	return nil
}

func (m *Machine) Out(cid int) error {
	m.carrier(cid).active = false
	return nil
}

func (m *Machine) OutHook(cid int) error {
	m.carrier(cid).active = false
	m.hooked = cid
	return nil
}

func (m *Machine) ReleaseHook(cid int) error {
	if m.hooked != cid {
		m.warnIf(fmt.Sprintf("releasehook %d: inserting hook holds carrier %d", cid, m.hooked))
	}
	m.hooked = 0
	return nil
}

func (m *Machine) AlignedNeedle(n knitout.Needle, alignedSlider bool) knitout.Needle {
	rack := m.rack.Value
	if n.Bed == knitout.Front {
		return knitout.Needle{Bed: knitout.Back, Slot: n.Slot - rack, IsSlider: alignedSlider}
	}
	return knitout.Needle{Bed: knitout.Front, Slot: n.Slot + rack, IsSlider: alignedSlider}
}

// Snapshot is an immutable deep copy of a Machine's state.
type Snapshot struct {
	Rack     knitout.Racking
	Beds     map[knitout.Needle][]knitout.LoopID
	Carriers map[int]carrierState
	Hooked   int
}

func (m *Machine) Snapshot() knitout.Snapshot {
	beds := make(map[knitout.Needle][]knitout.LoopID, len(m.beds))
	for n, loops := range m.beds {
		beds[n] = append([]knitout.LoopID(nil), loops...)
	}
	carriers := make(map[int]carrierState, len(m.carriers))
	for cid, c := range m.carriers {
		carriers[cid] = *c
	}
	return Snapshot{Rack: m.rack, Beds: beds, Carriers: carriers, Hooked: m.hooked}
}

// LoopsAt returns the current loop stack at needle n, for inspection by
// tests and callers; the returned slice is owned by the caller.
func (m *Machine) LoopsAt(n knitout.Needle) []knitout.LoopID {
	return append([]knitout.LoopID(nil), m.beds[n]...)
}
