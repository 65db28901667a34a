package knitout

import "sort"

// CarriagePass is a contiguous, homogeneous run of needle instructions:
// the unit the executer actually closes and runs against the Machine in
// one racking/direction/carrier-set context.
type CarriagePass struct {
	id uint64

	Class     PassClass
	Racking   Racking
	Direction Direction
	Carriers  CarrierSet

	Instructions []Instruction
	membership   map[Needle]int

	leftmost, rightmost int
}

// ID returns the pass's stable creation-order id.
func (p *CarriagePass) ID() uint64 { return p.id }

// Leftmost and Rightmost report the pass's needle extrema, in
// rack-effective columns.
func (p *CarriagePass) Leftmost() int  { return p.leftmost }
func (p *CarriagePass) Rightmost() int { return p.rightmost }

// Len reports the number of instructions currently in the pass.
func (p *CarriagePass) Len() int { return len(p.Instructions) }

// FirstNeedle and LastNeedle return the needle of the first/last
// instruction in the pass's current order; after AddKick re-sorts the
// pass, these need not be the first/last instructions added.
func (p *CarriagePass) FirstNeedle() Needle { return p.Instructions[0].Needle }
func (p *CarriagePass) LastNeedle() Needle  { return p.Instructions[len(p.Instructions)-1].Needle }

// newCarriagePass opens a pass seeded by first, which is presumed
// pass-eligible and executing under the machine's current racking rack.
// Returns (nil, false) if first's kind cannot start a pass.
func newCarriagePass(first Instruction, rack Racking) (*CarriagePass, bool) {
	class, ok := first.Kind.PassClass()
	if !ok {
		return nil, false
	}
	p := &CarriagePass{
		id:         passIDs.next(),
		Class:      class,
		Racking:    rack,
		membership: make(map[Needle]int),
	}
	if first.Kind.IsDirected() {
		p.Direction = first.Direction
		p.Carriers = first.Carriers
	}
	p.addUnchecked(first)
	return p, true
}

func (p *CarriagePass) addUnchecked(in Instruction) {
	idx := len(p.Instructions)
	p.membership[in.Needle] = idx
	if in.Kind.HasSecondNeedle() {
		p.membership[in.Needle2] = idx
	}
	p.Instructions = append(p.Instructions, in)

	col := in.Needle.EffectiveColumn(p.Racking.Value)
	if idx == 0 {
		p.leftmost, p.rightmost = col, col
		return
	}
	if col < p.leftmost {
		p.leftmost = col
	}
	if col > p.rightmost {
		p.rightmost = col
	}
}

// CanAdd reports whether candidate, were it executed under the machine's
// current racking rack, is eligible to extend p -- per spec.md §4.6's
// five rules: same racking/all-needle, needle not already in the pass,
// compatibility-class match, (if directed) same direction and carrier
// set, and (if directed) monotonic slot ordering in the pass's direction,
// with the all-needle front/back-same-column exception.
func (p *CarriagePass) CanAdd(candidate Instruction, rack Racking) bool {
	if rack.Value != p.Racking.Value || rack.AllNeedle != p.Racking.AllNeedle {
		return false
	}
	if _, taken := p.membership[candidate.Needle]; taken {
		return false
	}
	if candidate.Kind.HasSecondNeedle() {
		if _, taken := p.membership[candidate.Needle2]; taken {
			return false
		}
	}
	class, ok := candidate.Kind.PassClass()
	if !ok || class != p.Class {
		return false
	}
	if !p.isDirectedClass() {
		return true
	}
	if candidate.Direction != p.Direction || !candidate.Carriers.Equal(p.Carriers) {
		return false
	}
	return p.orderingOK(candidate, rack)
}

func (p *CarriagePass) isDirectedClass() bool {
	switch p.Class {
	case PassClassKnit, PassClassSplit, PassClassMiss:
		return true
	default:
		return false
	}
}

func (p *CarriagePass) orderingOK(candidate Instruction, rack Racking) bool {
	last := p.Instructions[len(p.Instructions)-1].Needle
	lastCol := last.EffectiveColumn(rack.Value)
	candCol := candidate.Needle.EffectiveColumn(rack.Value)
	if rack.AllNeedle && candidate.Needle.Bed != last.Bed && candCol == lastCol {
		return true
	}
	return p.Direction.Ordered(lastCol, candCol)
}

// Add appends candidate to the pass without checking CanAdd; callers must
// have already verified eligibility. Returns false (and does nothing) if
// candidate's kind cannot join any pass at all.
func (p *CarriagePass) Add(candidate Instruction) bool {
	if _, ok := candidate.Kind.PassClass(); !ok {
		return false
	}
	p.addUnchecked(candidate)
	return true
}

// AddKick inserts a synthetic Kick into a knit-pass-class pass to
// position a carrier, per spec.md §4.6: the kick must share the pass's
// carrier set and land on a slot not already occupied, after which the
// pass's instructions are re-sorted in the pass's direction.
func (p *CarriagePass) AddKick(kick Instruction) bool {
	if p.Class != PassClassKnit || kick.Kind != KindKick {
		return false
	}
	if !kick.Carriers.Equal(p.Carriers) {
		return false
	}
	if _, occupied := p.membership[kick.Needle]; occupied {
		return false
	}
	p.addUnchecked(kick)
	p.sortByDirection()
	return true
}

// sortByDirection re-orders Instructions by rack-effective column,
// ascending for Rightward, descending for Leftward, and rebuilds the
// needle membership index to match.
func (p *CarriagePass) sortByDirection() {
	sort.SliceStable(p.Instructions, func(i, j int) bool {
		ci := p.Instructions[i].Needle.EffectiveColumn(p.Racking.Value)
		cj := p.Instructions[j].Needle.EffectiveColumn(p.Racking.Value)
		if p.Direction == Leftward {
			return ci > cj
		}
		return ci < cj
	})
	for idx, in := range p.Instructions {
		p.membership[in.Needle] = idx
		if in.Kind.HasSecondNeedle() {
			p.membership[in.Needle2] = idx
		}
	}
}

// Mergeable reports whether b could be folded into a: b's first
// instruction must be eligible to extend a under CanAdd, and each
// subsequent instruction of b must be eligible to extend the
// progressively-growing merge under the same rule.
func Mergeable(a, b *CarriagePass, rack Racking) bool {
	if a == nil || b == nil || len(b.Instructions) == 0 {
		return false
	}
	trial := *a
	trial.membership = make(map[Needle]int, len(a.membership))
	for k, v := range a.membership {
		trial.membership[k] = v
	}
	trial.Instructions = append([]Instruction(nil), a.Instructions...)

	for _, in := range b.Instructions {
		if !trial.CanAdd(in, rack) {
			return false
		}
		trial.addUnchecked(in)
	}
	return true
}

// Merge appends b's instructions onto a in order, assuming Mergeable(a,
// b, rack) already held.
func Merge(a, b *CarriagePass) {
	for _, in := range b.Instructions {
		a.addUnchecked(in)
	}
}
