package knitout

// HeaderKind names one of the header-line kinds a Header can hold.
type HeaderKind uint8

const (
	HeaderVersion HeaderKind = iota
	HeaderMachine
	HeaderGauge
	HeaderPosition
	HeaderCarriers
)

// Header is a keyed collection holding at most one line per HeaderKind,
// plus any number of opaque "Yarn-N" extra header lines that spec.md's
// grammar allows but does not otherwise structure.
type Header struct {
	Version  *Instruction
	Machine  *Instruction
	Gauge    *Instruction
	Position *Instruction
	Carriers *Instruction
	Extra    []Instruction // KindYarn lines, in first-seen order
}

// Set installs line into the Header's matching slot, replacing the
// existing entry for that header kind (or appending, for Yarn-N extras).
// Returns true iff the new line's value differs from what was there
// before (Extra entries are always considered a change when added).
func (h *Header) Set(line Instruction) bool {
	switch line.Kind {
	case KindVersion:
		return setHeaderSlot(&h.Version, line, func(a, b Instruction) bool { return a.IntValue == b.IntValue })
	case KindMachine:
		return setHeaderSlot(&h.Machine, line, func(a, b Instruction) bool { return a.Machine == b.Machine })
	case KindGauge:
		return setHeaderSlot(&h.Gauge, line, func(a, b Instruction) bool { return a.IntValue == b.IntValue })
	case KindPosition:
		return setHeaderSlot(&h.Position, line, func(a, b Instruction) bool { return a.Position == b.Position })
	case KindCarriers:
		return setHeaderSlot(&h.Carriers, line, func(a, b Instruction) bool { return a.IntValue == b.IntValue })
	case KindYarn:
		for i, e := range h.Extra {
			if e.YarnKey == line.YarnKey {
				changed := e.YarnValue != line.YarnValue
				h.Extra[i] = line
				return changed
			}
		}
		h.Extra = append(h.Extra, line)
		return true
	default:
		return false
	}
}

func setHeaderSlot(slot **Instruction, line Instruction, equalValue func(a, b Instruction) bool) bool {
	changed := *slot == nil || !equalValue(**slot, line)
	*slot = &line
	return changed
}

// MachineSpec is the Header projected to the minimal machine
// configuration, per spec.md §4.3.
type MachineSpec struct {
	Machine      MachineType
	Gauge        int
	Position     Position
	CarrierCount int
}

// Spec projects the Header to a MachineSpec, defaulting any unset field.
func (h Header) Spec() MachineSpec {
	var spec MachineSpec
	if h.Machine != nil {
		spec.Machine = h.Machine.Machine
	}
	if h.Gauge != nil {
		spec.Gauge = h.Gauge.IntValue
	}
	if h.Position != nil {
		spec.Position = h.Position.Position
	}
	if h.Carriers != nil {
		spec.CarrierCount = h.Carriers.IntValue
	}
	return spec
}

// CarriersFromIDs resolves the Carriers header's value from a set of
// carrier ids: the max id if a set is given, the id itself for a single
// carrier, per spec.md §4.3.
func CarriersFromIDs(ids ...int) int {
	max := 0
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max
}

// Lines renders the Header's lines in canonical order: Version, Machine,
// Gauge, Position, Carriers, then any Yarn-N extras in first-seen order.
func (h Header) Lines() []Instruction {
	var lines []Instruction
	if h.Version != nil {
		lines = append(lines, *h.Version)
	}
	if h.Machine != nil {
		lines = append(lines, *h.Machine)
	}
	if h.Gauge != nil {
		lines = append(lines, *h.Gauge)
	}
	if h.Position != nil {
		lines = append(lines, *h.Position)
	}
	if h.Carriers != nil {
		lines = append(lines, *h.Carriers)
	}
	lines = append(lines, h.Extra...)
	return lines
}

// ExtractHeaders iterates prog's header-kind lines in program order,
// applying each to h via Set. Returns true if any line changed h.
func ExtractHeaders(h *Header, lines []Instruction) bool {
	changed := false
	for _, line := range lines {
		if line.Kind.IsHeader() {
			if h.Set(line) {
				changed = true
			}
		}
	}
	return changed
}
