package knitout

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Kind tags the variant held by an Instruction.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVersion
	KindMachine
	KindGauge
	KindPosition
	KindCarriers
	KindYarn
	KindComment
	KindNoOp
	KindBreakpoint
	KindPause
	KindRack
	KindIn
	KindInhook
	KindOut
	KindOuthook
	KindReleasehook
	KindKnit
	KindTuck
	KindMiss
	KindKick
	KindSplit
	KindXfer
	KindDrop
)

func (k Kind) String() string {
	switch k {
	case KindVersion:
		return "version"
	case KindMachine:
		return "machine"
	case KindGauge:
		return "gauge"
	case KindPosition:
		return "position"
	case KindCarriers:
		return "carriers"
	case KindYarn:
		return "yarn"
	case KindComment:
		return "comment"
	case KindNoOp:
		return "no-op"
	case KindBreakpoint:
		return "breakpoint"
	case KindPause:
		return "pause"
	case KindRack:
		return "rack"
	case KindIn:
		return "in"
	case KindInhook:
		return "inhook"
	case KindOut:
		return "out"
	case KindOuthook:
		return "outhook"
	case KindReleasehook:
		return "releasehook"
	case KindKnit:
		return "knit"
	case KindTuck:
		return "tuck"
	case KindMiss:
		return "miss"
	case KindKick:
		return "kick"
	case KindSplit:
		return "split"
	case KindXfer:
		return "xfer"
	case KindDrop:
		return "drop"
	default:
		return "invalid"
	}
}

// MachineType enumerates the "machine" header's recognized values.
type MachineType uint8

const (
	MachineUnspecified MachineType = iota
	MachineSWG
	MachineKniterate
)

func (m MachineType) String() string {
	switch m {
	case MachineSWG:
		return "swg"
	case MachineKniterate:
		return "kniterate"
	default:
		return ""
	}
}

// Position enumerates the "position" header's recognized values.
type Position uint8

const (
	PositionUnspecified Position = iota
	PositionLeft
	PositionRight
	PositionCenter
	PositionKeep
)

func (p Position) String() string {
	switch p {
	case PositionLeft:
		return "Left"
	case PositionRight:
		return "Right"
	case PositionCenter:
		return "Center"
	case PositionKeep:
		return "Keep"
	default:
		return ""
	}
}

// Instruction is a tagged variant over every line of a knitout program:
// header lines, comments, and executable operations. Only the payload
// fields relevant to Kind are meaningful; the rest are zero.
type Instruction struct {
	Kind Kind

	// metadata, common to every kind.
	OriginalLine *int
	CurrentLine  *int
	Source       string
	Comment      string
	id           uint64

	// header payloads
	IntValue  int    // Version, Gauge, Carriers
	Machine   MachineType
	Position  Position
	YarnKey   string // KindYarn's ";;Yarn-N" key suffix, e.g. "1"
	YarnValue string

	// Breakpoint payload
	Text string

	// Rack payload
	Racking Racking

	// Carrier-lifecycle payload (In/Inhook/Out/Outhook/Releasehook)
	Carrier int

	// Needle-directed payload (Knit/Tuck/Miss/Kick)
	Needle    Needle
	Direction Direction
	Carriers  CarrierSet

	// Split payload
	Needle2 Needle

	// NoOp payload
	Wrapped *Instruction
	Note    string

	// execution results, populated by the Executer as it runs the
	// instruction against the Machine; never copied by Clone.
	MadeLoops    []LoopID
	MovedLoops   []LoopID
	DroppedLoops []LoopID
}

// newInstruction stamps a fresh creation id onto an Instruction literal.
func newInstruction(kind Kind) Instruction {
	return Instruction{Kind: kind, id: instructionIDs.next()}
}

// ID returns the instruction's stable creation-order id, for use in
// hashing/sorting; it is not meaningful for equality.
func (in Instruction) ID() uint64 { return in.id }

// Clone returns a "fresh clone" of in per the engine's deep-copy
// convention: the clone does not inherit original/current line numbers,
// source, or any execution-result loop-id lists, but does get a new
// creation id. Everything else (including nested payloads like Needle,
// Carriers, Wrapped) is copied by value.
func (in Instruction) Clone() Instruction {
	clone := in
	clone.id = instructionIDs.next()
	clone.OriginalLine = nil
	clone.CurrentLine = nil
	clone.Source = ""
	clone.MadeLoops = nil
	clone.MovedLoops = nil
	clone.DroppedLoops = nil
	if in.Carriers != nil {
		clone.Carriers = append(CarrierSet(nil), in.Carriers...)
	}
	if in.Wrapped != nil {
		w := in.Wrapped.Clone()
		clone.Wrapped = &w
	}
	return clone
}

// IsHeader reports whether Kind is one of the header kinds.
func (k Kind) IsHeader() bool {
	switch k {
	case KindVersion, KindMachine, KindGauge, KindPosition, KindCarriers, KindYarn:
		return true
	default:
		return false
	}
}

// IsNeedleOp reports whether Kind operates on one or two needles.
func (k Kind) IsNeedleOp() bool {
	switch k {
	case KindKnit, KindTuck, KindMiss, KindKick, KindSplit, KindXfer, KindDrop:
		return true
	default:
		return false
	}
}

// IsDirected reports whether Kind carries a direction and participates in
// directed-pass ordering.
func (k Kind) IsDirected() bool {
	switch k {
	case KindKnit, KindTuck, KindMiss, KindKick, KindSplit:
		return true
	default:
		return false
	}
}

// HasCarrier reports whether Kind carries a carrier set.
func (k Kind) HasCarrier() bool {
	switch k {
	case KindKnit, KindTuck, KindMiss, KindKick, KindSplit:
		return true
	default:
		return false
	}
}

// HasSecondNeedle reports whether Kind names two needles.
func (k Kind) HasSecondNeedle() bool {
	return k == KindSplit || k == KindXfer
}

// IsLoopMaking reports whether executing Kind can create new loops.
func (k Kind) IsLoopMaking() bool {
	switch k {
	case KindKnit, KindTuck, KindSplit:
		return true
	default:
		return false
	}
}

// PassClass identifies the carriage-pass compatibility class for Kind, or
// (PassClassNone, false) if Kind cannot join any pass.
type PassClass uint8

const (
	PassClassNone PassClass = iota
	PassClassKnit           // Knit, Tuck, Kick are mutually compatible
	PassClassXfer
	PassClassSplit
	PassClassDrop
	PassClassMiss
)

func (k Kind) PassClass() (PassClass, bool) {
	switch k {
	case KindKnit, KindTuck, KindKick:
		return PassClassKnit, true
	case KindXfer:
		return PassClassXfer, true
	case KindSplit:
		return PassClassSplit, true
	case KindDrop:
		return PassClassDrop, true
	case KindMiss:
		return PassClassMiss, true
	default:
		return PassClassNone, false
	}
}

func (pc PassClass) String() string {
	switch pc {
	case PassClassKnit:
		return "knit-pass"
	case PassClassXfer:
		return "xfer"
	case PassClassSplit:
		return "split"
	case PassClassDrop:
		return "drop"
	case PassClassMiss:
		return "miss"
	default:
		return "none"
	}
}

// --- constructors ---

func NewVersion(v int) Instruction { i := newInstruction(KindVersion); i.IntValue = v; return i }
func NewMachine(m MachineType) Instruction { i := newInstruction(KindMachine); i.Machine = m; return i }
func NewGauge(needlesPerInch int) Instruction { i := newInstruction(KindGauge); i.IntValue = needlesPerInch; return i }
func NewPosition(p Position) Instruction { i := newInstruction(KindPosition); i.Position = p; return i }
func NewCarriers(count int) Instruction { i := newInstruction(KindCarriers); i.IntValue = count; return i }
func NewYarn(key, value string) Instruction {
	i := newInstruction(KindYarn)
	i.YarnKey, i.YarnValue = key, value
	return i
}
func NewComment(text string) Instruction { i := newInstruction(KindComment); i.Comment = text; return i }
func NewNoOp(wrapped Instruction, note string) Instruction {
	i := newInstruction(KindNoOp)
	i.Wrapped = &wrapped
	i.Note = note
	return i
}
func NewBreakpoint(text string) Instruction { i := newInstruction(KindBreakpoint); i.Text = text; return i }
func NewPause() Instruction                 { return newInstruction(KindPause) }
func NewRack(r Racking) Instruction         { i := newInstruction(KindRack); i.Racking = r; return i }

func newCarrierOp(kind Kind, carrier int) Instruction {
	i := newInstruction(kind)
	i.Carrier = carrier
	return i
}

func NewIn(carrier int) Instruction { return newCarrierOp(KindIn, carrier) }
func NewInhook(carrier int) Instruction { return newCarrierOp(KindInhook, carrier) }
func NewOut(carrier int) Instruction { return newCarrierOp(KindOut, carrier) }
func NewOuthook(carrier int) Instruction { return newCarrierOp(KindOuthook, carrier) }
func NewReleasehook(carrier int) Instruction { return newCarrierOp(KindReleasehook, carrier) }

func newNeedleOp(kind Kind, dir Direction, needle Needle, cs CarrierSet) Instruction {
	i := newInstruction(kind)
	i.Direction = dir
	i.Needle = needle
	i.Carriers = cs
	return i
}

func NewKnit(dir Direction, needle Needle, cs CarrierSet) Instruction { return newNeedleOp(KindKnit, dir, needle, cs) }
func NewTuck(dir Direction, needle Needle, cs CarrierSet) Instruction { return newNeedleOp(KindTuck, dir, needle, cs) }
func NewMiss(dir Direction, needle Needle, cs CarrierSet) Instruction { return newNeedleOp(KindMiss, dir, needle, cs) }
func NewKick(dir Direction, needle Needle, cs CarrierSet) Instruction { return newNeedleOp(KindKick, dir, needle, cs) }

func NewSplit(dir Direction, from, to Needle, cs CarrierSet) Instruction {
	i := newInstruction(KindSplit)
	i.Direction = dir
	i.Needle = from
	i.Needle2 = to
	i.Carriers = cs
	return i
}

func NewXfer(from, to Needle) Instruction {
	i := newInstruction(KindXfer)
	i.Needle = from
	i.Needle2 = to
	return i
}

func NewDrop(needle Needle) Instruction {
	i := newInstruction(KindDrop)
	i.Needle = needle
	return i
}

// String renders the instruction per the grammar in spec.md §6, with a
// trailing "; comment" when Comment is set. Header lines render in
// ";;Key: value" form; No-Ops render as ";No-Op: <wrapped>".
func (in Instruction) String() string {
	var body string
	switch in.Kind {
	case KindVersion:
		return fmt.Sprintf(";!knitout-%d", in.IntValue)
	case KindMachine:
		body = ";;Machine: " + in.Machine.String()
	case KindGauge:
		body = ";;Gauge: " + strconv.Itoa(in.IntValue)
	case KindPosition:
		body = ";;Position: " + in.Position.String()
	case KindCarriers:
		body = ";;Carriers: " + strconv.Itoa(in.IntValue)
	case KindYarn:
		body = ";;Yarn-" + in.YarnKey + ": " + in.YarnValue
	case KindComment:
		return "; " + in.Comment
	case KindNoOp:
		wrapped := ""
		if in.Wrapped != nil {
			wrapped = in.Wrapped.codeString()
		}
		body = ";No-Op: " + wrapped
		if in.Note != "" {
			body += " (" + in.Note + ")"
		}
		return body
	case KindBreakpoint:
		if in.Text != "" {
			return "; BreakPoint: " + in.Text
		}
		return "; BreakPoint"
	case KindPause:
		body = "pause"
	default:
		body = in.codeString()
	}
	if in.Comment != "" {
		return body + "; " + in.Comment
	}
	return body
}

// codeString renders only the executable "code" token of an instruction
// (spec.md §6's `code` production), without any trailing comment.
func (in Instruction) codeString() string {
	switch in.Kind {
	case KindRack:
		return "rack " + in.Racking.operandString()
	case KindIn:
		return "in " + strconv.Itoa(in.Carrier)
	case KindInhook:
		return "inhook " + strconv.Itoa(in.Carrier)
	case KindOut:
		return "out " + strconv.Itoa(in.Carrier)
	case KindOuthook:
		return "outhook " + strconv.Itoa(in.Carrier)
	case KindReleasehook:
		return "releasehook " + strconv.Itoa(in.Carrier)
	case KindPause:
		return "pause"
	case KindKnit, KindTuck, KindMiss, KindKick:
		return fmt.Sprintf("%v %v %v %v", in.Kind, in.Direction, in.Needle, in.Carriers)
	case KindSplit:
		return fmt.Sprintf("split %v %v %v %v", in.Direction, in.Needle, in.Needle2, in.Carriers)
	case KindXfer:
		return fmt.Sprintf("xfer %v %v", in.Needle, in.Needle2)
	case KindDrop:
		return fmt.Sprintf("drop %v", in.Needle)
	default:
		return ""
	}
}

// operandString renders the rack operand the way it was canonically
// written: an integer racking prints plain, an all-needle racking prints
// the exact decimal value Floor + Quarters/4 (e.g. Floor -1, Quarters 1
// prints "-0.75", not a naive "-1.25" digit concatenation).
func (rk Racking) operandString() string {
	if !rk.AllNeedle || rk.Quarters == 0 {
		return strconv.Itoa(rk.Value)
	}
	value := new(big.Rat).Add(new(big.Rat).SetInt64(int64(rk.Floor)), big.NewRat(int64(rk.Quarters), 4))
	return value.FloatString(2)
}

// trimmedComment strips leading/trailing whitespace the way a parsed
// trailing comment is stored.
func trimmedComment(s string) string {
	return strings.TrimSpace(s)
}
