package knitout

import (
	"io"

	"github.com/knitout-go/knitout/internal/flushio"
)

// Program is an ordered sequence of instructions: header lines and body
// (executable instructions + comments), indexed by current position with
// stable original line numbers assigned once at parse/append time.
type Program struct {
	lines []Instruction
}

// NewProgram builds a Program from an initial instruction sequence,
// assigning original line numbers in order.
func NewProgram(lines ...Instruction) *Program {
	p := &Program{}
	for _, l := range lines {
		p.Append(l)
	}
	return p
}

// Len returns the number of instructions in the program.
func (p *Program) Len() int { return len(p.lines) }

// At returns the instruction at current index i.
func (p *Program) At(i int) Instruction { return p.lines[i] }

// Instructions returns the program's instructions in current order. The
// returned slice is owned by the caller.
func (p *Program) Instructions() []Instruction {
	return append([]Instruction(nil), p.lines...)
}

// Append adds line to the end of the program, assigning its original line
// number if it does not already have one, and renumbering current lines.
func (p *Program) Append(line Instruction) {
	p.lines = append(p.lines, line)
	p.renumberFrom(len(p.lines) - 1)
}

// Insert places line at index i, pushing later lines down, and
// renumbering current indices of following lines.
func (p *Program) Insert(i int, line Instruction) {
	p.InsertMany(i, []Instruction{line})
}

// InsertMany places lines starting at index i.
func (p *Program) InsertMany(i int, lines []Instruction) {
	out := make([]Instruction, len(p.lines)+len(lines))
	copy(out, p.lines[:i])
	copy(out[i:], lines)
	copy(out[i+len(lines):], p.lines[i:])
	p.lines = out
	p.renumberFrom(i)
}

// Remove deletes the instruction at index i.
func (p *Program) Remove(i int) {
	p.RemoveRange(i, i+1)
}

// RemoveRange deletes instructions in [i, j).
func (p *Program) RemoveRange(i, j int) {
	p.lines = append(p.lines[:i], p.lines[j:]...)
	p.renumberFrom(i)
}

// Swap replaces the instruction at index i with next. If next does not
// already have an original line number or source, it inherits them from
// the instruction it replaces.
func (p *Program) Swap(i int, next Instruction) {
	prev := p.lines[i]
	if next.OriginalLine == nil {
		next.OriginalLine = prev.OriginalLine
	}
	if next.Source == "" {
		next.Source = prev.Source
	}
	p.lines[i] = next
	p.renumberFrom(i)
}

// renumberFrom re-assigns OriginalLine (if unset) and CurrentLine for
// every instruction at or after index start, so that CurrentLine always
// equals its position in the program.
func (p *Program) renumberFrom(start int) {
	for i := start; i < len(p.lines); i++ {
		cur := i
		p.lines[i].CurrentLine = &cur
		if p.lines[i].OriginalLine == nil {
			orig := i
			p.lines[i].OriginalLine = &orig
		}
	}
}

// ShiftNeedlePositions returns a copy of the program in which every
// needle instruction's needle(s) are translated by delta slots. A delta
// of 0 returns an equivalent copy without modification.
func (p *Program) ShiftNeedlePositions(delta int) *Program {
	out := &Program{lines: append([]Instruction(nil), p.lines...)}
	if delta == 0 {
		return out
	}
	for i, line := range out.lines {
		if !line.Kind.IsNeedleOp() {
			continue
		}
		line.Needle.Slot += delta
		if line.Kind.HasSecondNeedle() {
			line.Needle2.Slot += delta
		}
		out.lines[i] = line
	}
	return out
}

// organizeOptions controls which non-semantic lines Organize drops.
type organizeOptions struct {
	dropComments    bool
	dropNoOps       bool
	dropPauses      bool
	dropBreakpoints bool
}

// Organize returns a new Program in canonical order (version line first,
// then the rest of the header, then the body in original relative
// order), optionally dropping comments, no-ops, pauses, and/or
// breakpoints, with fresh current-line numbering.
func (p *Program) Organize(dropComments, dropNoOps, dropPauses, dropBreakpoints bool) *Program {
	opts := organizeOptions{dropComments, dropNoOps, dropPauses, dropBreakpoints}

	var header Header
	ExtractHeaders(&header, p.lines)

	out := &Program{}
	for _, line := range header.Lines() {
		out.lines = append(out.lines, line)
	}
	for _, line := range p.lines {
		if line.Kind.IsHeader() {
			continue
		}
		if opts.dropComments && line.Kind == KindComment {
			continue
		}
		if opts.dropNoOps && line.Kind == KindNoOp {
			continue
		}
		if opts.dropPauses && line.Kind == KindPause {
			continue
		}
		if opts.dropBreakpoints && line.Kind == KindBreakpoint {
			continue
		}
		out.lines = append(out.lines, line)
	}
	out.renumberFrom(0)
	return out
}

// NewHeaderProgram clones just the version and header lines of p, in
// canonical order, as a fresh Program.
func (p *Program) NewHeaderProgram() *Program {
	var header Header
	ExtractHeaders(&header, p.lines)
	out := &Program{}
	for _, line := range header.Lines() {
		out.Append(line.Clone())
	}
	return out
}

// Headers returns every header-kind line, in program order.
func (p *Program) Headers() []Instruction {
	var out []Instruction
	for _, line := range p.lines {
		if line.Kind.IsHeader() {
			out = append(out, line)
		}
	}
	return out
}

// Body returns every non-header line (instructions and comments), in
// program order.
func (p *Program) Body() []Instruction {
	var out []Instruction
	for _, line := range p.lines {
		if !line.Kind.IsHeader() {
			out = append(out, line)
		}
	}
	return out
}

// Comments returns every comment line, excluding breakpoints.
func (p *Program) Comments() []Instruction {
	var out []Instruction
	for _, line := range p.lines {
		if line.Kind == KindComment {
			out = append(out, line)
		}
	}
	return out
}

// LoopMakingInstructions returns every instruction whose Kind can create
// loops (Knit, Tuck, Split), in program order.
func (p *Program) LoopMakingInstructions() []Instruction {
	var out []Instruction
	for _, line := range p.lines {
		if line.Kind.IsLoopMaking() {
			out = append(out, line)
		}
	}
	return out
}

// NextLoopMakingAfter returns the index of the first loop-making
// instruction strictly after index i, or -1 if there is none.
func (p *Program) NextLoopMakingAfter(i int) int {
	for j := i + 1; j < len(p.lines); j++ {
		if p.lines[j].Kind.IsLoopMaking() {
			return j
		}
	}
	return -1
}

// WriteTo serializes p's lines, one per line, to w, flushing w if it
// buffers. This is the counterpart to ParseProgram: round-tripping a
// program through ParseProgram and WriteTo reproduces its code and
// comments exactly, modulo canonical header ordering.
func (p *Program) WriteTo(w io.Writer) error {
	wf := flushio.NewWriteFlusher(w)
	for _, line := range p.lines {
		if _, err := io.WriteString(wf, line.String()+"\n"); err != nil {
			return err
		}
	}
	return wf.Flush()
}

// BreakpointTargets maps each breakpoint's original line number to the
// original line number of the first following executable instruction.
func (p *Program) BreakpointTargets() map[int]int {
	targets := make(map[int]int)
	var pendingOrig *int
	for _, line := range p.lines {
		if line.Kind == KindBreakpoint {
			pendingOrig = line.OriginalLine
			continue
		}
		if pendingOrig != nil && line.OriginalLine != nil {
			targets[*pendingOrig] = *line.OriginalLine
			pendingOrig = nil
		}
	}
	return targets
}
