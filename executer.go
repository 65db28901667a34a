package knitout

import (
	"fmt"

	"github.com/knitout-go/knitout/internal/panicerr"
)

// Executer orchestrates a single run: parse (elsewhere) → header
// extraction → per-instruction dispatch → carriage-pass assembly →
// execution against a Machine → re-emission into an executed Program.
type Executer struct {
	machine        Machine
	machineFactory func(MachineSpec) Machine
	header         Header
	warn           WarnFunc
	logf           func(format string, args ...interface{})
	policies       []policyOverride
	preExecute     func(e *Executer, in Instruction, startingNewPass bool) error
	onError        func(e *Executer, err error)
	onPassClosed   func(e *Executer, pass *CarriagePass) error

	executed *Program
	loops    LoopArena

	currentPass *CarriagePass
	rack        Racking
	passes      []*CarriagePass

	leftmost, rightmost int
	haveExtrema         bool

	snapshotArmed map[int]bool
	snapshots     map[int]Snapshot
}

// NewExecuter constructs an Executer from options. The Machine, if not
// supplied via WithMachine, is built lazily from the finalized header
// using WithMachineFactory, the first time Execute runs.
func NewExecuter(opts ...ExecuterOption) *Executer {
	e := &Executer{
		snapshotArmed: make(map[int]bool),
		snapshots:     make(map[int]Snapshot),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Machine returns the Machine this Executer is driving, after at least
// one call to Execute has run (nil beforehand if none was supplied).
func (e *Executer) Machine() Machine { return e.machine }

// Passes returns every carriage pass closed during the most recent
// Execute call, in closure order.
func (e *Executer) Passes() []*CarriagePass { return e.passes }

// Loops returns the loop arena populated during the most recent Execute
// call.
func (e *Executer) Loops() *LoopArena { return &e.loops }

// Snapshot returns the snapshot captured at original line number line, if
// any was armed and reached.
func (e *Executer) Snapshot(line int) (Snapshot, bool) {
	s, ok := e.snapshots[line]
	return s, ok
}

// Extrema returns the leftmost/rightmost rack-effective columns reached
// across every pass executed so far.
func (e *Executer) Extrema() (leftmost, rightmost int, ok bool) {
	return e.leftmost, e.rightmost, e.haveExtrema
}

// Execute runs p to completion per spec.md §4.5, returning the
// reorganized, validated executed program. A broken engine-internal
// invariant (a loop bookkeeping panic) is recovered here and turned into
// a plain error rather than crashing the caller.
func (e *Executer) Execute(p *Program) (*Program, error) {
	err := panicerr.Recover("execute", func() error { return e.execute(p) })
	return e.executed, err
}

func (e *Executer) execute(p *Program) error {
	ExtractHeaders(&e.header, p.Instructions())

	if e.machine == nil {
		if e.machineFactory == nil {
			return fmt.Errorf("knitout: no machine or machine factory supplied")
		}
		e.machine = e.machineFactory(e.header.Spec())
	}
	for _, po := range e.policies {
		e.machine.SetPolicy(po.kind, po.policy)
	}

	e.executed = NewProgram()
	for _, line := range e.header.Lines() {
		e.executed.Append(line.Clone())
	}

	for i := 0; i < p.Len(); i++ {
		line := p.At(i)
		if line.Kind.IsHeader() {
			continue
		}
		if err := e.dispatch(line); err != nil {
			if e.onError != nil {
				e.onError(e, err)
			}
			return err
		}
	}
	if err := e.closeCurrentPass(); err != nil {
		if e.onError != nil {
			e.onError(e, err)
		}
		return err
	}

	return nil
}

func (e *Executer) dispatch(line Instruction) error {
	switch line.Kind {
	case KindComment, KindPause, KindBreakpoint:
		e.appendExecuted(line)
		return nil
	}

	if _, ok := line.Kind.PassClass(); ok {
		return e.routeToPass(line)
	}

	if err := e.closeCurrentPass(); err != nil {
		return err
	}
	return e.executeDirect(line)
}

// routeToPass implements the assembler side of §4.5 step 6: extend the
// current pass if eligible, else close it and open a new one.
func (e *Executer) routeToPass(line Instruction) error {
	if e.currentPass != nil && e.currentPass.CanAdd(line, e.rack) {
		e.currentPass.Add(line)
		return nil
	}
	if err := e.closeCurrentPass(); err != nil {
		return err
	}
	pass, ok := newCarriagePass(line, e.rack)
	if !ok {
		return fmt.Errorf("knitout: %v cannot start a carriage pass", line.Kind)
	}
	e.currentPass = pass
	return nil
}

// closeCurrentPass implements §4.6's pass-closing sequence.
func (e *Executer) closeCurrentPass() error {
	pass := e.currentPass
	if pass == nil {
		return nil
	}
	e.currentPass = nil

	changed, err := e.machine.Rack(pass.Racking)
	if err != nil {
		return e.wrapMachineError(NewRack(pass.Racking), err)
	}
	if changed {
		e.rack = pass.Racking
		e.appendExecuted(NewRack(pass.Racking))
	}

	if pass.Class == PassClassXfer && pass.Direction == NoDirection {
		pass.Direction = Rightward
	}

	for idx, in := range pass.Instructions {
		if e.preExecute != nil {
			if err := e.preExecute(e, in, idx == 0); err != nil {
				return err
			}
		}
		if err := e.executePassInstruction(in); err != nil {
			return err
		}
	}

	e.passes = append(e.passes, pass)
	if !e.haveExtrema {
		e.leftmost, e.rightmost, e.haveExtrema = pass.Leftmost(), pass.Rightmost(), true
	} else {
		if pass.Leftmost() < e.leftmost {
			e.leftmost = pass.Leftmost()
		}
		if pass.Rightmost() > e.rightmost {
			e.rightmost = pass.Rightmost()
		}
	}

	if e.logf != nil {
		e.logf("closed %v pass #%d: %d instructions, columns [%d, %d]",
			pass.Class, pass.ID(), pass.Len(), pass.Leftmost(), pass.Rightmost())
	}
	if e.onPassClosed != nil {
		return e.onPassClosed(e, pass)
	}
	return nil
}

// executePassInstruction runs one instruction that belongs to a pass
// against the Machine and re-emits it per §4.7.
func (e *Executer) executePassInstruction(in Instruction) error {
	effected := false

	switch in.Kind {
	case KindKnit:
		dropped, made, err := e.machine.Knit(in.Carriers, in.Needle, in.Direction)
		if err != nil {
			return e.wrapMachineError(in, err)
		}
		e.recordLoops(&in, in.ID(), made, nil, dropped)
		effected = len(made) > 0 || len(dropped) > 0
	case KindTuck:
		made, err := e.machine.Tuck(in.Carriers, in.Needle, in.Direction)
		if err != nil {
			return e.wrapMachineError(in, err)
		}
		e.recordLoops(&in, in.ID(), made, nil, nil)
		effected = len(made) > 0
	case KindMiss, KindKick:
		if err := e.machine.Miss(in.Carriers, in.Needle, in.Direction); err != nil {
			return e.wrapMachineError(in, err)
		}
		effected = true
	case KindSplit:
		made, moved, err := e.machine.Split(in.Carriers, in.Needle, in.Needle2, in.Direction)
		if err != nil {
			return e.wrapMachineError(in, err)
		}
		e.recordLoops(&in, in.ID(), made, moved, nil)
		effected = len(made) > 0 || len(moved) > 0
	case KindXfer:
		moved, err := e.machine.Xfer(in.Needle, in.Needle2)
		if err != nil {
			return e.wrapMachineError(in, err)
		}
		e.recordLoops(&in, in.ID(), nil, moved, nil)
		effected = len(moved) > 0
	case KindDrop:
		dropped, err := e.machine.Drop(in.Needle)
		if err != nil {
			return e.wrapMachineError(in, err)
		}
		e.recordLoops(&in, in.ID(), nil, nil, dropped)
		effected = len(dropped) > 0
	}

	if effected {
		e.appendExecuted(in)
	} else if in.OriginalLine != nil {
		e.appendExecuted(NewNoOp(in, ""))
	}
	return nil
}

// executeDirect runs a non-pass executable (carrier ops) directly, per
// §4.5 step 6's "any other executable" branch.
func (e *Executer) executeDirect(in Instruction) error {
	if e.preExecute != nil {
		if err := e.preExecute(e, in, false); err != nil {
			return err
		}
	}
	var err error
	effected := true

	switch in.Kind {
	case KindIn:
		err = e.machine.BringIn(in.Carrier)
	case KindInhook:
		err = e.machine.InHook(in.Carrier)
	case KindOut:
		err = e.machine.Out(in.Carrier)
	case KindOuthook:
		err = e.machine.OutHook(in.Carrier)
	case KindReleasehook:
		err = e.machine.ReleaseHook(in.Carrier)
	case KindRack:
		var changed bool
		changed, err = e.machine.Rack(in.Racking)
		if err == nil && changed {
			e.rack = in.Racking
		}
		effected = changed
	default:
		return fmt.Errorf("knitout: %v is not directly executable", in.Kind)
	}
	if err != nil {
		return e.wrapMachineError(in, err)
	}

	if effected {
		e.appendExecuted(in)
	} else if in.OriginalLine != nil {
		e.appendExecuted(NewNoOp(in, ""))
	}
	return nil
}

// recordLoops applies §4.8's loop bookkeeping. made loop ids were just
// minted by the Machine (via NewLoopID) as it formed each loop; the
// engine registers them here, which sets their source exactly once. A
// moved loop's transfer history gains this instruction's destination
// needle; a dropped loop's terminal instruction is set exactly once.
func (e *Executer) recordLoops(in *Instruction, instructionID uint64, made, moved, dropped []LoopID) {
	in.MadeLoops = made
	in.MovedLoops = moved
	in.DroppedLoops = dropped

	for _, id := range made {
		e.loops.Register(id, in.Needle, instructionID)
	}

	dest := in.Needle2
	if !in.Kind.HasSecondNeedle() {
		dest = in.Needle
	}
	for _, id := range moved {
		if l, ok := e.loops.Get(id); ok {
			l.RecordTransfer(dest)
		}
	}
	for _, id := range dropped {
		if l, ok := e.loops.Get(id); ok {
			l.RecordDrop(in.Needle, instructionID)
		}
	}
}

// appendExecuted appends line to the executed program and, if line
// carries a known original line number that matches an armed snapshot,
// captures it -- strictly after any loop bookkeeping has been applied,
// per spec.md §5's ordering rule.
func (e *Executer) appendExecuted(line Instruction) {
	e.executed.Append(line)
	if line.OriginalLine == nil {
		return
	}
	orig := *line.OriginalLine
	if e.snapshotArmed[orig] {
		e.snapshots[orig] = e.machine.Snapshot()
	}
}

// ArmSnapshot arms line for automatic snapshotting. If line has already
// been passed in the current executed program, a Warning is raised via
// the configured WarnFunc (this does not error).
func (e *Executer) ArmSnapshot(line int) {
	e.snapshotArmed[line] = true
	if e.executed == nil {
		return
	}
	for i := 0; i < e.executed.Len(); i++ {
		if ol := e.executed.At(i).OriginalLine; ol != nil && *ol == line {
			e.warnIf(Warning{What: fmt.Sprintf("snapshot armed at line %d already passed", line)})
			return
		}
	}
}

// DisarmSnapshot disarms line, optionally discarding any snapshot already
// taken there.
func (e *Executer) DisarmSnapshot(line int, discard bool) {
	delete(e.snapshotArmed, line)
	if discard {
		delete(e.snapshots, line)
	}
}

func (e *Executer) warnIf(w Warning) {
	if e.warn != nil {
		e.warn(w)
	}
}

func (e *Executer) wrapMachineError(in Instruction, cause error) error {
	line := -1
	if in.CurrentLine != nil {
		line = *in.CurrentLine
	}
	return MachineStateError{Instruction: in, Line: line, Cause: cause}
}
