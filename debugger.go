package knitout

// DebugMode selects a Debugger's stepping granularity.
type DebugMode uint8

const (
	ModeContinue DebugMode = iota
	ModeStep
	ModeStepCarriagePass
)

type stepCondition struct {
	name    string
	perPass bool
	pred    func(d *Debugger, in Instruction) bool
}

// DebugEvent is what a Debugger hands to its resume callback: a snapshot
// captured at the moment execution paused, and why it paused.
type DebugEvent struct {
	Reason      string
	Instruction Instruction
	Snapshot    Snapshot
	Err         error
}

// ResumeAction is how a resume callback tells the Debugger to proceed.
type ResumeAction uint8

const (
	ResumeContinue ResumeAction = iota
	ResumeStep
	ResumeStepPass
	ResumeAbort
)

// abortError signals a debugger-requested abort; the executer's dispatch
// loop returns it like any other error.
type abortError struct{}

func (abortError) Error() string { return "knitout: execution aborted by debugger" }

// Debugger implements the stepping/breakpoint/condition protocol of
// spec.md §4.9 by attaching pre-execute and pass-closed hooks to an
// Executer. Each debug event captures a snapshot, then calls the
// configured resume callback and waits for it to say how to proceed.
type Debugger struct {
	mode        DebugMode
	breakpoints map[int]bool
	conditions  []stepCondition
	resume      func(ev DebugEvent) ResumeAction

	events []DebugEvent
}

// NewDebugger constructs a Debugger from options. The default resume
// callback resumes in the debugger's current mode, so a Debugger with no
// WithResume option merely records events for later inspection.
func NewDebugger(opts ...DebuggerOption) *Debugger {
	d := &Debugger{breakpoints: make(map[int]bool)}
	d.resume = func(DebugEvent) ResumeAction {
		switch d.mode {
		case ModeStep:
			return ResumeStep
		case ModeStepCarriagePass:
			return ResumeStepPass
		}
		return ResumeContinue
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Events returns every DebugEvent recorded so far, in order.
func (d *Debugger) Events() []DebugEvent { return append([]DebugEvent(nil), d.events...) }

// AddBreakpoint arms line as a breakpoint.
func (d *Debugger) AddBreakpoint(line int) { d.breakpoints[line] = true }

// RemoveBreakpoint disarms line.
func (d *Debugger) RemoveBreakpoint(line int) { delete(d.breakpoints, line) }

// SetMode changes the debugger's stepping granularity.
func (d *Debugger) SetMode(mode DebugMode) { d.mode = mode }

// Attach wires d into e's pre-execute and pass-closed hooks, so that e's
// subsequent Execute call pauses per d's configuration. A Debugger may
// only be attached to one Executer at a time.
func (d *Debugger) Attach(e *Executer) {
	e.preExecute = d.onPreExecute
	e.onPassClosed = d.onPassClosed
	e.onError = d.onExecuteError
}

func (d *Debugger) onPreExecute(e *Executer, in Instruction, startingNewPass bool) error {
	reason := ""
	switch {
	case in.OriginalLine != nil && d.breakpoints[*in.OriginalLine]:
		reason = "breakpoint"
	case d.mode == ModeStep:
		reason = "step"
	}
	for _, c := range d.conditions {
		if !c.perPass && c.pred(d, in) {
			reason = "condition:" + c.name
			break
		}
	}
	if reason == "" {
		return nil
	}
	return d.fire(e, reason, in, nil)
}

func (d *Debugger) onPassClosed(e *Executer, pass *CarriagePass) error {
	reason := ""
	if d.mode == ModeStepCarriagePass {
		reason = "pass-end"
	}
	var last Instruction
	if pass.Len() > 0 {
		last = pass.Instructions[pass.Len()-1]
	}
	for _, c := range d.conditions {
		if c.perPass && c.pred(d, last) {
			reason = "condition:" + c.name
			break
		}
	}
	if reason == "" {
		return nil
	}
	return d.fire(e, reason, last, nil)
}

func (d *Debugger) onExecuteError(e *Executer, err error) {
	var in Instruction
	if mse, ok := err.(MachineStateError); ok {
		in = mse.Instruction
	}
	_ = d.fire(e, "error", in, err)
}

func (d *Debugger) fire(e *Executer, reason string, in Instruction, cause error) error {
	ev := DebugEvent{Reason: reason, Instruction: in, Snapshot: e.Machine().Snapshot(), Err: cause}
	d.events = append(d.events, ev)

	switch d.resume(ev) {
	case ResumeStep:
		d.mode = ModeStep
	case ResumeStepPass:
		d.mode = ModeStepCarriagePass
	case ResumeAbort:
		return abortError{}
	case ResumeContinue:
		d.mode = ModeContinue
	}
	return nil
}
