package knitout

// ExecuterOption configures a newly constructed Executer, mirroring the
// functional-options pattern used for the teacher's virtual machine.
type ExecuterOption func(*Executer)

// WithMachine supplies an already-constructed Machine, bypassing
// WithMachineFactory.
func WithMachine(m Machine) ExecuterOption {
	return func(e *Executer) { e.machine = m }
}

// WithMachineFactory supplies a constructor used to build a Machine from
// the finalized header's MachineSpec, when no Machine is supplied
// directly. cmd/knitout and tests wire this to machinesim.New.
func WithMachineFactory(factory func(MachineSpec) Machine) ExecuterOption {
	return func(e *Executer) { e.machineFactory = factory }
}

// WithHeader seeds the Executer's header before header lines are
// extracted from the program (extraction may still overwrite entries).
func WithHeader(h Header) ExecuterOption {
	return func(e *Executer) { e.header = h }
}

// WithWarnFunc installs a sink for non-fatal Warnings; the default
// discards them.
func WithWarnFunc(fn WarnFunc) ExecuterOption {
	return func(e *Executer) { e.warn = fn }
}

// WithLogf installs an optional trace logger, called with a line of text
// whenever a carriage pass closes; this is ambient tracing, not part of
// the engine's observable contract.
func WithLogf(fn func(format string, args ...interface{})) ExecuterOption {
	return func(e *Executer) { e.logf = fn }
}

// WithViolationPolicy relaxes (or tightens) the named violation's policy
// on the Machine, applied once the Machine is known to exist.
func WithViolationPolicy(kind ViolationKind, policy Policy) ExecuterOption {
	return func(e *Executer) { e.policies = append(e.policies, policyOverride{kind, policy}) }
}

// WithSnapshotLines arms a set of original line numbers for automatic
// snapshotting as the executed program is built.
func WithSnapshotLines(lines ...int) ExecuterOption {
	return func(e *Executer) {
		for _, l := range lines {
			e.snapshotArmed[l] = true
		}
	}
}

// WithPreExecuteHook installs a hook invoked immediately before each
// executable instruction runs against the Machine, with startingNewPass
// true exactly for the first instruction of a newly closed pass. An error
// returned from the hook aborts execution.
func WithPreExecuteHook(fn func(e *Executer, in Instruction, startingNewPass bool) error) ExecuterOption {
	return func(e *Executer) { e.preExecute = fn }
}

// WithOnErrorHook installs a hook invoked with the error that is about to
// abort execution (a MachineStateError, a debugger abort, or any other
// dispatch error), before it propagates.
func WithOnErrorHook(fn func(e *Executer, err error)) ExecuterOption {
	return func(e *Executer) { e.onError = fn }
}

// WithOnPassClosedHook installs a hook invoked immediately after a
// carriage pass finishes executing and has been recorded, before the
// executer moves on to the next instruction.
func WithOnPassClosedHook(fn func(e *Executer, pass *CarriagePass) error) ExecuterOption {
	return func(e *Executer) { e.onPassClosed = fn }
}

type policyOverride struct {
	kind   ViolationKind
	policy Policy
}

// DebuggerOption configures a newly constructed Debugger.
type DebuggerOption func(*Debugger)

// WithBreakpoints arms a set of original line numbers as breakpoints.
func WithBreakpoints(lines ...int) DebuggerOption {
	return func(d *Debugger) {
		for _, l := range lines {
			d.breakpoints[l] = true
		}
	}
}

// WithStepCondition installs a named predicate; perPass selects whether
// it is evaluated at pass-end (true) or per-instruction (false).
func WithStepCondition(name string, perPass bool, pred func(d *Debugger, in Instruction) bool) DebuggerOption {
	return func(d *Debugger) {
		d.conditions = append(d.conditions, stepCondition{name, perPass, pred})
	}
}

// WithMode sets the debugger's initial stepping mode.
func WithMode(mode DebugMode) DebuggerOption {
	return func(d *Debugger) { d.mode = mode }
}

// WithResume installs the callback invoked to wait for external resume
// whenever a debug event fires; the default returns immediately (useful
// for tests that just want to collect events without blocking).
func WithResume(fn func(ev DebugEvent) ResumeAction) DebuggerOption {
	return func(d *Debugger) { d.resume = fn }
}
