package knitout

import (
	"errors"
	"fmt"
)

var (
	errBadLine      = errors.New("unrecognized instruction")
	errBadComment   = errors.New("malformed comment")
	errBadDirection = errors.New("expected + or -")
	errBadNeedle    = errors.New("expected a needle like f3, bs-1")
)

// ParseError reports a line of input that does not match the knitout
// grammar.
type ParseError struct {
	Line    int
	Text    string
	Cause   error
	Source  string
}

func (err ParseError) Error() string {
	if err.Cause != nil {
		return fmt.Sprintf("%v:%v: parse error in %q: %v", err.Source, err.Line, err.Text, err.Cause)
	}
	return fmt.Sprintf("%v:%v: parse error in %q", err.Source, err.Line, err.Text)
}

func (err ParseError) Unwrap() error { return err.Cause }

// IncompleteLineError reports a line whose grammar matched but which did
// not resolve to a recognized instruction.
type IncompleteLineError struct {
	Line   int
	Text   string
	Source string
}

func (err IncompleteLineError) Error() string {
	return fmt.Sprintf("%v:%v: incomplete line %q", err.Source, err.Line, err.Text)
}

// MachineStateError wraps a violation raised by the machine model during
// execution of an instruction, with the offending instruction and its
// current line number attached.
type MachineStateError struct {
	Instruction Instruction
	Line        int
	Cause       error
}

func (err MachineStateError) Error() string {
	return fmt.Sprintf("line %v: %v: %v", err.Line, err.Instruction.String(), err.Cause)
}

func (err MachineStateError) Unwrap() error { return err.Cause }

// InvariantViolationError indicates a broken engine-internal invariant
// (a loop source set twice, a loop dropped twice, etc) -- a programming
// error in the engine, not a user error in the input program.
type InvariantViolationError struct {
	What string
}

func (err InvariantViolationError) Error() string {
	return "invariant violation: " + err.What
}

// Warning is a non-fatal anomaly surfaced by the engine or machine, e.g.
// releasing a hook whose carrier does not match, or arming a snapshot at
// an already-passed line.
type Warning struct {
	What string
}

func (w Warning) Error() string { return w.What }

// WarnFunc receives non-fatal warnings raised during execution. A nil
// WarnFunc silently discards warnings.
type WarnFunc func(Warning)
