package knitout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knitout-go/knitout"
	"github.com/knitout-go/knitout/machinesim"
)

func newExecuter(opts ...knitout.ExecuterOption) *knitout.Executer {
	base := []knitout.ExecuterOption{
		knitout.WithMachineFactory(func(spec knitout.MachineSpec) knitout.Machine {
			return machinesim.New(spec)
		}),
	}
	return knitout.NewExecuter(append(base, opts...)...)
}

func mustExecute(t *testing.T, source string, opts ...knitout.ExecuterOption) *knitout.Program {
	t.Helper()
	p, err := knitout.ParseProgram("test", source)
	require.NoError(t, err)
	out, err := newExecuter(opts...).Execute(p)
	require.NoError(t, err)
	return out
}

// S1: a single knit instruction is a one-instruction carriage pass, and
// produces exactly one made loop.
func TestExecuter_S1_singleKnitIsOneInstructionPass(t *testing.T) {
	e := newExecuter()
	p, err := knitout.ParseProgram("test", "in 1\nknit + f0 1\n")
	require.NoError(t, err)

	_, err = e.Execute(p)
	require.NoError(t, err)

	passes := e.Passes()
	require.Len(t, passes, 1)
	assert.Equal(t, 1, passes[0].Len())
}

// S2: consecutive knits in the same direction and carrier set over
// increasing needles join a single carriage pass.
func TestExecuter_S2_consecutiveKnitsJoinOnePass(t *testing.T) {
	e := newExecuter()
	p, err := knitout.ParseProgram("test", "in 1\nknit + f0 1\nknit + f1 1\nknit + f2 1\n")
	require.NoError(t, err)

	_, err = e.Execute(p)
	require.NoError(t, err)

	passes := e.Passes()
	require.Len(t, passes, 1)
	assert.Equal(t, 3, passes[0].Len())
}

// S3: a direction reversal forces a new carriage pass.
func TestExecuter_S3_directionReversalStartsNewPass(t *testing.T) {
	e := newExecuter()
	p, err := knitout.ParseProgram("test", "in 1\nknit + f0 1\nknit - f1 1\n")
	require.NoError(t, err)

	_, err = e.Execute(p)
	require.NoError(t, err)

	passes := e.Passes()
	require.Len(t, passes, 2)
}

// S4: a racking change forces a new carriage pass and emits a rack
// instruction ahead of it in the executed program.
func TestExecuter_S4_rackingChangeEmitsRackAndNewPass(t *testing.T) {
	out := mustExecute(t, "in 1\nknit + f0 1\nrack 1\nknit + f1 1\n")

	var sawRack bool
	for i := 0; i < out.Len(); i++ {
		if out.At(i).Kind == knitout.KindRack {
			sawRack = true
		}
	}
	assert.True(t, sawRack)
}

// S5: xfer moves a loop to its aligned needle, which must match exactly.
func TestExecuter_S5_xferMisalignmentIsMachineStateError(t *testing.T) {
	e := newExecuter()
	p, err := knitout.ParseProgram("test", "in 1\nknit + f0 1\nxfer f0 b5\n")
	require.NoError(t, err)

	_, err = e.Execute(p)
	require.Error(t, err)
	var mse knitout.MachineStateError
	require.ErrorAs(t, err, &mse)
}

// S6: split forms a new loop at the source needle and moves the old loop
// to the aligned destination, with both recorded in the loop arena.
func TestExecuter_S6_splitRecordsMadeAndMoved(t *testing.T) {
	e := newExecuter()
	p, err := knitout.ParseProgram("test", "in 1\nknit + f0 1\nsplit + f0 b0 1\n")
	require.NoError(t, err)

	out, err := e.Execute(p)
	require.NoError(t, err)

	var split knitout.Instruction
	for i := 0; i < out.Len(); i++ {
		if out.At(i).Kind == knitout.KindSplit {
			split = out.At(i)
		}
	}
	assert.Len(t, split.MadeLoops, 1)
	assert.Len(t, split.MovedLoops, 1)
}

// S7: drop removes a loop from the bed and marks it dropped in the arena.
func TestExecuter_S7_dropMarksLoopDropped(t *testing.T) {
	e := newExecuter()
	p, err := knitout.ParseProgram("test", "in 1\nknit + f0 1\ndrop f0\n")
	require.NoError(t, err)

	_, err = e.Execute(p)
	require.NoError(t, err)

	var found bool
	e.Loops().Each(func(id knitout.LoopID, l *knitout.Loop) {
		found = true
		assert.True(t, l.Dropped())
	})
	assert.True(t, found)
}

// S8: a releasehook carrier mismatch is a non-fatal Warning, not an error.
func TestExecuter_S8_releaseHookMismatchWarnsNotErrors(t *testing.T) {
	var warnings []knitout.Warning
	warn := func(w knitout.Warning) { warnings = append(warnings, w) }
	e := newExecuter(
		knitout.WithWarnFunc(warn),
		knitout.WithMachineFactory(func(spec knitout.MachineSpec) knitout.Machine {
			return machinesim.New(spec, machinesim.WithWarnFunc(warn))
		}),
	)
	p, err := knitout.ParseProgram("test", "inhook 1\nreleasehook 2\n")
	require.NoError(t, err)

	_, err = e.Execute(p)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
}

// S9: a breakpoint's armed snapshot is captured exactly at the first
// following executable instruction's original line.
func TestExecuter_S9_breakpointSnapshotCapturedAtTarget(t *testing.T) {
	source := "in 1\n;BreakPoint\nknit + f0 1\nknit + f1 1\n"
	p, err := knitout.ParseProgram("test", source)
	require.NoError(t, err)

	targets := p.BreakpointTargets()
	require.Len(t, targets, 1)
	var target int
	for _, v := range targets {
		target = v
	}

	e := newExecuter(knitout.WithSnapshotLines(target))
	_, err = e.Execute(p)
	require.NoError(t, err)

	_, ok := e.Snapshot(target)
	assert.True(t, ok)
}

func TestExecuter_inactiveCarrierIsMachineStateError(t *testing.T) {
	e := newExecuter()
	p, err := knitout.ParseProgram("test", "knit + f0 1\n")
	require.NoError(t, err)

	_, err = e.Execute(p)
	require.Error(t, err)
	var mse knitout.MachineStateError
	require.ErrorAs(t, err, &mse)
}

func TestExecuter_violationPolicyCanBeRelaxed(t *testing.T) {
	e := newExecuter(knitout.WithViolationPolicy(knitout.ViolationInactiveCarrier, knitout.PolicyIgnore))
	p, err := knitout.ParseProgram("test", "knit + f0 1\n")
	require.NoError(t, err)

	_, err = e.Execute(p)
	require.NoError(t, err)
}

func TestExecuter_extremaTrackLeftAndRightmostColumns(t *testing.T) {
	e := newExecuter()
	p, err := knitout.ParseProgram("test", "in 1\nknit + f0 1\nknit + f1 1\nknit + f2 1\n")
	require.NoError(t, err)

	_, err = e.Execute(p)
	require.NoError(t, err)

	left, right, ok := e.Extrema()
	require.True(t, ok)
	assert.Equal(t, 0, left)
	assert.Equal(t, 2, right)
}

func TestExecuter_headerLinesAreEmittedOnce(t *testing.T) {
	out := mustExecute(t, ";!knitout-2\n;;Machine: swg\nin 1\nknit + f0 1\n")

	var machineLines int
	for i := 0; i < out.Len(); i++ {
		if out.At(i).Kind == knitout.KindMachine {
			machineLines++
		}
	}
	assert.Equal(t, 1, machineLines)
}
