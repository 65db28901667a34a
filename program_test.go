package knitout_test

import (
	"strings"
	"testing"

	"github.com/knitout-go/knitout"
	"github.com/stretchr/testify/require"
)

func needleKnit(slot int) knitout.Instruction {
	return knitout.NewKnit(knitout.Rightward, knitout.Needle{Bed: knitout.Front, Slot: slot}, knitout.CarrierSet{1})
}

func TestProgram_appendAssignsLineNumbersOnce(t *testing.T) {
	p := knitout.NewProgram()
	p.Append(needleKnit(0))
	p.Append(needleKnit(1))
	p.Append(needleKnit(2))

	require.Equal(t, 3, p.Len())
	for i := 0; i < 3; i++ {
		line := p.At(i)
		require.Equal(t, i, *line.CurrentLine)
		require.Equal(t, i, *line.OriginalLine)
	}
}

func TestProgram_insertPreservesOriginalLineNumbers(t *testing.T) {
	p := knitout.NewProgram(needleKnit(0), needleKnit(1), needleKnit(2))
	firstOrig := *p.At(0).OriginalLine
	lastOrig := *p.At(2).OriginalLine

	p.Insert(1, needleKnit(99))

	require.Equal(t, 4, p.Len())
	require.Equal(t, firstOrig, *p.At(0).OriginalLine, "line before insertion point keeps its original line number")
	require.Equal(t, lastOrig, *p.At(3).OriginalLine, "line after insertion point keeps its original line number")
	require.Equal(t, 99, p.At(1).Needle.Slot, "inserted instruction lands at the requested index")

	for i := 0; i < p.Len(); i++ {
		require.Equal(t, i, *p.At(i).CurrentLine, "current line always matches position")
	}
}

func TestProgram_insertManyShiftsTailCorrectly(t *testing.T) {
	p := knitout.NewProgram(needleKnit(0), needleKnit(1))
	p.InsertMany(1, []knitout.Instruction{needleKnit(10), needleKnit(11), needleKnit(12)})

	require.Equal(t, 5, p.Len())
	slots := []int{0, 10, 11, 12, 1}
	for i, want := range slots {
		require.Equal(t, want, p.At(i).Needle.Slot, "index %d", i)
		require.Equal(t, i, *p.At(i).CurrentLine)
	}
}

func TestProgram_removeRenumbers(t *testing.T) {
	p := knitout.NewProgram(needleKnit(0), needleKnit(1), needleKnit(2))
	p.Remove(1)

	require.Equal(t, 2, p.Len())
	require.Equal(t, 0, p.At(0).Needle.Slot)
	require.Equal(t, 2, p.At(1).Needle.Slot)
	require.Equal(t, 1, *p.At(1).CurrentLine)
}

func TestProgram_swapInheritsOriginalLineWhenUnset(t *testing.T) {
	p := knitout.NewProgram(needleKnit(0), needleKnit(1))
	origOfSecond := *p.At(1).OriginalLine

	replacement := needleKnit(42)
	p.Swap(1, replacement)

	require.Equal(t, origOfSecond, *p.At(1).OriginalLine)
	require.Equal(t, 42, p.At(1).Needle.Slot)
}

func TestProgram_shiftNeedlePositionsZeroIsNoOp(t *testing.T) {
	p := knitout.NewProgram(needleKnit(3))
	shifted := p.ShiftNeedlePositions(0)

	require.Equal(t, p.At(0).Needle.Slot, shifted.At(0).Needle.Slot)
	require.NotSame(t, p, shifted)
}

func TestProgram_shiftNeedlePositionsTranslatesNeedleOps(t *testing.T) {
	p := knitout.NewProgram(needleKnit(3), knitout.NewXfer(
		knitout.Needle{Bed: knitout.Front, Slot: 1},
		knitout.Needle{Bed: knitout.Back, Slot: 1},
	))
	shifted := p.ShiftNeedlePositions(5)

	require.Equal(t, 8, shifted.At(0).Needle.Slot)
	require.Equal(t, 6, shifted.At(1).Needle.Slot)
	require.Equal(t, 6, shifted.At(1).Needle2.Slot)
	require.Equal(t, 3, p.At(0).Needle.Slot, "original program is untouched")
}

func TestProgram_organizeDropsRequestedKindsAndOrdersHeaders(t *testing.T) {
	p := knitout.NewProgram(
		knitout.NewGauge(5),
		knitout.NewVersion(2),
		knitout.NewComment("hello"),
		needleKnit(0),
		knitout.NewPause(),
		needleKnit(1),
	)

	out := p.Organize(true, false, true, false)

	require.Equal(t, knitout.KindVersion, out.At(0).Kind)
	require.Equal(t, knitout.KindGauge, out.At(1).Kind)
	for i := 0; i < out.Len(); i++ {
		require.NotEqual(t, knitout.KindComment, out.At(i).Kind)
		require.NotEqual(t, knitout.KindPause, out.At(i).Kind)
	}
}

func TestProgram_headersBodyComments(t *testing.T) {
	p := knitout.NewProgram(
		knitout.NewVersion(2),
		knitout.NewGauge(5),
		knitout.NewComment("a comment"),
		needleKnit(0),
	)

	require.Len(t, p.Headers(), 2)
	require.Len(t, p.Body(), 2)
	require.Len(t, p.Comments(), 1)
}

func TestProgram_loopMakingInstructions(t *testing.T) {
	p := knitout.NewProgram(
		needleKnit(0),
		knitout.NewXfer(knitout.Needle{Bed: knitout.Front, Slot: 0}, knitout.Needle{Bed: knitout.Back, Slot: 0}),
		needleKnit(1),
	)

	lm := p.LoopMakingInstructions()
	require.Len(t, lm, 2)

	require.Equal(t, 2, p.NextLoopMakingAfter(0))
	require.Equal(t, -1, p.NextLoopMakingAfter(2))
}

func TestProgram_writeToRoundTripsThroughParse(t *testing.T) {
	source := "in 1\nknit + f0 1\nrack 1\nxfer f0 b1\n"
	p, err := knitout.ParseProgram("test", source)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, p.WriteTo(&buf))

	reparsed, err := knitout.ParseProgram("test", buf.String())
	require.NoError(t, err)
	require.Equal(t, p.Len(), reparsed.Len())
	for i := 0; i < p.Len(); i++ {
		require.Equal(t, p.At(i).String(), reparsed.At(i).String())
	}
}

func TestProgram_breakpointTargets(t *testing.T) {
	p := knitout.NewProgram(
		needleKnit(0),
		knitout.NewBreakpoint(""),
		needleKnit(1),
		needleKnit(2),
	)

	targets := p.BreakpointTargets()
	require.Len(t, targets, 1)
	bpOrig := *p.At(1).OriginalLine
	nextOrig := *p.At(2).OriginalLine
	require.Equal(t, nextOrig, targets[bpOrig])
}
