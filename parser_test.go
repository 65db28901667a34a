package knitout_test

import (
	"testing"

	"github.com/knitout-go/knitout"
	"github.com/stretchr/testify/require"
)

func TestParseProgram_headerAndBody(t *testing.T) {
	src := `;!knitout-2
;;Machine: SWG
;;Gauge: 5
;;Yarn-1: 30 wool
in 1
knit + f0 1
xfer f0 b0
rack 0.25
tuck - b1 1
drop f0
out 1
`
	p, err := knitout.ParseProgram("t.k", src)
	require.NoError(t, err)
	require.Equal(t, 11, p.Len())

	require.Equal(t, knitout.KindVersion, p.At(0).Kind)
	require.Equal(t, 2, p.At(0).IntValue)

	require.Equal(t, knitout.KindMachine, p.At(1).Kind)
	require.Equal(t, knitout.MachineSWG, p.At(1).Machine)

	require.Equal(t, knitout.KindGauge, p.At(2).Kind)
	require.Equal(t, 5, p.At(2).IntValue)

	require.Equal(t, knitout.KindYarn, p.At(3).Kind)
	require.Equal(t, "1", p.At(3).YarnKey)
	require.Equal(t, "30 wool", p.At(3).YarnValue)

	require.Equal(t, knitout.KindIn, p.At(4).Kind)
	require.Equal(t, 1, p.At(4).Carrier)

	knitLine := p.At(5)
	require.Equal(t, knitout.KindKnit, knitLine.Kind)
	require.Equal(t, knitout.Rightward, knitLine.Direction)
	require.Equal(t, knitout.Needle{Bed: knitout.Front, Slot: 0}, knitLine.Needle)
	require.Equal(t, knitout.CarrierSet{1}, knitLine.Carriers)

	xferLine := p.At(6)
	require.Equal(t, knitout.KindXfer, xferLine.Kind)
	require.Equal(t, knitout.Needle{Bed: knitout.Front, Slot: 0}, xferLine.Needle)
	require.Equal(t, knitout.Needle{Bed: knitout.Back, Slot: 0}, xferLine.Needle2)

	rackLine := p.At(7)
	require.Equal(t, knitout.KindRack, rackLine.Kind)
	require.True(t, rackLine.Racking.AllNeedle)

	for i := 0; i < p.Len(); i++ {
		require.Equal(t, i, *p.At(i).OriginalLine)
	}
}

func TestParseProgram_skipsBlankLines(t *testing.T) {
	src := "in 1\n\n   \nout 1\n"
	p, err := knitout.ParseProgram("t.k", src)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	require.Equal(t, 0, *p.At(0).OriginalLine)
	require.Equal(t, 3, *p.At(1).OriginalLine, "blank lines still consume original line numbers")
}

func TestParseProgram_trailingComment(t *testing.T) {
	p, err := knitout.ParseProgram("t.k", "in 1 ; cast on\n")
	require.NoError(t, err)
	require.Equal(t, "cast on", p.At(0).Comment)
}

func TestParseProgram_bareComment(t *testing.T) {
	p, err := knitout.ParseProgram("t.k", "; just a note\n")
	require.NoError(t, err)
	require.Equal(t, knitout.KindComment, p.At(0).Kind)
	require.Equal(t, "just a note", p.At(0).Comment)
}

func TestParseProgram_noOpAndBreakpoint(t *testing.T) {
	p, err := knitout.ParseProgram("t.k", ";No-Op: in 1\n;BreakPoint: check state\n")
	require.NoError(t, err)

	require.Equal(t, knitout.KindNoOp, p.At(0).Kind)
	require.NotNil(t, p.At(0).Wrapped)
	require.Equal(t, knitout.KindIn, p.At(0).Wrapped.Kind)

	require.Equal(t, knitout.KindBreakpoint, p.At(1).Kind)
	require.Equal(t, "check state", p.At(1).Text)
}

func TestParseProgram_invalidLineReturnsParseError(t *testing.T) {
	_, err := knitout.ParseProgram("t.k", "frobnicate 3\n")
	require.Error(t, err)
	var pe knitout.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseProgram_missingArgsIsIncompleteLine(t *testing.T) {
	_, err := knitout.ParseProgram("t.k", "knit + f0\n")
	require.Error(t, err)
	var ile knitout.IncompleteLineError
	require.ErrorAs(t, err, &ile)
}

func TestParseProgram_splitAndDrop(t *testing.T) {
	src := "split + f0 b0 1 2\ndrop bs3\n"
	p, err := knitout.ParseProgram("t.k", src)
	require.NoError(t, err)

	split := p.At(0)
	require.Equal(t, knitout.KindSplit, split.Kind)
	require.Equal(t, knitout.CarrierSet{1, 2}, split.Carriers)

	drop := p.At(1)
	require.Equal(t, knitout.KindDrop, drop.Kind)
	require.Equal(t, knitout.Needle{Bed: knitout.Back, Slot: 3, IsSlider: true}, drop.Needle)
}

func TestParseProgram_roundTripsSerialization(t *testing.T) {
	src := "rack -0.75\nknit + f2 1\n"
	p, err := knitout.ParseProgram("t.k", src)
	require.NoError(t, err)

	rt, err := knitout.ParseProgram("t.k", p.At(0).String()+"\n"+p.At(1).String()+"\n")
	require.NoError(t, err)
	require.Equal(t, p.At(0).Racking, rt.At(0).Racking)
	require.Equal(t, p.At(1).Needle, rt.At(1).Needle)
}
