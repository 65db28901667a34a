package knitout_test

import (
	"testing"

	"github.com/knitout-go/knitout"
	"github.com/stretchr/testify/require"
)

func TestHeader_SetReplacesSameKind(t *testing.T) {
	var h knitout.Header

	require.True(t, h.Set(knitout.NewGauge(5)))
	require.False(t, h.Set(knitout.NewGauge(5)), "same value should report no change")
	require.True(t, h.Set(knitout.NewGauge(10)), "new value should report a change")
	require.Equal(t, 10, h.Gauge.IntValue)
}

func TestHeader_CanonicalOrder(t *testing.T) {
	var h knitout.Header
	h.Set(knitout.NewCarriers(4))
	h.Set(knitout.NewGauge(5))
	h.Set(knitout.NewVersion(2))
	h.Set(knitout.NewMachine(knitout.MachineSWG))
	h.Set(knitout.NewPosition(knitout.PositionCenter))

	lines := h.Lines()
	require.Len(t, lines, 5)
	require.Equal(t, knitout.KindVersion, lines[0].Kind)
	require.Equal(t, knitout.KindMachine, lines[1].Kind)
	require.Equal(t, knitout.KindGauge, lines[2].Kind)
	require.Equal(t, knitout.KindPosition, lines[3].Kind)
	require.Equal(t, knitout.KindCarriers, lines[4].Kind)
}

func TestHeader_Spec(t *testing.T) {
	var h knitout.Header
	h.Set(knitout.NewGauge(5))
	h.Set(knitout.NewCarriers(4))
	spec := h.Spec()
	require.Equal(t, 5, spec.Gauge)
	require.Equal(t, 4, spec.CarrierCount)
}

func TestCarriersFromIDs(t *testing.T) {
	require.Equal(t, 3, knitout.CarriersFromIDs(1, 3, 2))
	require.Equal(t, 7, knitout.CarriersFromIDs(7))
	require.Equal(t, 0, knitout.CarriersFromIDs())
}

func TestHeader_ExtractFromProgramOrder(t *testing.T) {
	lines := []knitout.Instruction{
		knitout.NewVersion(2),
		knitout.NewGauge(5),
		knitout.NewGauge(10),
		knitout.NewKnit(knitout.Leftward, knitout.Needle{Slot: 1}, knitout.CarrierSet{1}),
	}
	var h knitout.Header
	changed := knitout.ExtractHeaders(&h, lines)
	require.True(t, changed)
	require.Equal(t, 10, h.Gauge.IntValue)
}
