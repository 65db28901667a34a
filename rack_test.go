package knitout_test

import (
	"testing"

	"github.com/knitout-go/knitout"
	"github.com/stretchr/testify/require"
)

func TestParseRacking_S8(t *testing.T) {
	cases := []struct {
		token     string
		value     int
		allNeedle bool
	}{
		{"0.25", 0, true},
		{"-0.75", -1, true},
		{"-4.75", -5, true},
		{"1", 1, false},
		{"0", 0, false},
		{"-2", -2, false},
	}
	for _, tc := range cases {
		rk, err := knitout.ParseRacking(tc.token)
		require.NoError(t, err, tc.token)
		require.Equal(t, tc.value, rk.Value, "value for %v", tc.token)
		require.Equal(t, tc.allNeedle, rk.AllNeedle, "all_needle for %v", tc.token)
	}
}

func TestParseRacking_invalid(t *testing.T) {
	_, err := knitout.ParseRacking("not-a-number")
	require.Error(t, err)
}

func TestRacking_reparseRoundTrips(t *testing.T) {
	for _, token := range []string{"0.25", "-0.75", "-4.75", "1.75", "1", "0", "-2"} {
		rk, err := knitout.ParseRacking(token)
		require.NoError(t, err, token)

		line := knitout.NewRack(rk)
		reparsed, err := knitout.ParseProgram("t.k", line.String()+"\n")
		require.NoError(t, err, token)
		require.Equal(t, rk, reparsed.At(0).Racking, "round trip of %v via %q", token, line.String())
	}
}
