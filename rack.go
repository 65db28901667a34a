package knitout

import (
	"fmt"
	"math/big"
)

// Racking is the resolved effect of a "rack" instruction's rational
// value: an integer offset applied to back-bed needles, and whether the
// value is an all-needle (quarter-fraction) racking.
type Racking struct {
	Value     int
	AllNeedle bool

	// Quarters holds frac*4 (0..3), the exact quarter-fraction the value
	// carried, so that re-serialization round-trips the original operand
	// rather than just the resolved integer.
	Quarters int

	// Floor is floor(original value); combined with Quarters it
	// reconstructs the original operand exactly (Value itself may have
	// rounded to the nearest integer rather than floored).
	Floor int
}

var (
	quarter    = big.NewRat(1, 4)
	half       = big.NewRat(1, 2)
	threeQuart = big.NewRat(3, 4)
)

// ParseRacking parses a rack instruction's rational operand per the
// grammar's FLOAT token and resolves it to a Racking.
//
// Let q = value - floor(value). All-needle racking is signaled by q being
// exactly one of 1/4, 1/2, or 3/4. The stored integer rack is
// floor(value) when value < 0 and non-integral, and floor(value + 0.5)
// (round half up) otherwise.
func ParseRacking(token string) (Racking, error) {
	r, ok := new(big.Rat).SetString(token)
	if !ok {
		return Racking{}, fmt.Errorf("invalid rack value %q", token)
	}
	return RackingFromRat(r), nil
}

// RackingFromRat resolves an already-parsed rational racking value.
func RackingFromRat(r *big.Rat) Racking {
	floor := ratFloor(r)
	frac := new(big.Rat).Sub(r, new(big.Rat).SetInt(floor))

	allNeedle := frac.Cmp(quarter) == 0 || frac.Cmp(half) == 0 || frac.Cmp(threeQuart) == 0

	var quarters int
	switch {
	case frac.Cmp(quarter) == 0:
		quarters = 1
	case frac.Cmp(half) == 0:
		quarters = 2
	case frac.Cmp(threeQuart) == 0:
		quarters = 3
	}

	var value int
	if r.Sign() < 0 && frac.Sign() != 0 {
		value = int(floor.Int64())
	} else {
		half := new(big.Rat).Add(r, big.NewRat(1, 2))
		value = int(ratFloor(half).Int64())
	}

	return Racking{Value: value, AllNeedle: allNeedle, Quarters: quarters, Floor: int(floor.Int64())}
}

// ratFloor returns floor(r) as a *big.Int.
func ratFloor(r *big.Rat) *big.Int {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(r.Num(), r.Denom(), m)
	return q
}

func (rk Racking) String() string {
	return fmt.Sprintf("%v", rk.Value)
}
