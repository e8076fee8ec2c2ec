package ghostdag

import "math/big"

// twoPow256 is 2^256, the numerator of the work function work(x) =
// 2^256 / (target(x) + 1) (spec §4.B step 4).
var twoPow256 = new(big.Int).Lsh(big.NewInt(1), 256)

// CalcWork returns the amount of work represented by a block with the
// given proof-of-work target, using checked arithmetic: a zero target
// (which would imply infinite work) is rejected via ErrZeroTarget.
func CalcWork(target *big.Int) (*big.Int, error) {
	if target.Sign() <= 0 {
		return nil, ErrZeroTarget
	}
	denom := new(big.Int).Add(target, big.NewInt(1))
	return new(big.Int).Div(twoPow256, denom), nil
}

// addWorkSaturating adds b into a, saturating at the maximum representable
// 256-bit unsigned value instead of overflowing (spec's "checked arithmetic
// (saturating on overflow)").
func addWorkSaturating(a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	max := new(big.Int).Sub(twoPow256, big.NewInt(1))
	if sum.Cmp(max) > 0 {
		return max
	}
	return sum
}
