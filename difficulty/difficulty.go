// Package difficulty implements component C: the windowed difficulty
// adjustment (DAA) controller, grounded on blockdag/blockwindow.go's
// blueBlockWindow/averageTarget/minMaxTimestamps shape.
package difficulty

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"
)

// Params configures a difficulty Controller.
type Params struct {
	// TargetBlockTimeMs is the chain's desired milliseconds per block.
	TargetBlockTimeMs uint64

	// WindowSize is the number of blocks sampled from the
	// selected-parent chain (DAA_WINDOW_SIZE).
	WindowSize uint64

	// MaxTarget is the network's proof-of-work floor (easiest allowed
	// target, i.e. the numerically largest target value).
	MaxTarget *big.Int
}

// Sample is one (timestamp, target) pair taken from the selected-parent
// chain.
type Sample struct {
	TimestampMs int64
	Target      *big.Int
}

var bigIntPool = sync.Pool{
	New: func() interface{} { return new(big.Int) },
}

func acquire() *big.Int {
	return bigIntPool.Get().(*big.Int)
}

func release(v *big.Int) {
	v.SetInt64(0)
	bigIntPool.Put(v)
}

// ErrEmptyWindow is returned when CalculateTarget is given no samples.
var ErrEmptyWindow = errors.New("cannot calculate target difficulty for an empty window")

func minMaxTimestamps(window []Sample) (min, max int64) {
	min = window[0].TimestampMs
	max = window[0].TimestampMs
	for _, s := range window[1:] {
		if s.TimestampMs < min {
			min = s.TimestampMs
		}
		if s.TimestampMs > max {
			max = s.TimestampMs
		}
	}
	return
}

func averageTarget(window []Sample) *big.Int {
	sum := acquire()
	sum.SetInt64(0)
	for _, s := range window {
		sum.Add(sum, s.Target)
	}
	n := acquire()
	n.SetInt64(int64(len(window)))
	avg := new(big.Int).Div(sum, n)
	release(sum)
	release(n)
	return avg
}

// CalculateTarget applies the windowed adjustment described in spec §4.C:
// the floor on actual_time bounds how far a collapsed-timestamp window can
// push the ratio up (capped at 2x), while the general 0.25x/4x clamp
// bounds both directions against avg_target, and MaxTarget/1 are the
// absolute floor and ceiling on proof-of-work difficulty.
func (p Params) CalculateTarget(window []Sample) (*big.Int, error) {
	if len(window) == 0 {
		return nil, ErrEmptyWindow
	}
	if p.WindowSize == 0 || p.TargetBlockTimeMs == 0 {
		return nil, errors.New("difficulty params must have non-zero window size and target block time")
	}

	firstTs, lastTs := minMaxTimestamps(window)
	expectedTime := int64(p.WindowSize * p.TargetBlockTimeMs)

	actualTime := lastTs - firstTs
	floor := expectedTime / 2
	if actualTime < floor {
		actualTime = floor
	}
	if actualTime <= 0 {
		actualTime = 1
	}

	avgTarget := averageTarget(window)

	raw := new(big.Int).Mul(avgTarget, big.NewInt(expectedTime))
	raw.Div(raw, big.NewInt(actualTime))

	minClamp := new(big.Int).Div(avgTarget, big.NewInt(4))
	maxClamp := new(big.Int).Mul(avgTarget, big.NewInt(4))

	clamped := raw
	if clamped.Cmp(minClamp) < 0 {
		clamped = minClamp
	}
	if clamped.Cmp(maxClamp) > 0 {
		clamped = maxClamp
	}

	if p.MaxTarget != nil && clamped.Cmp(p.MaxTarget) > 0 {
		clamped = new(big.Int).Set(p.MaxTarget)
	}
	one := big.NewInt(1)
	if clamped.Cmp(one) < 0 {
		clamped = one
	}

	return clamped, nil
}
