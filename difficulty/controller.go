package difficulty

import (
	"math/big"

	"github.com/tos-network/tosd/daghash"
)

// ChainReader gives the Controller access to selected-parent-chain
// ancestry so it can sample the DAA window (spec §4.C: "sample the
// timestamps and targets of the most recent DAA_WINDOW_SIZE blocks in the
// selected-parent chain"), mirroring blockdag/blockwindow.go's
// blueBlockWindow traversal but walking the whole selected-parent chain
// rather than per-block blue sets.
type ChainReader interface {
	SelectedParent(hash daghash.Hash) (daghash.Hash, bool)
	TimestampMs(hash daghash.Hash) (int64, bool)
	Target(hash daghash.Hash) (*big.Int, bool)
}

// Controller is the stateful DAA controller wired to chain storage.
type Controller struct {
	params Params
	chain  ChainReader
}

// NewController creates a Controller.
func NewController(params Params, chain ChainReader) *Controller {
	return &Controller{params: params, chain: chain}
}

// Window samples up to WindowSize blocks starting at (and including)
// startingNode, walking the selected-parent chain. If the chain is
// shorter than WindowSize, the window is padded by repeating the
// earliest (genesis) sample, matching the teacher's blueBlockWindow
// genesis-padding behavior.
func (c *Controller) Window(startingNode daghash.Hash) ([]Sample, error) {
	window := make([]Sample, 0, c.params.WindowSize)
	current := startingNode
	var lastSample Sample
	haveLast := false

	for uint64(len(window)) < c.params.WindowSize {
		ts, ok := c.chain.TimestampMs(current)
		if !ok {
			break
		}
		target, ok := c.chain.Target(current)
		if !ok {
			break
		}
		sample := Sample{TimestampMs: ts, Target: target}
		window = append(window, sample)
		lastSample = sample
		haveLast = true

		parent, ok := c.chain.SelectedParent(current)
		if !ok {
			break
		}
		current = parent
	}

	if haveLast {
		for uint64(len(window)) < c.params.WindowSize {
			window = append(window, lastSample)
		}
	}

	return window, nil
}

// CalculateTargetDifficulty returns the target a block with the given
// selected parent must declare (spec §4.B "Difficulty integration").
func (c *Controller) CalculateTargetDifficulty(selectedParent daghash.Hash) (*big.Int, error) {
	window, err := c.Window(selectedParent)
	if err != nil {
		return nil, err
	}
	return c.params.CalculateTarget(window)
}
