// Package blockprocessor orchestrates components A through F per block:
// reachability, GHOSTDAG, the DAA controller, the state machine, the
// scheduled-execution queue, and mempool cleanup. Grounded on
// blockdag/dag.go's BlockDAG (an in-memory index guarded by a single
// dagLock, with ProcessBlock → connectBlock → saveChangesFromBlock as the
// per-block pipeline) and blockdag/process.go's duplicate-rejection style.
package blockprocessor

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/ghostdag"
)

// blockEntry is the in-memory record kept for every known block, mirroring
// the fields blockdag's blockNode keeps alongside its header: the header
// itself, its computed GHOSTDAG data, and its topoheight once ordered.
type blockEntry struct {
	header     *consensustypes.BlockHeader
	ghostdag   *ghostdag.BlockData
	topoheight uint64
}

// BlockIndex is the in-memory block index backing the GHOSTDAG and DAA
// components' read interfaces (ghostdag.StoreReader, difficulty.ChainReader)
// and blockprocessor's own bookkeeping, mirroring blockdag's index field —
// a single mutex-guarded map rather than a tree of *blockNode, since
// nothing here needs parent/child pointers beyond what GhostdagData already
// carries.
//
// A block being processed is held in a separate pending slot rather than
// entries: ghostdag.Manager.Compute looks up the new block's own declared
// target mid-computation (the way ghostdag_test.go's memStore registers a
// block's target and parents before calling Compute), but the block must
// not become externally visible — duplicate checks, topoheight lookups —
// until the whole pipeline commits. Only one block is ever pending at a
// time: Processor.mtx serializes ProcessBlock.
type BlockIndex struct {
	mtx       sync.RWMutex
	entries   map[daghash.Hash]*blockEntry
	byTopo    map[uint64]daghash.Hash
	pending   map[daghash.Hash]*consensustypes.BlockHeader
	haveTip   bool
	tipHeight uint64
}

// NewBlockIndex creates an empty BlockIndex.
func NewBlockIndex() *BlockIndex {
	return &BlockIndex{
		entries: make(map[daghash.Hash]*blockEntry),
		byTopo:  make(map[uint64]daghash.Hash),
		pending: make(map[daghash.Hash]*consensustypes.BlockHeader),
	}
}

// beginProcessing registers header's parents/target under hash so
// ghostdag.Manager.Compute can resolve the new block's own declared
// target while computing its GHOSTDAG data. It does not make hash visible
// to Has, HasTopoheight, or Topoheight.
func (bi *BlockIndex) beginProcessing(hash daghash.Hash, header *consensustypes.BlockHeader) {
	bi.mtx.Lock()
	defer bi.mtx.Unlock()
	bi.pending[hash] = header
}

// abortProcessing discards a pending registration after the block failed
// validation or execution, so a retried ProcessBlock call for the same
// hash starts clean.
func (bi *BlockIndex) abortProcessing(hash daghash.Hash) {
	bi.mtx.Lock()
	defer bi.mtx.Unlock()
	delete(bi.pending, hash)
}

// Has reports whether hash is already indexed.
func (bi *BlockIndex) Has(hash daghash.Hash) bool {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	_, ok := bi.entries[hash]
	return ok
}

// HasTopoheight implements mempool.BlockIndex: reports whether topoheight
// names an indexed (and therefore unpruned) block.
func (bi *BlockIndex) HasTopoheight(topoheight uint64) bool {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	_, ok := bi.byTopo[topoheight]
	return ok
}

// Header returns the stored header for hash.
func (bi *BlockIndex) Header(hash daghash.Hash) (*consensustypes.BlockHeader, bool) {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	e, ok := bi.entries[hash]
	if !ok {
		return nil, false
	}
	return e.header, true
}

// GhostdagData implements ghostdag.StoreReader.
func (bi *BlockIndex) GhostdagData(hash daghash.Hash) (*ghostdag.BlockData, bool) {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	e, ok := bi.entries[hash]
	if !ok {
		return nil, false
	}
	return e.ghostdag, true
}

// Parents implements ghostdag.StoreReader. It also resolves a block
// currently pending processing, since Compute needs its own parent list.
func (bi *BlockIndex) Parents(hash daghash.Hash) ([]daghash.Hash, bool) {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	if e, ok := bi.entries[hash]; ok {
		return e.header.Parents, true
	}
	if h, ok := bi.pending[hash]; ok {
		return h.Parents, true
	}
	return nil, false
}

// Target implements both ghostdag.StoreReader and difficulty.ChainReader.
// It also resolves a block currently pending processing, since Compute
// looks up the new block's own declared target mid-computation.
func (bi *BlockIndex) Target(hash daghash.Hash) (*big.Int, bool) {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	if e, ok := bi.entries[hash]; ok {
		return e.header.DeclaredTarget, true
	}
	if h, ok := bi.pending[hash]; ok {
		return h.DeclaredTarget, true
	}
	return nil, false
}

// SelectedParent implements difficulty.ChainReader.
func (bi *BlockIndex) SelectedParent(hash daghash.Hash) (daghash.Hash, bool) {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	e, ok := bi.entries[hash]
	if !ok || e.ghostdag == nil {
		return daghash.Hash{}, false
	}
	return e.ghostdag.SelectedParent, true
}

// TimestampMs implements difficulty.ChainReader.
func (bi *BlockIndex) TimestampMs(hash daghash.Hash) (int64, bool) {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	e, ok := bi.entries[hash]
	if !ok {
		return 0, false
	}
	return int64(e.header.TimestampMs), true
}

// Topoheight returns the topological height assigned to hash at
// insertion time (its selected-parent's topoheight plus one, genesis
// being zero).
func (bi *BlockIndex) Topoheight(hash daghash.Hash) (uint64, bool) {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	e, ok := bi.entries[hash]
	if !ok {
		return 0, false
	}
	return e.topoheight, true
}

// errMissingSelectedParent is returned when a non-genesis block's
// selected parent was never indexed.
var errMissingSelectedParent = errors.New("selected parent not indexed")

// commit finalizes a successfully processed block, moving it from
// pending to entries and deriving its topoheight from its selected
// parent's.
func (bi *BlockIndex) commit(hash daghash.Hash, header *consensustypes.BlockHeader, data *ghostdag.BlockData) (uint64, error) {
	bi.mtx.Lock()
	defer bi.mtx.Unlock()

	var topoheight uint64
	if !header.IsGenesis() {
		parent, ok := bi.entries[data.SelectedParent]
		if !ok {
			return 0, errMissingSelectedParent
		}
		topoheight = parent.topoheight + 1
	}

	bi.entries[hash] = &blockEntry{header: header, ghostdag: data, topoheight: topoheight}
	bi.byTopo[topoheight] = hash
	delete(bi.pending, hash)
	if !bi.haveTip || topoheight > bi.tipHeight {
		bi.haveTip = true
		bi.tipHeight = topoheight
	}
	return topoheight, nil
}

// CurrentTopoheight implements mempool.BlockIndex: the highest
// topoheight committed so far, used as the admission-time chain tip
// reference freshness (txvalidate.ValidateReferenceFreshness) is
// measured against. Returns 0 before any block — including genesis —
// has been committed.
func (bi *BlockIndex) CurrentTopoheight() uint64 {
	bi.mtx.RLock()
	defer bi.mtx.RUnlock()
	return bi.tipHeight
}
