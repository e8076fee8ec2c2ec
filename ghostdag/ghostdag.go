// Package ghostdag implements component B: the GHOSTDAG block-DAG ordering
// engine — mergeset classification, blue score, blue work, and selected
// parent chain. Grounded on blockdag/ghostdag.go and blockdag/blues.go
// (mergeset candidate collection via BFS + heap, k-cluster classification
// walking the selected-parent chain), adapted to use the reachability
// index's is_ancestor instead of the teacher's ad hoc block sets.
package ghostdag

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/reachability"
)

// Params configures a GHOSTDAG Manager.
type Params struct {
	// K is the anticone-size bound.
	K uint32

	// MaxMergesetReds optionally caps the number of red blocks a
	// mergeset may contain. Zero means unbounded (spec §9 open
	// question: the reds cap is implementation-defined policy, not a
	// consensus rule).
	MaxMergesetReds uint32
}

// BlockData is the per-block GHOSTDAG record (§3 GhostdagData).
type BlockData struct {
	BlueScore          uint64
	BlueWork           *big.Int
	DAAScore           uint64
	SelectedParent     daghash.Hash
	MergesetBlues      []daghash.Hash
	MergesetReds       []daghash.Hash
	BluesAnticoneSizes map[daghash.Hash]uint8
}

// StoreReader is the read surface the GHOSTDAG engine needs from the rest
// of the node: already-computed GHOSTDAG data, DAG topology, and
// declared targets for work computation.
type StoreReader interface {
	GhostdagData(hash daghash.Hash) (*BlockData, bool)
	Parents(hash daghash.Hash) ([]daghash.Hash, bool)
	Target(hash daghash.Hash) (*big.Int, bool)
}

// Manager computes GHOSTDAG data for new blocks.
type Manager struct {
	params       Params
	store        StoreReader
	reachability *reachability.Index
}

// New creates a GHOSTDAG Manager.
func New(params Params, store StoreReader, reachabilityIndex *reachability.Index) *Manager {
	return &Manager{params: params, store: store, reachability: reachabilityIndex}
}

// Compute computes the GHOSTDAG data for newBlock given its ordered,
// duplicate-free parent set. It does not mutate any store; callers are
// responsible for persisting the result and updating the reachability
// index (spec's "store the data" step is kept out of this pure function so
// it stays independently testable, following the teacher's split between
// blockdag/ghostdag.go's pure computation and dag.go's orchestration).
func (m *Manager) Compute(newBlock daghash.Hash, parents []daghash.Hash) (*BlockData, error) {
	if len(parents) == 0 {
		return nil, ErrNoParents
	}
	seen := make(map[daghash.Hash]bool, len(parents))
	for _, p := range parents {
		if seen[p] {
			return nil, ErrDuplicateParent
		}
		seen[p] = true
	}

	selectedParent, err := m.selectParent(parents)
	if err != nil {
		return nil, err
	}
	spData, ok := m.store.GhostdagData(selectedParent)
	if !ok {
		return nil, &MissingParentError{Parent: selectedParent.String()}
	}

	ordered, err := m.collectMergeset(newBlock, parents, selectedParent)
	if err != nil {
		return nil, err
	}

	blues, reds, anticoneSizes, err := m.classify(ordered, selectedParent)
	if err != nil {
		return nil, err
	}
	if m.params.MaxMergesetReds > 0 && uint32(len(reds)) > m.params.MaxMergesetReds {
		return nil, errors.Errorf("mergeset reds %d exceeds configured maximum %d", len(reds), m.params.MaxMergesetReds)
	}

	blueWork := new(big.Int).Set(spData.BlueWork)
	for _, b := range blues {
		target, ok := m.store.Target(b)
		if !ok {
			return nil, &MissingParentError{Parent: b.String()}
		}
		w, err := CalcWork(target)
		if err != nil {
			return nil, err
		}
		blueWork = addWorkSaturating(blueWork, w)
	}
	selfTarget, ok := m.store.Target(newBlock)
	if ok {
		selfWork, err := CalcWork(selfTarget)
		if err != nil {
			return nil, err
		}
		blueWork = addWorkSaturating(blueWork, selfWork)
	}

	data := &BlockData{
		BlueScore:          spData.BlueScore + uint64(len(blues)) + 1,
		BlueWork:           blueWork,
		SelectedParent:     selectedParent,
		MergesetBlues:      blues,
		MergesetReds:       reds,
		BluesAnticoneSizes: anticoneSizes,
	}
	return data, nil
}

// selectParent chooses the parent with maximum blue_work, ties broken by
// the smaller hash (spec §4.B step 1).
func (m *Manager) selectParent(parents []daghash.Hash) (daghash.Hash, error) {
	var best daghash.Hash
	var bestWork *big.Int
	for i, p := range parents {
		data, ok := m.store.GhostdagData(p)
		if !ok {
			return daghash.Hash{}, &MissingParentError{Parent: p.String()}
		}
		if i == 0 || data.BlueWork.Cmp(bestWork) > 0 ||
			(data.BlueWork.Cmp(bestWork) == 0 && p.Less(&best)) {
			best = p
			bestWork = data.BlueWork
		}
	}
	return best, nil
}

// collectMergeset gathers past(newBlock) \ past(selectedParent) via
// reverse BFS over parents, stopping at blocks already known to be
// ancestors of selectedParent, and returns it in deterministic order:
// ascending blue score (a topological proxy), ties broken by hash.
func (m *Manager) collectMergeset(newBlock daghash.Hash, parents []daghash.Hash, selectedParent daghash.Hash) ([]daghash.Hash, error) {
	visited := map[daghash.Hash]bool{selectedParent: true, newBlock: true}
	var mergeset []daghash.Hash
	queue := make([]daghash.Hash, 0, len(parents))
	for _, p := range parents {
		if p == selectedParent {
			continue
		}
		if !visited[p] {
			visited[p] = true
			queue = append(queue, p)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		isAncestorOfSP, err := m.reachability.IsAncestor(current, selectedParent)
		if err != nil {
			return nil, err
		}
		if isAncestorOfSP {
			continue
		}
		mergeset = append(mergeset, current)

		grandparents, ok := m.store.Parents(current)
		if !ok {
			return nil, &MissingParentError{Parent: current.String()}
		}
		for _, gp := range grandparents {
			if !visited[gp] {
				visited[gp] = true
				queue = append(queue, gp)
			}
		}
	}

	sort.Slice(mergeset, func(i, j int) bool {
		di, _ := m.store.GhostdagData(mergeset[i])
		dj, _ := m.store.GhostdagData(mergeset[j])
		if di.BlueScore != dj.BlueScore {
			return di.BlueScore < dj.BlueScore
		}
		a, b := mergeset[i], mergeset[j]
		return a.Less(&b)
	})
	return mergeset, nil
}

// classify walks the ordered mergeset and splits it into blues and reds,
// enforcing the k-cluster constraint (spec §4.B step 3, invariants I1/I2).
func (m *Manager) classify(ordered []daghash.Hash, selectedParent daghash.Hash) (blues, reds []daghash.Hash, anticoneSizes map[daghash.Hash]uint8, err error) {
	anticoneSizes = make(map[daghash.Hash]uint8)
	k := m.params.K

	// The selected parent is blue and takes part in every candidate's
	// anticone check, though it is not returned among the mergeset blues.
	anticoneSizes[selectedParent] = 0

	for _, candidate := range ordered {
		if uint32(len(blues)) >= k+1 {
			reds = append(reds, candidate)
			continue
		}

		var candidateAnticoneSize uint32
		increments := make(map[daghash.Hash]uint8)
		violatesK := false

		for _, blue := range append([]daghash.Hash{selectedParent}, blues...) {
			related, err := m.related(candidate, blue)
			if err != nil {
				return nil, nil, nil, err
			}
			if related {
				continue
			}
			candidateAnticoneSize++
			if candidateAnticoneSize > k {
				violatesK = true
				break
			}
			newSize := anticoneSizes[blue] + 1
			if uint32(newSize) > k {
				violatesK = true
				break
			}
			increments[blue] = newSize
		}

		if violatesK {
			reds = append(reds, candidate)
			continue
		}

		blues = append(blues, candidate)
		anticoneSizes[candidate] = uint8(candidateAnticoneSize)
		for b, v := range increments {
			anticoneSizes[b] = v
		}
	}

	return blues, reds, anticoneSizes, nil
}

// related reports whether a and b are in an ancestor/descendant
// relationship (i.e. NOT in each other's anticone).
func (m *Manager) related(a, b daghash.Hash) (bool, error) {
	aAncestorOfB, err := m.reachability.IsAncestor(a, b)
	if err != nil {
		return false, err
	}
	if aAncestorOfB {
		return true, nil
	}
	bAncestorOfA, err := m.reachability.IsAncestor(b, a)
	if err != nil {
		return false, err
	}
	return bAncestorOfA, nil
}
