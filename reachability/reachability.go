// Package reachability implements the tree-interval reachability index
// (component A): sub-linear ancestor/descendant queries over the block-DAG,
// grounded on the teacher's reachabilityTreeManager
// (domain/consensus/processes/reachabilitymanager/reachability.go) and
// dbaccess/reachability.go persistence layout.
package reachability

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/tos-network/tosd/daghash"
)

// reindexSlack is the amount of headroom left unallocated below a freshly
// reindexed node so its next few children don't immediately force another
// reindex. Mirrors the teacher's amortized-reindex design note in spec §9.
const reindexSlack = 16

// Data is the per-block reachability record (§3 ReachabilityData).
type Data struct {
	Parent            *daghash.Hash
	Interval          Interval
	Height            uint64
	Children          []*daghash.Hash
	FutureCoveringSet []*daghash.Hash // ordered by Interval.Start, used for non-tree DAG ancestry

	remaining Interval // the slice of Interval not yet handed to a child
}

// Index is the arena-backed reachability store: a tree keyed by hash, with
// future-covering-set back references standing in for the non-tree DAG
// edges. Modeled as arena+index rather than bidirectional smart pointers
// per spec §9.
type Index struct {
	nodes map[daghash.Hash]*Data
	root  daghash.Hash
}

// NewIndex creates a reachability index whose root occupies the maximal
// interval [0, math.MaxUint64).
func NewIndex(root daghash.Hash) *Index {
	data := &Data{
		Interval:  rootInterval(),
		remaining: rootInterval(),
	}
	idx := &Index{nodes: make(map[daghash.Hash]*Data)}
	idx.nodes[root] = data
	idx.root = root
	return idx
}

// Get returns the reachability record for hash, or false if absent.
func (idx *Index) Get(hash daghash.Hash) (*Data, bool) {
	d, ok := idx.nodes[hash]
	return d, ok
}

// Has reports whether hash has a reachability record.
func (idx *Index) Has(hash daghash.Hash) bool {
	_, ok := idx.nodes[hash]
	return ok
}

// Insert allocates reachability data for block given its selected parent
// and the rest of its DAG parents. It allocates a fresh sub-interval under
// selectedParent (reindexing the selected parent's subtree if there is no
// room) and records block in every other parent's future covering set so
// DAG-order (non-tree) ancestry queries also resolve. Returns
// *DataMissingError if any parent lacks a reachability record.
func (idx *Index) Insert(block daghash.Hash, selectedParent daghash.Hash, otherParents []daghash.Hash) error {
	if idx.Has(block) {
		return errors.Errorf("block %s already has reachability data", block)
	}
	spData, ok := idx.nodes[selectedParent]
	if !ok {
		return ErrReachabilityDataMissing(selectedParent)
	}
	for _, p := range otherParents {
		if !idx.Has(p) {
			return ErrReachabilityDataMissing(p)
		}
	}

	childInterval, err := idx.allocateChild(selectedParent)
	if err != nil {
		return err
	}

	data := &Data{
		Parent:    selectedParent.Clone(),
		Interval:  childInterval,
		Height:    spData.Height + 1,
		remaining: childInterval,
	}
	idx.nodes[block] = data
	spData.Children = append(spData.Children, block.Clone())

	for _, p := range otherParents {
		if p == selectedParent {
			continue
		}
		idx.addToFutureCoveringSet(p, block)
	}

	return nil
}

// allocateChild returns a fresh sub-interval for a new child of parent,
// reindexing parent's subtree first if its remaining interval holds fewer
// than two labels.
func (idx *Index) allocateChild(parent daghash.Hash) (Interval, error) {
	pData := idx.nodes[parent]
	if pData.remaining.Size() < 2 {
		if err := idx.reindex(parent); err != nil {
			return Interval{}, err
		}
		pData = idx.nodes[parent]
	}

	// Give the child half of what's left, retaining the rest for future
	// siblings. This exponential split bounds the number of children a
	// node can absorb before needing a reindex to roughly log2(interval).
	remaining := pData.remaining
	size := remaining.Size() / 2
	if size == 0 {
		size = 1
	}
	child := Interval{Start: remaining.Start, End: remaining.Start + size}
	pData.remaining = Interval{Start: remaining.Start + size, End: remaining.End}
	return child, nil
}

// reindex re-measures parent's subtree and reallocates intervals
// recursively across it, bounded by the subtree's size (spec §4.A).
func (idx *Index) reindex(parent daghash.Hash) error {
	pData := idx.nodes[parent]
	full := pData.Interval
	return idx.reallocateSubtree(parent, full)
}

// reallocateSubtree assigns newInterval to node and recursively splits the
// remainder proportionally (by subtree size) across node's children,
// leaving reindexSlack at the end of node's own capacity for future
// direct children.
func (idx *Index) reallocateSubtree(node daghash.Hash, newInterval Interval) error {
	data := idx.nodes[node]
	data.Interval = newInterval

	if len(data.Children) == 0 {
		data.remaining = newInterval
		return nil
	}

	slack := reindexSlack
	if newInterval.Size() < uint64(slack)*2 {
		slack = 0
	}
	usable := Interval{Start: newInterval.Start, End: newInterval.End - uint64(slack)}
	data.remaining = Interval{Start: usable.End, End: newInterval.End}

	weights := make([]uint64, len(data.Children))
	for i, c := range data.Children {
		weights[i] = idx.subtreeSize(*c)
	}
	splits := usable.splitExponential(weights)
	for i, c := range data.Children {
		if err := idx.reallocateSubtree(*c, splits[i]); err != nil {
			return err
		}
	}
	return nil
}

// subtreeSize counts node and all of its tree-descendants.
func (idx *Index) subtreeSize(node daghash.Hash) uint64 {
	data, ok := idx.nodes[node]
	if !ok {
		return 1
	}
	size := uint64(1)
	for _, c := range data.Children {
		size += idx.subtreeSize(*c)
	}
	return size
}

// addToFutureCoveringSet records block (a DAG-future, non-tree descendant)
// in ancestor's future covering set, keeping the set ordered by
// Interval.Start and skipping insertion when an existing entry already
// tree-dominates block.
func (idx *Index) addToFutureCoveringSet(ancestor daghash.Hash, block daghash.Hash) {
	aData := idx.nodes[ancestor]
	blockData := idx.nodes[block]

	set := aData.FutureCoveringSet
	// Binary search for the insertion point by Interval.Start.
	pos := sort.Search(len(set), func(i int) bool {
		return idx.nodes[*set[i]].Interval.Start >= blockData.Interval.Start
	})
	if pos > 0 {
		prev := idx.nodes[*set[pos-1]]
		if prev.Interval.Contains(blockData.Interval) {
			return // already covered
		}
	}
	newSet := make([]*daghash.Hash, 0, len(set)+1)
	newSet = append(newSet, set[:pos]...)
	newSet = append(newSet, block.Clone())
	newSet = append(newSet, set[pos:]...)
	aData.FutureCoveringSet = newSet
}

// IsAncestor returns true iff a is an ancestor of b (or a == b), in O(1)
// amortized for tree ancestry plus an O(log n) search of the future
// covering set for non-tree DAG ancestry (spec R2).
func (idx *Index) IsAncestor(a, b daghash.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	aData, ok := idx.nodes[a]
	if !ok {
		return false, ErrReachabilityDataMissing(a)
	}
	bData, ok := idx.nodes[b]
	if !ok {
		return false, ErrReachabilityDataMissing(b)
	}
	if aData.Interval.Contains(bData.Interval) {
		return true, nil
	}

	set := aData.FutureCoveringSet
	pos := sort.Search(len(set), func(i int) bool {
		return idx.nodes[*set[i]].Interval.Start > bData.Interval.Start
	})
	if pos == 0 {
		return false, nil
	}
	candidate := idx.nodes[*set[pos-1]]
	return candidate.Interval.Contains(bData.Interval), nil
}

// Delete removes block's reachability record, detaching it from its
// parent's children list and scrubbing any future-covering-set references
// to it (the reorg path: old branches are pruned together).
func (idx *Index) Delete(block daghash.Hash) error {
	data, ok := idx.nodes[block]
	if !ok {
		return ErrReachabilityDataMissing(block)
	}
	if data.Parent != nil {
		if pData, ok := idx.nodes[*data.Parent]; ok {
			pData.Children = removeHash(pData.Children, block)
		}
	}
	for _, node := range idx.nodes {
		node.FutureCoveringSet = removeHash(node.FutureCoveringSet, block)
	}
	delete(idx.nodes, block)
	return nil
}

func removeHash(list []*daghash.Hash, target daghash.Hash) []*daghash.Hash {
	out := list[:0]
	for _, h := range list {
		if *h != target {
			out = append(out, h)
		}
	}
	return out
}
