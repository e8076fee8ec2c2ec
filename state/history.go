package state

import "github.com/tos-network/tosd/cerrors"

// VersionedStore is the read surface History needs: direct lookup of a
// specific version plus the ability to look one version further back.
type VersionedStore interface {
	BalanceAt(key AccountKey, topoheight uint64) (AccountVersion, bool)
}

// History resolves an account's balance as of a given topoheight by
// walking the version chain's PreviousTopoheight back-pointers, starting
// from the latest known version (spec §4.D: "a linked-list back-pointer
// to the previous version").
type History struct {
	store VersionedStore
}

// NewHistory creates a History reader over store.
func NewHistory(store VersionedStore) *History {
	return &History{store: store}
}

// maxBackwardScan bounds the defensive recovery scan below, so a
// corrupted chain degrades to a bounded error instead of spinning forever
// (supplemented feature: backward-scan recovery for corrupted
// previous_topoheight pointers).
const maxBackwardScan = 1 << 20

// BalanceAsOf returns the balance version for key whose topoheight is the
// greatest one not exceeding asOf, walking back-pointers from latest.
// If a version's declared PreviousTopoheight doesn't resolve to an actual
// stored version (a corrupted pointer), BalanceAsOf falls back to a linear
// backward scan over topoheights from the last good version down to asOf,
// rather than failing outright — a defensive recovery path beyond what a
// normal well-formed chain ever needs.
func (h *History) BalanceAsOf(key AccountKey, latestTopoheight, asOf uint64) (AccountVersion, error) {
	if asOf > latestTopoheight {
		asOf = latestTopoheight
	}

	current, ok := h.store.BalanceAt(key, latestTopoheight)
	if !ok {
		return AccountVersion{}, cerrors.New(cerrors.AccountNotFound)
	}

	for current.Topoheight > asOf {
		if !current.HasPrevious {
			return AccountVersion{}, cerrors.New(cerrors.AccountNotFound)
		}
		prev, ok := h.store.BalanceAt(key, current.PreviousTopoheight)
		if ok && prev.Topoheight == current.PreviousTopoheight {
			current = prev
			continue
		}

		// Corrupted pointer: PreviousTopoheight didn't resolve to a
		// real version. Recover by scanning backward linearly from
		// just below the last known-good topoheight.
		recovered, err := h.scanBackward(key, current.Topoheight-1, asOf)
		if err != nil {
			return AccountVersion{}, err
		}
		current = recovered
	}
	return current, nil
}

func (h *History) scanBackward(key AccountKey, from, asOf uint64) (AccountVersion, error) {
	scanned := 0
	for t := from; t >= asOf && scanned < maxBackwardScan; t-- {
		if v, ok := h.store.BalanceAt(key, t); ok {
			return v, nil
		}
		scanned++
		if t == 0 {
			break
		}
	}
	return AccountVersion{}, cerrors.Newf(cerrors.AccountNotFound, "no recoverable version for account at or before topoheight %d", asOf)
}
