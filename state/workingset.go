package state

import (
	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/daghash"
)

// WorkingSet buffers the changes of one block's execution over a base
// Store, exactly as DiffUTXOSet buffers toAdd/toRemove over a FullUTXOSet:
// reads fall through to the base when the working set hasn't touched a
// key, and nothing is written back until the store's Apply commits the
// working set (spec §4.D.2: "All
// updates are written to a per-block working set, never directly to
// persistent storage").
type WorkingSet struct {
	base Store

	balances  map[AccountKey]AccountVersion
	nonces    map[[32]byte]NonceRecord
	multisigs map[[32]byte]*MultisigConfig
	contracts map[daghash.Hash]ContractRecord
}

// NewWorkingSet opens a working set over base for one block's execution.
func NewWorkingSet(base Store) *WorkingSet {
	return &WorkingSet{
		base:      base,
		balances:  make(map[AccountKey]AccountVersion),
		nonces:    make(map[[32]byte]NonceRecord),
		multisigs: make(map[[32]byte]*MultisigConfig),
		contracts: make(map[daghash.Hash]ContractRecord),
	}
}

// Balance returns the working-set's view of an account's balance,
// falling through to the base store.
func (ws *WorkingSet) Balance(key AccountKey) (AccountVersion, bool) {
	if v, ok := ws.balances[key]; ok {
		return v, true
	}
	return ws.base.Balance(key)
}

// Nonce returns the working-set's view of an account's nonce, falling
// through to the base store.
func (ws *WorkingSet) Nonce(pubKey [32]byte) (NonceRecord, bool) {
	if v, ok := ws.nonces[pubKey]; ok {
		return v, true
	}
	return ws.base.Nonce(pubKey)
}

// Contract returns the working-set's view of a contract record.
func (ws *WorkingSet) Contract(contract daghash.Hash) (ContractRecord, bool) {
	if v, ok := ws.contracts[contract]; ok {
		return v, true
	}
	return ws.base.Contract(contract)
}

// debit subtracts amount from key's balance at the given topoheight using
// checked arithmetic (spec §4.D.2: "every balance update uses checked
// arithmetic; overflow or underflow aborts the transaction").
func (ws *WorkingSet) debit(key AccountKey, amount uint64, topoheight uint64) error {
	current, ok := ws.Balance(key)
	if !ok {
		return cerrors.New(cerrors.AccountNotFound)
	}
	if current.Balance < amount {
		return cerrors.NewInsufficientBalance(amount, current.Balance)
	}
	ws.balances[key] = AccountVersion{
		Balance:            current.Balance - amount,
		Topoheight:         topoheight,
		PreviousTopoheight: current.Topoheight,
		HasPrevious:        true,
	}
	return nil
}

// credit adds amount to key's balance at the given topoheight using
// checked arithmetic, creating the account if it doesn't yet exist.
func (ws *WorkingSet) credit(key AccountKey, amount uint64, topoheight uint64) error {
	current, ok := ws.Balance(key)
	newBalance := amount
	hasPrevious := false
	previousTopoheight := uint64(0)
	if ok {
		sum := current.Balance + amount
		if sum < current.Balance {
			return cerrors.New(cerrors.Overflow)
		}
		newBalance = sum
		hasPrevious = true
		previousTopoheight = current.Topoheight
	}
	ws.balances[key] = AccountVersion{
		Balance:            newBalance,
		Topoheight:         topoheight,
		PreviousTopoheight: previousTopoheight,
		HasPrevious:        hasPrevious,
	}
	return nil
}

// casNonce performs the nonce compare-and-swap spec §4.D.2 step 2
// requires: the working set's current nonce for pubKey must equal
// expected, or the update is rejected without side effects.
func (ws *WorkingSet) casNonce(pubKey [32]byte, expected, topoheight uint64) error {
	current, ok := ws.Nonce(pubKey)
	var currentNonce uint64
	var previousTopoheight uint64
	var hasPrevious bool
	if ok {
		currentNonce = current.Nonce
		previousTopoheight = current.Topoheight
		hasPrevious = true
	}
	if currentNonce != expected {
		return cerrors.NewInvalidNonce(expected, currentNonce)
	}
	ws.nonces[pubKey] = NonceRecord{
		Nonce:              currentNonce + 1,
		Topoheight:         topoheight,
		PreviousTopoheight: previousTopoheight,
		HasPrevious:        hasPrevious,
	}
	return nil
}

// Debit is the exported form of debit, for collaborators outside this
// package (the scheduled-execution queue) that need to move balances
// against the same checked-arithmetic rules a transaction debit uses.
func (ws *WorkingSet) Debit(key AccountKey, amount uint64, topoheight uint64) error {
	return ws.debit(key, amount, topoheight)
}

// Credit is the exported form of credit, for collaborators outside this
// package.
func (ws *WorkingSet) Credit(key AccountKey, amount uint64, topoheight uint64) error {
	return ws.credit(key, amount, topoheight)
}

// clone returns an independent copy of the working set's buffered
// changes, used to give each V2 parallel batch member its own
// pre-batch snapshot (spec §4.D.2 step 1 / §5: "each transaction reads
// the pre-batch snapshot, writes to its declared set").
func (ws *WorkingSet) clone() *WorkingSet {
	clone := NewWorkingSet(ws.base)
	for k, v := range ws.balances {
		clone.balances[k] = v
	}
	for k, v := range ws.nonces {
		clone.nonces[k] = v
	}
	for k, v := range ws.multisigs {
		clone.multisigs[k] = v
	}
	for k, v := range ws.contracts {
		clone.contracts[k] = v
	}
	return clone
}

// Diff exposes a working set's buffered changes to out-of-package Store
// implementations (a persistent storage/ provider) so they can commit them
// the same way MemStore.Apply does, without needing access to WorkingSet's
// unexported maps.
type Diff struct {
	Balances  map[AccountKey]AccountVersion
	Nonces    map[[32]byte]NonceRecord
	Multisigs map[[32]byte]*MultisigConfig
	Contracts map[daghash.Hash]ContractRecord
}

// Diff returns ws's buffered changes.
func (ws *WorkingSet) Diff() Diff {
	return Diff{
		Balances:  ws.balances,
		Nonces:    ws.nonces,
		Multisigs: ws.multisigs,
		Contracts: ws.contracts,
	}
}

// mergeDisjoint folds other's changes into ws, assuming the two working
// sets touched disjoint key sets (enforced by the batch partitioner
// before execution runs).
func (ws *WorkingSet) mergeDisjoint(other *WorkingSet) {
	for k, v := range other.balances {
		ws.balances[k] = v
	}
	for k, v := range other.nonces {
		ws.nonces[k] = v
	}
	for k, v := range other.multisigs {
		ws.multisigs[k] = v
	}
	for k, v := range other.contracts {
		ws.contracts[k] = v
	}
}
