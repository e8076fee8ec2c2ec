// Package state implements component D: the versioned account/balance/
// nonce/multisig/contract store, a per-block working set that buffers
// changes and commits atomically, and V2 parallel-batch execution.
// Grounded on blockdag/utxoset.go's base-set + diff-set split (FullUTXOSet
// / DiffUTXOSet / meldToBase), generalized from UTXO outpoints to the
// spec's (pubkey, asset) account keys and topoheight-versioned balances.
package state

import (
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

// AccountKey identifies one (owner, asset) balance slot, mirroring
// utxoset.go's wire.Outpoint as the map key of a diffable collection.
type AccountKey struct {
	PubKey [32]byte
	Asset  daghash.Hash
}

// AccountVersion is one versioned snapshot of an account's balance for a
// single asset, linked to its predecessor by topoheight (spec §4.D: "State
// is keyed by (account, asset, topoheight) with a linked-list back-pointer
// to the previous version").
type AccountVersion struct {
	Balance            uint64
	Topoheight         uint64
	PreviousTopoheight uint64 // 0 with HasPrevious=false for the first version
	HasPrevious        bool
}

// NonceRecord is the current on-chain nonce for an account, versioned the
// same way balances are.
type NonceRecord struct {
	Nonce              uint64
	Topoheight         uint64
	PreviousTopoheight uint64
	HasPrevious        bool
}

// MultisigConfig is an account's current multisig policy, if any.
type MultisigConfig struct {
	Threshold    uint8
	Participants [][32]byte
}

// ContractRecord is a deployed contract's current bytecode and metadata.
type ContractRecord struct {
	Bytecode   []byte
	Deployed   bool
	Topoheight uint64
}

// NewAccountKey is a convenience constructor bundling a raw pubkey with an asset
// into an AccountKey.
func NewAccountKey(pubKey [32]byte, asset daghash.Hash) AccountKey {
	return AccountKey{PubKey: pubKey, Asset: asset}
}

// touchesAccount reports whether an AccountKey declaration (spec §3
// account_keys) matches k.
func touchesAccount(decl consensustypes.AccountKey, k AccountKey) bool {
	return decl.PubKey == k.PubKey && decl.Asset == k.Asset
}
