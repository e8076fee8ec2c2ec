// Package statedb adapts a storage.Provider into a persistent
// state.Store, grounded on blockdag/ffldb's convention of namespacing a
// single key/value backend into logical record families by key prefix
// (here: balance/nonce/multisig/contract) rather than one bucket per
// concern, since storage.Provider exposes only one flat keyspace.
package statedb

import (
	"github.com/pkg/errors"

	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/state"
	"github.com/tos-network/tosd/storage"
	"github.com/tos-network/tosd/wire"
)

const (
	balancePrefix  = "balance/"
	noncePrefix    = "nonce/"
	multisigPrefix = "multisig/"
	contractPrefix = "contract/"
)

// DB is a storage.Provider-backed state.Store, the persisted counterpart
// to state.MemStore used by cmd/tosd in place of the in-memory reference
// store tests use.
type DB struct {
	provider storage.Provider
}

// New wraps provider as a state.Store.
func New(provider storage.Provider) *DB {
	return &DB{provider: provider}
}

func balanceKey(k state.AccountKey) []byte {
	b := make([]byte, 0, len(balancePrefix)+32+daghash.HashSize)
	b = append(b, balancePrefix...)
	b = append(b, k.PubKey[:]...)
	b = append(b, k.Asset[:]...)
	return b
}

func nonceKey(pubKey [32]byte) []byte {
	b := make([]byte, 0, len(noncePrefix)+32)
	b = append(b, noncePrefix...)
	b = append(b, pubKey[:]...)
	return b
}

func multisigKey(pubKey [32]byte) []byte {
	b := make([]byte, 0, len(multisigPrefix)+32)
	b = append(b, multisigPrefix...)
	b = append(b, pubKey[:]...)
	return b
}

func contractKey(contract daghash.Hash) []byte {
	b := make([]byte, 0, len(contractPrefix)+daghash.HashSize)
	b = append(b, contractPrefix...)
	b = append(b, contract[:]...)
	return b
}

// Balance implements state.Store.
func (db *DB) Balance(key state.AccountKey) (state.AccountVersion, bool) {
	raw, ok, err := db.provider.Get(balanceKey(key))
	if err != nil || !ok {
		return state.AccountVersion{}, false
	}
	v, err := wire.DecodeAccountVersion(raw)
	if err != nil {
		return state.AccountVersion{}, false
	}
	return v, true
}

// Nonce implements state.Store.
func (db *DB) Nonce(pubKey [32]byte) (state.NonceRecord, bool) {
	raw, ok, err := db.provider.Get(nonceKey(pubKey))
	if err != nil || !ok {
		return state.NonceRecord{}, false
	}
	v, err := wire.DecodeNonceRecord(raw)
	if err != nil {
		return state.NonceRecord{}, false
	}
	return v, true
}

// Multisig implements state.Store.
func (db *DB) Multisig(pubKey [32]byte) (*state.MultisigConfig, bool) {
	raw, ok, err := db.provider.Get(multisigKey(pubKey))
	if err != nil || !ok {
		return nil, false
	}
	v, err := wire.DecodeMultisigConfig(raw)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Contract implements state.Store.
func (db *DB) Contract(contract daghash.Hash) (state.ContractRecord, bool) {
	raw, ok, err := db.provider.Get(contractKey(contract))
	if err != nil || !ok {
		return state.ContractRecord{}, false
	}
	v, err := wire.DecodeContractRecord(raw)
	if err != nil {
		return state.ContractRecord{}, false
	}
	return v, true
}

// Event implements state.Store. Contract event persistence is out of
// scope for the chain-state backend (spec's execution log is rebuilt
// from ExecutionResult at the caller, not re-queried by hash here), so
// this always reports not-found rather than erroring.
func (db *DB) Event(daghash.Hash, uint64, uint32) (bool, error) {
	return false, nil
}

// Apply commits a WorkingSet's buffered changes, implementing
// blockprocessor.StateStore the same way state.MemStore.Apply does, but
// through the wire codec against the underlying provider.
func (db *DB) Apply(ws *state.WorkingSet) {
	diff := ws.Diff()

	for k, v := range diff.Balances {
		raw, err := wire.EncodeAccountVersion(&v)
		if err != nil {
			panic(errors.Wrap(err, "encoding account version"))
		}
		if err := db.provider.Put(balanceKey(k), raw); err != nil {
			panic(errors.Wrap(err, "persisting account version"))
		}
	}
	for pubKey, v := range diff.Nonces {
		raw, err := wire.EncodeNonceRecord(&v)
		if err != nil {
			panic(errors.Wrap(err, "encoding nonce record"))
		}
		if err := db.provider.Put(nonceKey(pubKey), raw); err != nil {
			panic(errors.Wrap(err, "persisting nonce record"))
		}
	}
	for pubKey, v := range diff.Multisigs {
		raw, err := wire.EncodeMultisigConfig(v)
		if err != nil {
			panic(errors.Wrap(err, "encoding multisig config"))
		}
		if err := db.provider.Put(multisigKey(pubKey), raw); err != nil {
			panic(errors.Wrap(err, "persisting multisig config"))
		}
	}
	for contract, v := range diff.Contracts {
		raw, err := wire.EncodeContractRecord(&v)
		if err != nil {
			panic(errors.Wrap(err, "encoding contract record"))
		}
		if err := db.provider.Put(contractKey(contract), raw); err != nil {
			panic(errors.Wrap(err, "persisting contract record"))
		}
	}
}

// Close closes the underlying provider.
func (db *DB) Close() error {
	return db.provider.Close()
}
