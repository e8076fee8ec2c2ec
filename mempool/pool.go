// Package mempool implements component F: transaction admission ahead of
// block inclusion. Grounded on domain/mempool/mempool.go's TxPool shape
// (a single sync.RWMutex guarding a map-based pool, lastUpdated tracked
// atomically) and blockdag/validate.go's step-ordered rejection style,
// generalized from UTXO outpoints to the spec's account/nonce model —
// there are no orphans, sequence locks, or double-spend-by-outpoint here:
// a transaction either names a reachable reference and a reachable
// nonce, or admission rejects it outright.
package mempool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/state"
	"github.com/tos-network/tosd/txvalidate"
)

// BlockIndex resolves whether a topoheight is a known, unpruned point on
// the local chain (spec §4.D.1 step 2: "resolve reference.topoheight to
// a known block; reject if missing or pruned") and what the current tip
// is, for txvalidate's reference-freshness and chain-ID-activation checks.
type BlockIndex interface {
	HasTopoheight(topoheight uint64) bool
	CurrentTopoheight() uint64
}

// SignatureVerifier checks a transaction's signature against its source
// account (spec §4.D.1 step 4). The cryptographic internals are out of
// scope (spec §1 non-goal); this is only the hook boundary, the way
// state.ContractRunner is the hook boundary for VM execution.
type SignatureVerifier interface {
	Verify(tx *consensustypes.Transaction, encoded []byte) error
}

// Config bundles a Pool's collaborators, mirroring the teacher's
// mempool.Config grouping of policy knobs and external dependencies
// (DAG, SigCache) into one struct passed to the constructor. Multisig and
// ZK are passed straight through to txvalidate.ValidateTransaction as its
// Collaborators; ZK may be nil, in which case private-transfer kinds
// (UNO/Shield/Unshield) are rejected rather than silently admitted
// unchecked, the way a nil state.ContractRunner rejects contract
// invocations.
type Config struct {
	Store    state.Store
	Blocks   BlockIndex
	Verifier SignatureVerifier
	Multisig txvalidate.SignatureVerifier
	ZK       txvalidate.ZKVerifier
	Params   consensustypes.Params
}

// TxEntry is a descriptor for one admitted transaction, mirroring the
// teacher's TxDesc — the pool's record plus the metadata admission
// computed along the way.
type TxEntry struct {
	Hash    daghash.Hash
	Tx      *consensustypes.Transaction
	Encoded []byte
	AddedAt time.Time
}

// Pool holds admitted transactions pending block inclusion. Safe for
// concurrent access: a single RWMutex serializes the nonce check+insert
// (spec §4.D.1 step 5's "atomic, guarded by a per-account mutex or CAS"),
// exactly as the teacher's single mtx guards pool/depends/dependsByPrev
// together rather than one lock per account.
type Pool struct {
	lastUpdated int64 // atomic, unix ms

	cfg Config

	mtx          sync.RWMutex
	pool         map[daghash.Hash]*TxEntry
	pendingNonce map[[32]byte]map[uint64]daghash.Hash // source -> nonce -> tx hash
}

// New creates an empty Pool.
func New(cfg Config) *Pool {
	return &Pool{
		cfg:          cfg,
		pool:         make(map[daghash.Hash]*TxEntry),
		pendingNonce: make(map[[32]byte]map[uint64]daghash.Hash),
	}
}

// Count returns the number of transactions currently admitted.
func (mp *Pool) Count() int {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return len(mp.pool)
}

// Has reports whether hash is already admitted.
func (mp *Pool) Has(hash daghash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	_, ok := mp.pool[hash]
	return ok
}

// FetchTransaction returns the admitted entry for hash, if any.
func (mp *Pool) FetchTransaction(hash daghash.Hash) (*TxEntry, bool) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	e, ok := mp.pool[hash]
	return e, ok
}

// pendingCount returns how many transactions from source are already
// admitted, used to compute the expected next nonce (spec §4.D.1 step 5).
// Caller must hold mtx.
func (mp *Pool) pendingCount(source [32]byte) uint64 {
	return uint64(len(mp.pendingNonce[source]))
}

// RemoveTransaction evicts hash from the pool, e.g. once its block has
// been committed (spec §4.D.2 step 6 "update the nonce-checker index so
// admission sees fresh state").
func (mp *Pool) RemoveTransaction(hash daghash.Hash) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.removeTransaction(hash)
}

func (mp *Pool) removeTransaction(hash daghash.Hash) {
	entry, ok := mp.pool[hash]
	if !ok {
		return
	}
	delete(mp.pool, hash)
	if byNonce, ok := mp.pendingNonce[entry.Tx.SourcePubKey]; ok {
		delete(byNonce, entry.Tx.Nonce)
		if len(byNonce) == 0 {
			delete(mp.pendingNonce, entry.Tx.SourcePubKey)
		}
	}
	atomic.StoreInt64(&mp.lastUpdated, time.Now().UnixMilli())
}

// LastUpdated returns the unix-millisecond timestamp of the most recent
// pool mutation.
func (mp *Pool) LastUpdated() int64 {
	return atomic.LoadInt64(&mp.lastUpdated)
}

// nativeAsset is the fee-denominating asset (spec §3: the zero daghash.Hash).
var nativeAsset daghash.Hash

func accountKey(pubKey [32]byte, asset daghash.Hash) state.AccountKey {
	return state.NewAccountKey(pubKey, asset)
}

func onChainNonce(store state.Store, pubKey [32]byte) uint64 {
	rec, ok := store.Nonce(pubKey)
	if !ok {
		return 0
	}
	return rec.Nonce
}

// requiredBalances computes, per touched asset, the amount source must
// be able to cover (spec §4.D.1 step 6: "value + fee for each asset
// touched"), mirroring state/executor.go's applyTransaction totalDebit
// accumulation without mutating anything.
func requiredBalances(tx *consensustypes.Transaction) map[daghash.Hash]uint64 {
	need := map[daghash.Hash]uint64{nativeAsset: tx.Fee}
	transfers := tx.Transfers
	if tx.Private != nil {
		transfers = tx.Private.Transfers
	}
	for _, t := range transfers {
		need[t.Asset] += t.Amount
	}
	if tx.Burn != nil {
		need[tx.Burn.Asset] += tx.Burn.Amount
	}
	if tx.Invoke != nil {
		for _, d := range tx.Invoke.Deposits {
			need[d.Asset] += d.Amount
		}
	}
	return need
}
