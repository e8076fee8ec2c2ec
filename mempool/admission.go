package mempool

import (
	"sync/atomic"
	"time"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/txvalidate"
	"github.com/tos-network/tosd/wire"
)

// ProcessTransaction runs the six-step admission pipeline of spec
// §4.D.1 against encoded, the wire-encoded transaction bytes, and — on
// success — inserts the transaction into the pool. Admission never
// mutates persisted state (only the pool's own bookkeeping), matching
// the teacher's maybeAcceptTransaction which validates against the UTXO
// set but commits nothing until the transaction is mined.
func (mp *Pool) ProcessTransaction(encoded []byte) (*TxEntry, error) {
	tx, err := decodeAndBoundCheck(encoded)
	if err != nil {
		return nil, err
	}

	if !mp.cfg.Blocks.HasTopoheight(tx.Reference.Topoheight) {
		return nil, cerrors.New(cerrors.BlockNotFound)
	}

	multisigConfig, _ := mp.cfg.Store.Multisig(tx.SourcePubKey)
	collab := txvalidate.Collaborators{Signature: mp.cfg.Multisig, ZK: mp.cfg.ZK}
	if err := txvalidate.ValidateTransaction(tx, mp.cfg.Params, mp.cfg.Blocks.CurrentTopoheight(), multisigConfig, collab); err != nil {
		return nil, err
	}

	if mp.cfg.Verifier != nil {
		unsigned := *tx
		unsigned.Signature = [64]byte{}
		message, err := wire.EncodeTransaction(&unsigned)
		if err != nil {
			return nil, err
		}
		if err := mp.cfg.Verifier.Verify(tx, message); err != nil {
			return nil, err
		}
	}

	hash := daghash.HashData(encoded)

	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	if _, ok := mp.pool[hash]; ok {
		return nil, cerrors.New(cerrors.DuplicateTx)
	}

	if err := mp.checkNonceAndInsert(tx, hash); err != nil {
		return nil, err
	}

	if err := mp.checkBalances(tx); err != nil {
		byNonce := mp.pendingNonce[tx.SourcePubKey]
		delete(byNonce, tx.Nonce)
		if len(byNonce) == 0 {
			delete(mp.pendingNonce, tx.SourcePubKey)
		}
		return nil, err
	}

	entry := &TxEntry{Hash: hash, Tx: tx, Encoded: encoded, AddedAt: time.Now()}
	mp.pool[hash] = entry
	atomic.StoreInt64(&mp.lastUpdated, time.Now().UnixMilli())
	return entry, nil
}

// decodeAndBoundCheck implements spec §4.D.1 step 1: decode the wire
// bytes and reject payloads past the declared count/size limits.
func decodeAndBoundCheck(encoded []byte) (*consensustypes.Transaction, error) {
	tx, err := wire.DecodeTransaction(encoded)
	if err != nil {
		return nil, err
	}

	// Per-transfer extra-data size, transfer count, deposit count, and
	// multisig participant count are already bounded by the wire codec
	// itself (writeTransfers/readTransfers, writePayload/readPayload) —
	// a decoded tx can never violate them. Only the aggregate per-tx
	// extra-data budget (spec §6 "per tx aggregate: 4096 bytes") isn't
	// enforced there, since it spans multiple transfers.
	var totalExtra int
	for _, t := range tx.Transfers {
		totalExtra += len(t.ExtraData)
	}
	if totalExtra > consensustypes.MaxExtraDataPerTx {
		return nil, cerrors.New(cerrors.InvalidSize)
	}

	// A contract invocation's calldata may itself be a tagged-sum
	// ValueCell; if so, DecodeValueCell enforces the same
	// depth/array/map limits a directly-encoded value would (spec §6
	// ValueCell limits). Calldata that isn't ValueCell-shaped is left
	// to the contract ABI, not admission's concern.
	if tx.Invoke != nil && len(tx.Invoke.Input) > 0 {
		if _, err := wire.DecodeValueCell(tx.Invoke.Input); err != nil {
			if cerrors.Is(err, cerrors.ExceedsMaxDepth) ||
				cerrors.Is(err, cerrors.ExceedsMaxArraySize) ||
				cerrors.Is(err, cerrors.ExceedsMaxMapSize) {
				return nil, err
			}
		}
	}

	return tx, nil
}

// checkNonceAndInsert implements spec §4.D.1 step 5: the expected nonce
// is the on-chain nonce plus the count of pending transactions from
// source already admitted. Caller must hold mtx — the lock itself is
// what makes the check+insert atomic (spec: "guarded by a per-account
// mutex or CAS so two concurrent submissions with the same nonce cannot
// both succeed").
func (mp *Pool) checkNonceAndInsert(tx *consensustypes.Transaction, hash daghash.Hash) error {
	expected := onChainNonce(mp.cfg.Store, tx.SourcePubKey) + mp.pendingCount(tx.SourcePubKey)
	if tx.Nonce != expected {
		return cerrors.NewInvalidNonce(expected, tx.Nonce)
	}

	byNonce, ok := mp.pendingNonce[tx.SourcePubKey]
	if !ok {
		byNonce = make(map[uint64]daghash.Hash)
		mp.pendingNonce[tx.SourcePubKey] = byNonce
	}
	if _, exists := byNonce[tx.Nonce]; exists {
		return cerrors.New(cerrors.DuplicateTx)
	}
	byNonce[tx.Nonce] = hash
	return nil
}

// checkBalances implements spec §4.D.1 step 6 against the store's current
// balances: source's balance must cover value+fee for every asset touched.
// Balances are not looked up as of the transaction's reference topoheight.
func (mp *Pool) checkBalances(tx *consensustypes.Transaction) error {
	for asset, need := range requiredBalances(tx) {
		have, ok := mp.cfg.Store.Balance(accountKey(tx.SourcePubKey, asset))
		balance := uint64(0)
		if ok {
			balance = have.Balance
		}
		if balance < need {
			return cerrors.NewInsufficientBalance(need, balance)
		}
	}
	return nil
}
