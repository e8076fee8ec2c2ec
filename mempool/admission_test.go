package mempool

import (
	"sync"
	"testing"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/state"
	"github.com/tos-network/tosd/wire"
)

type fakeBlocks struct {
	known map[uint64]bool
	tip   uint64
}

func (f *fakeBlocks) HasTopoheight(topoheight uint64) bool {
	return f.known[topoheight]
}

func (f *fakeBlocks) CurrentTopoheight() uint64 {
	return f.tip
}

func sourceKey(b byte) [32]byte {
	var k [32]byte
	k[0] = b
	return k
}

func assetHash(b byte) daghash.Hash {
	var h daghash.Hash
	h[0] = b
	return h
}

func baseTx(source [32]byte, nonce uint64) *consensustypes.Transaction {
	return &consensustypes.Transaction{
		Version:      2,
		ChainID:      consensustypes.ChainIDMainnet,
		SourcePubKey: source,
		Kind:         consensustypes.KindTransfers,
		Fee:          10,
		FeeType:      consensustypes.FeeTypeNative,
		Nonce:        nonce,
		Reference:    consensustypes.Reference{Topoheight: 5},
		Transfers:    []consensustypes.Transfer{{Asset: assetHash(1), Amount: 100}},
	}
}

func newTestPool(t *testing.T, source [32]byte, balance uint64, nonce uint64) *Pool {
	t.Helper()
	store := state.NewMemStore()
	store.SetBalance(state.NewAccountKey(source, daghash.Hash{}), state.AccountVersion{Balance: balance})
	store.SetBalance(state.NewAccountKey(source, assetHash(1)), state.AccountVersion{Balance: balance})
	store.SetNonce(source, state.NonceRecord{Nonce: nonce})
	return New(Config{
		Store:  store,
		Blocks: &fakeBlocks{known: map[uint64]bool{5: true}, tip: 5},
		Params: consensustypes.Params{ChainID: consensustypes.ChainIDMainnet},
	})
}

func encode(t *testing.T, tx *consensustypes.Transaction) []byte {
	t.Helper()
	encoded, err := wire.EncodeTransaction(tx)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return encoded
}

func TestProcessTransactionAdmitsValidTx(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 1000, 0)

	entry, err := pool.ProcessTransaction(encode(t, baseTx(source, 0)))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !pool.Has(entry.Hash) {
		t.Fatalf("expected tx to be admitted")
	}
	if pool.Count() != 1 {
		t.Fatalf("expected count 1, got %d", pool.Count())
	}
}

func TestProcessTransactionChainsNoncesSequentially(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 1_000_000, 0)

	for i := uint64(0); i < 3; i++ {
		if _, err := pool.ProcessTransaction(encode(t, baseTx(source, i))); err != nil {
			t.Fatalf("process nonce %d: %v", i, err)
		}
	}
	if pool.Count() != 3 {
		t.Fatalf("expected 3 admitted, got %d", pool.Count())
	}

	// The next nonce must be 3 (on-chain 0 + 3 pending); repeating nonce 1
	// is no longer the expected value and must be rejected.
	_, err := pool.ProcessTransaction(encode(t, baseTx(source, 1)))
	if err == nil || !cerrors.Is(err, cerrors.InvalidNonce) {
		t.Fatalf("expected InvalidNonce, got %v", err)
	}
}

func TestProcessTransactionRejectsConcurrentSameNonce(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 1000, 0)

	txA := encode(t, baseTx(source, 0))
	txB := encode(t, baseTx(source, 0))
	txB[len(txB)-1] ^= 0xFF // ensure a distinct hash from txA while keeping nonce 0

	if _, err := pool.ProcessTransaction(txA); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := pool.ProcessTransaction(txB)
	if err == nil || !cerrors.Is(err, cerrors.InvalidNonce) {
		t.Fatalf("expected second same-nonce tx to be rejected as InvalidNonce, got %v", err)
	}
}

func TestProcessTransactionRejectsInsufficientBalance(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 50, 0)

	_, err := pool.ProcessTransaction(encode(t, baseTx(source, 0)))
	if err == nil || !cerrors.Is(err, cerrors.InsufficientBalance) {
		t.Fatalf("expected InsufficientBalance, got %v", err)
	}
	if pool.Count() != 0 || pool.pendingCount(source) != 0 {
		t.Fatalf("expected balance-rejected tx to leave no nonce reservation behind, pool has %d, reserved nonces %d", pool.Count(), pool.pendingCount(source))
	}
}

func TestProcessTransactionRejectsWrongChainID(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 1000, 0)

	tx := baseTx(source, 0)
	tx.ChainID = consensustypes.ChainIDTestnet

	_, err := pool.ProcessTransaction(encode(t, tx))
	if err == nil || !cerrors.Is(err, cerrors.WrongChainId) {
		t.Fatalf("expected WrongChainId, got %v", err)
	}
}

func TestProcessTransactionRejectsUnknownReference(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 1000, 0)

	tx := baseTx(source, 0)
	tx.Reference.Topoheight = 999

	_, err := pool.ProcessTransaction(encode(t, tx))
	if err == nil || !cerrors.Is(err, cerrors.BlockNotFound) {
		t.Fatalf("expected BlockNotFound, got %v", err)
	}
}

func TestProcessTransactionRejectsOversizedTransferCount(t *testing.T) {
	// The wire codec itself refuses to encode more than MaxTransfersPerTx
	// transfers (wire.writeTransfers), so admission's own bound check
	// (decodeAndBoundCheck) only ever sees payloads already within that
	// limit from the encoder's side — the two layers enforce the same
	// spec §6 limit independently. Exercise it at the layer that can
	// actually produce an over-limit payload: the encoder.
	tx := baseTx(sourceKey(1), 0)
	tx.Transfers = make([]consensustypes.Transfer, consensustypes.MaxTransfersPerTx+1)
	for i := range tx.Transfers {
		tx.Transfers[i] = consensustypes.Transfer{Asset: assetHash(1), Amount: 1}
	}

	_, err := wire.EncodeTransaction(tx)
	if err == nil || !cerrors.Is(err, cerrors.InvalidSize) {
		t.Fatalf("expected InvalidSize, got %v", err)
	}
}

func TestProcessTransactionRejectsAggregateExtraDataBudget(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 1_000_000, 0)

	tx := baseTx(source, 0)
	memo := make([]byte, consensustypes.MaxExtraDataPerTransfer)
	// 33 transfers * 128 bytes = 4224, over the 4096 aggregate budget,
	// while each transfer individually stays within the per-transfer cap.
	tx.Transfers = make([]consensustypes.Transfer, 33)
	for i := range tx.Transfers {
		tx.Transfers[i] = consensustypes.Transfer{Asset: assetHash(1), Amount: 1, ExtraData: memo}
	}

	_, err := pool.ProcessTransaction(encode(t, tx))
	if err == nil || !cerrors.Is(err, cerrors.InvalidSize) {
		t.Fatalf("expected InvalidSize, got %v", err)
	}
}

func TestProcessTransactionRejectsDuplicate(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 1000, 0)

	encoded := encode(t, baseTx(source, 0))
	if _, err := pool.ProcessTransaction(encoded); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := pool.ProcessTransaction(encoded)
	if err == nil || !cerrors.Is(err, cerrors.DuplicateTx) {
		t.Fatalf("expected DuplicateTx, got %v", err)
	}
}

func TestRemoveTransactionFreesNonceSlot(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 1000, 0)

	entry, err := pool.ProcessTransaction(encode(t, baseTx(source, 0)))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	pool.RemoveTransaction(entry.Hash)
	if pool.Count() != 0 {
		t.Fatalf("expected pool empty after removal")
	}

	// nonce 0 should be admissible again since the on-chain nonce is
	// still 0 and there are no pending transactions left.
	if _, err := pool.ProcessTransaction(encode(t, baseTx(source, 0))); err != nil {
		t.Fatalf("re-admit after removal: %v", err)
	}
}

// TestProcessTransactionConcurrentSameNonceOnlyOneWins exercises spec
// §4.D.1 step 5's invariant directly: "at most one pending tx per
// (source, nonce)" even when racing submissions hit ProcessTransaction
// at the same time, since the single Pool mtx serializes check+insert.
func TestProcessTransactionConcurrentSameNonceOnlyOneWins(t *testing.T) {
	source := sourceKey(1)
	pool := newTestPool(t, source, 1000, 0)

	const n = 16
	results := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		tx := baseTx(source, 0)
		tx.Fee = uint64(10 + i) // vary payload so each has a distinct hash
		encoded := encode(t, tx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.ProcessTransaction(encoded)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else if !cerrors.Is(err, cerrors.InvalidNonce) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 winner for nonce 0, got %d", successes)
	}
}
