package state

import (
	"testing"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

func pubKey(b byte) [32]byte {
	var pk [32]byte
	pk[0] = b
	return pk
}

func transferTx(source, dest [32]byte, amount, fee, nonce uint64) *consensustypes.Transaction {
	return &consensustypes.Transaction{
		Version:      1,
		SourcePubKey: source,
		Kind:         consensustypes.KindTransfers,
		Fee:          fee,
		Nonce:        nonce,
		Transfers: []consensustypes.Transfer{
			{Destination: dest, Amount: amount},
		},
	}
}

func TestApplyBlockTransferMovesBalance(t *testing.T) {
	base := NewMemStore()
	source := pubKey(1)
	dest := pubKey(2)
	base.SetBalance(NewAccountKey(source, daghash.Hash{}), AccountVersion{Balance: 1000})
	base.SetNonce(source, NonceRecord{Nonce: 0})

	tx := transferTx(source, dest, 300, 10, 0)
	exec := NewExecutor(nil)

	ws, _, err := exec.ApplyBlock(base, 1, 10, []*consensustypes.Transaction{tx})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	base.Apply(ws)

	srcBal, _ := base.Balance(NewAccountKey(source, daghash.Hash{}))
	if srcBal.Balance != 690 {
		t.Fatalf("expected source balance 690, got %d", srcBal.Balance)
	}
	destBal, _ := base.Balance(NewAccountKey(dest, daghash.Hash{}))
	if destBal.Balance != 300 {
		t.Fatalf("expected dest balance 300, got %d", destBal.Balance)
	}
	srcNonce, _ := base.Nonce(source)
	if srcNonce.Nonce != 1 {
		t.Fatalf("expected nonce 1, got %d", srcNonce.Nonce)
	}
}

func TestApplyBlockFailsAtomically(t *testing.T) {
	base := NewMemStore()
	source := pubKey(1)
	base.SetBalance(NewAccountKey(source, daghash.Hash{}), AccountVersion{Balance: 10})
	base.SetNonce(source, NonceRecord{Nonce: 0})

	good := transferTx(source, pubKey(2), 5, 1, 0)
	bad := transferTx(source, pubKey(3), 1000, 1, 1) // insufficient balance

	exec := NewExecutor(nil)
	_, _, err := exec.ApplyBlock(base, 1, 10, []*consensustypes.Transaction{good, bad})
	if err == nil {
		t.Fatalf("expected block to fail")
	}

	// Base must be completely untouched: neither tx's effects committed.
	srcBal, _ := base.Balance(NewAccountKey(source, daghash.Hash{}))
	if srcBal.Balance != 10 {
		t.Fatalf("expected base untouched at 10, got %d", srcBal.Balance)
	}
}

func TestApplyBlockRejectsStaleNonce(t *testing.T) {
	base := NewMemStore()
	source := pubKey(1)
	base.SetBalance(NewAccountKey(source, daghash.Hash{}), AccountVersion{Balance: 1000})
	base.SetNonce(source, NonceRecord{Nonce: 5})

	tx := transferTx(source, pubKey(2), 1, 1, 0) // stale nonce, expects 5
	exec := NewExecutor(nil)
	_, _, err := exec.ApplyBlock(base, 1, 10, []*consensustypes.Transaction{tx})
	if err == nil || !cerrors.Is(cerrorsCause(err), cerrors.InvalidNonce) {
		t.Fatalf("expected wrapped InvalidNonce, got %v", err)
	}
}

// cerrorsCause unwraps a github.com/pkg/errors-wrapped error down to the
// underlying *cerrors.Error, mirroring errors.Cause for this package's
// tests.
func cerrorsCause(err error) error {
	type causer interface {
		Cause() error
	}
	for err != nil {
		c, ok := err.(causer)
		if !ok {
			return err
		}
		err = c.Cause()
	}
	return err
}

func TestPartitionBatchesSplitsOnWriteConflict(t *testing.T) {
	shared := daghash.Hash{1}
	a := &consensustypes.Transaction{
		AccountKeys: []consensustypes.AccountKey{{Asset: shared, IsWritable: true}},
	}
	b := &consensustypes.Transaction{
		AccountKeys: []consensustypes.AccountKey{{Asset: shared, IsWritable: true}},
	}
	c := &consensustypes.Transaction{
		AccountKeys: []consensustypes.AccountKey{{Asset: daghash.Hash{2}, IsWritable: true}},
	}

	batches := partitionBatches(2, []*consensustypes.Transaction{a, b, c})
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Fatalf("unexpected batch sizes: %v", batches)
	}
}

func TestPartitionBatchesSingleBatchForV1(t *testing.T) {
	a := &consensustypes.Transaction{}
	b := &consensustypes.Transaction{}
	batches := partitionBatches(1, []*consensustypes.Transaction{a, b})
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("expected one sequential batch, got %v", batches)
	}
}
