package wire

import (
	"math/big"
	"testing"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

func hdrHash(b byte) daghash.Hash {
	var h daghash.Hash
	h[0] = b
	return h
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	h := &consensustypes.BlockHeader{
		Version:        1,
		ChainID:        consensustypes.ChainIDTestnet,
		Parents:        []daghash.Hash{hdrHash(1), hdrHash(2)},
		TimestampMs:    1700000000000,
		Nonce:          42,
		ExtraNonce:     7,
		DeclaredTarget: big.NewInt(1000),
		TxHashes:       []daghash.Hash{hdrHash(9)},
	}
	h.MinerPubKey[0] = 0xAB

	encoded, err := EncodeBlockHeader(h)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeBlockHeader(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Version != h.Version || decoded.ChainID != h.ChainID ||
		decoded.TimestampMs != h.TimestampMs || decoded.Nonce != h.Nonce ||
		decoded.ExtraNonce != h.ExtraNonce {
		t.Fatalf("scalar field mismatch: %+v", decoded)
	}
	if len(decoded.Parents) != len(h.Parents) {
		t.Fatalf("parent count mismatch: got %d want %d", len(decoded.Parents), len(h.Parents))
	}
	for i := range h.Parents {
		if decoded.Parents[i] != h.Parents[i] {
			t.Fatalf("parent %d mismatch", i)
		}
	}
	if decoded.DeclaredTarget.Cmp(h.DeclaredTarget) != 0 {
		t.Fatalf("target mismatch: got %s want %s", decoded.DeclaredTarget, h.DeclaredTarget)
	}
	if decoded.MinerPubKey != h.MinerPubKey {
		t.Fatalf("miner pubkey mismatch")
	}
	if len(decoded.TxHashes) != 1 || decoded.TxHashes[0] != h.TxHashes[0] {
		t.Fatalf("tx hashes mismatch")
	}
}

func TestBlockHeaderGenesisHasNoParents(t *testing.T) {
	h := &consensustypes.BlockHeader{DeclaredTarget: big.NewInt(1)}
	if !h.IsGenesis() {
		t.Fatalf("expected genesis header with no parents")
	}
	encoded, err := EncodeBlockHeader(h)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeBlockHeader(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.IsGenesis() {
		t.Fatalf("round-tripped header should still be genesis")
	}
}

func TestBlockHeaderRejectsTooManyParents(t *testing.T) {
	parents := make([]daghash.Hash, consensustypes.MaxNumParents+1)
	h := &consensustypes.BlockHeader{Parents: parents, DeclaredTarget: big.NewInt(1)}
	if _, err := EncodeBlockHeader(h); err == nil {
		t.Fatalf("expected error for too many parents")
	}
}
