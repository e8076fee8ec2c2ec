package wire

import (
	"math/big"
	"testing"

	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/ghostdag"
)

func gdHash(b byte) daghash.Hash {
	var h daghash.Hash
	h[0] = b
	return h
}

func TestGhostdagDataRoundTrip(t *testing.T) {
	d := &ghostdag.BlockData{
		BlueScore:      3,
		BlueWork:       big.NewInt(12345),
		DAAScore:       7,
		SelectedParent: gdHash(1),
		MergesetBlues:  []daghash.Hash{gdHash(1), gdHash(2)},
		MergesetReds:   []daghash.Hash{gdHash(3)},
		BluesAnticoneSizes: map[daghash.Hash]uint8{
			gdHash(1): 0,
			gdHash(2): 1,
		},
	}

	encoded, err := EncodeGhostdagData(d)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeGhostdagData(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.BlueScore != d.BlueScore || decoded.DAAScore != d.DAAScore ||
		decoded.SelectedParent != d.SelectedParent {
		t.Fatalf("scalar mismatch: %+v", decoded)
	}
	if decoded.BlueWork.Cmp(d.BlueWork) != 0 {
		t.Fatalf("blue work mismatch: got %s want %s", decoded.BlueWork, d.BlueWork)
	}
	if len(decoded.MergesetBlues) != 2 || len(decoded.MergesetReds) != 1 {
		t.Fatalf("mergeset length mismatch: %+v", decoded)
	}
	if decoded.BluesAnticoneSizes[gdHash(1)] != 0 || decoded.BluesAnticoneSizes[gdHash(2)] != 1 {
		t.Fatalf("anticone sizes mismatch: %+v", decoded.BluesAnticoneSizes)
	}
}
