package wire

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/ghostdag"
)

// EncodeGhostdagData writes a ghostdag.BlockData record in a fixed layout:
// blue_score, blue_work (u32-length-prefixed big-endian magnitude),
// daa_score, selected_parent, then count-prefixed mergeset_blues and
// mergeset_reds hash lists, then a count-prefixed list of (hash,
// anticone_size) pairs sorted by hash for a deterministic encoding (spec
// §8 testable property 10: decode(encode(v)) == v).
func EncodeGhostdagData(d *ghostdag.BlockData) ([]byte, error) {
	buf := newBuffer(64 + (len(d.MergesetBlues)+len(d.MergesetReds))*daghash.HashSize)

	if err := writeUint64(buf, d.BlueScore); err != nil {
		return nil, err
	}
	blueWork := d.BlueWork
	if blueWork == nil {
		blueWork = new(big.Int)
	}
	if err := writeBigBytes(buf, blueWork.Bytes()); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, d.DAAScore); err != nil {
		return nil, err
	}
	if err := writeHash(buf, d.SelectedParent); err != nil {
		return nil, err
	}
	if err := writeHashList(buf, d.MergesetBlues); err != nil {
		return nil, err
	}
	if err := writeHashList(buf, d.MergesetReds); err != nil {
		return nil, err
	}

	hashes := make([]daghash.Hash, 0, len(d.BluesAnticoneSizes))
	for h := range d.BluesAnticoneSizes {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i].Less(&hashes[j]) })
	if err := writeUint32(buf, uint32(len(hashes))); err != nil {
		return nil, err
	}
	for _, h := range hashes {
		if err := writeHash(buf, h); err != nil {
			return nil, err
		}
		if err := writeUint8(buf, d.BluesAnticoneSizes[h]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeGhostdagData parses a ghostdag.BlockData from its wire encoding.
func DecodeGhostdagData(data []byte) (*ghostdag.BlockData, error) {
	r := bytes.NewReader(data)
	d := &ghostdag.BlockData{}

	var err error
	if d.BlueScore, err = readUint64(r); err != nil {
		return nil, err
	}
	blueWorkBytes, err := readBigBytes(r, 0)
	if err != nil {
		return nil, err
	}
	d.BlueWork = new(big.Int).SetBytes(blueWorkBytes)

	if d.DAAScore, err = readUint64(r); err != nil {
		return nil, err
	}
	if d.SelectedParent, err = readHash(r); err != nil {
		return nil, err
	}
	if d.MergesetBlues, err = readHashList(r); err != nil {
		return nil, err
	}
	if d.MergesetReds, err = readHashList(r); err != nil {
		return nil, err
	}

	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	d.BluesAnticoneSizes = make(map[daghash.Hash]uint8, n)
	for i := uint32(0); i < n; i++ {
		h, err := readHash(r)
		if err != nil {
			return nil, err
		}
		size, err := readUint8(r)
		if err != nil {
			return nil, err
		}
		d.BluesAnticoneSizes[h] = size
	}
	return d, nil
}

func writeHashList(w *bytes.Buffer, hashes []daghash.Hash) error {
	if err := writeUint32(w, uint32(len(hashes))); err != nil {
		return err
	}
	for _, h := range hashes {
		if err := writeHash(w, h); err != nil {
			return err
		}
	}
	return nil
}

func readHashList(r *bytes.Reader) ([]daghash.Hash, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	hashes := make([]daghash.Hash, n)
	for i := range hashes {
		if hashes[i], err = readHash(r); err != nil {
			return nil, err
		}
	}
	return hashes, nil
}
