package wire

import (
	"bytes"
	"math/big"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

// targetByteLen is the fixed width a DeclaredTarget is encoded in, wide
// enough for any 256-bit target (spec §6 block header layout).
const targetByteLen = 32

// EncodeBlockHeader writes a BlockHeader in the bit-exact layout spec §6
// defines: version, chain_id, parent count + parent hashes, timestamp_ms,
// miner_pubkey, nonce, extra_nonce, declared_target (32-byte big-endian
// magnitude), tx_hash count + tx hashes.
func EncodeBlockHeader(h *consensustypes.BlockHeader) ([]byte, error) {
	if len(h.Parents) > consensustypes.MaxNumParents {
		return nil, cerrors.Newf(cerrors.InvalidSize, "%d parents exceeds max %d", len(h.Parents), consensustypes.MaxNumParents)
	}
	buf := newBuffer(64 + len(h.Parents)*daghash.HashSize + len(h.TxHashes)*daghash.HashSize)

	if err := writeUint8(buf, h.Version); err != nil {
		return nil, err
	}
	if err := writeUint8(buf, uint8(h.ChainID)); err != nil {
		return nil, err
	}
	if err := writeUint8(buf, uint8(len(h.Parents))); err != nil {
		return nil, err
	}
	for _, p := range h.Parents {
		if err := writeHash(buf, p); err != nil {
			return nil, err
		}
	}
	if err := writeUint64(buf, h.TimestampMs); err != nil {
		return nil, err
	}
	if err := writeFixedBytes(buf, h.MinerPubKey[:]); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, h.Nonce); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, h.ExtraNonce); err != nil {
		return nil, err
	}
	if err := writeTarget(buf, h.DeclaredTarget); err != nil {
		return nil, err
	}
	if err := writeUint32(buf, uint32(len(h.TxHashes))); err != nil {
		return nil, err
	}
	for _, t := range h.TxHashes {
		if err := writeHash(buf, t); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeBlockHeader parses a BlockHeader from its wire encoding.
func DecodeBlockHeader(data []byte) (*consensustypes.BlockHeader, error) {
	r := bytes.NewReader(data)
	h := &consensustypes.BlockHeader{}

	var err error
	if h.Version, err = readUint8(r); err != nil {
		return nil, err
	}
	chainID, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	h.ChainID = consensustypes.ChainID(chainID)

	numParents, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	if int(numParents) > consensustypes.MaxNumParents {
		return nil, cerrors.Newf(cerrors.InvalidSize, "%d parents exceeds max %d", numParents, consensustypes.MaxNumParents)
	}
	h.Parents = make([]daghash.Hash, numParents)
	for i := range h.Parents {
		if h.Parents[i], err = readHash(r); err != nil {
			return nil, err
		}
	}

	if h.TimestampMs, err = readUint64(r); err != nil {
		return nil, err
	}
	pubKey, err := readFixedBytes(r, 32)
	if err != nil {
		return nil, err
	}
	copy(h.MinerPubKey[:], pubKey)

	if h.Nonce, err = readUint64(r); err != nil {
		return nil, err
	}
	if h.ExtraNonce, err = readUint64(r); err != nil {
		return nil, err
	}
	if h.DeclaredTarget, err = readTarget(r); err != nil {
		return nil, err
	}

	numTxHashes, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	h.TxHashes = make([]daghash.Hash, numTxHashes)
	for i := range h.TxHashes {
		if h.TxHashes[i], err = readHash(r); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func writeTarget(w *bytes.Buffer, target *big.Int) error {
	var raw [targetByteLen]byte
	if target != nil {
		b := target.Bytes()
		if len(b) > targetByteLen {
			return cerrors.Newf(cerrors.InvalidSize, "target magnitude of %d bytes exceeds %d", len(b), targetByteLen)
		}
		copy(raw[targetByteLen-len(b):], b)
	}
	return writeFixedBytes(w, raw[:])
}

func readTarget(r *bytes.Reader) (*big.Int, error) {
	raw, err := readFixedBytes(r, targetByteLen)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}
