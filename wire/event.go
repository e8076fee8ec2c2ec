package wire

import (
	"bytes"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
)

// EncodeStoredContractEvent writes a StoredContractEvent in its wire
// layout (spec §3, §6): contract/tx_hash/block_hash, topoheight, log
// index, a u8-count-prefixed list of fixed 32-byte topics, then the
// opaque data payload.
func EncodeStoredContractEvent(e *consensustypes.StoredContractEvent) ([]byte, error) {
	if len(e.Topics) > consensustypes.MaxEventTopics {
		return nil, cerrors.Newf(cerrors.InvalidSize, "%d topics exceeds max %d", len(e.Topics), consensustypes.MaxEventTopics)
	}
	buf := newBuffer(128)

	if err := writeHash(buf, e.Contract); err != nil {
		return nil, err
	}
	if err := writeHash(buf, e.TxHash); err != nil {
		return nil, err
	}
	if err := writeHash(buf, e.BlockHash); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, e.Topoheight); err != nil {
		return nil, err
	}
	if err := writeUint32(buf, e.LogIndex); err != nil {
		return nil, err
	}
	if err := writeUint8(buf, uint8(len(e.Topics))); err != nil {
		return nil, err
	}
	for _, t := range e.Topics {
		if err := writeFixedBytes(buf, t[:]); err != nil {
			return nil, err
		}
	}
	if err := writeBigBytes(buf, e.Data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeStoredContractEvent parses a StoredContractEvent from its wire
// encoding.
func DecodeStoredContractEvent(data []byte) (*consensustypes.StoredContractEvent, error) {
	r := bytes.NewReader(data)
	e := &consensustypes.StoredContractEvent{}

	var err error
	if e.Contract, err = readHash(r); err != nil {
		return nil, err
	}
	if e.TxHash, err = readHash(r); err != nil {
		return nil, err
	}
	if e.BlockHash, err = readHash(r); err != nil {
		return nil, err
	}
	if e.Topoheight, err = readUint64(r); err != nil {
		return nil, err
	}
	if e.LogIndex, err = readUint32(r); err != nil {
		return nil, err
	}
	numTopics, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	if int(numTopics) > consensustypes.MaxEventTopics {
		return nil, cerrors.Newf(cerrors.InvalidSize, "%d topics exceeds max %d", numTopics, consensustypes.MaxEventTopics)
	}
	e.Topics = make([][32]byte, numTopics)
	for i := range e.Topics {
		t, err := readFixedBytes(r, 32)
		if err != nil {
			return nil, err
		}
		copy(e.Topics[i][:], t)
	}
	if e.Data, err = readBigBytes(r, 0); err != nil {
		return nil, err
	}
	return e, nil
}
