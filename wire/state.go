package wire

import (
	"bytes"

	"github.com/tos-network/tosd/state"
)

// EncodeAccountVersion writes an AccountVersion record in the layout the
// chain-state store persists one balance slot as, grounded on
// EncodeScheduledExecution's flat fixed-field layout (a boolean flag
// packed as a single byte rather than a discriminated union).
func EncodeAccountVersion(v *state.AccountVersion) ([]byte, error) {
	buf := newBuffer(32)

	if err := writeUint64(buf, v.Balance); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, v.Topoheight); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, v.PreviousTopoheight); err != nil {
		return nil, err
	}
	hasPrevious := uint8(0)
	if v.HasPrevious {
		hasPrevious = 1
	}
	if err := writeUint8(buf, hasPrevious); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeAccountVersion parses an AccountVersion from its wire encoding.
func DecodeAccountVersion(data []byte) (state.AccountVersion, error) {
	r := bytes.NewReader(data)
	var v state.AccountVersion

	balance, err := readUint64(r)
	if err != nil {
		return v, err
	}
	topoheight, err := readUint64(r)
	if err != nil {
		return v, err
	}
	previousTopoheight, err := readUint64(r)
	if err != nil {
		return v, err
	}
	hasPrevious, err := readUint8(r)
	if err != nil {
		return v, err
	}

	v.Balance = balance
	v.Topoheight = topoheight
	v.PreviousTopoheight = previousTopoheight
	v.HasPrevious = hasPrevious != 0
	return v, nil
}

// EncodeNonceRecord writes a NonceRecord in the same versioned-scalar
// layout AccountVersion uses.
func EncodeNonceRecord(v *state.NonceRecord) ([]byte, error) {
	buf := newBuffer(32)

	if err := writeUint64(buf, v.Nonce); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, v.Topoheight); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, v.PreviousTopoheight); err != nil {
		return nil, err
	}
	hasPrevious := uint8(0)
	if v.HasPrevious {
		hasPrevious = 1
	}
	if err := writeUint8(buf, hasPrevious); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeNonceRecord parses a NonceRecord from its wire encoding.
func DecodeNonceRecord(data []byte) (state.NonceRecord, error) {
	r := bytes.NewReader(data)
	var v state.NonceRecord

	nonce, err := readUint64(r)
	if err != nil {
		return v, err
	}
	topoheight, err := readUint64(r)
	if err != nil {
		return v, err
	}
	previousTopoheight, err := readUint64(r)
	if err != nil {
		return v, err
	}
	hasPrevious, err := readUint8(r)
	if err != nil {
		return v, err
	}

	v.Nonce = nonce
	v.Topoheight = topoheight
	v.PreviousTopoheight = previousTopoheight
	v.HasPrevious = hasPrevious != 0
	return v, nil
}

// EncodeMultisigConfig writes a MultisigConfig record.
func EncodeMultisigConfig(v *state.MultisigConfig) ([]byte, error) {
	buf := newBuffer(8 + len(v.Participants)*32)

	if err := writeUint8(buf, v.Threshold); err != nil {
		return nil, err
	}
	if err := writeUint16(buf, uint16(len(v.Participants))); err != nil {
		return nil, err
	}
	for _, p := range v.Participants {
		if err := writeFixedBytes(buf, p[:]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeMultisigConfig parses a MultisigConfig from its wire encoding.
func DecodeMultisigConfig(data []byte) (*state.MultisigConfig, error) {
	r := bytes.NewReader(data)

	threshold, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	count, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	participants := make([][32]byte, count)
	for i := range participants {
		raw, err := readFixedBytes(r, 32)
		if err != nil {
			return nil, err
		}
		copy(participants[i][:], raw)
	}
	return &state.MultisigConfig{Threshold: threshold, Participants: participants}, nil
}

// EncodeContractRecord writes a ContractRecord.
func EncodeContractRecord(v *state.ContractRecord) ([]byte, error) {
	buf := newBuffer(16 + len(v.Bytecode))

	if err := writeBigBytes(buf, v.Bytecode); err != nil {
		return nil, err
	}
	deployed := uint8(0)
	if v.Deployed {
		deployed = 1
	}
	if err := writeUint8(buf, deployed); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, v.Topoheight); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeContractRecord parses a ContractRecord from its wire encoding.
func DecodeContractRecord(data []byte) (state.ContractRecord, error) {
	r := bytes.NewReader(data)
	var v state.ContractRecord

	bytecode, err := readBigBytes(r, 1<<24)
	if err != nil {
		return v, err
	}
	deployed, err := readUint8(r)
	if err != nil {
		return v, err
	}
	topoheight, err := readUint64(r)
	if err != nil {
		return v, err
	}

	v.Bytecode = bytecode
	v.Deployed = deployed != 0
	v.Topoheight = topoheight
	return v, nil
}
