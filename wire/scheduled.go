package wire

import (
	"bytes"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
)

// EncodeScheduledExecution writes a ScheduledExecution record in the
// layout stored by the scheduled-execution queue (spec §3, §6). The
// encoding carries every field, the execution hash included;
// storage/boltqueue stores it under that hash as its key.
func EncodeScheduledExecution(s *consensustypes.ScheduledExecution) ([]byte, error) {
	buf := newBuffer(128)

	if err := writeHash(buf, s.Hash); err != nil {
		return nil, err
	}
	if err := writeHash(buf, s.TargetContract); err != nil {
		return nil, err
	}
	if err := writeUint16(buf, s.ChunkID); err != nil {
		return nil, err
	}
	if err := writeBigBytes(buf, s.InputData); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, s.MaxGas); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, s.OfferAmount); err != nil {
		return nil, err
	}
	if err := writeHash(buf, s.SchedulerContract); err != nil {
		return nil, err
	}
	if err := writeUint8(buf, uint8(s.Kind.Tag)); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, s.Kind.TopoHeight); err != nil {
		return nil, err
	}
	if err := writeUint64(buf, s.RegistrationTopoheight); err != nil {
		return nil, err
	}
	if err := writeUint8(buf, uint8(s.Status)); err != nil {
		return nil, err
	}
	rewards := uint8(0)
	if s.RewardsProcessed {
		rewards = 1
	}
	if err := writeUint8(buf, rewards); err != nil {
		return nil, err
	}
	if err := writeUint32(buf, s.DeferCount); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeScheduledExecution parses a ScheduledExecution from its wire
// encoding.
func DecodeScheduledExecution(data []byte) (*consensustypes.ScheduledExecution, error) {
	r := bytes.NewReader(data)
	s := &consensustypes.ScheduledExecution{}

	var err error
	if s.Hash, err = readHash(r); err != nil {
		return nil, err
	}
	if s.TargetContract, err = readHash(r); err != nil {
		return nil, err
	}
	if s.ChunkID, err = readUint16(r); err != nil {
		return nil, err
	}
	if s.InputData, err = readBigBytes(r, 0); err != nil {
		return nil, err
	}
	if s.MaxGas, err = readUint64(r); err != nil {
		return nil, err
	}
	if s.OfferAmount, err = readUint64(r); err != nil {
		return nil, err
	}
	if s.SchedulerContract, err = readHash(r); err != nil {
		return nil, err
	}
	kindTag, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	s.Kind.Tag = consensustypes.ScheduledExecutionKindTag(kindTag)
	if s.Kind.TopoHeight, err = readUint64(r); err != nil {
		return nil, err
	}
	if s.RegistrationTopoheight, err = readUint64(r); err != nil {
		return nil, err
	}
	status, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	s.Status = consensustypes.ScheduledExecutionStatus(status)
	rewards, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	s.RewardsProcessed = rewards != 0
	if s.DeferCount, err = readUint32(r); err != nil {
		return nil, err
	}

	if s.Kind.Tag != consensustypes.ScheduledKindTopoHeight && s.Kind.Tag != consensustypes.ScheduledKindBlockEnd {
		return nil, cerrors.Newf(cerrors.InvalidValue, "unknown scheduled execution kind tag %d", kindTag)
	}
	return s, nil
}
