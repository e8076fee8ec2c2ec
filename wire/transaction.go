package wire

import (
	"bytes"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

// writeHeaderAndPayload writes the common header (version/chain_id/
// source/kind/fee/fee_type/nonce/reference/account_keys) and the
// kind-tagged payload — everything but the multisig_sigs/signature
// trailer, shared between EncodeTransaction and EncodePreimage.
func writeHeaderAndPayload(buf *bytes.Buffer, tx *consensustypes.Transaction) error {
	if err := writeUint8(buf, tx.Version); err != nil {
		return err
	}
	if err := writeUint8(buf, uint8(tx.ChainID)); err != nil {
		return err
	}
	if err := writeFixedBytes(buf, tx.SourcePubKey[:]); err != nil {
		return err
	}
	if err := writeUint8(buf, uint8(tx.Kind)); err != nil {
		return err
	}
	if err := writeUint64(buf, tx.Fee); err != nil {
		return err
	}
	if err := writeUint8(buf, uint8(tx.FeeType)); err != nil {
		return err
	}
	if err := writeUint64(buf, tx.Nonce); err != nil {
		return err
	}
	if err := writeUint64(buf, tx.Reference.Topoheight); err != nil {
		return err
	}
	if err := writeHash(buf, tx.Reference.Hash); err != nil {
		return err
	}
	if err := writeAccountKeys(buf, tx.AccountKeys); err != nil {
		return err
	}
	return writePayload(buf, tx)
}

// EncodeTransaction writes a Transaction in the spec §6 wire layout: a
// common header (version/chain_id/source/kind/fee/fee_type/nonce/
// reference/account_keys) followed by the kind-tagged payload, then the
// shared multisig_sigs/signature trailer.
func EncodeTransaction(tx *consensustypes.Transaction) ([]byte, error) {
	buf := newBuffer(256)

	if err := writeHeaderAndPayload(buf, tx); err != nil {
		return nil, err
	}

	if err := writeUint8(buf, uint8(len(tx.MultisigSigs))); err != nil {
		return nil, err
	}
	for _, sig := range tx.MultisigSigs {
		if err := writeUint8(buf, sig.ParticipantIndex); err != nil {
			return nil, err
		}
		if err := writeFixedBytes(buf, sig.Signature[:]); err != nil {
			return nil, err
		}
	}
	if err := writeFixedBytes(buf, tx.Signature[:]); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePreimage writes the byte sequence a transaction's signature(s)
// are computed over: the common header and payload, excluding the
// multisig_sigs field and the final signature itself (spec §4.F
// "Multisig": "participants sign the canonical byte sequence excluding
// the multisig field itself").
func EncodePreimage(tx *consensustypes.Transaction) ([]byte, error) {
	buf := newBuffer(256)
	if err := writeHeaderAndPayload(buf, tx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTransaction parses a Transaction from its wire encoding.
func DecodeTransaction(data []byte) (*consensustypes.Transaction, error) {
	r := bytes.NewReader(data)
	tx := &consensustypes.Transaction{}

	var err error
	if tx.Version, err = readUint8(r); err != nil {
		return nil, err
	}
	chainID, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	tx.ChainID = consensustypes.ChainID(chainID)

	pubKey, err := readFixedBytes(r, 32)
	if err != nil {
		return nil, err
	}
	copy(tx.SourcePubKey[:], pubKey)

	kind, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	tx.Kind = consensustypes.TransactionKind(kind)

	if tx.Fee, err = readUint64(r); err != nil {
		return nil, err
	}
	feeType, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	tx.FeeType = consensustypes.FeeType(feeType)

	if tx.Nonce, err = readUint64(r); err != nil {
		return nil, err
	}
	if tx.Reference.Topoheight, err = readUint64(r); err != nil {
		return nil, err
	}
	if tx.Reference.Hash, err = readHash(r); err != nil {
		return nil, err
	}
	if tx.AccountKeys, err = readAccountKeys(r); err != nil {
		return nil, err
	}

	if err := readPayload(r, tx); err != nil {
		return nil, err
	}

	numSigs, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	if int(numSigs) > consensustypes.MaxMultisigParticipants {
		return nil, cerrors.Newf(cerrors.InvalidSize, "%d multisig sigs exceeds max %d", numSigs, consensustypes.MaxMultisigParticipants)
	}
	tx.MultisigSigs = make([]consensustypes.MultisigSignature, numSigs)
	for i := range tx.MultisigSigs {
		idx, err := readUint8(r)
		if err != nil {
			return nil, err
		}
		sigBytes, err := readFixedBytes(r, 64)
		if err != nil {
			return nil, err
		}
		tx.MultisigSigs[i].ParticipantIndex = idx
		copy(tx.MultisigSigs[i].Signature[:], sigBytes)
	}
	sigBytes, err := readFixedBytes(r, 64)
	if err != nil {
		return nil, err
	}
	copy(tx.Signature[:], sigBytes)
	return tx, nil
}

func writeAccountKeys(w *bytes.Buffer, keys []consensustypes.AccountKey) error {
	if err := writeUint16(w, uint16(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeFixedBytes(w, k.PubKey[:]); err != nil {
			return err
		}
		if err := writeHash(w, k.Asset); err != nil {
			return err
		}
		flags := uint8(0)
		if k.IsSigner {
			flags |= 0x1
		}
		if k.IsWritable {
			flags |= 0x2
		}
		if err := writeUint8(w, flags); err != nil {
			return err
		}
	}
	return nil
}

func readAccountKeys(r *bytes.Reader) ([]consensustypes.AccountKey, error) {
	n, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	keys := make([]consensustypes.AccountKey, n)
	for i := range keys {
		pubKey, err := readFixedBytes(r, 32)
		if err != nil {
			return nil, err
		}
		copy(keys[i].PubKey[:], pubKey)
		if keys[i].Asset, err = readHash(r); err != nil {
			return nil, err
		}
		flags, err := readUint8(r)
		if err != nil {
			return nil, err
		}
		keys[i].IsSigner = flags&0x1 != 0
		keys[i].IsWritable = flags&0x2 != 0
	}
	return keys, nil
}

func writeTransfer(w *bytes.Buffer, t *consensustypes.Transfer) error {
	if err := writeHash(w, t.Asset); err != nil {
		return err
	}
	if err := writeFixedBytes(w, t.Destination[:]); err != nil {
		return err
	}
	if err := writeUint64(w, t.Amount); err != nil {
		return err
	}
	return writeVarBytes(w, t.ExtraData)
}

func readTransfer(r *bytes.Reader) (consensustypes.Transfer, error) {
	var t consensustypes.Transfer
	var err error
	if t.Asset, err = readHash(r); err != nil {
		return t, err
	}
	dest, err := readFixedBytes(r, 32)
	if err != nil {
		return t, err
	}
	copy(t.Destination[:], dest)
	if t.Amount, err = readUint64(r); err != nil {
		return t, err
	}
	if t.ExtraData, err = readVarBytes(r, consensustypes.MaxExtraDataPerTransfer); err != nil {
		return t, err
	}
	return t, nil
}

func writeTransfers(w *bytes.Buffer, transfers []consensustypes.Transfer) error {
	if len(transfers) > consensustypes.MaxTransfersPerTx {
		return cerrors.Newf(cerrors.InvalidSize, "%d transfers exceeds max %d", len(transfers), consensustypes.MaxTransfersPerTx)
	}
	if err := writeUint16(w, uint16(len(transfers))); err != nil {
		return err
	}
	for i := range transfers {
		if err := writeTransfer(w, &transfers[i]); err != nil {
			return err
		}
	}
	return nil
}

func readTransfers(r *bytes.Reader) ([]consensustypes.Transfer, error) {
	n, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	if int(n) > consensustypes.MaxTransfersPerTx {
		return nil, cerrors.Newf(cerrors.InvalidSize, "%d transfers exceeds max %d", n, consensustypes.MaxTransfersPerTx)
	}
	transfers := make([]consensustypes.Transfer, n)
	for i := range transfers {
		if transfers[i], err = readTransfer(r); err != nil {
			return nil, err
		}
	}
	return transfers, nil
}

func writePayload(w *bytes.Buffer, tx *consensustypes.Transaction) error {
	switch tx.Kind {
	case consensustypes.KindBurn:
		if tx.Burn == nil {
			return cerrors.Newf(cerrors.InvalidValue, "burn transaction missing payload")
		}
		if err := writeHash(w, tx.Burn.Asset); err != nil {
			return err
		}
		return writeUint64(w, tx.Burn.Amount)

	case consensustypes.KindTransfers:
		return writeTransfers(w, tx.Transfers)

	case consensustypes.KindMultiSigChange:
		if tx.MultisigChange == nil {
			return cerrors.Newf(cerrors.InvalidValue, "multisig-change transaction missing payload")
		}
		if len(tx.MultisigChange.Participants) > consensustypes.MaxMultisigParticipants {
			return cerrors.Newf(cerrors.InvalidSize, "%d participants exceeds max %d", len(tx.MultisigChange.Participants), consensustypes.MaxMultisigParticipants)
		}
		if err := writeUint8(w, tx.MultisigChange.Threshold); err != nil {
			return err
		}
		if err := writeUint8(w, uint8(len(tx.MultisigChange.Participants))); err != nil {
			return err
		}
		for _, p := range tx.MultisigChange.Participants {
			if err := writeFixedBytes(w, p[:]); err != nil {
				return err
			}
		}
		return nil

	case consensustypes.KindInvokeContract:
		if tx.Invoke == nil {
			return cerrors.Newf(cerrors.InvalidValue, "invoke transaction missing payload")
		}
		if len(tx.Invoke.Deposits) > consensustypes.MaxDepositsPerInvoke {
			return cerrors.Newf(cerrors.InvalidSize, "%d deposits exceeds max %d", len(tx.Invoke.Deposits), consensustypes.MaxDepositsPerInvoke)
		}
		if err := writeHash(w, tx.Invoke.Contract); err != nil {
			return err
		}
		if err := writeUint16(w, tx.Invoke.ChunkID); err != nil {
			return err
		}
		if err := writeUint8(w, uint8(len(tx.Invoke.Deposits))); err != nil {
			return err
		}
		for _, d := range tx.Invoke.Deposits {
			if err := writeHash(w, d.Asset); err != nil {
				return err
			}
			if err := writeUint64(w, d.Amount); err != nil {
				return err
			}
		}
		if err := writeUint64(w, tx.Invoke.MaxGas); err != nil {
			return err
		}
		return writeBigBytes(w, tx.Invoke.Input)

	case consensustypes.KindDeployContract:
		if tx.Deploy == nil {
			return cerrors.Newf(cerrors.InvalidValue, "deploy transaction missing payload")
		}
		return writeBigBytes(w, tx.Deploy.Bytecode)

	case consensustypes.KindUnoTransfers, consensustypes.KindShield, consensustypes.KindUnshield:
		if tx.Private == nil {
			return cerrors.Newf(cerrors.InvalidValue, "private transaction missing payload")
		}
		if err := writeUint16(w, uint16(len(tx.Private.Commitments))); err != nil {
			return err
		}
		for _, c := range tx.Private.Commitments {
			if err := writeHash(w, c.Asset); err != nil {
				return err
			}
			if err := writeFixedBytes(w, c.Commitment[:]); err != nil {
				return err
			}
		}
		if err := writeBigBytes(w, tx.Private.RangeProof); err != nil {
			return err
		}
		return writeTransfers(w, tx.Private.Transfers)

	default:
		return cerrors.Newf(cerrors.InvalidValue, "unknown transaction kind %d", tx.Kind)
	}
}

func readPayload(r *bytes.Reader, tx *consensustypes.Transaction) error {
	switch tx.Kind {
	case consensustypes.KindBurn:
		burn := &consensustypes.Deposit{}
		var err error
		if burn.Asset, err = readHash(r); err != nil {
			return err
		}
		if burn.Amount, err = readUint64(r); err != nil {
			return err
		}
		tx.Burn = burn
		return nil

	case consensustypes.KindTransfers:
		transfers, err := readTransfers(r)
		if err != nil {
			return err
		}
		tx.Transfers = transfers
		return nil

	case consensustypes.KindMultiSigChange:
		change := &consensustypes.MultisigChange{}
		threshold, err := readUint8(r)
		if err != nil {
			return err
		}
		change.Threshold = threshold
		n, err := readUint8(r)
		if err != nil {
			return err
		}
		if int(n) > consensustypes.MaxMultisigParticipants {
			return cerrors.Newf(cerrors.InvalidSize, "%d participants exceeds max %d", n, consensustypes.MaxMultisigParticipants)
		}
		change.Participants = make([][32]byte, n)
		for i := range change.Participants {
			p, err := readFixedBytes(r, 32)
			if err != nil {
				return err
			}
			copy(change.Participants[i][:], p)
		}
		tx.MultisigChange = change
		return nil

	case consensustypes.KindInvokeContract:
		invoke := &consensustypes.InvokeContract{}
		var err error
		if invoke.Contract, err = readHash(r); err != nil {
			return err
		}
		if invoke.ChunkID, err = readUint16(r); err != nil {
			return err
		}
		n, err := readUint8(r)
		if err != nil {
			return err
		}
		if int(n) > consensustypes.MaxDepositsPerInvoke {
			return cerrors.Newf(cerrors.InvalidSize, "%d deposits exceeds max %d", n, consensustypes.MaxDepositsPerInvoke)
		}
		invoke.Deposits = make([]consensustypes.Deposit, n)
		for i := range invoke.Deposits {
			if invoke.Deposits[i].Asset, err = readHash(r); err != nil {
				return err
			}
			if invoke.Deposits[i].Amount, err = readUint64(r); err != nil {
				return err
			}
		}
		if invoke.MaxGas, err = readUint64(r); err != nil {
			return err
		}
		if invoke.Input, err = readBigBytes(r, 0); err != nil {
			return err
		}
		tx.Invoke = invoke
		return nil

	case consensustypes.KindDeployContract:
		deploy := &consensustypes.DeployContract{}
		bytecode, err := readBigBytes(r, 0)
		if err != nil {
			return err
		}
		deploy.Bytecode = bytecode
		tx.Deploy = deploy
		return nil

	case consensustypes.KindUnoTransfers, consensustypes.KindShield, consensustypes.KindUnshield:
		private := &consensustypes.PrivateTransfers{}
		n, err := readUint16(r)
		if err != nil {
			return err
		}
		private.Commitments = make([]consensustypes.PrivateCommitment, n)
		for i := range private.Commitments {
			if private.Commitments[i].Asset, err = readHash(r); err != nil {
				return err
			}
			c, err := readFixedBytes(r, 32)
			if err != nil {
				return err
			}
			copy(private.Commitments[i].Commitment[:], c)
		}
		if private.RangeProof, err = readBigBytes(r, 0); err != nil {
			return err
		}
		if private.Transfers, err = readTransfers(r); err != nil {
			return err
		}
		tx.Private = private
		return nil

	default:
		return cerrors.Newf(cerrors.InvalidValue, "unknown transaction kind %d", tx.Kind)
	}
}
