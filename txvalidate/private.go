package txvalidate

import (
	"encoding/binary"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
)

// ZKVerifier checks a private transfer's range proof against its source
// commitments and a binding transcript. The proof system itself is out
// of scope (spec §1 non-goal "zero-knowledge proof systems... only the
// verification interface boundary is modeled"); this is that boundary.
type ZKVerifier interface {
	VerifyRangeProof(transcript []byte, commitments []consensustypes.PrivateCommitment, rangeProof []byte) bool
}

// BuildTranscript seeds the transcript every private-transfer proof is
// bound to, from version, source, fee, fee_type, and nonce (spec §4.F:
// "The verifier binds all ZK proofs to a transcript seeded by version,
// source, fee, fee_type, nonce"), in that field order.
func BuildTranscript(tx *consensustypes.Transaction) []byte {
	t := make([]byte, 0, 1+32+8+1+8)
	t = append(t, tx.Version)
	t = append(t, tx.SourcePubKey[:]...)
	var feeBuf [8]byte
	binary.BigEndian.PutUint64(feeBuf[:], tx.Fee)
	t = append(t, feeBuf[:]...)
	t = append(t, uint8(tx.FeeType))
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], tx.Nonce)
	t = append(t, nonceBuf[:]...)
	return t
}

// ValidatePrivateTransfer implements spec §4.F "Private transfers
// (UNO/Shield/Unshield)": UNO and Unshield transactions carry a range
// proof bound to the transcript and must verify; Shield transactions
// publish plaintext amounts and carry no range proof, so there is
// nothing for the ZK collaborator to check.
func ValidatePrivateTransfer(tx *consensustypes.Transaction, verifier ZKVerifier) error {
	if tx.Private == nil {
		return cerrors.Newf(cerrors.InvalidValue, "private transaction missing payload")
	}
	if tx.Kind == consensustypes.KindShield {
		return nil
	}

	if len(tx.Private.RangeProof) == 0 {
		return cerrors.New(cerrors.BadProof)
	}
	transcript := BuildTranscript(tx)
	if !verifier.VerifyRangeProof(transcript, tx.Private.Commitments, tx.Private.RangeProof) {
		return cerrors.New(cerrors.BadProof)
	}
	return nil
}
