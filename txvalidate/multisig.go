package txvalidate

import (
	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/state"
	"github.com/tos-network/tosd/wire"
)

// SignatureVerifier checks one participant's raw signature over a
// message; the cryptographic internals (Schnorr/ECDSA scheme) are out of
// scope (spec §1 non-goal), so this is only the hook boundary, the way
// state.ContractRunner is the hook boundary for VM execution.
type SignatureVerifier interface {
	VerifySignature(pubKey [32]byte, message []byte, signature [64]byte) bool
}

// ValidateMultisig implements spec §4.F "Multisig": participants sign
// the canonical byte sequence excluding the multisig field itself
// (wire.EncodePreimage), and the number of distinct, valid signatures
// must meet the account's configured threshold. config is nil when the
// source account carries no multisig policy, in which case this check
// does not apply (ordinary single-signature accounts are validated
// through their tx.Signature instead, outside this package).
func ValidateMultisig(tx *consensustypes.Transaction, config *state.MultisigConfig, verifier SignatureVerifier) error {
	if config == nil {
		return nil
	}

	preimage, err := wire.EncodePreimage(tx)
	if err != nil {
		return err
	}

	seen := make(map[uint8]bool, len(tx.MultisigSigs))
	var validCount int
	for _, sig := range tx.MultisigSigs {
		if int(sig.ParticipantIndex) >= len(config.Participants) {
			return cerrors.New(cerrors.BadSignature)
		}
		if seen[sig.ParticipantIndex] {
			continue
		}
		seen[sig.ParticipantIndex] = true

		pubKey := config.Participants[sig.ParticipantIndex]
		if verifier.VerifySignature(pubKey, preimage, sig.Signature) {
			validCount++
		}
	}

	if validCount < int(config.Threshold) {
		return cerrors.New(cerrors.MultisigThresholdNotMet)
	}
	return nil
}
