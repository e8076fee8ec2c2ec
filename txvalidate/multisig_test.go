package txvalidate

import (
	"testing"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/state"
)

// fakeVerifier accepts a signature iff its first byte matches the
// expected marker for that participant, letting tests control exactly
// which signatures "verify" without a real signature scheme.
type fakeVerifier struct {
	validMarkers map[[32]byte]byte
}

func (v *fakeVerifier) VerifySignature(pubKey [32]byte, message []byte, signature [64]byte) bool {
	marker, ok := v.validMarkers[pubKey]
	return ok && signature[0] == marker
}

func participant(b byte) [32]byte {
	var k [32]byte
	k[0] = b
	return k
}

func sigFor(participantIdx uint8, marker byte) consensustypes.MultisigSignature {
	var sig [64]byte
	sig[0] = marker
	return consensustypes.MultisigSignature{ParticipantIndex: participantIdx, Signature: sig}
}

func TestValidateMultisigSkipsWhenNoConfig(t *testing.T) {
	tx := baseTx()
	if err := ValidateMultisig(tx, nil, &fakeVerifier{}); err != nil {
		t.Fatalf("expected nil config to skip validation, got %v", err)
	}
}

func TestValidateMultisigMeetsThreshold(t *testing.T) {
	tx := baseTx()
	p0, p1, p2 := participant(1), participant(2), participant(3)
	config := &state.MultisigConfig{Threshold: 2, Participants: [][32]byte{p0, p1, p2}}
	verifier := &fakeVerifier{validMarkers: map[[32]byte]byte{p0: 0xAA, p1: 0xBB, p2: 0xCC}}

	tx.MultisigSigs = []consensustypes.MultisigSignature{sigFor(0, 0xAA), sigFor(1, 0xBB)}
	if err := ValidateMultisig(tx, config, verifier); err != nil {
		t.Fatalf("expected threshold to be met, got %v", err)
	}
}

func TestValidateMultisigRejectsBelowThreshold(t *testing.T) {
	tx := baseTx()
	p0, p1, p2 := participant(1), participant(2), participant(3)
	config := &state.MultisigConfig{Threshold: 2, Participants: [][32]byte{p0, p1, p2}}
	verifier := &fakeVerifier{validMarkers: map[[32]byte]byte{p0: 0xAA, p1: 0xBB, p2: 0xCC}}

	tx.MultisigSigs = []consensustypes.MultisigSignature{sigFor(0, 0xAA)}
	err := ValidateMultisig(tx, config, verifier)
	if err == nil || !cerrors.Is(err, cerrors.MultisigThresholdNotMet) {
		t.Fatalf("expected MultisigThresholdNotMet, got %v", err)
	}
}

func TestValidateMultisigIgnoresDuplicateParticipant(t *testing.T) {
	tx := baseTx()
	p0, p1 := participant(1), participant(2)
	config := &state.MultisigConfig{Threshold: 2, Participants: [][32]byte{p0, p1}}
	verifier := &fakeVerifier{validMarkers: map[[32]byte]byte{p0: 0xAA, p1: 0xBB}}

	// Two signatures from the same participant index must count once.
	tx.MultisigSigs = []consensustypes.MultisigSignature{sigFor(0, 0xAA), sigFor(0, 0xAA)}
	err := ValidateMultisig(tx, config, verifier)
	if err == nil || !cerrors.Is(err, cerrors.MultisigThresholdNotMet) {
		t.Fatalf("expected duplicate participant signatures not to satisfy threshold 2, got %v", err)
	}
}

func TestValidateMultisigRejectsOutOfRangeParticipant(t *testing.T) {
	tx := baseTx()
	p0 := participant(1)
	config := &state.MultisigConfig{Threshold: 1, Participants: [][32]byte{p0}}
	verifier := &fakeVerifier{validMarkers: map[[32]byte]byte{p0: 0xAA}}

	tx.MultisigSigs = []consensustypes.MultisigSignature{sigFor(5, 0xAA)}
	err := ValidateMultisig(tx, config, verifier)
	if err == nil || !cerrors.Is(err, cerrors.BadSignature) {
		t.Fatalf("expected BadSignature for an out-of-range participant index, got %v", err)
	}
}
