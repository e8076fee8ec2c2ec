// Package cryptoutil supplies the concrete signature-checking collaborator
// mempool admission is built against (mempool.SignatureVerifier), grounded
// on the teacher's SigCache being the one place raw Ed25519/Schnorr bytes
// actually get checked, everywhere else only holding the hook interface.
// tos transactions key accounts by a raw 32-byte Ed25519 public key and
// sign with the matching 64-byte signature (consensustypes.Transaction's
// SourcePubKey/Signature fields), so this wraps the standard library's
// crypto/ed25519 rather than reaching for a third-party scheme the
// retrieved examples never use for this exact primitive.
package cryptoutil

import (
	"crypto/ed25519"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
)

// Ed25519Verifier implements mempool.SignatureVerifier and
// txvalidate.SignatureVerifier over crypto/ed25519.
type Ed25519Verifier struct{}

// Verify checks tx.Signature against tx.SourcePubKey over encoded, the
// transaction's wire-encoded bytes with Signature zeroed (spec §4.F:
// "the signature covers every field except itself").
func (Ed25519Verifier) Verify(tx *consensustypes.Transaction, encoded []byte) error {
	pub := ed25519.PublicKey(tx.SourcePubKey[:])
	if !ed25519.Verify(pub, encoded, tx.Signature[:]) {
		return cerrors.Newf(cerrors.BadSignature, "signature verification failed for source %x", tx.SourcePubKey)
	}
	return nil
}

// VerifySignature implements txvalidate.SignatureVerifier, the
// per-participant multisig check (spec §4.F multisig validation): message
// is the signed transcript, signature one participant's raw Ed25519
// signature over it.
func (Ed25519Verifier) VerifySignature(pubKey [32]byte, message []byte, signature [64]byte) bool {
	pub := ed25519.PublicKey(pubKey[:])
	return ed25519.Verify(pub, message, signature[:])
}
