package consensustypes

import (
	"github.com/tos-network/tosd/daghash"
)

// TransactionKind is the tagged-sum discriminant for a transaction's
// variant payload (§3 Transaction.kind, §6 wire opcodes).
type TransactionKind uint8

// Transaction kind opcodes, exactly as listed in spec §6 (the wire ABI;
// these values must stay stable).
const (
	KindBurn           TransactionKind = 0
	KindTransfers      TransactionKind = 1
	KindMultiSigChange TransactionKind = 2
	KindInvokeContract TransactionKind = 3
	KindDeployContract TransactionKind = 4
	KindUnoTransfers   TransactionKind = 5
	KindShield         TransactionKind = 6
	KindUnshield       TransactionKind = 7
)

// FeeType selects the asset a transaction's fee is denominated in (§3).
type FeeType uint8

// FeeType values, per spec §6.
const (
	FeeTypeNative  FeeType = 0
	FeeTypePrivate FeeType = 2
)

// Reference pins a transaction to a recently-seen block, bounding replay
// surface (spec §4.F "Reference freshness").
type Reference struct {
	Topoheight uint64
	Hash       daghash.Hash
}

// AccountKey declares one entry of a V2+ transaction's read/write
// footprint, enabling conflict-free parallel batching (spec §3
// account_keys, §4.D.2 step 1).
type AccountKey struct {
	PubKey     [32]byte
	Asset      daghash.Hash
	IsSigner   bool
	IsWritable bool
}

// Transfer is one payout within a Transfers/UnoTransfers transaction
// (spec §6 Transfer wire layout).
type Transfer struct {
	Asset       daghash.Hash
	Destination [32]byte
	Amount      uint64
	ExtraData   []byte // optional, <= MaxExtraDataPerTransfer bytes
}

// MaxTransfersPerTx bounds the number of Transfer entries a transaction
// may carry (spec §6 limits).
const MaxTransfersPerTx = 500

// MaxExtraDataPerTransfer bounds a single transfer's extra-data payload.
const MaxExtraDataPerTransfer = 128

// MaxExtraDataPerTx bounds the aggregate extra-data a transaction may
// carry across all of its transfers.
const MaxExtraDataPerTx = 4096

// MaxMultisigParticipants bounds a MultiSigChange payload.
const MaxMultisigParticipants = 255

// MaxDepositsPerInvoke bounds an InvokeContract payload's deposit count.
const MaxDepositsPerInvoke = 255

// Deposit is one asset deposit accompanying a contract invocation.
type Deposit struct {
	Asset  daghash.Hash
	Amount uint64
}

// MultisigChange describes a change to an account's multisig
// configuration.
type MultisigChange struct {
	Threshold    uint8
	Participants [][32]byte
}

// InvokeContract invokes an already-deployed contract.
type InvokeContract struct {
	Contract daghash.Hash
	ChunkID  uint16
	Deposits []Deposit
	MaxGas   uint64
	Input    []byte
}

// DeployContract deploys new contract bytecode.
type DeployContract struct {
	Bytecode []byte
}

// PrivateCommitment is a Pedersen-style commitment to a private value;
// the proof system internals are out of scope (spec §1), so only the
// byte-level shape needed for transcript binding and serialization is
// modeled here.
type PrivateCommitment struct {
	Asset      daghash.Hash
	Commitment [32]byte
}

// PrivateTransfers carries UNO/Unshield-style transfers with a range
// proof; Shield transactions populate Commitments but leave RangeProof
// empty since they publish plaintext amounts (spec §4.F).
type PrivateTransfers struct {
	Commitments []PrivateCommitment
	RangeProof  []byte // opaque; verified by an external ZK collaborator
	Transfers   []Transfer
}

// MultisigSignature is one participant's signature over a multisig
// transaction's canonical preimage (spec §4.F Multisig).
type MultisigSignature struct {
	ParticipantIndex uint8
	Signature        [64]byte
}

// Transaction is the full §3 Transaction envelope: a version/chain-id/
// fee/nonce/reference common header plus a kind-tagged payload.
type Transaction struct {
	Version        uint8
	ChainID        ChainID
	SourcePubKey   [32]byte
	Kind           TransactionKind
	Fee            uint64
	FeeType        FeeType
	Nonce          uint64
	Reference      Reference
	AccountKeys    []AccountKey // V2+: declared read/write footprint

	Transfers      []Transfer      // KindTransfers
	Burn           *Deposit        // KindBurn
	MultisigChange *MultisigChange // KindMultiSigChange
	Invoke         *InvokeContract // KindInvokeContract
	Deploy         *DeployContract // KindDeployContract
	Private        *PrivateTransfers // KindUnoTransfers/Shield/Unshield

	MultisigSigs []MultisigSignature
	Signature    [64]byte
}

// Hash returns the transaction's identifying hash over its wire-encoded
// bytes.
func (tx *Transaction) Hash(encoded []byte) daghash.Hash {
	return daghash.HashData(encoded)
}

// TouchedAssets returns every asset hash the transaction's payload
// references, used by mempool admission's balance precheck (spec §4.D.1
// step 6).
func (tx *Transaction) TouchedAssets() []daghash.Hash {
	seen := map[daghash.Hash]bool{}
	var assets []daghash.Hash
	add := func(h daghash.Hash) {
		if !seen[h] {
			seen[h] = true
			assets = append(assets, h)
		}
	}
	for _, t := range tx.Transfers {
		add(t.Asset)
	}
	if tx.Burn != nil {
		add(tx.Burn.Asset)
	}
	if tx.Invoke != nil {
		for _, d := range tx.Invoke.Deposits {
			add(d.Asset)
		}
	}
	if tx.Private != nil {
		for _, c := range tx.Private.Commitments {
			add(c.Asset)
		}
		for _, t := range tx.Private.Transfers {
			add(t.Asset)
		}
	}
	return assets
}
