// Package consensustypes holds the shared domain types consumed by the
// wire codec, state machine, mempool, and scheduled-execution queue: block
// headers, transactions, scheduled executions, and contract events (spec
// §3 Data Model). Grounded structurally on wire/blockheader.go, adapted
// from kaspad's header shape to the spec's header fields.
package consensustypes

import (
	"math/big"

	"github.com/tos-network/tosd/daghash"
)

// ChainID identifies the network a transaction or block belongs to (§6).
type ChainID uint8

// Chain ID values, per spec §6.
const (
	ChainIDMainnet  ChainID = 0
	ChainIDTestnet  ChainID = 1
	ChainIDStagenet ChainID = 2
	ChainIDDevnet   ChainID = 3
)

// MaxNumParents is the maximum number of parent blocks a block may
// declare, mirroring wire/blockheader.go's MaxNumParentBlocks (a u8 count
// field bounds it to 255).
const MaxNumParents = 255

// BlockHeader is the §3 Block header: parents, timestamp, miner, nonce,
// declared target, and the ordered sequence of transaction hashes.
type BlockHeader struct {
	Version        uint8
	ChainID        ChainID
	Parents        []daghash.Hash
	TimestampMs    uint64
	MinerPubKey    [32]byte
	Nonce          uint64
	ExtraNonce     uint64
	DeclaredTarget *big.Int
	TxHashes       []daghash.Hash
}

// IsGenesis reports whether the header has no parents.
func (h *BlockHeader) IsGenesis() bool {
	return len(h.Parents) == 0
}

// Hash computes the block's identifying hash over its header fields. The
// exact byte layout is defined by the wire package's Encode; callers that
// need a stable hash should always hash the wire-encoded bytes rather than
// hash Go struct fields directly.
func (h *BlockHeader) Hash(encoded []byte) daghash.Hash {
	return daghash.HashData(encoded)
}
