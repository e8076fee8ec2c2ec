package consensustypes

import "github.com/tos-network/tosd/daghash"

// MaxEventTopics bounds the number of 32-byte topics a contract event may
// carry (spec §3/§6).
const MaxEventTopics = 4

// StoredContractEvent is a persisted contract log entry, indexed by
// (contract, topoheight, log_index) with a secondary index by tx_hash
// (spec §3, §6).
type StoredContractEvent struct {
	Contract   daghash.Hash
	TxHash     daghash.Hash
	BlockHash  daghash.Hash
	Topoheight uint64
	LogIndex   uint32
	Topics     [][32]byte // len <= MaxEventTopics
	Data       []byte
}

// MaxEventsPerQuery bounds how many events a single query may return
// (spec §6, default ≈1000).
const MaxEventsPerQuery = 1000
