package consensustypes

import "math/big"

// Network identifies a deployment of the chain (spec §6 displayable
// address prefixes).
type Network uint8

// Network values.
const (
	NetworkMainnet Network = iota
	NetworkTestnet
	NetworkStagenet
	NetworkDevnet
)

func (n Network) String() string {
	switch n {
	case NetworkMainnet:
		return "mainnet"
	case NetworkTestnet:
		return "testnet"
	case NetworkStagenet:
		return "stagenet"
	case NetworkDevnet:
		return "devnet"
	default:
		return "unknown"
	}
}

// Params bundles the chain-wide constants referenced across the consensus
// core. Concrete networks (mainnet/testnet/...) provide their own
// instance, mirroring the teacher's dagconfig.Params pattern of one struct
// per network.
type Params struct {
	Network Network
	ChainID ChainID

	K uint32 // GHOSTDAG anticone bound

	TargetBlockTimeMs uint64
	DAAWindowSize     uint64
	MaxTarget         *big.Int

	// ChainIDActivationTopoheight is the topoheight at or after which
	// every transaction must carry an explicit chain_id field (spec §9
	// open question: "older transaction versions omit chain_id ...
	// implementations must accept a configured mix during the
	// activation epoch but never outside it").
	ChainIDActivationTopoheight uint64

	// ReferenceStaleWindow bounds how far behind the tip a
	// transaction's reference.topoheight may lag before admission
	// rejects it as ReferenceTooOld (spec §4.F).
	ReferenceStaleWindow uint64

	// MaxMergesetReds optionally bounds mergeset_reds (spec §9 open
	// question: implementation-defined policy, not consensus). Zero
	// means unbounded.
	MaxMergesetReds uint32

	// Scheduled-execution queue constants (spec §4.E).
	MinOffer               uint64
	MinGas                 uint64
	BurnPercent            uint64 // BURN_PCT, e.g. 30
	MaxHorizon             uint64
	MaxSchedulesPerWindow  uint64
	RateLimitWindow        uint64
	RateLimitBypassOffer   uint64
	MaxExecutionsPerBlock  int
	BlockGasLimit          uint64
	MinCancellationWindow  uint64
	MaxDeferrals           int
}
