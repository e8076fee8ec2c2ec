// Package scheduledexec implements component E: the offer-priority
// dispatch queue for deferred contract invocations registered via the
// tos_offer_call syscall (spec §4.E). Register/dispatch/cancel follow
// original_source/daemon/src/tako_integration/scheduled_execution_adapter.rs's
// state machine; the persisted key layout and priority ordering follow
// original_source/daemon/src/core/storage/sled/providers/contract/scheduled_execution.rs.
package scheduledexec

import (
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/state"
)

// Store is the persistence surface the queue needs. The sled provider
// this is grounded on splits storage into three indexes (main record,
// registration index, priority index) to get efficient range scans out
// of an ordered key-value store; that's an implementation detail of the
// storage backend (see storage/boltqueue, built against this interface),
// not something the queue logic itself needs to know about.
type Store interface {
	Put(e *consensustypes.ScheduledExecution) error
	Get(hash daghash.Hash) (*consensustypes.ScheduledExecution, bool)
	Delete(hash daghash.Hash) error

	// ScanAtTopoheight returns every pending entry dispatch-due at t:
	// TopoHeight-kind entries whose Kind.TopoHeight == t, and
	// BlockEnd-kind entries whose RegistrationTopoheight <= t that are
	// still Pending (a BlockEnd entry becomes due at the end of
	// whichever block reaches its registration topoheight or later).
	ScanAtTopoheight(t uint64) ([]*consensustypes.ScheduledExecution, error)

	// CountInWindow counts registrations by contract whose
	// RegistrationTopoheight lies in [from, to] (sled provider's
	// count_contract_scheduled_executions_in_window).
	CountInWindow(contract daghash.Hash, from, to uint64) (uint64, error)

	// GetPendingByTarget returns the still-pending entry targeting
	// contract, if any (adapter.rs: at most one live schedule per
	// target contract — a second registration before the first
	// dispatches or is cancelled is rejected as AlreadyScheduled).
	GetPendingByTarget(target daghash.Hash) (*consensustypes.ScheduledExecution, bool)

	// GetByHandle resolves the opaque handle a contract was given at
	// registration back to its entry (sled provider's
	// get_scheduled_execution_by_handle: "the first 8 bytes of the
	// hash"; MemStore and storage/boltqueue both find it by scanning
	// their entries).
	GetByHandle(handle uint64) (*consensustypes.ScheduledExecution, bool)
}

// Queue is the offer-priority dispatch queue bound to one Store and one
// network's constants.
type Queue struct {
	store  Store
	params consensustypes.Params
}

// NewQueue creates a Queue over store using params' §4.E constants
// (MinGas, MinOffer, BurnPercent, MaxHorizon, MaxSchedulesPerWindow,
// RateLimitWindow, RateLimitBypassOffer, MaxExecutionsPerBlock,
// BlockGasLimit, MinCancellationWindow, MaxDeferrals).
func NewQueue(store Store, params consensustypes.Params) *Queue {
	return &Queue{store: store, params: params}
}

// nativeAsset is the fee/offer-denominating asset (spec §3: the zero
// asset hash is the chain's native token, matching state's convention).
var nativeAsset daghash.Hash

// contractAccountKey addresses a contract's native-asset balance the way
// state.Executor does for contract deposits: the contract hash reused
// as the 32-byte account pubkey slot.
func contractAccountKey(contract daghash.Hash) state.AccountKey {
	return state.NewAccountKey([32]byte(contract), nativeAsset)
}

// RegisterRequest is one tos_offer_call invocation's parameters (spec
// §4.E register, adapter.rs schedule_execution's argument list).
type RegisterRequest struct {
	Scheduler      daghash.Hash
	TargetContract daghash.Hash
	ChunkID        uint16
	InputData      []byte
	MaxGas         uint64
	OfferAmount    uint64
	Kind           consensustypes.ScheduledExecutionKind
}
