package consensustypes

import "github.com/tos-network/tosd/daghash"

// ScheduledExecutionStatus is the lifecycle state of a ScheduledExecution
// (spec §3).
type ScheduledExecutionStatus uint8

// ScheduledExecutionStatus values.
const (
	StatusPending ScheduledExecutionStatus = iota
	StatusExecuted
	StatusCancelled
	StatusFailed
	StatusExpired
)

func (s ScheduledExecutionStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusExecuted:
		return "Executed"
	case StatusCancelled:
		return "Cancelled"
	case StatusFailed:
		return "Failed"
	case StatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// ScheduledExecutionKindTag discriminates a ScheduledExecution's dispatch
// trigger: a specific topoheight, or the end of whichever block is being
// executed when it becomes due.
type ScheduledExecutionKindTag uint8

// ScheduledExecutionKindTag values.
const (
	ScheduledKindTopoHeight ScheduledExecutionKindTag = iota
	ScheduledKindBlockEnd
)

// ScheduledExecutionKind is the tagged TopoHeight(t)|BlockEnd sum from
// spec §3.
type ScheduledExecutionKind struct {
	Tag        ScheduledExecutionKindTag
	TopoHeight uint64 // valid iff Tag == ScheduledKindTopoHeight
}

// TopoHeightKind builds a ScheduledExecutionKind targeting a specific
// topoheight.
func TopoHeightKind(t uint64) ScheduledExecutionKind {
	return ScheduledExecutionKind{Tag: ScheduledKindTopoHeight, TopoHeight: t}
}

// BlockEndKind builds a ScheduledExecutionKind that fires at the end of
// the block containing its registration_topoheight target once reached.
func BlockEndKind() ScheduledExecutionKind {
	return ScheduledExecutionKind{Tag: ScheduledKindBlockEnd}
}

// ScheduledExecution is a deferred contract invocation registered via the
// tos_offer_call syscall (spec §3, §4.E, §6).
type ScheduledExecution struct {
	Hash                  daghash.Hash
	TargetContract        daghash.Hash
	ChunkID               uint16
	InputData             []byte
	MaxGas                uint64
	OfferAmount           uint64
	SchedulerContract     daghash.Hash
	Kind                  ScheduledExecutionKind
	RegistrationTopoheight uint64
	Status                ScheduledExecutionStatus
	RewardsProcessed      bool

	// DeferCount tracks how many times dispatch pushed this entry to the
	// following topoheight because the block gas budget or the
	// per-block execution count was exhausted (spec §4.E: "deferred
	// beyond an implementation-defined limit expire"). Zero for an
	// entry that has never been deferred.
	DeferCount uint32
}

// ExecutionTopoheight returns the topoheight this execution dispatches at
// for TopoHeight-kind entries, or the registration topoheight for
// BlockEnd-kind entries (matching the teacher-grounded sled provider's
// `delete_contract_scheduled_execution` convention for BlockEnd keys).
func (s *ScheduledExecution) ExecutionTopoheight() uint64 {
	if s.Kind.Tag == ScheduledKindTopoHeight {
		return s.Kind.TopoHeight
	}
	return s.RegistrationTopoheight
}
