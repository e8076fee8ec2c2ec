package scheduledexec

import (
	"encoding/binary"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/state"
)

// Register validates and admits a tos_offer_call request, deducting
// offer+max_gas from the scheduler contract's balance. BurnPercent of the
// offer is burned by that deduction: dispatch pays the miner, and Cancel
// refunds, only the remaining share (spec §4.E register steps 1-8,
// adapter.rs schedule_execution). Returns the opaque handle a contract
// uses to query or cancel the registration later.
func (q *Queue) Register(ws *state.WorkingSet, topoheight uint64, req RegisterRequest) (handle uint64, err error) {
	if req.MaxGas < q.params.MinGas {
		return 0, cerrors.New(cerrors.GasTooLow)
	}
	if req.OfferAmount < q.params.MinOffer {
		return 0, cerrors.New(cerrors.OfferTooLow)
	}

	if req.Kind.Tag == consensustypes.ScheduledKindTopoHeight {
		if req.Kind.TopoHeight <= topoheight {
			return 0, cerrors.New(cerrors.TopoheightInPast)
		}
		if req.Kind.TopoHeight > saturatingAdd(topoheight, q.params.MaxHorizon) {
			return 0, cerrors.New(cerrors.TopoheightTooFar)
		}
	}

	if err := q.checkRateLimit(req.Scheduler, topoheight, req.OfferAmount); err != nil {
		return 0, err
	}

	totalCost := saturatingAdd(req.OfferAmount, req.MaxGas)
	if err := ws.Debit(contractAccountKey(req.Scheduler), totalCost, topoheight); err != nil {
		return 0, err
	}

	execution := &consensustypes.ScheduledExecution{
		TargetContract:         req.TargetContract,
		ChunkID:                req.ChunkID,
		InputData:              req.InputData,
		MaxGas:                 req.MaxGas,
		OfferAmount:            req.OfferAmount,
		SchedulerContract:      req.Scheduler,
		Kind:                   req.Kind,
		RegistrationTopoheight: topoheight,
		Status:                 consensustypes.StatusPending,
	}
	execution.Hash = computeExecutionHash(execution)

	// Duplicate check happens after the deduction, mirroring
	// adapter.rs exactly: a rejected duplicate gets the whole deducted
	// total cost back, burn share included.
	if _, pending := q.store.GetPendingByTarget(req.TargetContract); pending {
		if err := ws.Credit(contractAccountKey(req.Scheduler), totalCost, topoheight); err != nil {
			return 0, err
		}
		return 0, cerrors.New(cerrors.AlreadyScheduled)
	}

	if err := q.store.Put(execution); err != nil {
		return 0, err
	}

	return handleFromHash(execution.Hash), nil
}

// checkRateLimit enforces MAX_SCHEDULES_PER_WINDOW registrations per
// contract within RATE_LIMIT_WINDOW topoheights, bypassed by offers at or
// above RATE_LIMIT_BYPASS_OFFER (adapter.rs check_rate_limit).
func (q *Queue) checkRateLimit(contract daghash.Hash, topoheight, offerAmount uint64) error {
	if offerAmount >= q.params.RateLimitBypassOffer {
		return nil
	}
	windowStart := saturatingSub(topoheight, q.params.RateLimitWindow)
	count, err := q.store.CountInWindow(contract, windowStart, topoheight)
	if err != nil {
		return err
	}
	if count >= q.params.MaxSchedulesPerWindow {
		return cerrors.New(cerrors.RateLimitExceeded)
	}
	return nil
}

// computeExecutionHash derives a registration's identifying hash from
// its immutable fields (the hash is the queue's primary key and the
// source of its opaque handle, so it must not depend on mutable fields
// like Status).
func computeExecutionHash(e *consensustypes.ScheduledExecution) daghash.Hash {
	buf := make([]byte, 0, 32+32+2+len(e.InputData)+8+8+32+1+8+8)
	buf = append(buf, e.TargetContract[:]...)
	buf = append(buf, e.SchedulerContract[:]...)
	var tmp [8]byte
	binary.BigEndian.PutUint16(tmp[:2], e.ChunkID)
	buf = append(buf, tmp[:2]...)
	buf = append(buf, e.InputData...)
	binary.BigEndian.PutUint64(tmp[:], e.MaxGas)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint64(tmp[:], e.OfferAmount)
	buf = append(buf, tmp[:]...)
	buf = append(buf, byte(e.Kind.Tag))
	binary.BigEndian.PutUint64(tmp[:], e.Kind.TopoHeight)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint64(tmp[:], e.RegistrationTopoheight)
	buf = append(buf, tmp[:]...)
	return daghash.HashData(buf)
}

// handleFromHash derives the opaque u64 handle a contract sees from an
// execution hash, grounded on the sled provider's
// get_scheduled_execution_by_handle: "the first 8 bytes of the hash".
func handleFromHash(hash daghash.Hash) uint64 {
	return binary.BigEndian.Uint64(hash[:8])
}
