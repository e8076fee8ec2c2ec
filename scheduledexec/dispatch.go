package scheduledexec

import (
	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/state"
)

// DispatchResult summarizes one topoheight's dispatch pass for the block
// applier (reward accounting, event publication).
type DispatchResult struct {
	Events             []consensustypes.StoredContractEvent
	GasConsumedByMiner uint64
	OfferPaidToMiner   uint64
	Executed           int
	Deferred           int
	Expired            int
}

// Dispatch runs every entry due at topoheight in priority order (spec
// §4.E dispatch), crediting the miner 70% of each offer plus actual gas
// cost, refunding unused gas to the scheduler, and deferring entries that
// would exceed the per-block execution count or gas budget to
// topoheight+1 — expiring them instead once they've been deferred more
// than MaxDeferrals times.
func (q *Queue) Dispatch(ws *state.WorkingSet, topoheight uint64, miner daghash.Hash, runner state.ContractRunner) (*DispatchResult, error) {
	entries, err := q.store.ScanAtTopoheight(topoheight)
	if err != nil {
		return nil, err
	}
	sortByPriority(entries)

	result := &DispatchResult{}
	var gasUsedInBlock uint64

	for _, entry := range entries {
		if entry.Status != consensustypes.StatusPending {
			continue
		}

		if result.Executed >= q.params.MaxExecutionsPerBlock ||
			saturatingAdd(gasUsedInBlock, entry.MaxGas) > q.params.BlockGasLimit {
			if err := q.deferEntry(entry, topoheight, ws, result); err != nil {
				return nil, err
			}
			continue
		}

		gasUsed, events, err := runner.Invoke(ws, entry.TargetContract, entry.ChunkID, entry.InputData, entry.MaxGas)
		if err != nil {
			return nil, err
		}
		if gasUsed > entry.MaxGas {
			gasUsed = entry.MaxGas
		}
		gasUsedInBlock = saturatingAdd(gasUsedInBlock, gasUsed)

		offerToMiner := percentOf(entry.OfferAmount, saturatingSub(100, q.params.BurnPercent))
		minerPayment := saturatingAdd(offerToMiner, gasUsed)
		if err := ws.Credit(contractAccountKey(miner), minerPayment, topoheight); err != nil {
			return nil, err
		}
		if refund := entry.MaxGas - gasUsed; refund > 0 {
			if err := ws.Credit(contractAccountKey(entry.SchedulerContract), refund, topoheight); err != nil {
				return nil, err
			}
		}

		entry.Status = consensustypes.StatusExecuted
		entry.RewardsProcessed = true
		if err := q.store.Put(entry); err != nil {
			return nil, err
		}

		result.Events = append(result.Events, events...)
		result.GasConsumedByMiner += gasUsed
		result.OfferPaidToMiner += offerToMiner
		result.Executed++
	}

	return result, nil
}

// deferEntry pushes entry to the following topoheight, or expires it once
// it has been deferred past MaxDeferrals times (spec §4.E: "deferred
// beyond an implementation-defined limit expire with status Expired and
// the gas portion is refunded"; the 30% burn is never returned).
func (q *Queue) deferEntry(entry *consensustypes.ScheduledExecution, topoheight uint64, ws *state.WorkingSet, result *DispatchResult) error {
	entry.DeferCount++
	if q.params.MaxDeferrals > 0 && int(entry.DeferCount) > q.params.MaxDeferrals {
		entry.Status = consensustypes.StatusExpired
		if err := ws.Credit(contractAccountKey(entry.SchedulerContract), entry.MaxGas, topoheight); err != nil {
			return err
		}
		result.Expired++
		return q.store.Put(entry)
	}

	if entry.Kind.Tag == consensustypes.ScheduledKindTopoHeight {
		entry.Kind.TopoHeight = topoheight + 1
	}
	result.Deferred++
	return q.store.Put(entry)
}

// QueryByHandle exposes the handle-keyed observability lookup spec §4.E
// calls for.
func (q *Queue) QueryByHandle(handle uint64) (*consensustypes.ScheduledExecution, bool) {
	return q.store.GetByHandle(handle)
}

// QueryAtTopoheight exposes the priority-sorted view of a topoheight's
// due entries for RPC/debugging use, without mutating anything.
func (q *Queue) QueryAtTopoheight(topoheight uint64) ([]*consensustypes.ScheduledExecution, error) {
	entries, err := q.store.ScanAtTopoheight(topoheight)
	if err != nil {
		return nil, cerrors.Newf(cerrors.InvalidValue, "scan at topoheight %d: %v", topoheight, err)
	}
	sortByPriority(entries)
	return entries, nil
}
