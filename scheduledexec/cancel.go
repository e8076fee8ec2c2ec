package scheduledexec

import (
	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/state"
)

// Cancel reverses a pending registration for the scheduler that created
// it, refunding max_gas plus the un-burned 70% of the offer (spec §4.E
// cancel, adapter.rs cancel_scheduled_execution). Allowed only while
// more than MinCancellationWindow topoheights remain before dispatch and
// only for TopoHeight-kind entries — BlockEnd entries can never be
// cancelled (adapter.rs's can_cancel returns false unconditionally for
// BlockEnd).
func (q *Queue) Cancel(ws *state.WorkingSet, topoheight uint64, scheduler daghash.Hash, handle uint64) (refund uint64, err error) {
	execution, ok := q.store.GetByHandle(handle)
	if !ok {
		return 0, cerrors.New(cerrors.ScheduledExecutionNotFound)
	}
	if execution.SchedulerContract != scheduler {
		return 0, cerrors.New(cerrors.NotAuthorized)
	}
	if !canCancel(execution, topoheight, q.params.MinCancellationWindow) {
		return 0, cerrors.New(cerrors.CannotCancel)
	}

	offerRefund := percentOf(execution.OfferAmount, saturatingSub(100, q.params.BurnPercent))
	refund = saturatingAdd(execution.MaxGas, offerRefund)

	if err := q.store.Delete(execution.Hash); err != nil {
		return 0, err
	}
	if err := ws.Credit(contractAccountKey(scheduler), refund, topoheight); err != nil {
		return 0, err
	}
	return refund, nil
}

// canCancel reports whether execution may still be cancelled at
// topoheight: it must target a specific TopoHeight (never BlockEnd) that
// is more than window topoheights away.
func canCancel(execution *consensustypes.ScheduledExecution, topoheight, window uint64) bool {
	if execution.Kind.Tag != consensustypes.ScheduledKindTopoHeight {
		return false
	}
	if execution.Status != consensustypes.StatusPending {
		return false
	}
	target := execution.Kind.TopoHeight
	if target <= topoheight {
		return false
	}
	return target-topoheight > window
}
