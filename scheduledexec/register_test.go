package scheduledexec

import (
	"testing"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/state"
)

func testParams() consensustypes.Params {
	return consensustypes.Params{
		MinGas:                100,
		MinOffer:              0,
		BurnPercent:           30,
		MaxHorizon:            1000,
		MaxSchedulesPerWindow: 2,
		RateLimitWindow:       50,
		RateLimitBypassOffer:  1_000_000,
		MaxExecutionsPerBlock: 100,
		BlockGasLimit:         100_000_000,
		MinCancellationWindow: 1,
		MaxDeferrals:          2,
	}
}

func schedulerKey(b byte) daghash.Hash {
	var h daghash.Hash
	h[0] = b
	return h
}

func fundedBase(scheduler daghash.Hash, balance uint64) *state.MemStore {
	base := state.NewMemStore()
	base.SetBalance(state.NewAccountKey([32]byte(scheduler), daghash.Hash{}), state.AccountVersion{Balance: balance})
	return base
}

func TestRegisterDeductsOfferAndGas(t *testing.T) {
	scheduler := schedulerKey(1)
	target := schedulerKey(2)
	base := fundedBase(scheduler, 10_000)
	ws := state.NewWorkingSet(base)

	q := NewQueue(NewMemStore(), testParams())
	handle, err := q.Register(ws, 10, RegisterRequest{
		Scheduler:      scheduler,
		TargetContract: target,
		MaxGas:         500,
		OfferAmount:    1000,
		Kind:           consensustypes.TopoHeightKind(20),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if handle == 0 {
		t.Fatalf("expected nonzero handle")
	}

	bal, _ := ws.Balance(state.NewAccountKey([32]byte(scheduler), daghash.Hash{}))
	if bal.Balance != 10_000-1500 {
		t.Fatalf("expected balance %d, got %d", 10_000-1500, bal.Balance)
	}

	entry, ok := q.QueryByHandle(handle)
	if !ok {
		t.Fatalf("expected entry to be queryable by handle")
	}
	if entry.OfferAmount != 1000 || entry.MaxGas != 500 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestRegisterRejectsLowGas(t *testing.T) {
	scheduler := schedulerKey(1)
	base := fundedBase(scheduler, 10_000)
	ws := state.NewWorkingSet(base)
	q := NewQueue(NewMemStore(), testParams())

	_, err := q.Register(ws, 10, RegisterRequest{
		Scheduler:      scheduler,
		TargetContract: schedulerKey(2),
		MaxGas:         10,
		OfferAmount:    1000,
		Kind:           consensustypes.TopoHeightKind(20),
	})
	if err == nil || !cerrors.Is(err, cerrors.GasTooLow) {
		t.Fatalf("expected GasTooLow, got %v", err)
	}
}

func TestRegisterRejectsPastTopoheight(t *testing.T) {
	scheduler := schedulerKey(1)
	base := fundedBase(scheduler, 10_000)
	ws := state.NewWorkingSet(base)
	q := NewQueue(NewMemStore(), testParams())

	_, err := q.Register(ws, 10, RegisterRequest{
		Scheduler:      scheduler,
		TargetContract: schedulerKey(2),
		MaxGas:         500,
		OfferAmount:    1000,
		Kind:           consensustypes.TopoHeightKind(10),
	})
	if err == nil || !cerrors.Is(err, cerrors.TopoheightInPast) {
		t.Fatalf("expected TopoheightInPast, got %v", err)
	}
}

func TestRegisterRejectsTooFarHorizon(t *testing.T) {
	scheduler := schedulerKey(1)
	base := fundedBase(scheduler, 10_000)
	ws := state.NewWorkingSet(base)
	q := NewQueue(NewMemStore(), testParams())

	_, err := q.Register(ws, 10, RegisterRequest{
		Scheduler:      scheduler,
		TargetContract: schedulerKey(2),
		MaxGas:         500,
		OfferAmount:    1000,
		Kind:           consensustypes.TopoHeightKind(2000),
	})
	if err == nil || !cerrors.Is(err, cerrors.TopoheightTooFar) {
		t.Fatalf("expected TopoheightTooFar, got %v", err)
	}
}

func TestRegisterRejectsDuplicateTargetAndRefunds(t *testing.T) {
	scheduler := schedulerKey(1)
	target := schedulerKey(2)
	base := fundedBase(scheduler, 10_000)
	ws := state.NewWorkingSet(base)
	q := NewQueue(NewMemStore(), testParams())

	req := RegisterRequest{
		Scheduler:      scheduler,
		TargetContract: target,
		MaxGas:         500,
		OfferAmount:    1000,
		Kind:           consensustypes.TopoHeightKind(20),
	}
	if _, err := q.Register(ws, 10, req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	balAfterFirst, _ := ws.Balance(state.NewAccountKey([32]byte(scheduler), daghash.Hash{}))

	req.Kind = consensustypes.TopoHeightKind(30)
	_, err := q.Register(ws, 10, req)
	if err == nil || !cerrors.Is(err, cerrors.AlreadyScheduled) {
		t.Fatalf("expected AlreadyScheduled, got %v", err)
	}

	balAfterDup, _ := ws.Balance(state.NewAccountKey([32]byte(scheduler), daghash.Hash{}))
	if balAfterDup.Balance != balAfterFirst.Balance {
		t.Fatalf("expected duplicate registration to refund its own deduction: before %d after %d", balAfterFirst.Balance, balAfterDup.Balance)
	}
}

func TestRegisterRateLimitBypassedByHighOffer(t *testing.T) {
	scheduler := schedulerKey(1)
	base := fundedBase(scheduler, 10_000_000)
	ws := state.NewWorkingSet(base)
	q := NewQueue(NewMemStore(), testParams())

	for i := 0; i < 2; i++ {
		req := RegisterRequest{
			Scheduler:      scheduler,
			TargetContract: schedulerKey(byte(i + 2)),
			MaxGas:         500,
			OfferAmount:    100,
			Kind:           consensustypes.TopoHeightKind(uint64(20 + i)),
		}
		if _, err := q.Register(ws, 10, req); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	// Third low-offer registration within the window should be rate-limited.
	_, err := q.Register(ws, 10, RegisterRequest{
		Scheduler:      scheduler,
		TargetContract: schedulerKey(9),
		MaxGas:         500,
		OfferAmount:    100,
		Kind:           consensustypes.TopoHeightKind(25),
	})
	if err == nil || !cerrors.Is(err, cerrors.RateLimitExceeded) {
		t.Fatalf("expected RateLimitExceeded, got %v", err)
	}

	// A bypass-offer registration should still succeed.
	_, err = q.Register(ws, 10, RegisterRequest{
		Scheduler:      scheduler,
		TargetContract: schedulerKey(9),
		MaxGas:         500,
		OfferAmount:    testParams().RateLimitBypassOffer,
		Kind:           consensustypes.TopoHeightKind(25),
	})
	if err != nil {
		t.Fatalf("expected bypass registration to succeed, got %v", err)
	}
}
