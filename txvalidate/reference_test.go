package txvalidate

import (
	"testing"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
)

func TestValidateReferenceFreshnessAcceptsWithinWindow(t *testing.T) {
	tx := baseTx()
	tx.Reference.Topoheight = 90
	params := consensustypes.Params{ReferenceStaleWindow: 20}
	if err := ValidateReferenceFreshness(tx, 100, params); err != nil {
		t.Fatalf("expected fresh reference to validate, got %v", err)
	}
}

func TestValidateReferenceFreshnessRejectsStale(t *testing.T) {
	tx := baseTx()
	tx.Reference.Topoheight = 50
	params := consensustypes.Params{ReferenceStaleWindow: 20}
	err := ValidateReferenceFreshness(tx, 100, params)
	if err == nil || !cerrors.Is(err, cerrors.ReferenceTooOld) {
		t.Fatalf("expected ReferenceTooOld, got %v", err)
	}
}

func TestValidateReferenceFreshnessRejectsFuture(t *testing.T) {
	tx := baseTx()
	tx.Reference.Topoheight = 150
	params := consensustypes.Params{ReferenceStaleWindow: 20}
	err := ValidateReferenceFreshness(tx, 100, params)
	if err == nil || !cerrors.Is(err, cerrors.BlockNotFound) {
		t.Fatalf("expected BlockNotFound for a reference ahead of the tip, got %v", err)
	}
}

func TestValidateReferenceFreshnessUnboundedWhenWindowZero(t *testing.T) {
	tx := baseTx()
	tx.Reference.Topoheight = 1
	params := consensustypes.Params{ReferenceStaleWindow: 0}
	if err := ValidateReferenceFreshness(tx, 1_000_000, params); err != nil {
		t.Fatalf("expected zero window to mean unbounded, got %v", err)
	}
}
