package wire

import (
	"testing"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

func schedHash(b byte) daghash.Hash {
	var h daghash.Hash
	h[0] = b
	return h
}

func TestScheduledExecutionRoundTrip(t *testing.T) {
	s := &consensustypes.ScheduledExecution{
		Hash:                   schedHash(1),
		TargetContract:         schedHash(2),
		ChunkID:                4,
		InputData:              []byte{1, 2, 3},
		MaxGas:                 5000,
		OfferAmount:            1000,
		SchedulerContract:      schedHash(3),
		Kind:                   consensustypes.TopoHeightKind(99),
		RegistrationTopoheight: 50,
		Status:                 consensustypes.StatusPending,
		RewardsProcessed:       false,
	}

	encoded, err := EncodeScheduledExecution(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeScheduledExecution(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Hash != s.Hash || decoded.TargetContract != s.TargetContract ||
		decoded.ChunkID != s.ChunkID || decoded.MaxGas != s.MaxGas ||
		decoded.OfferAmount != s.OfferAmount || decoded.RegistrationTopoheight != s.RegistrationTopoheight {
		t.Fatalf("scalar field mismatch: %+v", decoded)
	}
	if decoded.Kind.Tag != consensustypes.ScheduledKindTopoHeight || decoded.Kind.TopoHeight != 99 {
		t.Fatalf("kind mismatch: %+v", decoded.Kind)
	}
	if decoded.ExecutionTopoheight() != 99 {
		t.Fatalf("execution topoheight mismatch: got %d", decoded.ExecutionTopoheight())
	}
	if decoded.Status != consensustypes.StatusPending || decoded.RewardsProcessed {
		t.Fatalf("status/rewards mismatch: %+v", decoded)
	}
}

func TestScheduledExecutionBlockEndKindUsesRegistrationTopoheight(t *testing.T) {
	s := &consensustypes.ScheduledExecution{
		Kind:                   consensustypes.BlockEndKind(),
		RegistrationTopoheight: 123,
	}
	encoded, err := EncodeScheduledExecution(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeScheduledExecution(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ExecutionTopoheight() != 123 {
		t.Fatalf("expected registration topoheight fallback, got %d", decoded.ExecutionTopoheight())
	}
}
