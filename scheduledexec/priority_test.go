package scheduledexec

import (
	"testing"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

func mkHash(b byte) daghash.Hash {
	var h daghash.Hash
	h[0] = b
	return h
}

func mkEntry(execTopo, offer, regTopo uint64, contract daghash.Hash) *consensustypes.ScheduledExecution {
	return &consensustypes.ScheduledExecution{
		TargetContract:         contract,
		OfferAmount:            offer,
		RegistrationTopoheight: regTopo,
		Kind:                   consensustypes.TopoHeightKind(execTopo),
		Status:                 consensustypes.StatusPending,
	}
}

// TestPriorityOrderingComprehensive mirrors the sled provider's own
// test_priority_ordering_comprehensive: highest offer first, then
// earliest registration, then contract hash as tiebreaker.
func TestPriorityOrderingComprehensive(t *testing.T) {
	contractA := mkHash(0x01)
	contractB := mkHash(0x02)

	entries := []*consensustypes.ScheduledExecution{
		mkEntry(100, 1_000_000, 20, contractA), // high offer, late reg
		mkEntry(100, 1_000_000, 10, contractA), // high offer, early reg
		mkEntry(100, 100, 5, contractA),        // low offer, early reg
		mkEntry(100, 500_000, 15, contractA),   // medium offer
		mkEntry(100, 1_000_000, 10, contractB), // high offer, same reg, contract_b
	}

	sortByPriority(entries)

	if entries[0].OfferAmount != 1_000_000 || entries[0].RegistrationTopoheight != 10 || entries[0].TargetContract != contractA {
		t.Fatalf("expected high offer/early reg/contract_a first, got %+v", entries[0])
	}
	if entries[1].TargetContract != contractB || entries[1].RegistrationTopoheight != 10 {
		t.Fatalf("expected contract_b tiebreaker second, got %+v", entries[1])
	}
	if entries[2].RegistrationTopoheight != 20 {
		t.Fatalf("expected late-reg high offer third, got %+v", entries[2])
	}
	if entries[3].OfferAmount != 500_000 {
		t.Fatalf("expected medium offer fourth, got %+v", entries[3])
	}
	if entries[4].OfferAmount != 100 {
		t.Fatalf("expected low offer last despite early reg, got %+v", entries[4])
	}
}
