package scheduledexec

import (
	"encoding/binary"
	"sort"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

// priorityKey builds the 56-byte composite sort key from the sled
// provider's get_scheduled_execution_priority_key: execution topoheight
// ascending (primary), then highest offer first (inverted so it sorts
// ascending too), then earliest registration ascending (FIFO for equal
// offers), then the contract hash as a deterministic tiebreaker. Spec
// §4.E requires "a single composite sort key encodes all four;
// implementations must match exactly" — this mirrors the teacher-grounded
// byte layout instead of an ad hoc multi-field comparator.
func priorityKey(executionTopoheight, offerAmount, registrationTopoheight uint64, contract daghash.Hash) [56]byte {
	var key [56]byte
	binary.BigEndian.PutUint64(key[0:8], executionTopoheight)
	binary.BigEndian.PutUint64(key[8:16], ^offerAmount)
	binary.BigEndian.PutUint64(key[16:24], registrationTopoheight)
	copy(key[24:56], contract[:])
	return key
}

func lessPriority(a, b [56]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// sortByPriority orders entries per priorityKey, in place.
func sortByPriority(entries []*consensustypes.ScheduledExecution) {
	sort.Slice(entries, func(i, j int) bool {
		a := entries[i]
		b := entries[j]
		ka := priorityKey(a.ExecutionTopoheight(), a.OfferAmount, a.RegistrationTopoheight, a.TargetContract)
		kb := priorityKey(b.ExecutionTopoheight(), b.OfferAmount, b.RegistrationTopoheight, b.TargetContract)
		return lessPriority(ka, kb)
	})
}
