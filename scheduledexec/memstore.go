package scheduledexec

import (
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

// MemStore is an in-memory Store, used by tests and as a reference
// implementation of the Store interface: one map keyed by execution hash,
// with every other query answered by scanning it.
type MemStore struct {
	byHash map[daghash.Hash]*consensustypes.ScheduledExecution
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{byHash: make(map[daghash.Hash]*consensustypes.ScheduledExecution)}
}

func (m *MemStore) Put(e *consensustypes.ScheduledExecution) error {
	cp := *e
	m.byHash[e.Hash] = &cp
	return nil
}

func (m *MemStore) Get(hash daghash.Hash) (*consensustypes.ScheduledExecution, bool) {
	e, ok := m.byHash[hash]
	return e, ok
}

func (m *MemStore) Delete(hash daghash.Hash) error {
	delete(m.byHash, hash)
	return nil
}

func (m *MemStore) ScanAtTopoheight(t uint64) ([]*consensustypes.ScheduledExecution, error) {
	var out []*consensustypes.ScheduledExecution
	for _, e := range m.byHash {
		if e.Status != consensustypes.StatusPending {
			continue
		}
		switch e.Kind.Tag {
		case consensustypes.ScheduledKindTopoHeight:
			if e.Kind.TopoHeight == t {
				out = append(out, e)
			}
		case consensustypes.ScheduledKindBlockEnd:
			if e.RegistrationTopoheight <= t {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (m *MemStore) CountInWindow(contract daghash.Hash, from, to uint64) (uint64, error) {
	var count uint64
	for _, e := range m.byHash {
		if e.SchedulerContract != contract {
			continue
		}
		if e.RegistrationTopoheight >= from && e.RegistrationTopoheight <= to {
			count++
		}
	}
	return count, nil
}

func (m *MemStore) GetPendingByTarget(target daghash.Hash) (*consensustypes.ScheduledExecution, bool) {
	for _, e := range m.byHash {
		if e.TargetContract == target && e.Status == consensustypes.StatusPending {
			return e, true
		}
	}
	return nil, false
}

func (m *MemStore) GetByHandle(handle uint64) (*consensustypes.ScheduledExecution, bool) {
	for _, e := range m.byHash {
		if handleFromHash(e.Hash) == handle {
			return e, true
		}
	}
	return nil, false
}
