package state

import "github.com/tos-network/tosd/daghash"

// Store is the persisted read surface the working set is built on top of
// (the "base" side of utxoset.go's FullUTXOSet/DiffUTXOSet split). A
// concrete storage/ provider implements this against leveldb.
type Store interface {
	Balance(key AccountKey) (AccountVersion, bool)
	Nonce(pubKey [32]byte) (NonceRecord, bool)
	Multisig(pubKey [32]byte) (*MultisigConfig, bool)
	Contract(contract daghash.Hash) (ContractRecord, bool)
	Event(contract daghash.Hash, topoheight uint64, logIndex uint32) (bool, error)
}

// MemStore is an in-memory Store implementation used by tests and by
// lightweight tooling; it plays the same role blockdag/utxoset.go's
// FullUTXOSet plays for the UTXO model.
type MemStore struct {
	balances  map[AccountKey]AccountVersion
	nonces    map[[32]byte]NonceRecord
	multisigs map[[32]byte]*MultisigConfig
	contracts map[daghash.Hash]ContractRecord
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		balances:  make(map[AccountKey]AccountVersion),
		nonces:    make(map[[32]byte]NonceRecord),
		multisigs: make(map[[32]byte]*MultisigConfig),
		contracts: make(map[daghash.Hash]ContractRecord),
	}
}

func (s *MemStore) Balance(key AccountKey) (AccountVersion, bool) {
	v, ok := s.balances[key]
	return v, ok
}

func (s *MemStore) Nonce(pubKey [32]byte) (NonceRecord, bool) {
	v, ok := s.nonces[pubKey]
	return v, ok
}

func (s *MemStore) Multisig(pubKey [32]byte) (*MultisigConfig, bool) {
	v, ok := s.multisigs[pubKey]
	return v, ok
}

func (s *MemStore) Contract(contract daghash.Hash) (ContractRecord, bool) {
	v, ok := s.contracts[contract]
	return v, ok
}

func (s *MemStore) Event(daghash.Hash, uint64, uint32) (bool, error) {
	return false, nil
}

// SetBalance seeds a balance directly, for test fixtures and genesis
// initialization.
func (s *MemStore) SetBalance(key AccountKey, v AccountVersion) {
	s.balances[key] = v
}

// SetNonce seeds a nonce directly, for test fixtures and genesis
// initialization.
func (s *MemStore) SetNonce(pubKey [32]byte, v NonceRecord) {
	s.nonces[pubKey] = v
}

// Apply commits a WorkingSet's buffered changes into this store in place,
// mirroring DiffUTXOSet.meldToBase: every touched key is overwritten with
// its final working-set version.
func (s *MemStore) Apply(ws *WorkingSet) {
	for k, v := range ws.balances {
		s.balances[k] = v
	}
	for k, v := range ws.nonces {
		s.nonces[k] = v
	}
	for k, v := range ws.multisigs {
		s.multisigs[k] = v
	}
	for k, v := range ws.contracts {
		s.contracts[k] = v
	}
}
