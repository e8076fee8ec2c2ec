package blockprocessor

import (
	"math/big"
	"testing"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/difficulty"
	"github.com/tos-network/tosd/ghostdag"
	"github.com/tos-network/tosd/reachability"
	"github.com/tos-network/tosd/scheduledexec"
	"github.com/tos-network/tosd/state"
	"github.com/tos-network/tosd/wire"
)

func genesisHeader(chainID consensustypes.ChainID, target *big.Int) *consensustypes.BlockHeader {
	return &consensustypes.BlockHeader{
		Version:        1,
		ChainID:        chainID,
		TimestampMs:    1_700_000_000_000,
		DeclaredTarget: target,
	}
}

// newTestProcessor wires a Processor the way cmd/tosd does: the genesis
// header's hash is computed first (it is a fixed, well-known chain
// constant) and used to seed the reachability index's root, since
// reachability.NewIndex must be given the exact hash it will later be
// asked is_ancestor questions about.
func newTestProcessor(t *testing.T, genesis *consensustypes.BlockHeader) (*Processor, *state.MemStore, daghash.Hash) {
	t.Helper()

	params := consensustypes.Params{
		ChainID:           consensustypes.ChainIDTestnet,
		K:                 3,
		TargetBlockTimeMs: 1000,
		DAAWindowSize:     5,
		MaxTarget:         new(big.Int).Lsh(big.NewInt(1), 240),

		MinOffer:              1,
		MinGas:                1,
		BurnPercent:           30,
		MaxHorizon:            1000,
		MaxSchedulesPerWindow: 100,
		RateLimitWindow:       10,
		RateLimitBypassOffer:  1_000_000,
		MaxExecutionsPerBlock: 100,
		BlockGasLimit:         100_000_000,
		MinCancellationWindow: 2,
		MaxDeferrals:          3,
	}

	encoded, err := wire.EncodeBlockHeader(genesis)
	if err != nil {
		t.Fatalf("encoding genesis header: %v", err)
	}
	genesisHash := genesis.Hash(encoded)

	index := NewBlockIndex()
	reachIndex := reachability.NewIndex(genesisHash)
	gdManager := ghostdag.New(ghostdag.Params{K: params.K, MaxMergesetReds: params.MaxMergesetReds}, index, reachIndex)
	diffController := difficulty.NewController(difficulty.Params{
		TargetBlockTimeMs: params.TargetBlockTimeMs,
		WindowSize:        params.DAAWindowSize,
		MaxTarget:         params.MaxTarget,
	}, index)

	store := state.NewMemStore()
	executor := state.NewExecutor(nil)
	queue := scheduledexec.NewQueue(scheduledexec.NewMemStore(), params)

	processor := New(Config{
		Params:       params,
		Index:        index,
		Reachability: reachIndex,
		Ghostdag:     gdManager,
		Difficulty:   diffController,
		Executor:     executor,
		Queue:        queue,
		Store:        store,
		EncodeHeader: wire.EncodeBlockHeader,
	})
	return processor, store, genesisHash
}

func TestProcessBlockGenesisIsAcceptedAndIndexed(t *testing.T) {
	genesis := genesisHeader(consensustypes.ChainIDTestnet, new(big.Int).Lsh(big.NewInt(1), 240))
	p, _, _ := newTestProcessor(t, genesis)

	result, err := p.ProcessBlock(genesis, nil)
	if err != nil {
		t.Fatalf("ProcessBlock(genesis): %v", err)
	}
	if result.Topoheight != 0 {
		t.Fatalf("genesis topoheight = %d, want 0", result.Topoheight)
	}
	if !p.index.Has(result.Hash) {
		t.Fatalf("genesis hash not indexed after commit")
	}
	if !p.index.HasTopoheight(0) {
		t.Fatalf("topoheight 0 not indexed after genesis commit")
	}

	if _, err := p.ProcessBlock(genesis, nil); err != errDuplicateBlock {
		t.Fatalf("reprocessing genesis = %v, want errDuplicateBlock", err)
	}
}

func TestProcessBlockRejectsWrongChainID(t *testing.T) {
	genesis := genesisHeader(consensustypes.ChainIDMainnet, new(big.Int).Lsh(big.NewInt(1), 240))
	p, _, genesisHash := newTestProcessor(t, genesis)

	if _, err := p.ProcessBlock(genesis, nil); err != errWrongChainID {
		t.Fatalf("ProcessBlock with wrong chain id = %v, want errWrongChainID", err)
	}
	if p.index.Has(genesisHash) {
		t.Fatalf("rejected block must not leave an index entry behind")
	}
}

func TestProcessBlockChildAdvancesTopoheightAndAppliesTransfer(t *testing.T) {
	genesis := genesisHeader(consensustypes.ChainIDTestnet, new(big.Int).Lsh(big.NewInt(1), 240))
	p, store, _ := newTestProcessor(t, genesis)
	genesisResult, err := p.ProcessBlock(genesis, nil)
	if err != nil {
		t.Fatalf("ProcessBlock(genesis): %v", err)
	}

	var sourcePubKey, destPubKey [32]byte
	sourcePubKey[0] = 0xAA
	destPubKey[0] = 0xBB
	nativeAsset := daghash.Hash{}

	sourceKey := state.NewAccountKey(sourcePubKey, nativeAsset)
	store.SetBalance(sourceKey, state.AccountVersion{Balance: 1000})

	expectedTarget, err := p.difficulty.CalculateTargetDifficulty(genesisResult.Hash)
	if err != nil {
		t.Fatalf("CalculateTargetDifficulty: %v", err)
	}

	child := &consensustypes.BlockHeader{
		Version:        1,
		ChainID:        consensustypes.ChainIDTestnet,
		Parents:        []daghash.Hash{genesisResult.Hash},
		TimestampMs:    genesis.TimestampMs + 1000,
		DeclaredTarget: expectedTarget,
	}
	tx := &consensustypes.Transaction{
		Version:      1,
		ChainID:      consensustypes.ChainIDTestnet,
		SourcePubKey: sourcePubKey,
		Kind:         consensustypes.KindTransfers,
		Fee:          10,
		Nonce:        0,
		Transfers: []consensustypes.Transfer{
			{Asset: nativeAsset, Destination: destPubKey, Amount: 100},
		},
	}

	result, err := p.ProcessBlock(child, []*consensustypes.Transaction{tx})
	if err != nil {
		t.Fatalf("ProcessBlock(child): %v", err)
	}
	if result.Topoheight != 1 {
		t.Fatalf("child topoheight = %d, want 1", result.Topoheight)
	}

	sourceBalance, ok := store.Balance(sourceKey)
	if !ok {
		t.Fatalf("source balance missing after commit")
	}
	if sourceBalance.Balance != 1000-100-10 {
		t.Fatalf("source balance = %d, want %d", sourceBalance.Balance, 1000-100-10)
	}

	destBalance, ok := store.Balance(state.NewAccountKey(destPubKey, nativeAsset))
	if !ok || destBalance.Balance != 100 {
		t.Fatalf("dest balance = %+v, ok=%v, want 100", destBalance, ok)
	}

	isAncestor, err := reachabilityAncestor(p, genesisResult.Hash, result.Hash)
	if err != nil {
		t.Fatalf("IsAncestor: %v", err)
	}
	if !isAncestor {
		t.Fatalf("genesis should be an ancestor of its child after commit")
	}
}

func reachabilityAncestor(p *Processor, a, b daghash.Hash) (bool, error) {
	return p.reachability.IsAncestor(a, b)
}
