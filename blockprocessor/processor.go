package blockprocessor

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/difficulty"
	"github.com/tos-network/tosd/ghostdag"
	"github.com/tos-network/tosd/reachability"
	"github.com/tos-network/tosd/scheduledexec"
	"github.com/tos-network/tosd/state"
	"github.com/tos-network/tosd/wire"
)

// StateStore is the persisted state.Store a Processor commits finished
// blocks into, mirroring blockdag's FullUTXOSet: the same read surface
// transaction execution is built on, plus the meld-on-commit step.
type StateStore interface {
	state.Store
	Apply(ws *state.WorkingSet)
}

// MempoolCleaner removes transactions a committed block has consumed,
// satisfying spec §4.D.2 step 6's "update the nonce-checker index so
// admission sees fresh state" — here, simply evicting them from the pool
// rather than re-validating each survivor, mirroring the teacher's
// TxPool.RemoveTransaction calls from connectBlock's post-commit cleanup.
type MempoolCleaner interface {
	RemoveTransaction(hash daghash.Hash)
}

// Result summarizes one successfully processed block for the caller (RPC
// responses, logging, tests).
type Result struct {
	Hash       daghash.Hash
	Topoheight uint64
	Ghostdag   *ghostdag.BlockData
	Execution  *state.ExecutionResult
	Dispatch   *scheduledexec.DispatchResult
}

// Processor wires components A-F into the single per-block pipeline spec
// §2 describes, mirroring blockdag.BlockDAG: one lock-guarded struct
// holding every collaborator a ProcessBlock call touches.
type Processor struct {
	mtx sync.Mutex

	params consensustypes.Params

	index        *BlockIndex
	reachability *reachability.Index
	ghostdag     *ghostdag.Manager
	difficulty   *difficulty.Controller
	executor     *state.Executor
	queue        *scheduledexec.Queue
	store        StateStore
	mempool      MempoolCleaner

	encodeHeader func(h *consensustypes.BlockHeader) ([]byte, error)
}

// Config bundles a Processor's collaborators.
type Config struct {
	Params       consensustypes.Params
	Index        *BlockIndex
	Reachability *reachability.Index
	Ghostdag     *ghostdag.Manager
	Difficulty   *difficulty.Controller
	Executor     *state.Executor
	Queue        *scheduledexec.Queue
	Store        StateStore
	Mempool      MempoolCleaner
	EncodeHeader func(h *consensustypes.BlockHeader) ([]byte, error)
}

// New creates a Processor from cfg.
func New(cfg Config) *Processor {
	return &Processor{
		params:       cfg.Params,
		index:        cfg.Index,
		reachability: cfg.Reachability,
		ghostdag:     cfg.Ghostdag,
		difficulty:   cfg.Difficulty,
		executor:     cfg.Executor,
		queue:        cfg.Queue,
		store:        cfg.Store,
		mempool:      cfg.Mempool,
		encodeHeader: cfg.EncodeHeader,
	}
}

var (
	// errDuplicateBlock mirrors blockdag.ErrDuplicateBlock's rejection
	// of a hash the index already has a record for.
	errDuplicateBlock = errors.New("duplicate block")

	// errBadTarget is returned when a block's declared_target doesn't
	// match the DAA controller's computed value (spec §4.B "Difficulty
	// integration").
	errBadTarget = errors.New("declared target does not match DAA controller")

	// errWrongChainID rejects a block declaring a different network
	// than this Processor enforces (spec §4.F's chain-id check, applied
	// at the block level the same way it applies to transactions).
	errWrongChainID = errors.New("block declares wrong chain id")
)

// ProcessBlock runs the full A->B->C->D->E->F pipeline for one block:
// GHOSTDAG ordering, reachability insertion, DAA target verification,
// transaction execution, scheduled-queue dispatch, and mempool cleanup.
// No partial effect is observable on error (spec §4.D.2: "partial
// application is never persisted") — the index, reachability tree, and
// state store are all mutated only after execution as a whole succeeds.
func (p *Processor) ProcessBlock(header *consensustypes.BlockHeader, txs []*consensustypes.Transaction) (*Result, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	encoded, err := p.encodeHeader(header)
	if err != nil {
		return nil, errors.Wrap(err, "encoding header")
	}
	hash := header.Hash(encoded)

	if p.index.Has(hash) {
		return nil, errDuplicateBlock
	}

	if header.ChainID != p.params.ChainID {
		return nil, errWrongChainID
	}

	// Register the block's own declared target/parents before running
	// GHOSTDAG: Compute looks up the new block's own target mid-
	// computation (to fold self-work into blue_work), the way
	// ghostdag_test.go's memStore registers a block before computing it.
	// The registration stays invisible to Has/Topoheight until commit.
	p.index.beginProcessing(hash, header)

	data, err := p.computeGhostdagData(hash, header)
	if err != nil {
		p.index.abortProcessing(hash)
		return nil, errors.Wrap(err, "computing ghostdag data")
	}

	if !header.IsGenesis() {
		expectedTarget, err := p.difficulty.CalculateTargetDifficulty(data.SelectedParent)
		if err != nil {
			p.index.abortProcessing(hash)
			return nil, errors.Wrap(err, "calculating target difficulty")
		}
		if header.DeclaredTarget == nil || header.DeclaredTarget.Cmp(expectedTarget) != 0 {
			p.index.abortProcessing(hash)
			return nil, errBadTarget
		}
	}

	topoheight, err := p.provisionalTopoheight(header, data)
	if err != nil {
		p.index.abortProcessing(hash)
		return nil, err
	}

	ws, execResult, err := p.executor.ApplyBlock(p.store, header.Version, topoheight, txs)
	if err != nil {
		p.index.abortProcessing(hash)
		return nil, errors.Wrap(err, "applying block transactions")
	}

	miner := daghash.Hash(header.MinerPubKey)
	dispatchResult, err := p.queue.Dispatch(ws, topoheight, miner, p.executor.Runner())
	if err != nil {
		p.index.abortProcessing(hash)
		return nil, errors.Wrap(err, "dispatching scheduled executions")
	}

	// Commit: write new versions, insert reachability/ghostdag records,
	// evict the block's transactions from the mempool (spec §4.D.2
	// step 6). Everything above this point is pure/buffered; nothing
	// persistent is touched until every fallible step has succeeded.
	p.store.Apply(ws)

	if !header.IsGenesis() {
		otherParents := make([]daghash.Hash, 0, len(header.Parents)-1)
		for _, parent := range header.Parents {
			if parent != data.SelectedParent {
				otherParents = append(otherParents, parent)
			}
		}
		if err := p.reachability.Insert(hash, data.SelectedParent, otherParents); err != nil {
			panic(errors.Wrap(err, "reachability insert after successful execution"))
		}
	}

	if _, err := p.index.commit(hash, header, data); err != nil {
		panic(errors.Wrap(err, "block index commit after successful execution"))
	}

	if p.mempool != nil {
		for _, tx := range txs {
			txEncoded, err := wire.EncodeTransaction(tx)
			if err != nil {
				continue
			}
			p.mempool.RemoveTransaction(tx.Hash(txEncoded))
		}
	}

	return &Result{
		Hash:       hash,
		Topoheight: topoheight,
		Ghostdag:   data,
		Execution:  execResult,
		Dispatch:   dispatchResult,
	}, nil
}

// computeGhostdagData runs GHOSTDAG for header, special-casing genesis:
// ghostdag.Manager.Compute rejects an empty parent set outright (there is
// no selected parent to measure blue_work against), so a genesis block's
// data is built here: blue score 0, an empty mergeset, and blue work equal
// to the work of its own declared target. Every other component treats it
// as the root of the selected-parent chain.
func (p *Processor) computeGhostdagData(hash daghash.Hash, header *consensustypes.BlockHeader) (*ghostdag.BlockData, error) {
	if header.IsGenesis() {
		work, err := ghostdag.CalcWork(header.DeclaredTarget)
		if err != nil {
			return nil, err
		}
		return &ghostdag.BlockData{
			BlueScore:          0,
			BlueWork:           work,
			BluesAnticoneSizes: map[daghash.Hash]uint8{},
		}, nil
	}
	return p.ghostdag.Compute(hash, header.Parents)
}

// provisionalTopoheight derives the topoheight a block would receive
// without yet committing it to the index, so execution can run against
// the right versioned state before anything is persisted.
func (p *Processor) provisionalTopoheight(header *consensustypes.BlockHeader, data *ghostdag.BlockData) (uint64, error) {
	if header.IsGenesis() {
		return 0, nil
	}
	parentTopo, ok := p.index.Topoheight(data.SelectedParent)
	if !ok {
		return 0, errMissingSelectedParent
	}
	return parentTopo + 1, nil
}
