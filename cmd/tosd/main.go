// Command tosd is the node binary: thin wiring of config, logging,
// storage, and the block processor, grounded on the teacher's
// kaspad.go (a wrapper struct over already-constructed services, a
// newKaspad constructor, start/stop lifecycle methods) with the P2P/RPC
// surface stripped out (spec §1 non-goals) and blockprocessor.Processor
// taking their place as the thing newTosd wires up.
package main

import (
	"fmt"
	"os"

	"github.com/tos-network/tosd/blockprocessor"
	"github.com/tos-network/tosd/config"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/cryptoutil"
	"github.com/tos-network/tosd/difficulty"
	"github.com/tos-network/tosd/ghostdag"
	"github.com/tos-network/tosd/logger"
	"github.com/tos-network/tosd/mempool"
	"github.com/tos-network/tosd/reachability"
	"github.com/tos-network/tosd/scheduledexec"
	"github.com/tos-network/tosd/storage/boltqueue"
	"github.com/tos-network/tosd/storage/leveldb"
	"github.com/tos-network/tosd/storage/statedb"
	"github.com/tos-network/tosd/util/panics"
	"github.com/tos-network/tosd/wire"
)

var log, _ = logger.Get(logger.SubsystemTags.NODE)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parsing configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogRotators(cfg.LogFile())
	logger.SetLogLevels(cfg.LogLevel)

	t, err := newTosd(cfg)
	if err != nil {
		panics.Exit(log, fmt.Sprintf("initializing tosd: %+v", err))
	}
	defer t.stop()

	if err := t.bootstrapGenesis(); err != nil {
		panics.Exit(log, fmt.Sprintf("bootstrapping genesis: %+v", err))
	}

	log.Infof("tosd started")
	select {}
}

// tosd is a wrapper for all the node's services, mirroring the teacher's
// kaspad struct.
type tosd struct {
	cfg    *config.Config
	params consensustypes.Params

	stateDB   *statedb.DB
	queueDB   *boltqueue.DB
	processor *blockprocessor.Processor
}

// newTosd constructs every collaborator a Processor needs, in the order
// spec §2's data flow lists them: reachability, GHOSTDAG, DAA, state,
// scheduled-execution queue, mempool.
func newTosd(cfg *config.Config) (*tosd, error) {
	params := cfg.Params()
	if params.K == 0 {
		params.K = 18 // spec §4.B default anticone bound
	}
	if params.TargetBlockTimeMs == 0 {
		params.TargetBlockTimeMs = 1000
	}
	if params.DAAWindowSize == 0 {
		params.DAAWindowSize = 2640
	}
	if params.MaxTarget == nil {
		params.MaxTarget = defaultMaxTarget()
	}

	genesisHashValue, err := genesisHash(genesisHeader(params))
	if err != nil {
		return nil, err
	}

	blockIndex := blockprocessor.NewBlockIndex()
	reachIndex := reachability.NewIndex(genesisHashValue)
	gdManager := ghostdag.New(ghostdag.Params{K: params.K, MaxMergesetReds: params.MaxMergesetReds}, blockIndex, reachIndex)
	diffController := difficulty.NewController(difficulty.Params{
		TargetBlockTimeMs: params.TargetBlockTimeMs,
		WindowSize:        params.DAAWindowSize,
		MaxTarget:         params.MaxTarget,
	}, blockIndex)

	ldb, err := leveldb.Open(cfg.StorageDir)
	if err != nil {
		return nil, err
	}
	stateDB := statedb.New(ldb)

	queueDB, err := boltqueue.Open(cfg.ScheduledDir)
	if err != nil {
		return nil, err
	}
	queue := scheduledexec.NewQueue(queueDB, params)

	// ZK is left unset: no range-proof verifier is wired yet (spec §1
	// non-goal, same as Executor's nil ContractRunner below), so
	// UNO/Shield/Unshield transactions are rejected at admission until
	// one lands.
	txMempool := mempool.New(mempool.Config{
		Store:    stateDB,
		Blocks:   blockIndex,
		Verifier: cryptoutil.Ed25519Verifier{},
		Multisig: cryptoutil.Ed25519Verifier{},
		Params:   params,
	})

	processor := blockprocessor.New(blockprocessor.Config{
		Params:       params,
		Index:        blockIndex,
		Reachability: reachIndex,
		Ghostdag:     gdManager,
		Difficulty:   diffController,
		Executor:     newExecutor(),
		Queue:        queue,
		Store:        stateDB,
		Mempool:      txMempool,
		EncodeHeader: wire.EncodeBlockHeader,
	})

	return &tosd{
		cfg:       cfg,
		params:    params,
		stateDB:   stateDB,
		queueDB:   queueDB,
		processor: processor,
	}, nil
}

// bootstrapGenesis processes the chain's parentless genesis header. The
// block index and reachability index live only in process memory (spec
// leaves block/reachability persistence as future work; only account
// state and the scheduled-execution queue are durable), so this runs on
// every startup; it is idempotent since genesis carries no transactions
// and therefore no state-store side effects.
func (t *tosd) bootstrapGenesis() error {
	genesis := genesisHeader(t.params)
	_, err := t.processor.ProcessBlock(genesis, nil)
	return err
}

// stop closes every durable resource tosd opened.
func (t *tosd) stop() {
	if err := t.stateDB.Close(); err != nil {
		log.Errorf("closing state store: %+v", err)
	}
	if err := t.queueDB.Close(); err != nil {
		log.Errorf("closing scheduled-execution queue: %+v", err)
	}
}
