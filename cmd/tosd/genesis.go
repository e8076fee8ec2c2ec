package main

import (
	"math/big"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/state"
	"github.com/tos-network/tosd/wire"
)

// defaultMaxTarget is the proof-of-work floor used when a deployment
// doesn't configure one explicitly, following the teacher's
// dagconfig.MainNetParams' PowMax convention of a generous, easily-mined
// ceiling for a reference/test network rather than a production-tuned
// value.
func defaultMaxTarget() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), 240)
}

// genesisHeader builds the chain's fixed, parentless genesis block,
// deterministic given params so every node derives the same genesis
// hash independently, the way dagconfig.MainNetParams.GenesisBlock is a
// fixed wire constant rather than something mined at startup.
func genesisHeader(params consensustypes.Params) *consensustypes.BlockHeader {
	maxTarget := params.MaxTarget
	if maxTarget == nil {
		maxTarget = defaultMaxTarget()
	}
	return &consensustypes.BlockHeader{
		Version:        1,
		ChainID:        params.ChainID,
		TimestampMs:    0,
		DeclaredTarget: maxTarget,
	}
}

// genesisHash computes header's identifying hash, used to seed the
// reachability index's root before any block has been processed.
func genesisHash(header *consensustypes.BlockHeader) (daghash.Hash, error) {
	encoded, err := wire.EncodeBlockHeader(header)
	if err != nil {
		return daghash.Hash{}, err
	}
	return header.Hash(encoded), nil
}

// newExecutor creates the state.Executor used for block application. No
// ContractRunner is wired yet: contract-invocation bytecode execution is
// its own VM (spec §1 non-goal — only the hook boundary is modeled), so
// KindInvokeContract transactions are rejected until a runner lands.
func newExecutor() *state.Executor {
	return state.NewExecutor(nil)
}
