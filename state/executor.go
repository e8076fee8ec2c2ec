package state

import (
	"github.com/pkg/errors"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
)

// ContractRunner is the executor's collaborator for contract invocation
// and deployment (spec §1 non-goal: VM bytecode interpreter internals are
// out of scope — only this hook boundary is modeled, the way the teacher's
// txscript engine is a separate collaborator from blockdag's validation).
type ContractRunner interface {
	// Invoke runs contract at chunkID with input under a gas budget,
	// returning gas actually consumed, emitted events, and state deltas
	// to apply to the working set (spec §4.D.2 step 2).
	Invoke(ws *WorkingSet, contract daghash.Hash, chunkID uint16, input []byte, maxGas uint64) (gasUsed uint64, events []consensustypes.StoredContractEvent, err error)
}

// ExecutionResult summarizes one applied block for the caller (reward
// accounting, event publication).
type ExecutionResult struct {
	Events             []consensustypes.StoredContractEvent
	GasConsumedByMiner uint64
}

// Executor applies blocks of transactions to a Store under the rules of
// spec §4.D.2.
type Executor struct {
	runner ContractRunner
}

// NewExecutor creates an Executor. runner may be nil if the block never
// contains KindInvokeContract transactions (e.g. in unit tests).
func NewExecutor(runner ContractRunner) *Executor {
	return &Executor{runner: runner}
}

// Runner exposes the Executor's ContractRunner so callers that need to
// hand the same collaborator to another component (scheduledexec.Queue's
// dispatch pass invokes contracts too) don't have to keep a second
// reference around.
func (e *Executor) Runner() ContractRunner {
	return e.runner
}

// ApplyBlock executes txs against base at the given block version and
// topoheight, returning the fully-populated working set to commit and an
// ExecutionResult, or an error if any transaction fails deterministic
// validation — in which case no change must be observable (spec §4.D.2
// step 3, testable property 9).
func (e *Executor) ApplyBlock(base Store, version uint8, topoheight uint64, txs []*consensustypes.Transaction) (*WorkingSet, *ExecutionResult, error) {
	batches := partitionBatches(version, txs)
	result := &ExecutionResult{}

	committed := NewWorkingSet(base)
	if !supportsBatching(version, txs) {
		// Pre-V2 (or undeclared) blocks apply strictly in declared order,
		// each transaction seeing the writes of the ones before it.
		for _, tx := range txs {
			events, gas, err := e.applyTransaction(committed, topoheight, tx)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "transaction %s", tx.Hash(nil))
			}
			result.Events = append(result.Events, events...)
			result.GasConsumedByMiner += gas
		}
		return committed, result, nil
	}
	for _, batch := range batches {
		batchResult, err := e.applyBatch(committed, topoheight, batch)
		if err != nil {
			return nil, nil, err
		}
		committed.mergeDisjoint(batchResult.ws)
		result.Events = append(result.Events, batchResult.events...)
		result.GasConsumedByMiner += batchResult.gasToMiner
	}
	return committed, result, nil
}

type batchOutcome struct {
	ws         *WorkingSet
	events     []consensustypes.StoredContractEvent
	gasToMiner uint64
}

// applyBatch executes every transaction in batch against its own clone of
// the pre-batch snapshot (so writes within a batch never observe each
// other, per spec §5), then merges the disjoint per-transaction working
// sets back together.
func (e *Executor) applyBatch(preBatch *WorkingSet, topoheight uint64, batch []*consensustypes.Transaction) (*batchOutcome, error) {
	merged := NewWorkingSet(preBatch.base)
	merged.mergeDisjoint(preBatch)

	var events []consensustypes.StoredContractEvent
	var gasToMiner uint64

	for _, tx := range batch {
		txWs := preBatch.clone()
		txEvents, txGas, err := e.applyTransaction(txWs, topoheight, tx)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s", tx.Hash(nil))
		}
		merged.mergeDisjoint(txWs)
		events = append(events, txEvents...)
		gasToMiner += txGas
	}

	return &batchOutcome{ws: merged, events: events, gasToMiner: gasToMiner}, nil
}

// applyTransaction applies one transaction's effects to ws (spec §4.D.2
// step 2): debit source by value+fee, credit destinations, nonce CAS,
// optional contract invocation.
func (e *Executor) applyTransaction(ws *WorkingSet, topoheight uint64, tx *consensustypes.Transaction) ([]consensustypes.StoredContractEvent, uint64, error) {
	if err := ws.casNonce(tx.SourcePubKey, tx.Nonce, topoheight); err != nil {
		return nil, 0, err
	}

	nativeAsset := daghash.Hash{}
	totalDebit := map[daghash.Hash]uint64{nativeAsset: tx.Fee}

	switch tx.Kind {
	case consensustypes.KindTransfers, consensustypes.KindUnoTransfers, consensustypes.KindShield, consensustypes.KindUnshield:
		transfers := tx.Transfers
		if tx.Private != nil {
			transfers = tx.Private.Transfers
		}
		for _, t := range transfers {
			totalDebit[t.Asset] += t.Amount
		}
		for asset, amount := range totalDebit {
			if err := ws.debit(NewAccountKey(tx.SourcePubKey, asset), amount, topoheight); err != nil {
				return nil, 0, err
			}
		}
		for _, t := range transfers {
			if err := ws.credit(NewAccountKey(t.Destination, t.Asset), t.Amount, topoheight); err != nil {
				return nil, 0, err
			}
		}
		return nil, 0, nil

	case consensustypes.KindBurn:
		if tx.Burn == nil {
			return nil, 0, cerrors.Newf(cerrors.InvalidValue, "burn transaction missing payload")
		}
		totalDebit[tx.Burn.Asset] += tx.Burn.Amount
		for asset, amount := range totalDebit {
			if err := ws.debit(NewAccountKey(tx.SourcePubKey, asset), amount, topoheight); err != nil {
				return nil, 0, err
			}
		}
		return nil, 0, nil

	case consensustypes.KindMultiSigChange:
		if tx.MultisigChange == nil {
			return nil, 0, cerrors.Newf(cerrors.InvalidValue, "multisig-change transaction missing payload")
		}
		if err := ws.debit(NewAccountKey(tx.SourcePubKey, nativeAsset), tx.Fee, topoheight); err != nil {
			return nil, 0, err
		}
		ws.multisigs[tx.SourcePubKey] = &MultisigConfig{
			Threshold:    tx.MultisigChange.Threshold,
			Participants: tx.MultisigChange.Participants,
		}
		return nil, 0, nil

	case consensustypes.KindDeployContract:
		if tx.Deploy == nil {
			return nil, 0, cerrors.Newf(cerrors.InvalidValue, "deploy transaction missing payload")
		}
		if err := ws.debit(NewAccountKey(tx.SourcePubKey, nativeAsset), tx.Fee, topoheight); err != nil {
			return nil, 0, err
		}
		contractHash := daghash.HashData(tx.Deploy.Bytecode)
		if existing, ok := ws.Contract(contractHash); ok && existing.Deployed {
			return nil, 0, cerrors.New(cerrors.ContractAlreadyExists)
		}
		ws.contracts[contractHash] = ContractRecord{Bytecode: tx.Deploy.Bytecode, Deployed: true, Topoheight: topoheight}
		return nil, 0, nil

	case consensustypes.KindInvokeContract:
		if tx.Invoke == nil {
			return nil, 0, cerrors.Newf(cerrors.InvalidValue, "invoke transaction missing payload")
		}
		for _, d := range tx.Invoke.Deposits {
			totalDebit[d.Asset] += d.Amount
		}
		for asset, amount := range totalDebit {
			if err := ws.debit(NewAccountKey(tx.SourcePubKey, asset), amount, topoheight); err != nil {
				return nil, 0, err
			}
		}
		if _, ok := ws.Contract(tx.Invoke.Contract); !ok {
			return nil, 0, cerrors.New(cerrors.ContractNotFound)
		}
		if e.runner == nil {
			return nil, 0, errors.New("invoke transaction requires a ContractRunner")
		}
		gasUsed, events, err := e.runner.Invoke(ws, tx.Invoke.Contract, tx.Invoke.ChunkID, tx.Invoke.Input, tx.Invoke.MaxGas)
		if err != nil {
			return nil, 0, err
		}
		if gasUsed > tx.Invoke.MaxGas {
			gasUsed = tx.Invoke.MaxGas
		}
		refund := tx.Invoke.MaxGas - gasUsed
		if refund > 0 {
			if err := ws.credit(NewAccountKey(tx.SourcePubKey, nativeAsset), refund, topoheight); err != nil {
				return nil, 0, err
			}
		}
		return events, gasUsed, nil

	default:
		return nil, 0, cerrors.Newf(cerrors.InvalidValue, "unknown transaction kind %d", tx.Kind)
	}
}
