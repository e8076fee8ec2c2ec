package state

import "github.com/tos-network/tosd/consensustypes"

// footprint returns the set of (pubkey, asset) slots a V2+ transaction
// declares as writable via its account_keys (spec §3 account_keys, §4.D.2
// step 1).
func footprint(tx *consensustypes.Transaction) map[AccountKey]bool {
	keys := make(map[AccountKey]bool, len(tx.AccountKeys))
	for _, k := range tx.AccountKeys {
		if k.IsWritable {
			keys[NewAccountKey(k.PubKey, k.Asset)] = true
		}
	}
	return keys
}

// supportsBatching reports whether every transaction in txs declares
// account_keys, the precondition for V2+ parallel batching (spec §4.D.2
// step 1: "If the block version ≥ 2 and all transactions carry
// account_keys").
func supportsBatching(version uint8, txs []*consensustypes.Transaction) bool {
	if version < 2 {
		return false
	}
	for _, tx := range txs {
		if len(tx.AccountKeys) == 0 {
			return false
		}
	}
	return true
}

// partitionBatches groups txs into batches such that within a batch no two
// transactions share a writable account key (spec §4.D.2 step 1). Each
// transaction joins the earliest batch after the last one holding a
// transaction it conflicts with, so conflicting transactions keep their
// declared order across batches; order within a batch is free. For pre-V2
// blocks it returns one batch containing every transaction in declared
// order.
func partitionBatches(version uint8, txs []*consensustypes.Transaction) [][]*consensustypes.Transaction {
	if !supportsBatching(version, txs) {
		return [][]*consensustypes.Transaction{txs}
	}

	var batches [][]*consensustypes.Transaction
	var batchFootprints []map[AccountKey]bool

	for _, tx := range txs {
		fp := footprint(tx)
		target := 0
		for i, used := range batchFootprints {
			if overlaps(used, fp) {
				target = i + 1
			}
		}
		if target == len(batches) {
			batches = append(batches, []*consensustypes.Transaction{tx})
			batchFootprints = append(batchFootprints, fp)
			continue
		}
		batches[target] = append(batches[target], tx)
		for k := range fp {
			batchFootprints[target][k] = true
		}
	}
	return batches
}

func overlaps(a, b map[AccountKey]bool) bool {
	small, big := a, b
	if len(small) > len(big) {
		small, big = big, small
	}
	for k := range small {
		if big[k] {
			return true
		}
	}
	return false
}
