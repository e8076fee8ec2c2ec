// Package txvalidate implements spec §4.F's transaction validation
// extras: chain-id gating, reference freshness, multisig threshold
// verification, and private-transfer transcript binding. Grounded on
// blockdag/validate.go's composition style — small, independently named
// context-free and contextual checks rather than one monolithic
// function — generalized from UTXO/script validation to the spec's
// account/nonce transaction model.
package txvalidate

import (
	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
)

// ValidateChainID implements spec §4.F "Chain-ID": a transaction from
// one network never validates on another. Before
// params.ChainIDActivationTopoheight, chain_id is not yet a meaningful
// field (spec §9 open question: "older transaction versions omit
// chain_id ... implementations must accept a configured mix during the
// activation epoch but never outside it") so any value is accepted;
// from the activation point on, it must match exactly.
func ValidateChainID(tx *consensustypes.Transaction, params consensustypes.Params, currentTopoheight uint64) error {
	if currentTopoheight < params.ChainIDActivationTopoheight {
		return nil
	}
	if tx.ChainID != params.ChainID {
		return cerrors.New(cerrors.WrongChainId)
	}
	return nil
}
