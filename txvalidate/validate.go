package txvalidate

import (
	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/state"
)

// Collaborators bundles the external hooks ValidateTransaction needs,
// mirroring blockdag's pattern of passing a UTXOSet/SigCache alongside
// the transaction rather than reaching for package-level globals.
type Collaborators struct {
	Signature SignatureVerifier
	ZK        ZKVerifier
}

// ValidateTransaction runs spec §4.F's extras against tx in the order a
// cheap rejection should come first: chain-id, then reference
// freshness, then (if applicable) multisig threshold, then (if
// applicable) the private-transfer transcript/proof check. config is
// the source account's multisig policy, nil if it has none.
func ValidateTransaction(tx *consensustypes.Transaction, params consensustypes.Params, currentTopoheight uint64, config *state.MultisigConfig, collab Collaborators) error {
	if err := ValidateChainID(tx, params, currentTopoheight); err != nil {
		return err
	}
	if err := ValidateReferenceFreshness(tx, currentTopoheight, params); err != nil {
		return err
	}
	if config != nil {
		if err := ValidateMultisig(tx, config, collab.Signature); err != nil {
			return err
		}
	}
	switch tx.Kind {
	case consensustypes.KindUnoTransfers, consensustypes.KindShield, consensustypes.KindUnshield:
		return ValidatePrivateTransfer(tx, collab.ZK)
	}
	return nil
}
