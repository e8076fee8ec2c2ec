package txvalidate

import (
	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
)

// ValidateReferenceFreshness implements spec §4.F "Reference freshness":
// reference.topoheight must lie within a bounded window behind the
// current tip, and can never be ahead of it. ReferenceStaleWindow of
// zero means unbounded (no staleness check), matching the convention
// consensustypes.Params uses elsewhere for an unset/unbounded knob.
func ValidateReferenceFreshness(tx *consensustypes.Transaction, currentTopoheight uint64, params consensustypes.Params) error {
	if tx.Reference.Topoheight > currentTopoheight {
		return cerrors.New(cerrors.BlockNotFound)
	}
	if params.ReferenceStaleWindow == 0 {
		return nil
	}
	if currentTopoheight-tx.Reference.Topoheight > params.ReferenceStaleWindow {
		return cerrors.New(cerrors.ReferenceTooOld)
	}
	return nil
}
