package ghostdag

import "github.com/pkg/errors"

// Sentinel errors surfaced by the GHOSTDAG engine (spec §7 Consensus
// taxonomy), grounded on the teacher's use of github.com/pkg/errors for
// typed, wrapped failures throughout blockdag/ghostdag.go.
var (
	// ErrNoParents is returned when a block has no parents and is not
	// the genesis block.
	ErrNoParents = errors.New("block has no parents")

	// ErrDuplicateParent is returned when a block lists the same parent
	// hash more than once.
	ErrDuplicateParent = errors.New("duplicate parent in block")

	// ErrZeroTarget is returned when a block (or one of its mergeset
	// blues) declares a zero proof-of-work target, which would imply
	// infinite work.
	ErrZeroTarget = errors.New("zero target implies infinite work")

	// ErrOverflow reports blue-work accumulation out of the 256-bit work
	// domain. Compute does not return it: blue work is accumulated with
	// addWorkSaturating, which clamps at 2^256-1 instead.
	ErrOverflow = errors.New("ghostdag overflow: blue work accumulation out of range")
)

// MissingParentError reports that ghostdag.Compute needs a parent's
// GHOSTDAG data or reachability record and it isn't present yet.
type MissingParentError struct {
	Parent string
}

func (e *MissingParentError) Error() string {
	return "missing ghostdag/reachability data for parent " + e.Parent
}
