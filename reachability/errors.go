package reachability

import (
	"errors"
	"fmt"

	"github.com/tos-network/tosd/daghash"
)

// DataMissingError is returned when an operation references a block whose
// reachability record has not been inserted. Per spec §4.A this is fatal
// for the block being inserted — the engine must not silently accept
// blocks with unresolved ancestry.
type DataMissingError struct {
	Hash daghash.Hash
}

func (e *DataMissingError) Error() string {
	return fmt.Sprintf("reachability data missing for block %s", e.Hash)
}

// ErrReachabilityDataMissing wraps hash into a *DataMissingError.
func ErrReachabilityDataMissing(hash daghash.Hash) error {
	return &DataMissingError{Hash: hash}
}

// IsDataMissing reports whether err is (or wraps) a *DataMissingError.
func IsDataMissing(err error) bool {
	var target *DataMissingError
	return errors.As(err, &target)
}
