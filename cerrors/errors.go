// Package cerrors is the shared typed-error taxonomy (spec §7): every
// failure mode the consensus core can surface is a distinct Code, not a
// bare string, so callers can switch on it (propagation policy differs by
// category — structural/crypto errors abort immediately, consensus errors
// flag the peer, state errors abort the block, scheduled-queue errors are
// user-observable return values, admission errors never mutate state).
package cerrors

import "fmt"

// Code is a taxonomy member from spec §7.
type Code int

// Structural.
const (
	InvalidSize Code = iota
	InvalidValue
	ExceedsMaxDepth
	ExceedsMaxArraySize
	ExceedsMaxMapSize

	// Crypto.
	BadSignature
	BadProof
	BadCommitment

	// Consensus.
	ReachabilityDataMissing
	BlockNotFound
	GhostdagOverflow
	InvalidTarget
	InvalidParent
	KClusterViolation

	// State.
	InvalidNonce
	InsufficientBalance
	AccountNotFound
	ContractNotFound
	ContractAlreadyExists
	Overflow

	// Admission.
	DuplicateTx
	ReferenceTooOld
	WrongChainId

	// Transaction validation extras (spec §4.F).
	MultisigThresholdNotMet

	// Scheduled-execution queue (spec §4.E).
	GasTooLow
	OfferTooLow
	TopoheightInPast
	TopoheightTooFar
	RateLimitExceeded
	AlreadyScheduled
	ScheduledExecutionNotFound
	NotAuthorized
	CannotCancel
)

var names = map[Code]string{
	InvalidSize:             "InvalidSize",
	InvalidValue:            "InvalidValue",
	ExceedsMaxDepth:         "ExceedsMaxDepth",
	ExceedsMaxArraySize:     "ExceedsMaxArraySize",
	ExceedsMaxMapSize:       "ExceedsMaxMapSize",
	BadSignature:            "BadSignature",
	BadProof:                "BadProof",
	BadCommitment:           "BadCommitment",
	ReachabilityDataMissing: "ReachabilityDataMissing",
	BlockNotFound:           "BlockNotFound",
	GhostdagOverflow:        "GhostdagOverflow",
	InvalidTarget:           "InvalidTarget",
	InvalidParent:           "InvalidParent",
	KClusterViolation:       "KClusterViolation",
	InvalidNonce:            "InvalidNonce",
	InsufficientBalance:     "InsufficientBalance",
	AccountNotFound:         "AccountNotFound",
	ContractNotFound:        "ContractNotFound",
	ContractAlreadyExists:   "ContractAlreadyExists",
	Overflow:                "Overflow",
	DuplicateTx:             "DuplicateTx",
	ReferenceTooOld:         "ReferenceTooOld",
	WrongChainId:            "WrongChainId",
	MultisigThresholdNotMet: "MultisigThresholdNotMet",
	GasTooLow:               "GasTooLow",
	OfferTooLow:             "OfferTooLow",
	TopoheightInPast:        "TopoheightInPast",
	TopoheightTooFar:        "TopoheightTooFar",
	RateLimitExceeded:       "RateLimitExceeded",
	AlreadyScheduled:        "AlreadyScheduled",
	ScheduledExecutionNotFound: "ScheduledExecutionNotFound",
	NotAuthorized:           "NotAuthorized",
	CannotCancel:            "CannotCancel",
}

func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is a typed consensus-core error: a stable Code plus structured
// detail fields used by the two parameterized variants (InvalidNonce,
// InsufficientBalance).
type Error struct {
	Code Code
	// Detail fields, populated only for the codes that carry them.
	ExpectedNonce, GotNonce   uint64
	NeededAmount, HaveAmount  uint64
	Message                   string
}

func (e *Error) Error() string {
	switch e.Code {
	case InvalidNonce:
		return fmt.Sprintf("invalid nonce: expected %d, got %d", e.ExpectedNonce, e.GotNonce)
	case InsufficientBalance:
		return fmt.Sprintf("insufficient balance: need %d, have %d", e.NeededAmount, e.HaveAmount)
	case InvalidValue:
		if e.Message != "" {
			return fmt.Sprintf("invalid value: %s", e.Message)
		}
		return "invalid value"
	default:
		if e.Message != "" {
			return fmt.Sprintf("%s: %s", e.Code, e.Message)
		}
		return e.Code.String()
	}
}

// New builds a plain *Error for a code with no detail fields.
func New(code Code) *Error {
	return &Error{Code: code}
}

// Newf builds an *Error carrying a free-form message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidNonce builds the InvalidNonce variant.
func NewInvalidNonce(expected, got uint64) *Error {
	return &Error{Code: InvalidNonce, ExpectedNonce: expected, GotNonce: got}
}

// NewInsufficientBalance builds the InsufficientBalance variant.
func NewInsufficientBalance(need, have uint64) *Error {
	return &Error{Code: InsufficientBalance, NeededAmount: need, HaveAmount: have}
}

// Is reports whether err is a *Error with the given code, for use with
// errors.Is-style call sites.
func Is(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}
