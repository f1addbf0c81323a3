package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the recoverable conditions the engine signals.
var (
	// ErrContractNotFound is returned when a contract lookup misses
	ErrContractNotFound = errors.New("contract not found")

	// ErrContractMisconfigured is returned when a contract lacks a price
	// component its metering type requires
	ErrContractMisconfigured = errors.New("contract is missing a required price component")

	// ErrInvalidConsumption is returned for non-positive consumption or
	// consumption outside the contract's yearly limits. The engine never
	// silently clamps; the caller decides whether to clamp or reject.
	ErrInvalidConsumption = errors.New("consumption is invalid for this contract")

	// ErrMissingPriceInput is returned when a heating cost comparison is
	// attempted without a usable energy price. Reporting free heat instead
	// would be worse than failing.
	ErrMissingPriceInput = errors.New("no energy price available for heating cost")

	// ErrInsufficientData is returned when analytics are requested over a
	// window with fewer data points than the request needs
	ErrInsufficientData = errors.New("not enough price data for the requested window")
)

// ValidationError reports malformed input, naming the offending field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
