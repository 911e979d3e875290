package trade

import "errors"

var (
	// ErrConfiguration means the pair symbol cannot be resolved against the
	// registry, or neither leg of a record belongs to the pair's base asset.
	ErrConfiguration = errors.New("trade: configuration error")
	// ErrLookup means an asset id stored on a trade is absent from the registry.
	ErrLookup = errors.New("trade: asset lookup failed")
	// ErrDivisionByZero is returned by price accessors when the denominator leg is zero.
	ErrDivisionByZero = errors.New("trade: division by zero")
	// ErrMalformedRecord means a raw amount is not a non-negative decimal integer.
	ErrMalformedRecord = errors.New("trade: malformed record")
)
