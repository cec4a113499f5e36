package domain

import "errors"

// Engine error taxonomy. Handlers map these to HTTP status codes;
// everything else wraps one of these with fmt.Errorf("...: %w", err).
var (
	// ErrInsufficientData - too few price points for a requested computation.
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrEmptySeries - a ticker's series has fewer than 2 observations.
	ErrEmptySeries = errors.New("price series too short")

	// ErrMisalignedSeries - the inner join of the ticker series is empty.
	ErrMisalignedSeries = errors.New("price series share no common dates")

	// ErrInvalidQuantity - a ledger mutation with a negative quantity.
	ErrInvalidQuantity = errors.New("quantity must be a non-negative integer")

	// ErrDataUnavailable - the price loader has no data for a ticker/range.
	ErrDataUnavailable = errors.New("price data unavailable")

	// ErrDimensionMismatch - weight vector and estimates cover different tickers.
	ErrDimensionMismatch = errors.New("ticker sets do not match")
)
