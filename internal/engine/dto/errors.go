package dto

import "errors"

// Error taxonomy of the engine. Per-symbol errors are isolated: one symbol's
// failure never aborts processing of the remaining universe.
var (
	// ErrMissingColumns indicates a required OHLCV field carries no value.
	ErrMissingColumns = errors.New("missing required OHLCV columns")

	// ErrInsufficientHistory indicates the bar series is below the minimum length.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrInsufficientData indicates a learning step lacks the rows it needs;
	// callers fall back to the previous or default parameters.
	ErrInsufficientData = errors.New("insufficient data for learning")

	// ErrCorruptState indicates previously persisted state is unreadable and
	// was reset to a fresh record.
	ErrCorruptState = errors.New("corrupt persisted state")

	// ErrZeroSignal indicates the weight tuner found no positive correlation
	// mass; the previous weights remain authoritative.
	ErrZeroSignal = errors.New("zero signal contribution")

	// ErrEmptyResult indicates a valid terminal state with no qualifying rows.
	ErrEmptyResult = errors.New("empty result set")
)
