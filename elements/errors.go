package elements

import "errors"

// Error taxonomy shared by the movers and the velocity sources. Callers
// classify failures with errors.Is; messages carry the offending value.
var (
	// ErrInvalidArgument marks a malformed configuration value, such as a
	// reference point that is not three numeric components or an element
	// kind outside the recognized set.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrData marks malformed or empty time-dependent source data.
	ErrData = errors.New("bad source data")

	// ErrArrayMismatch marks an element/displacement array shape mismatch.
	ErrArrayMismatch = errors.New("array mismatch")
)
