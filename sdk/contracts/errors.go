package contracts

import "errors"

// Error definitions for instrument triggering and sequence handling issues.
var (
	// ErrNotInitialized is returned when a trigger arrives before the audio
	// output has been started. The caller must call Start first, typically
	// gated on a user gesture.
	ErrNotInitialized = errors.New("audio output not initialized")

	// ErrInvalidIndex is returned when a note index is outside the registry.
	ErrInvalidIndex = errors.New("invalid note index")

	// ErrPolyphonyExceeded is returned when voice admission is denied because
	// the maximum number of concurrent voices is already sounding. The trigger
	// is dropped; it is not a fatal condition.
	ErrPolyphonyExceeded = errors.New("polyphony limit exceeded")

	// ErrSynthesisFailure is returned when a voice could not be constructed or
	// scheduled. One failed voice does not affect voices already sounding.
	ErrSynthesisFailure = errors.New("voice synthesis failed")

	// ErrInvalidSequence is returned when imported sequence data is malformed.
	// Imports are atomic: a single bad record rejects the whole sequence.
	ErrInvalidSequence = errors.New("invalid recorded sequence")

	// ErrInvalidState is returned when a recorder operation is attempted from
	// a state that does not permit it, e.g. Play while recording.
	ErrInvalidState = errors.New("operation not permitted in current recorder state")

	// ErrUnknownOutput is returned when the configured audio output name has
	// no registered backend.
	ErrUnknownOutput = errors.New("unknown audio output")
)
