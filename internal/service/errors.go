package service

import "errors"

// ErrCodeSpaceExhausted is returned when the generate-and-insert loop runs
// out of attempts without finding a free invite code. At the configured code
// length this means the code space is effectively full.
var ErrCodeSpaceExhausted = errors.New("could not allocate a free invite code")

// ValidationError reports a rejected mutation request. The request never
// reached the store; nothing was persisted and nothing was broadcast.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid event: " + e.Reason
}
