package scenarist

import "errors"

var (
	// ErrInvalidUpdate indicates an update without a recognized payload.
	ErrInvalidUpdate = errors.New("scenarist: invalid update")
	// ErrNoScenarios indicates a bot constructed without scenarios.
	ErrNoScenarios = errors.New("scenarist: no scenarios registered")
)
