package ragerr

import "errors"

var (
	// ErrInvalidConfig marks caller errors: bad chunking parameters,
	// unsupported or unparseable documents. Not retried.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrProviderUnavailable marks transient network or service failures
	// against an embedding/LLM provider. Retried with bounded backoff.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrRateLimited is returned when the provider throttles us. Retried
	// after a delay, bounded attempts.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid means the API key is missing or rejected. Fatal for
	// the session until corrected, never retried.
	ErrAuthInvalid = errors.New("invalid api key")

	// ErrDimensionMismatch means a vector disagrees with the index's
	// established dimensionality. Programming/config error, not retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrBusy is returned when a session already has a completion in flight.
	ErrBusy = errors.New("session busy")

	ErrSessionNotFound = errors.New("session not found")
)

func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrRateLimited)
}

func IsAuthInvalid(err error) bool {
	return errors.Is(err, ErrAuthInvalid)
}

func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
