package domain

import "errors"

var (
	// ErrNoModelAvailable signals that the provider returned no usable model.
	// It is not a failure: the burn is skipped without a warning.
	ErrNoModelAvailable = errors.New("no models available")
	// ErrProviderError signals a model provider failure (listing, send or stream).
	ErrProviderError = errors.New("model provider error")
	// ErrInvalidInterval signals an interval that is not an integer in [1, MaxIntervalMinutes].
	ErrInvalidInterval = errors.New("Please enter a number >= 1") //nolint:staticcheck,revive // shown verbatim as inline validation message
	// ErrStoreUnavailable signals a persistent store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrClosed signals an operation on a torn-down engine.
	ErrClosed = errors.New("engine closed")
)
