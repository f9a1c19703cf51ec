package forecast

import "errors"

var (
	// ErrModelNotReady is returned by Service before a model has been
	// installed, and forever after a failed load. Callers may retry later.
	ErrModelNotReady = errors.New("forecast model not ready")

	// ErrInvalidInput marks malformed dates or feature rows rejected before
	// they reach the model.
	ErrInvalidInput = errors.New("invalid forecast input")
)
