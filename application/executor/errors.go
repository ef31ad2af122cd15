package executor

import "errors"

// Malformed actions. These fail immediately and are never retried.
var (
	ErrMissingSelector = errors.New("no selector provided for action")
	ErrMissingURL      = errors.New("no url provided for navigation")
	ErrUnknownAction   = errors.New("unknown action type")
)

// Transient conditions, retried until the attempt budget runs out.
var (
	ErrNotFound        = errors.New("no elements found for selector")
	ErrNotInteractable = errors.New("element is not interactable (disabled or hidden)")
)

// IsRetryable - reports whether an execution error deserves another attempt
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrMissingSelector),
		errors.Is(err, ErrMissingURL),
		errors.Is(err, ErrUnknownAction):
		return false
	}
	return true
}
