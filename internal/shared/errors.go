package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidStatus indicates a state transition that is not allowed.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidInput indicates a caller error in request parameters.
	ErrInvalidInput = errors.New("invalid input")
)

// UserSafeMessage returns a message that can be exposed to API clients.
// Wrapped internals are stripped; only known sentinel errors pass through.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "resource not found"
	case errors.Is(err, ErrAlreadyExists):
		return "resource already exists"
	case errors.Is(err, ErrInvalidStatus):
		return "operation not allowed in current status"
	case errors.Is(err, ErrInvalidInput):
		return "invalid request"
	default:
		return "internal error"
	}
}
