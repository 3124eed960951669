package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	// ErrNoImage means the provider answered but no inline image payload
	// was present in any candidate part.
	ErrNoImage = errors.New("provider: response contains no image")
	// ErrBlocked means the prompt was rejected by the provider's safety
	// filters despite the relaxed settings we send.
	ErrBlocked      = errors.New("provider: prompt blocked by safety filter")
	ErrUnauthorized = errors.New("provider: invalid or missing API key")
	ErrRateLimited  = errors.New("provider: rate limited by server")
	ErrBadRequest   = errors.New("provider: bad request")
	ErrServer       = errors.New("provider: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op    string // Operation: "generate"
	Model string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s [%s]: %v", e.Op, e.Model, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, model string, err error) error {
	return &Error{
		Op:    op,
		Model: model,
		Err:   err,
	}
}
