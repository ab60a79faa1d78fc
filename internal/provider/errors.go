package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures so screens can render them inline
// without inspecting backend-specific error types.
type ErrorKind int

const (
	// ErrNotFound: the named secret does not exist.
	ErrNotFound ErrorKind = iota
	// ErrAccessDenied: the caller lacks permission.
	ErrAccessDenied
	// ErrMalformed: the stored content is not a flat object.
	ErrMalformed
	// ErrValidation: a key or value violates the backend's syntax rules.
	ErrValidation
	// ErrConfig: a required selector is missing; raised before any I/O.
	ErrConfig
	// ErrTransport: network or backend failure.
	ErrTransport
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotFound:
		return "not found"
	case ErrAccessDenied:
		return "access denied"
	case ErrMalformed:
		return "malformed"
	case ErrValidation:
		return "validation"
	case ErrConfig:
		return "configuration"
	default:
		return "transport"
	}
}

// Error wraps a backend failure with its classification and, when known,
// the secret name involved.
type Error struct {
	Kind ErrorKind
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or ErrTransport for errors that
// did not come from a provider.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrTransport
}
