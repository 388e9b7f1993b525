// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so provider failures can be turned into readable
// result messages while keeping the underlying cause available for logging.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ProviderUnavailable indicates a provider is missing credentials or configuration.
	ProviderUnavailable Kind = "provider_unavailable"
	// RequestFailed indicates the call to a provider backend did not complete.
	RequestFailed Kind = "request_failed"
	// BadResponse indicates a backend answered with something that could not be used.
	BadResponse Kind = "bad_response"
	// ProviderPanic indicates a provider panicked while serving a task.
	ProviderPanic Kind = "provider_panic"
	// InvalidTask indicates a task is missing required inputs.
	InvalidTask Kind = "invalid_task"
	// InvalidConfig indicates a configuration value is out of range.
	InvalidConfig Kind = "invalid_config"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
