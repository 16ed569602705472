package routing

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	// ErrNoMatch reports that a request path satisfied no inbound entry.
	// It is a normal negative result, not a failure.
	ErrNoMatch = errors.New("no matching route")

	// ErrLinkNotFound reports that no outbound entry was eligible for a
	// link-generation request.
	ErrLinkNotFound = errors.New("no route matches the supplied link values")

	// ErrAmbiguousLink reports that more than one outbound entry was
	// eligible with identical order and precedence.
	ErrAmbiguousLink = errors.New("ambiguous link generation")
)

// BuildError describes why a single endpoint was rejected during an
// entry-table rebuild.
type BuildError struct {
	Endpoint string
	Template string
	Cause    error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("endpoint %q template %q: %v", e.Endpoint, e.Template, e.Cause)
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *BuildError) Is(target error) bool {
	_, ok := target.(*BuildError)
	return ok || errors.Is(e.Cause, target)
}
