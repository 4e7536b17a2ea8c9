package workflow

import "errors"

// Sentinel errors classifying every failure the engine can surface. Callers
// wrap these with fmt.Errorf("...: %w", Err...) to add context; transport
// layers map them to status codes with errors.Is.
var (
	// ErrNotFound is returned when a referenced entity does not exist or has
	// been soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when an operation is illegal for the
	// request's current state or its payload violates a domain constraint.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is returned when the acting user lacks authorization for
	// the attempted operation.
	ErrForbidden = errors.New("forbidden")
)

// IsDomainError reports whether err belongs to the workflow error taxonomy.
// Anything else reaching the boundary is treated as an internal failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrForbidden)
}
