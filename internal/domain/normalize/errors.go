package normalize

import (
	"errors"
)

// ErrValidation is the kind of every error returned by this package.
var ErrValidation = errors.New("invalid report batch")

// ValidationError identifies the first structural defect of a batch.
type ValidationError struct {
	// Path locates the offending value, e.g. "reports[2].categories".
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Path + " " + e.Reason
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(path, reason string) error {
	return &ValidationError{Path: path, Reason: reason}
}
