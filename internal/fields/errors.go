package fields

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRule is returned when an extraction rule cannot be compiled.
	ErrInvalidRule = errors.New("invalid extraction rule")

	// ErrMissingRecognizer is returned when no entity recognizer is supplied.
	ErrMissingRecognizer = errors.New("entity recognizer is required")
)

// ExtractionError wraps errors with the extraction step that produced them.
type ExtractionError struct {
	Op      string
	Err     error
	Details string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("fields: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("fields: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// WrapExtractionError wraps an error as an ExtractionError if it isn't already one.
func WrapExtractionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return err
	}

	return &ExtractionError{Op: op, Err: err, Details: details}
}
