package ner

import (
	"errors"
	"fmt"
)

// Common entity recognition errors
var (
	// ErrMissingCredentials is returned when the selected backend has no API key
	// or Google Cloud credentials configured.
	ErrMissingCredentials = errors.New("missing entity recognizer credentials")

	// ErrInvalidConfiguration is returned when required backend settings are absent.
	ErrInvalidConfiguration = errors.New("invalid entity recognizer configuration")

	// ErrRecognitionFailed is returned when the backend call itself fails.
	ErrRecognitionFailed = errors.New("entity recognition failed")

	// ErrInvalidResponse is returned when the backend answers with output that
	// cannot be parsed or does not satisfy the entity schema.
	ErrInvalidResponse = errors.New("invalid entity recognizer response")

	// ErrQuotaExceeded is returned when the backend reports quota exhaustion.
	ErrQuotaExceeded = errors.New("entity recognizer quota exceeded")
)

// RecognizerError wraps errors with the backend and operation that produced them.
type RecognizerError struct {
	// Op is the operation that failed (e.g., "Recognize", "NewOpenAIRecognizer").
	Op string

	// Backend names the recognizer implementation (openai, gemini, documentai).
	Backend string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *RecognizerError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ner(%s): %s failed: %s: %v", e.Backend, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ner(%s): %s failed: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RecognizerError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *RecognizerError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapRecognizerError wraps an error as a RecognizerError if it isn't already one.
func WrapRecognizerError(backend, op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var recErr *RecognizerError
	if errors.As(err, &recErr) {
		return err
	}

	return &RecognizerError{
		Op:      op,
		Backend: backend,
		Err:     err,
		Details: details,
	}
}
