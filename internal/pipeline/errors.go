package pipeline

import (
	"errors"
	"fmt"

	"kyccheck/internal/textextract"
)

// ErrUnreadableDocument is returned when no text could be read from a document.
var ErrUnreadableDocument = errors.New("could not read text from document")

// ErrExtractorPanic is returned when the field extractor panics.
var ErrExtractorPanic = errors.New("field extractor panicked")

// CheckError wraps errors with the pipeline step and document that produced them.
type CheckError struct {
	// Op is the step that failed (e.g., "AcquireText", "ExtractFields").
	Op string

	// Document names the document involved ("doc1", "doc2").
	Document string

	// Outcome is the text acquisition outcome, when relevant.
	Outcome textextract.Outcome

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	if e.Outcome != "" {
		return fmt.Sprintf("pipeline: %s failed for %s (%s): %v", e.Op, e.Document, e.Outcome, e.Err)
	}
	return fmt.Sprintf("pipeline: %s failed for %s: %v", e.Op, e.Document, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *CheckError) Unwrap() error {
	return e.Err
}

func unreadable(name string, res textextract.Result) error {
	return &CheckError{
		Op:       "AcquireText",
		Document: name,
		Outcome:  res.Outcome,
		Err:      ErrUnreadableDocument,
	}
}
