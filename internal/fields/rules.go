package fields

import (
	"fmt"
	"regexp"
)

// Default patterns for the identifiers found on Indian identity documents.
const (
	// DefaultPANPattern matches a PAN: five letters, four digits, one letter.
	DefaultPANPattern = `[A-Z]{5}[0-9]{4}[A-Z]{1}`

	// DefaultAadharPattern matches a 12 digit Aadhar number printed as three
	// space separated groups of four, the first digit being 2-9.
	DefaultAadharPattern = `[2-9]{1}[0-9]{3}\s[0-9]{4}\s[0-9]{4}`

	// DefaultDOBPattern extracts DD/MM/YYYY or DD-MM-YYYY from a DATE entity.
	DefaultDOBPattern = `(\d{2}/\d{2}/\d{4}|\d{2}-\d{2}-\d{4})`
)

// Rules holds the overridable constants used by the Extractor.
type Rules struct {
	PANPattern    string
	AadharPattern string
	DOBPattern    string

	// NameLabels mark the line preceding a name (PAN card layout).
	NameLabels []string

	// DOBLabels mark the line following a name (Aadhar card layout).
	// "fafa" is how Tesseract commonly reads the Hindi DOB label.
	DOBLabels []string

	// A line above a DOB label is accepted as a name only when its token count
	// is strictly between MinNameTokens and MaxNameTokens.
	MinNameTokens int
	MaxNameTokens int
}

// DefaultRules returns the stock extraction rules.
func DefaultRules() Rules {
	return Rules{
		PANPattern:    DefaultPANPattern,
		AadharPattern: DefaultAadharPattern,
		DOBPattern:    DefaultDOBPattern,
		NameLabels:    []string{"Name", "NAME"},
		DOBLabels:     []string{"DOB", "fafa"},
		MinNameTokens: 1,
		MaxNameTokens: 4,
	}
}

type compiledRules struct {
	Rules
	pan    *regexp.Regexp
	aadhar *regexp.Regexp
	dob    *regexp.Regexp
}

func compileRules(r Rules) (compiledRules, error) {
	const op = "compileRules"

	c := compiledRules{Rules: r}
	var err error
	if c.pan, err = regexp.Compile(r.PANPattern); err != nil {
		return c, WrapExtractionError(op, ErrInvalidRule, fmt.Sprintf("pan pattern: %v", err))
	}
	if c.aadhar, err = regexp.Compile(r.AadharPattern); err != nil {
		return c, WrapExtractionError(op, ErrInvalidRule, fmt.Sprintf("aadhar pattern: %v", err))
	}
	if c.dob, err = regexp.Compile(r.DOBPattern); err != nil {
		return c, WrapExtractionError(op, ErrInvalidRule, fmt.Sprintf("dob pattern: %v", err))
	}
	if r.MaxNameTokens <= r.MinNameTokens+1 {
		return c, WrapExtractionError(op, ErrInvalidRule, "name token bounds leave no accepted length")
	}
	return c, nil
}
