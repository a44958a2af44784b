// Package fields pulls the PAN, Aadhar, name and date of birth out of the raw
// text of an identity document.
//
// Extraction is layered: identifiers come from patterns, names and dates come
// from a named-entity recognizer, and when the recognizer finds no usable
// name a line-proximity heuristic looks for the line next to a "Name" or
// "DOB" label.
package fields

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"kyccheck/internal/logger"
	"kyccheck/internal/ner"
	"kyccheck/pkg/models"
)

// Extractor turns document text into models.ExtractedFields.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	recognizer ner.Recognizer
	rules      compiledRules
	log        zerolog.Logger
}

// NewExtractor creates an Extractor backed by recognizer.
func NewExtractor(recognizer ner.Recognizer, rules Rules) (*Extractor, error) {
	const op = "NewExtractor"

	if recognizer == nil {
		return nil, WrapExtractionError(op, ErrMissingRecognizer, "")
	}
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		recognizer: recognizer,
		rules:      compiled,
		log:        logger.WithComponent("fields"),
	}, nil
}

// ExtractFields extracts the four KYC fields from text. Fields that cannot be
// found are nil. An empty text yields empty fields without consulting the
// recognizer. Recognizer failures are returned as errors.
func (e *Extractor) ExtractFields(ctx context.Context, text string) (models.ExtractedFields, error) {
	const op = "ExtractFields"

	var fields models.ExtractedFields
	if text == "" {
		return fields, nil
	}

	fields.PANNumber = models.StringPtr(e.rules.pan.FindString(text))
	fields.AadharNumber = models.StringPtr(e.rules.aadhar.FindString(text))

	entities, err := e.recognizer.Recognize(ctx, text)
	if err != nil {
		return models.ExtractedFields{}, WrapExtractionError(op, err, fmt.Sprintf("entity recognition via %s", e.recognizer.Name()))
	}

	names, dates := e.candidatesFromEntities(entities)
	source := "entities"
	if len(names) == 0 {
		if name, ok := e.fallbackName(text); ok {
			names = append(names, name)
			source = "fallback"
		}
	}

	if len(names) > 0 {
		fields.Name = models.StringPtr(names[0])
	}
	if len(dates) > 0 {
		fields.DOB = models.StringPtr(dates[0])
	}

	e.log.Debug().
		Int("entities", len(entities)).
		Int("name_candidates", len(names)).
		Int("dob_candidates", len(dates)).
		Str("name_source", source).
		Bool("pan_found", fields.PANNumber != nil).
		Bool("aadhar_found", fields.AadharNumber != nil).
		Msg("Fields extracted")

	return fields, nil
}

func (e *Extractor) candidatesFromEntities(entities []ner.Entity) (names, dates []string) {
	for _, ent := range entities {
		switch ent.Label {
		case ner.LabelPerson:
			// single-token persons are too often OCR noise
			if len(strings.Fields(ent.Text)) > 1 {
				names = append(names, strings.ReplaceAll(strings.TrimSpace(ent.Text), "\n", " "))
			}
		case ner.LabelDate:
			if m := e.rules.dob.FindString(ent.Text); m != "" {
				dates = append(dates, m)
			}
		}
	}
	return names, dates
}

// fallbackName scans the non-empty lines of text and returns the first line
// accepted by either label heuristic.
func (e *Extractor) fallbackName(text string) (string, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	for i, line := range lines {
		// PAN layout: the name sits on the line after its label
		if containsAny(line, e.rules.NameLabels) && i+1 < len(lines) {
			return lines[i+1], true
		}

		// Aadhar layout: the name sits on the line before the DOB label
		if containsAny(line, e.rules.DOBLabels) && i > 0 {
			prev := lines[i-1]
			if e.plausibleName(prev) {
				return prev, true
			}
		}
	}
	return "", false
}

func (e *Extractor) plausibleName(line string) bool {
	n := len(strings.Fields(line))
	if n <= e.rules.MinNameTokens || n >= e.rules.MaxNameTokens {
		return false
	}
	return strings.IndexFunc(line, unicode.IsDigit) < 0
}

func containsAny(s string, labels []string) bool {
	for _, label := range labels {
		if label != "" && strings.Contains(s, label) {
			return true
		}
	}
	return false
}
