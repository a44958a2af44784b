// Package kyc cross-checks the fields extracted from two identity documents
// and produces the fraud report.
package kyc

import (
	"fmt"
	"strings"

	"kyccheck/pkg/models"
)

// DefaultThreshold is the minimum TokenSortRatio at which two names match.
const DefaultThreshold = 80

// Report messages.
const (
	MessageConsistent = "Details are consistent."
	MessageFailed     = "Fraud check FAILED. Mismatched details found."
)

// Checker compares extracted fields. The zero value is not usable; create one
// with NewChecker. A Checker is immutable and safe for concurrent use.
type Checker struct {
	threshold int
}

// NewChecker returns a Checker using threshold for name similarity.
// A threshold outside 1..100 falls back to DefaultThreshold.
func NewChecker(threshold int) *Checker {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Checker{threshold: threshold}
}

// Threshold returns the name similarity threshold in use.
func (c *Checker) Threshold() int { return c.threshold }

// Compare checks the name and date of birth of doc1 against doc2.
// The report fails if and only if at least one field mismatches; missing
// fields never fail it. Issues are listed name first, then dob.
func (c *Checker) Compare(doc1, doc2 models.ExtractedFields) models.FraudReport {
	report := models.FraudReport{
		Status:    models.ReportPassed,
		Message:   MessageConsistent,
		Issues:    []string{},
		NameCheck: c.compareNames(doc1.Name, doc2.Name),
		DOBCheck:  compareDOB(doc1.DOB, doc2.DOB),
	}

	if report.NameCheck.Status == models.StatusMismatch {
		report.Issues = append(report.Issues, fmt.Sprintf("Name mismatch (Similarity: %d%%)", *report.NameCheck.Similarity))
	}
	if report.DOBCheck.Status == models.StatusMismatch {
		report.Issues = append(report.Issues, "DOB mismatch")
	}

	if len(report.Issues) > 0 {
		report.Status = models.ReportFailed
		report.Message = MessageFailed
	}
	return report
}

func (c *Checker) compareNames(name1, name2 *string) models.FieldCheck {
	similarity := 0
	check := models.FieldCheck{
		Status:     models.StatusMissingData,
		Doc1:       name1,
		Doc2:       name2,
		Similarity: &similarity,
	}
	if name1 == nil || name2 == nil || *name1 == "" || *name2 == "" {
		return check
	}

	similarity = TokenSortRatio(*name1, *name2)
	if similarity < c.threshold {
		check.Status = models.StatusMismatch
	} else {
		check.Status = models.StatusMatch
	}
	return check
}

func compareDOB(dob1, dob2 *string) models.FieldCheck {
	check := models.FieldCheck{
		Status: models.StatusMissingData,
		Doc1:   dob1,
		Doc2:   dob2,
	}
	if dob1 == nil || dob2 == nil || *dob1 == "" || *dob2 == "" {
		return check
	}

	if normalizeDate(*dob1) == normalizeDate(*dob2) {
		check.Status = models.StatusMatch
	} else {
		check.Status = models.StatusMismatch
	}
	return check
}

// normalizeDate treats DD-MM-YYYY and DD/MM/YYYY as the same date.
func normalizeDate(s string) string {
	return strings.ReplaceAll(s, "-", "/")
}
