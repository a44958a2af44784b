package models

// Check statuses for a single compared field.
const (
	StatusMatch       = "MATCH"
	StatusMismatch    = "MISMATCH"
	StatusMissingData = "MISSING_DATA"
	StatusNotChecked  = "NOT_CHECKED"
)

// Aggregate report statuses.
const (
	ReportPassed = "PASSED"
	ReportFailed = "FAILED"
)

// ExtractedFields holds the structured fields pulled from one document.
// A nil pointer means the field was not found; it is never an empty string.
type ExtractedFields struct {
	PANNumber    *string `json:"pan_number"`
	AadharNumber *string `json:"aadhar_number"`
	Name         *string `json:"name"`
	DOB          *string `json:"dob"`
}

// FieldCheck is the comparison result for one field across both documents.
type FieldCheck struct {
	Status     string  `json:"status"`
	Doc1       *string `json:"doc1"`
	Doc2       *string `json:"doc2"`
	Similarity *int    `json:"similarity,omitempty"` // name check only, 0..100
}

// FraudReport is the aggregate verdict over the name and dob checks.
type FraudReport struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	Issues    []string   `json:"issues"`
	NameCheck FieldCheck `json:"name_check"`
	DOBCheck  FieldCheck `json:"dob_check"`
}

// DocumentPair carries one value per uploaded document.
type DocumentPair[T any] struct {
	Doc1 T `json:"doc1"`
	Doc2 T `json:"doc2"`
}

// KYCResponse is the full result returned for a check request.
type KYCResponse struct {
	FraudReport
	ExtractedData DocumentPair[ExtractedFields] `json:"extracted_data"`
	DebugRawText  DocumentPair[string]          `json:"debug_raw_text"`
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences p, treating nil as the empty string.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
