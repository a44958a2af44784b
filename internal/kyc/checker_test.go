package kyc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kyccheck/pkg/models"
)

func fields(name, dob string) models.ExtractedFields {
	return models.ExtractedFields{Name: models.StringPtr(name), DOB: models.StringPtr(dob)}
}

func TestTokenSortRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"John Smith", "smith john", 100},
		{"RAHUL KUMAR", "Rahul  Kumar.", 100},
		{"Rahul Kumar", "Rahul Kumarr", 96},
		{"Rahul Kumar", "Kumarr Rahul", 96},
		{"Rahul Kumar", "Rahul Kumar Rao", 85},
		{"Rahul Kumar", "Rahul Kumar Raoo", 81},
		{"rahul_kumar", "rahul kumar", 45},
		{"", "Rahul Kumar", 0},
		{"...", "Rahul Kumar", 0},
		{"राहुल", "राहुल", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenSortRatio(tt.a, tt.b))
		})
	}

	assert.Less(t, TokenSortRatio("Amit Shah", "Vikram Rao"), DefaultThreshold)
}

func TestCompare(t *testing.T) {
	c := NewChecker(DefaultThreshold)

	t.Run("consistent documents", func(t *testing.T) {
		r := c.Compare(fields("John Smith", "01-02-2000"), fields("smith john", "01/02/2000"))
		assert.Equal(t, models.ReportPassed, r.Status)
		assert.Equal(t, MessageConsistent, r.Message)
		assert.Empty(t, r.Issues)
		assert.Equal(t, models.StatusMatch, r.NameCheck.Status)
		assert.Equal(t, 100, *r.NameCheck.Similarity)
		assert.Equal(t, models.StatusMatch, r.DOBCheck.Status)
		assert.Nil(t, r.DOBCheck.Similarity)
	})

	t.Run("near identical names match", func(t *testing.T) {
		r := c.Compare(fields("Rahul Kumar", ""), fields("Rahul Kumarr", ""))
		assert.Equal(t, models.StatusMatch, r.NameCheck.Status)
		assert.Equal(t, models.ReportPassed, r.Status)
	})

	t.Run("extra surname within tolerance matches", func(t *testing.T) {
		r := c.Compare(fields("Rahul Kumar", "01/02/1990"), fields("Rahul Kumar Rao", "01/02/1990"))
		assert.Equal(t, models.StatusMatch, r.NameCheck.Status)
		assert.Equal(t, 85, *r.NameCheck.Similarity)
		assert.Equal(t, models.ReportPassed, r.Status)
		assert.Empty(t, r.Issues)
	})

	t.Run("different names fail", func(t *testing.T) {
		r := c.Compare(fields("Amit Shah", "01/02/1985"), fields("Vikram Rao", "01/02/1985"))
		assert.Equal(t, models.ReportFailed, r.Status)
		assert.Equal(t, MessageFailed, r.Message)
		assert.Equal(t, models.StatusMismatch, r.NameCheck.Status)
		require.Len(t, r.Issues, 1)
		assert.Regexp(t, `^Name mismatch \(Similarity: \d+%\)$`, r.Issues[0])
	})

	t.Run("both fields mismatch in order", func(t *testing.T) {
		r := c.Compare(fields("Amit Shah", "01/02/1985"), fields("Vikram Rao", "02/01/1985"))
		require.Len(t, r.Issues, 2)
		assert.Contains(t, r.Issues[0], "Name mismatch")
		assert.Equal(t, "DOB mismatch", r.Issues[1])
	})

	t.Run("missing data never fails", func(t *testing.T) {
		r := c.Compare(models.ExtractedFields{}, fields("Amit Shah", "01/02/1985"))
		assert.Equal(t, models.ReportPassed, r.Status)
		assert.Equal(t, models.StatusMissingData, r.NameCheck.Status)
		assert.Equal(t, 0, *r.NameCheck.Similarity)
		assert.Equal(t, models.StatusMissingData, r.DOBCheck.Status)
		assert.Nil(t, r.NameCheck.Doc1)
		assert.Equal(t, "Amit Shah", models.Value(r.NameCheck.Doc2))
	})
}

func TestCompareThreshold(t *testing.T) {
	strict := NewChecker(95)
	r := strict.Compare(fields("Rahul Kumar", ""), fields("Rahul Kumarr", ""))
	assert.Equal(t, models.StatusMismatch, r.NameCheck.Status)

	assert.Equal(t, DefaultThreshold, NewChecker(0).Threshold())
	assert.Equal(t, DefaultThreshold, NewChecker(101).Threshold())
}

func TestReportJSONShape(t *testing.T) {
	r := NewChecker(DefaultThreshold).Compare(models.ExtractedFields{}, models.ExtractedFields{})
	data, err := json.Marshal(r)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"status": "PASSED",
		"message": "Details are consistent.",
		"issues": [],
		"name_check": {"status": "MISSING_DATA", "doc1": null, "doc2": null, "similarity": 0},
		"dob_check": {"status": "MISSING_DATA", "doc1": null, "doc2": null}
	}`, string(data))
}
