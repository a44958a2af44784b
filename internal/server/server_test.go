package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kyccheck/internal/kyc"
	"kyccheck/internal/pipeline"
	"kyccheck/internal/textextract"
	"kyccheck/pkg/models"
)

type fakeOCR struct{}

func (fakeOCR) RecognizeImage(_ context.Context, image []byte) (string, error) {
	return string(image), nil
}

func (fakeOCR) ExtractPDF(_ context.Context, pdf []byte) ([]string, error) {
	return []string{string(pdf)}, nil
}

// lineFields reads "name|dob" from the document text.
type lineFields struct{}

func (lineFields) ExtractFields(_ context.Context, text string) (models.ExtractedFields, error) {
	name, dob, _ := strings.Cut(strings.TrimSpace(text), "|")
	return models.ExtractedFields{Name: models.StringPtr(name), DOB: models.StringPtr(dob)}, nil
}

type checkerFunc func(ctx context.Context, doc1, doc2 pipeline.Document) (*models.KYCResponse, error)

func (f checkerFunc) Check(ctx context.Context, doc1, doc2 pipeline.Document) (*models.KYCResponse, error) {
	return f(ctx, doc1, doc2)
}

type filePart struct {
	field, filename, contentType, content string
}

func multipartBody(t *testing.T, parts ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(w, p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postCheck(t *testing.T, h http.Handler, parts ...filePart) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, parts...)
	req := httptest.NewRequest(http.MethodPost, "/check-kyc/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func newPipelineServer(t *testing.T) (*Server, string) {
	t.Helper()
	tmp := t.TempDir()
	svc := pipeline.NewService(textextract.NewAdapter(fakeOCR{}, fakeOCR{}), lineFields{}, kyc.NewChecker(kyc.DefaultThreshold))
	return New(svc, Options{TempDir: tmp, MaxUploadBytes: 1 << 20}), tmp
}

func assertNoUploadsLeft(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoot(t *testing.T) {
	s, _ := newPipelineServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Welcome to the Smart KYC Checker API. Please use the /check-kyc endpoint to upload documents."}`, rec.Body.String())

	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestCheckKYCSuccess(t *testing.T) {
	s, tmp := newPipelineServer(t)

	rec := postCheck(t, s.Handler(),
		filePart{"doc1", "pan.jpg", "image/jpeg", "John Smith|01-02-2000"},
		filePart{"doc2", "aadhar.pdf", "application/pdf", "smith john|01/02/2000"},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.KYCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ReportPassed, resp.Status)
	assert.Equal(t, models.StatusMatch, resp.NameCheck.Status)
	assert.Equal(t, 100, *resp.NameCheck.Similarity)
	assert.Equal(t, models.StatusMatch, resp.DOBCheck.Status)
	assert.Equal(t, "John Smith", models.Value(resp.ExtractedData.Doc1.Name))
	assert.Equal(t, "smith john|01/02/2000", resp.DebugRawText.Doc2)

	assertNoUploadsLeft(t, tmp)
}

func TestCheckKYCMismatch(t *testing.T) {
	s, _ := newPipelineServer(t)

	rec := postCheck(t, s.Handler(),
		filePart{"doc1", "a.png", "image/png", "Amit Shah|01/02/1985"},
		filePart{"doc2", "b.png", "image/png", "Vikram Rao|01/02/1985"},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "FAILED", body["status"])
	assert.Equal(t, "Fraud check FAILED. Mismatched details found.", body["message"])
	assert.Len(t, body["issues"], 1)
}

func TestCheckKYCUnreadable(t *testing.T) {
	tests := []struct {
		name string
		doc2 filePart
	}{
		{"unsupported media type", filePart{"doc2", "notes.txt", "text/plain", "Amit Shah|01/02/1985"}},
		{"missing content type", filePart{"doc2", "blob", "", "Amit Shah|01/02/1985"}},
		{"no text", filePart{"doc2", "blank.png", "image/png", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tmp := newPipelineServer(t)
			rec := postCheck(t, s.Handler(), filePart{"doc1", "a.png", "image/png", "Amit Shah|"}, tt.doc2)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, unreadableMessage, detail(t, rec))
			assertNoUploadsLeft(t, tmp)
		})
	}
}

func TestCheckKYCInternalError(t *testing.T) {
	tmp := t.TempDir()
	s := New(checkerFunc(func(context.Context, pipeline.Document, pipeline.Document) (*models.KYCResponse, error) {
		entries, err := os.ReadDir(tmp)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "upload directory exists during the check")
		return nil, errors.New("recognizer unavailable")
	}), Options{TempDir: tmp})

	rec := postCheck(t, s.Handler(),
		filePart{"doc1", "a.png", "image/png", "x"},
		filePart{"doc2", "b.png", "image/png", "y"},
	)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An internal server error occurred: recognizer unavailable", detail(t, rec))
	assertNoUploadsLeft(t, tmp)
}

func TestCheckKYCPanicIsInternalError(t *testing.T) {
	tmp := t.TempDir()
	s := New(checkerFunc(func(context.Context, pipeline.Document, pipeline.Document) (*models.KYCResponse, error) {
		panic("nil map")
	}), Options{TempDir: tmp})

	rec := postCheck(t, s.Handler(),
		filePart{"doc1", "a.png", "image/png", "x"},
		filePart{"doc2", "b.png", "image/png", "y"},
	)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An internal server error occurred: nil map", detail(t, rec))
	assertNoUploadsLeft(t, tmp)
}

func TestCheckKYCPassesUploads(t *testing.T) {
	var got []pipeline.Document
	var contents []string
	s := New(checkerFunc(func(_ context.Context, doc1, doc2 pipeline.Document) (*models.KYCResponse, error) {
		for _, d := range []pipeline.Document{doc1, doc2} {
			data, err := io.ReadAll(d.Content)
			require.NoError(t, err)
			contents = append(contents, string(data))
		}
		got = []pipeline.Document{doc1, doc2}
		return &models.KYCResponse{}, nil
	}), Options{TempDir: t.TempDir()})

	rec := postCheck(t, s.Handler(),
		filePart{"doc2", "../../etc/passwd", "application/pdf; charset=binary", "second"},
		filePart{"note", "ignored.txt", "text/plain", "ignored"},
		filePart{"doc1", "pan.JPG", "IMAGE/JPEG", "first"},
	)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got, 2)
	assert.Equal(t, "doc1", got[0].Name)
	assert.Equal(t, "image/jpeg", got[0].MediaType)
	assert.Equal(t, "application/pdf", got[1].MediaType)
	assert.Equal(t, []string{"first", "second"}, contents)
}

func TestCheckKYCBadRequests(t *testing.T) {
	s, tmp := newPipelineServer(t)

	rec := postCheck(t, s.Handler(), filePart{"doc1", "a.png", "image/png", "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "field required: doc2", detail(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/check-kyc/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "invalid multipart form")

	assertNoUploadsLeft(t, tmp)
}

func TestCheckKYCUploadTooLarge(t *testing.T) {
	tmp := t.TempDir()
	s := New(checkerFunc(func(context.Context, pipeline.Document, pipeline.Document) (*models.KYCResponse, error) {
		t.Fatal("checker must not run")
		return nil, nil
	}), Options{TempDir: tmp, MaxUploadBytes: 1 << 10})

	rec := postCheck(t, s.Handler(),
		filePart{"doc1", "a.png", "image/png", strings.Repeat("x", 4<<10)},
		filePart{"doc2", "b.png", "image/png", "y"},
	)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assertNoUploadsLeft(t, tmp)
}

func TestCORS(t *testing.T) {
	s, _ := newPipelineServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/check-kyc/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagation(t *testing.T) {
	s, _ := newPipelineServer(t)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}
