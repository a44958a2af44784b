package textextract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	text  string
	err   error
	panic bool
	got   []byte
}

func (f *fakeImages) RecognizeImage(_ context.Context, image []byte) (string, error) {
	if f.panic {
		panic("tesseract exploded")
	}
	f.got = image
	return f.text, f.err
}

type fakePDFs struct {
	pages []string
	err   error
}

func (f *fakePDFs) ExtractPDF(_ context.Context, _ []byte) ([]string, error) {
	return f.pages, f.err
}

func TestNormalizeMediaType(t *testing.T) {
	assert.Equal(t, "image/png", NormalizeMediaType("IMAGE/PNG"))
	assert.Equal(t, "application/pdf", NormalizeMediaType("application/pdf; charset=binary"))
	assert.Equal(t, "image/jpg", NormalizeMediaType(" image/jpg "))
	assert.Equal(t, "", NormalizeMediaType(""))

	assert.True(t, Supported("image/jpeg"))
	assert.True(t, Supported("Application/PDF"))
	assert.False(t, Supported("text/plain"))
	assert.False(t, Supported("image/gif"))
}

func TestExtractImage(t *testing.T) {
	images := &fakeImages{text: "INCOME TAX DEPARTMENT\nABCDE1234F\n"}
	a := NewAdapter(images, &fakePDFs{})

	res := a.Extract(t.Context(), strings.NewReader("jpeg-bytes"), "image/jpeg")
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "INCOME TAX DEPARTMENT\nABCDE1234F\n", res.Text)
	assert.Equal(t, "image/jpeg", res.MediaType)
	assert.NoError(t, res.Err)
	assert.True(t, res.OK())
	assert.Equal(t, []byte("jpeg-bytes"), images.got)
}

func TestExtractPDFConcatenatesPages(t *testing.T) {
	a := NewAdapter(&fakeImages{}, &fakePDFs{pages: []string{"page one\n", "page two", "", "page four\n"}})

	res := a.Extract(t.Context(), strings.NewReader("%PDF"), "application/pdf")
	require.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "page one\npage two\npage four\n", res.Text)
}

func TestExtractUnsupported(t *testing.T) {
	images := &fakeImages{text: "should not be used"}
	a := NewAdapter(images, &fakePDFs{})

	res := a.Extract(t.Context(), strings.NewReader("hello"), "text/plain")
	assert.Equal(t, OutcomeUnsupported, res.Outcome)
	assert.Empty(t, res.Text)
	assert.True(t, errors.Is(res.Err, ErrUnsupportedMediaType))
	assert.False(t, res.OK())
	assert.Nil(t, images.got)
}

func TestExtractBackendFailure(t *testing.T) {
	boom := errors.New("ocr down")

	res := NewAdapter(&fakeImages{text: "partial", err: boom}, &fakePDFs{}).
		Extract(t.Context(), strings.NewReader("png"), "image/png")
	assert.Equal(t, OutcomeBackendFailure, res.Outcome)
	assert.Empty(t, res.Text)
	assert.True(t, errors.Is(res.Err, boom))

	res = NewAdapter(&fakeImages{}, &fakePDFs{err: boom}).
		Extract(t.Context(), strings.NewReader("pdf"), "application/pdf")
	assert.Equal(t, OutcomeBackendFailure, res.Outcome)
	assert.Empty(t, res.Text)
}

func TestExtractRecoversPanics(t *testing.T) {
	a := NewAdapter(&fakeImages{panic: true}, &fakePDFs{})

	res := a.Extract(t.Context(), strings.NewReader("png"), "image/png")
	assert.Equal(t, OutcomeBackendFailure, res.Outcome)
	assert.Empty(t, res.Text)
	assert.ErrorContains(t, res.Err, "tesseract exploded")
	assert.Equal(t, "image/png", res.MediaType)
}

func TestExtractEmptyTextIsNotOK(t *testing.T) {
	res := NewAdapter(&fakeImages{text: ""}, &fakePDFs{}).
		Extract(t.Context(), strings.NewReader("png"), "image/png")
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.False(t, res.OK())
}
