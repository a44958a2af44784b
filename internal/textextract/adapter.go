// Package textextract turns an uploaded document of any supported media type
// into raw text, dispatching to the configured OCR backends.
//
// Extraction never returns an error. Every failure is reported through
// Result.Outcome with empty text, so callers can treat "no text" uniformly
// while logs and tests still see why the text is missing.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/rs/zerolog"
	"kyccheck/internal/logger"
	"kyccheck/internal/ocr"
)

// Supported media types.
const (
	MediaTypeJPEG    = "image/jpeg"
	MediaTypeJPG     = "image/jpg"
	MediaTypePNG     = "image/png"
	MediaTypePDF     = "application/pdf"
	MediaTypeUnknown = "application/octet-stream"
)

// Outcome classifies how an extraction ended.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeUnsupported    Outcome = "unsupported_media_type"
	OutcomeBackendFailure Outcome = "backend_failure"
)

// ErrUnsupportedMediaType is set on Result.Err for unsupported uploads.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// Result is the outcome of one extraction. Text is empty unless Outcome is
// OutcomeSuccess, and may be empty even then.
type Result struct {
	Text      string
	Outcome   Outcome
	MediaType string
	Err       error
}

// OK reports whether the extraction succeeded with non-empty text.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess && r.Text != ""
}

// Adapter dispatches documents to the image and PDF backends.
type Adapter struct {
	images ocr.ImageRecognizer
	pdfs   ocr.PDFExtractor
	log    zerolog.Logger
}

// NewAdapter creates an Adapter over the given backends.
func NewAdapter(images ocr.ImageRecognizer, pdfs ocr.PDFExtractor) *Adapter {
	return &Adapter{
		images: images,
		pdfs:   pdfs,
		log:    logger.WithComponent("textextract"),
	}
}

// NormalizeMediaType lowercases mediaType and strips any parameters.
func NormalizeMediaType(mediaType string) string {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt, _, _ = strings.Cut(mediaType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// Supported reports whether mediaType can be extracted.
func Supported(mediaType string) bool {
	switch NormalizeMediaType(mediaType) {
	case MediaTypeJPEG, MediaTypeJPG, MediaTypePNG, MediaTypePDF:
		return true
	}
	return false
}

// Extract reads content and returns its text. Backend errors and panics are
// logged and reported as OutcomeBackendFailure.
func (a *Adapter) Extract(ctx context.Context, content io.Reader, mediaType string) (res Result) {
	mt := NormalizeMediaType(mediaType)
	res = Result{MediaType: mt}
	log := a.log.With().Str("media_type", mt).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Text extraction backend panicked")
			res = Result{MediaType: mt, Outcome: OutcomeBackendFailure, Err: fmt.Errorf("backend panic: %v", r)}
		}
	}()

	if !Supported(mt) {
		log.Warn().Msg("Unsupported file type")
		res.Outcome = OutcomeUnsupported
		res.Err = fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
		return res
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return a.failure(log, res, fmt.Errorf("read upload: %w", err))
	}

	var text string
	if mt == MediaTypePDF {
		var pages []string
		pages, err = a.pdfs.ExtractPDF(ctx, data)
		text = joinPages(pages)
	} else {
		text, err = a.images.RecognizeImage(ctx, data)
	}
	if err != nil {
		return a.failure(log, res, err)
	}

	res.Text = text
	res.Outcome = OutcomeSuccess
	log.Debug().Int("bytes", len(data)).Int("chars", len(text)).Msg("Text extracted")
	return res
}

func (a *Adapter) failure(log zerolog.Logger, res Result, err error) Result {
	log.Error().Err(err).Msg("Text extraction failed")
	res.Text = ""
	res.Outcome = OutcomeBackendFailure
	res.Err = err
	return res
}

// joinPages concatenates page texts in order, separating pages by a newline
// when a page does not already end with one.
func joinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
		b.WriteString(p)
	}
	return b.String()
}
