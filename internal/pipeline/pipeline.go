// Package pipeline runs the full KYC check: text acquisition for both
// documents, field extraction, comparison and response assembly.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"kyccheck/internal/kyc"
	"kyccheck/internal/logger"
	"kyccheck/internal/textextract"
	"kyccheck/pkg/models"
)

// Document is one uploaded identity document.
type Document struct {
	// Name identifies the document in logs and errors ("doc1", "doc2" or a path).
	Name      string
	Content   io.Reader
	MediaType string
}

// TextSource acquires raw text from a document.
type TextSource interface {
	Extract(ctx context.Context, content io.Reader, mediaType string) textextract.Result
}

// FieldExtractor pulls structured fields out of raw text.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, text string) (models.ExtractedFields, error)
}

// DocumentResult is the single-document view used for inspection.
type DocumentResult struct {
	Name      string                 `json:"name"`
	MediaType string                 `json:"media_type"`
	Outcome   textextract.Outcome    `json:"outcome"`
	Fields    models.ExtractedFields `json:"extracted_data"`
	RawText   string                 `json:"raw_text"`
}

// Service wires text acquisition, field extraction and the checker together.
// It is safe for concurrent use when its collaborators are.
type Service struct {
	texts   TextSource
	fields  FieldExtractor
	checker *kyc.Checker
	log     zerolog.Logger
}

// NewService creates a pipeline Service.
func NewService(texts TextSource, fields FieldExtractor, checker *kyc.Checker) *Service {
	return &Service{
		texts:   texts,
		fields:  fields,
		checker: checker,
		log:     logger.WithComponent("pipeline"),
	}
}

// Check runs the full KYC check on two documents. It returns an error
// wrapping ErrUnreadableDocument when either document yields no text; any
// other error is internal.
func (s *Service) Check(ctx context.Context, doc1, doc2 Document) (*models.KYCResponse, error) {
	log := logger.FromContext(ctx, s.log)

	results := s.acquire(ctx, doc1, doc2)
	for i, doc := range []Document{doc1, doc2} {
		if !results[i].OK() {
			log.Warn().
				Str("document", doc.Name).
				Str("outcome", string(results[i].Outcome)).
				AnErr("cause", results[i].Err).
				Msg("No text could be read from document")
			return nil, unreadable(doc.Name, results[i])
		}
	}

	var fields [2]models.ExtractedFields
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range []Document{doc1, doc2} {
		g.Go(func() error {
			f, err := s.extractFields(gctx, doc.Name, results[i].Text)
			if err != nil {
				return err
			}
			fields[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Field extraction failed")
		return nil, err
	}

	report := s.checker.Compare(fields[0], fields[1])
	log.Info().
		Str("status", report.Status).
		Str("name_check", report.NameCheck.Status).
		Str("dob_check", report.DOBCheck.Status).
		Int("issues", len(report.Issues)).
		Msg("KYC check completed")

	return &models.KYCResponse{
		FraudReport: report,
		ExtractedData: models.DocumentPair[models.ExtractedFields]{
			Doc1: fields[0],
			Doc2: fields[1],
		},
		DebugRawText: models.DocumentPair[string]{
			Doc1: results[0].Text,
			Doc2: results[1].Text,
		},
	}, nil
}

// acquire extracts the text of both documents in parallel.
func (s *Service) acquire(ctx context.Context, doc1, doc2 Document) [2]textextract.Result {
	var results [2]textextract.Result
	var g errgroup.Group
	for i, doc := range []Document{doc1, doc2} {
		g.Go(func() error {
			results[i] = s.texts.Extract(ctx, doc.Content, doc.MediaType)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ExtractDocument acquires the text of a single document and extracts its
// fields without comparing anything.
func (s *Service) ExtractDocument(ctx context.Context, doc Document) (*DocumentResult, error) {
	res := s.texts.Extract(ctx, doc.Content, doc.MediaType)
	out := &DocumentResult{
		Name:      doc.Name,
		MediaType: res.MediaType,
		Outcome:   res.Outcome,
		RawText:   res.Text,
	}
	if !res.OK() {
		return out, unreadable(doc.Name, res)
	}

	fields, err := s.extractFields(ctx, doc.Name, res.Text)
	if err != nil {
		return out, err
	}
	out.Fields = fields
	return out, nil
}

// extractFields runs the field extractor, turning a panic into a CheckError.
// errgroup does not propagate panics, so an unrecovered one in a worker
// goroutine would take down the process.
func (s *Service) extractFields(ctx context.Context, name, text string) (fields models.ExtractedFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			fields = models.ExtractedFields{}
			err = &CheckError{Op: "ExtractFields", Document: name, Err: fmt.Errorf("%w: %v", ErrExtractorPanic, r)}
		}
	}()

	fields, err = s.fields.ExtractFields(ctx, text)
	if err != nil {
		return models.ExtractedFields{}, &CheckError{Op: "ExtractFields", Document: name, Err: err}
	}
	return fields, nil
}
