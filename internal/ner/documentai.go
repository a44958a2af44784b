package ner

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"kyccheck/internal/logger"
)

// DocumentAIConfig holds configuration for the Document AI entity backend.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	Location string

	// ProcessorID is the Document AI processor ID. The processor must accept
	// inline text documents and emit entities.
	ProcessorID string

	// ProcessorVersion pins a processor version; empty uses the default.
	ProcessorVersion string

	// Timeout bounds a single ProcessDocument call. Default: 60 seconds.
	Timeout time.Duration

	// PersonTypes and DateTypes are case-insensitive substrings of Document AI
	// entity types that map onto PERSON and DATE.
	PersonTypes []string
	DateTypes   []string

	// ClientOptions carry credentials and endpoint overrides.
	ClientOptions []option.ClientOption
}

// DocumentAIRecognizer implements Recognizer using Google Document AI.
type DocumentAIRecognizer struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIRecognizer creates the Document AI client for config.
func NewDocumentAIRecognizer(ctx context.Context, config DocumentAIConfig) (*DocumentAIRecognizer, error) {
	const op = "NewDocumentAIRecognizer"

	if config.ProjectID == "" {
		return nil, WrapRecognizerError(BackendDocumentAI, op, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapRecognizerError(BackendDocumentAI, op, ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}

	clientOptions := append([]option.ClientOption(nil), config.ClientOptions...)
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(config.ClientOptions) == 0 {
			return nil, WrapRecognizerError(BackendDocumentAI, op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapRecognizerError(BackendDocumentAI, op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return NewDocumentAIRecognizerWithClient(client, config), nil
}

// NewDocumentAIRecognizerWithClient creates a recognizer with an explicit client (for testing).
func NewDocumentAIRecognizerWithClient(client *documentai.DocumentProcessorClient, config DocumentAIConfig) *DocumentAIRecognizer {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if len(config.PersonTypes) == 0 {
		config.PersonTypes = []string{"name", "person"}
	}
	if len(config.DateTypes) == 0 {
		config.DateTypes = []string{"date", "dob"}
	}
	return &DocumentAIRecognizer{
		client: client,
		config: config,
		log:    logger.WithComponent("ner-documentai"),
	}
}

// Name implements Recognizer.
func (r *DocumentAIRecognizer) Name() string { return BackendDocumentAI }

// Recognize implements Recognizer.
func (r *DocumentAIRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	const op = "Recognize"

	processCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: r.processorName(),
		Source: &documentaipb.ProcessRequest_InlineDocument{
			InlineDocument: &documentaipb.Document{
				Text:     text,
				MimeType: "text/plain",
			},
		},
	}

	resp, err := r.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, r.handleProcessingError(op, err)
	}
	if resp.GetDocument() == nil {
		return nil, WrapRecognizerError(BackendDocumentAI, op, ErrInvalidResponse, "no document in response")
	}

	entities := r.entitiesFromDocument(resp.GetDocument(), text)
	r.log.Debug().
		Int("document_entities", len(resp.GetDocument().GetEntities())).
		Int("entities", len(entities)).
		Msg("Document AI entity recognition completed")
	return entities, nil
}

// entitiesFromDocument maps Document AI entities (and their properties) onto
// PERSON and DATE spans over source.
func (r *DocumentAIRecognizer) entitiesFromDocument(doc *documentaipb.Document, source string) []Entity {
	loc := newLocator(source)
	var entities []Entity

	var visit func(list []*documentaipb.Document_Entity)
	visit = func(list []*documentaipb.Document_Entity) {
		for _, entity := range list {
			label := r.labelFor(entity.GetType())
			if label != "" {
				if start, end, ok := loc.find(entity.GetMentionText()); ok {
					entities = append(entities, Entity{Label: label, Text: source[start:end], Start: start})
				} else {
					r.log.Debug().
						Str("entity_type", entity.GetType()).
						Str("mention", entity.GetMentionText()).
						Msg("Entity mention not found in source text")
				}
			}
			visit(entity.GetProperties())
		}
	}
	visit(doc.GetEntities())

	sortByPosition(entities)
	return entities
}

func (r *DocumentAIRecognizer) labelFor(entityType string) string {
	t := strings.ToLower(entityType)
	for _, k := range r.config.DateTypes {
		if strings.Contains(t, strings.ToLower(k)) {
			return LabelDate
		}
	}
	for _, k := range r.config.PersonTypes {
		if strings.Contains(t, strings.ToLower(k)) {
			return LabelPerson
		}
	}
	return ""
}

// processorName constructs the full processor name for Document AI API.
func (r *DocumentAIRecognizer) processorName() string {
	if r.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			r.config.ProjectID, r.config.Location, r.config.ProcessorID, r.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		r.config.ProjectID, r.config.Location, r.config.ProcessorID)
}

// handleProcessingError converts Document AI errors to recognizer errors.
func (r *DocumentAIRecognizer) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapRecognizerError(BackendDocumentAI, op, ErrMissingCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") || strings.Contains(errStr, "RESOURCE_EXHAUSTED"):
		return WrapRecognizerError(BackendDocumentAI, op, ErrQuotaExceeded, "Document AI API quota exceeded")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapRecognizerError(BackendDocumentAI, op, ErrInvalidConfiguration, fmt.Sprintf("processor not found: %s", r.config.ProcessorID))
	case strings.Contains(errStr, "DeadlineExceeded") || strings.Contains(errStr, "context deadline exceeded"):
		return WrapRecognizerError(BackendDocumentAI, op, context.DeadlineExceeded, "processing timeout")
	default:
		return WrapRecognizerError(BackendDocumentAI, op, ErrRecognitionFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// Close closes the underlying Document AI client.
func (r *DocumentAIRecognizer) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
