// Package ner provides named-entity recognition over raw document text.
//
// A Recognizer returns typed spans (PERSON, DATE) found in the text it is
// given. Three backends are available:
//   - openai: chat completion in JSON mode (OPENAI_API_KEY, OPENAI_MODEL)
//   - gemini: Gemini generative model with a JSON response MIME type
//     (GEMINI_API_KEY, GEMINI_MODEL)
//   - documentai: a Google Document AI processor run over an inline text
//     document (GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION,
//     DOCUMENT_AI_PROCESSOR_ID plus Google credentials)
//
// Backends are built once at startup and injected into the field extractor.
// Constructors fail fast when credentials or required settings are missing.
//
// Entities are always returned in document order, and every returned entity's
// Text is the exact surface text found in the input, so callers may rely on
// embedded newlines being preserved.
package ner

import (
	"context"
	"io"
)

// Entity labels understood by the field extractor.
const (
	LabelPerson = "PERSON"
	LabelDate   = "DATE"
)

// Backend names accepted by New.
const (
	BackendOpenAI     = "openai"
	BackendGemini     = "gemini"
	BackendDocumentAI = "documentai"
)

// Entity is a typed span over the recognized text.
type Entity struct {
	Label string `json:"label"`
	Text  string `json:"text"`

	// Start is the byte offset of Text within the source.
	Start int `json:"start"`
}

// Recognizer finds PERSON and DATE entities in raw text.
type Recognizer interface {
	// Recognize returns entities ordered by their position in text.
	Recognize(ctx context.Context, text string) ([]Entity, error)

	// Name identifies the backend for logging.
	Name() string
}

// Config selects and configures a recognizer backend.
type Config struct {
	Backend    string
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	DocumentAI DocumentAIConfig
}

// New builds the recognizer selected by cfg.Backend.
// The returned closer releases backend clients and is never nil.
func New(ctx context.Context, cfg Config) (Recognizer, io.Closer, error) {
	const op = "New"

	switch cfg.Backend {
	case BackendOpenAI:
		r, err := NewOpenAIRecognizer(cfg.OpenAI)
		if err != nil {
			return nil, nil, err
		}
		return r, nopCloser{}, nil
	case BackendGemini:
		r, err := NewGeminiRecognizer(ctx, cfg.Gemini)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case BackendDocumentAI:
		r, err := NewDocumentAIRecognizer(ctx, cfg.DocumentAI)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		return nil, nil, WrapRecognizerError(cfg.Backend, op, ErrInvalidConfiguration, "unknown NER backend")
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
