package ner

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"kyccheck/internal/logger"
)

// GeminiConfig configures the Gemini-backed recognizer.
type GeminiConfig struct {
	APIKey string
	Model  string // defaults to gemini-2.0-flash-lite
}

// GeminiRecognizer implements Recognizer using a Gemini generative model.
type GeminiRecognizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
	config GeminiConfig
	log    zerolog.Logger
}

// NewGeminiRecognizer creates a recognizer and its Gemini client.
func NewGeminiRecognizer(ctx context.Context, config GeminiConfig) (*GeminiRecognizer, error) {
	const op = "NewGeminiRecognizer"

	if strings.TrimSpace(config.APIKey) == "" {
		return nil, WrapRecognizerError(BackendGemini, op, ErrMissingCredentials, "GEMINI_API_KEY is required")
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash-lite"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, WrapRecognizerError(BackendGemini, op, err, "failed to init Gemini client")
	}

	model := client.GenerativeModel(config.Model)
	model.GenerationConfig = genai.GenerationConfig{ResponseMIMEType: "application/json"}
	model.SetTemperature(0)

	return &GeminiRecognizer{
		client: client,
		model:  model,
		config: config,
		log:    logger.WithComponent("ner-gemini"),
	}, nil
}

// Name implements Recognizer.
func (r *GeminiRecognizer) Name() string { return BackendGemini }

// Recognize implements Recognizer.
func (r *GeminiRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	const op = "Recognize"

	r.log.Debug().
		Int("text_length", len(text)).
		Str("model", r.config.Model).
		Msg("Sending entity recognition request to Gemini")

	resp, err := r.model.GenerateContent(ctx, genai.Text(buildEntityPrompt(text)))
	if err != nil {
		return nil, WrapRecognizerError(BackendGemini, op, ErrRecognitionFailed, fmt.Sprintf("gemini generation failed: %v", err))
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil, WrapRecognizerError(BackendGemini, op, ErrInvalidResponse, "empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}

	entities, err := parseEntityResponse(sb.String(), text)
	if err != nil {
		return nil, WrapRecognizerError(BackendGemini, op, err, "")
	}

	r.log.Debug().
		Int("entities", len(entities)).
		Msg("Gemini entity recognition completed")
	return entities, nil
}

// Close closes the underlying Gemini client.
func (r *GeminiRecognizer) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
