package ner

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"kyccheck/internal/logger"
)

// OpenAIConfig configures the ChatGPT-backed recognizer.
type OpenAIConfig struct {
	APIKey      string
	Model       string  // defaults to gpt-4o-mini
	Temperature float32 // defaults to near-zero; go-openai omits an exact 0
}

// OpenAIRecognizer implements Recognizer using OpenAI chat completions in JSON mode.
type OpenAIRecognizer struct {
	client *openai.Client
	config OpenAIConfig
	log    zerolog.Logger
}

// NewOpenAIRecognizer creates a recognizer from an API key.
func NewOpenAIRecognizer(config OpenAIConfig) (*OpenAIRecognizer, error) {
	const op = "NewOpenAIRecognizer"

	if strings.TrimSpace(config.APIKey) == "" {
		return nil, WrapRecognizerError(BackendOpenAI, op, ErrMissingCredentials, "OPENAI_API_KEY is required")
	}
	return NewOpenAIRecognizerWithClient(openai.NewClient(config.APIKey), config), nil
}

// NewOpenAIRecognizerWithClient creates a recognizer with an explicit client (for testing).
func NewOpenAIRecognizerWithClient(client *openai.Client, config OpenAIConfig) *OpenAIRecognizer {
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.Temperature <= 0 {
		config.Temperature = math.SmallestNonzeroFloat32
	}
	return &OpenAIRecognizer{
		client: client,
		config: config,
		log:    logger.WithComponent("ner-openai"),
	}
}

// Name implements Recognizer.
func (r *OpenAIRecognizer) Name() string { return BackendOpenAI }

// Recognize implements Recognizer.
func (r *OpenAIRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	const op = "Recognize"

	r.log.Debug().
		Int("text_length", len(text)).
		Str("model", r.config.Model).
		Msg("Sending entity recognition request to OpenAI")

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.config.Model,
		Temperature: r.config.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildEntityPrompt(text),
			},
		},
	})
	if err != nil {
		return nil, WrapRecognizerError(BackendOpenAI, op, ErrRecognitionFailed, fmt.Sprintf("chat completion failed: %v", err))
	}
	if len(resp.Choices) == 0 {
		return nil, WrapRecognizerError(BackendOpenAI, op, ErrInvalidResponse, "no response choices")
	}

	entities, err := parseEntityResponse(resp.Choices[0].Message.Content, text)
	if err != nil {
		return nil, WrapRecognizerError(BackendOpenAI, op, err, "")
	}

	r.log.Debug().
		Int("entities", len(entities)).
		Msg("OpenAI entity recognition completed")
	return entities, nil
}
