package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
	"kyccheck/internal/logger"
)

// DefaultTesseractLanguage is used when no language is configured.
const DefaultTesseractLanguage = "eng"

// TesseractEngine implements ImageRecognizer with a local Tesseract install.
// A fresh gosseract client is created per call since clients are not safe
// for concurrent use.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	languages     []string
	log           zerolog.Logger
}

// NewTesseractEngine constructs a Tesseract-backed image recognizer.
func NewTesseractEngine(languages ...string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{DefaultTesseractLanguage}
	}
	return &TesseractEngine{
		clientFactory: gosseract.NewClient,
		languages:     languages,
		log:           logger.WithComponent("ocr-tesseract"),
	}
}

// Languages returns the Tesseract languages in use.
func (e *TesseractEngine) Languages() []string { return e.languages }

// RecognizeImage implements ImageRecognizer.
func (e *TesseractEngine) RecognizeImage(ctx context.Context, image []byte) (string, error) {
	const op = "RecognizeImage"

	if err := checkContext(ctx, op); err != nil {
		return "", err
	}
	if len(image) == 0 {
		return "", WrapOCRError(op, ErrInvalidImage, "empty image")
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.languages...); err != nil {
		return "", WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("set languages: %v", err))
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", WrapOCRError(op, ErrInvalidImage, err.Error())
	}

	text, err := c.Text()
	if err != nil {
		return "", WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("recognize text: %v", err))
	}

	e.log.Debug().Int("bytes", len(image)).Int("chars", len(text)).Msg("Tesseract recognition completed")
	return text, nil
}
