package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"kyccheck/internal/config"
	"kyccheck/internal/fields"
	"kyccheck/internal/kyc"
	"kyccheck/internal/ner"
	"kyccheck/internal/ocr"
	"kyccheck/internal/pipeline"
	"kyccheck/internal/textextract"
)

// services bundles the pipeline with the clients that must be closed on exit.
type services struct {
	pipeline *pipeline.Service
	closers  []io.Closer
}

func (s *services) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildServices constructs every backend selected by cfg. Missing credentials
// fail here, before any document is processed.
func buildServices(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*services, error) {
	svc := &services{}
	fail := func(err error) (*services, error) {
		_ = svc.Close()
		return nil, err
	}

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return fail(err)
	}

	var vision *ocr.GoogleVisionOCRService
	if cfg.OCREngine == config.OCREngineVision || cfg.PDFEngine == config.PDFEngineVision {
		vision, err = ocr.NewGoogleVisionOCRService(ctx, cfg.GoogleClientOptions()...)
		if err != nil {
			return fail(fmt.Errorf("failed to create Vision OCR service: %w", err))
		}
		svc.closers = append(svc.closers, vision)
	}

	var images ocr.ImageRecognizer
	if cfg.OCREngine == config.OCREngineVision {
		images = vision
	} else {
		images = ocr.NewTesseractEngine(cfg.TesseractLanguages()...)
	}

	var pdfs ocr.PDFExtractor
	if cfg.PDFEngine == config.PDFEngineVision {
		pdfs = vision
	} else {
		pdfs = ocr.NewPDFTextExtractor()
	}

	recognizer, closer, err := ner.New(ctx, cfg.NERConfig())
	if err != nil {
		return fail(fmt.Errorf("failed to create entity recognizer: %w", err))
	}
	svc.closers = append(svc.closers, closer)

	extractor, err := fields.NewExtractor(recognizer, rules.Fields)
	if err != nil {
		return fail(err)
	}

	svc.pipeline = pipeline.NewService(
		textextract.NewAdapter(images, pdfs),
		extractor,
		kyc.NewChecker(rules.NameThreshold),
	)

	log.Debug().
		Str("ocr_engine", cfg.OCREngine).
		Str("pdf_engine", cfg.PDFEngine).
		Str("ner_backend", recognizer.Name()).
		Int("name_threshold", rules.NameThreshold).
		Msg("Services initialized")

	return svc, nil
}

// loadConfig loads and validates the environment configuration.
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, err
	}
	return cfg, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
