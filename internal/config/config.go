package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"kyccheck/internal/logger"
	"kyccheck/internal/ner"
)

// Text acquisition engines.
const (
	OCREngineTesseract = "tesseract"
	OCREngineVision    = "vision"

	PDFEngineText   = "text"
	PDFEngineVision = "vision"
)

type Config struct {
	// HTTP Server Configuration
	ServerAddr   string
	MaxUploadMB  int
	UploadTmpDir string

	// Text Acquisition Configuration
	OCREngine     string
	PDFEngine     string
	TesseractLang string

	// Entity Recognition Configuration
	NERBackend   string
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string
	GoogleCredentialsFile      string
	GoogleCredentialsJSON      string

	// Extraction Rules Configuration
	RulesFile string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		ServerAddr:                 getEnv("SERVER_ADDR", "127.0.0.1:8000"),
		MaxUploadMB:                getEnvInt("MAX_UPLOAD_MB", 20),
		UploadTmpDir:               getEnv("UPLOAD_TMP_DIR", ""),
		OCREngine:                  strings.ToLower(getEnv("OCR_ENGINE", OCREngineTesseract)),
		PDFEngine:                  strings.ToLower(getEnv("PDF_ENGINE", PDFEngineText)),
		TesseractLang:              getEnv("TESSERACT_LANG", "eng"),
		NERBackend:                 strings.ToLower(getEnv("NER_BACKEND", ner.BackendOpenAI)),
		OpenAIAPIKey:               getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:                getEnv("OPENAI_MODEL", ""),
		GeminiAPIKey:               getEnv("GEMINI_API_KEY", ""),
		GeminiModel:                getEnv("GEMINI_MODEL", ""),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		GoogleCredentialsFile:      getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleCredentialsJSON:      getEnv("GOOGLE_CREDENTIALS", ""),
		RulesFile:                  getEnv("RULES_FILE", ""),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be a positive integer")
	}

	switch c.OCREngine {
	case OCREngineTesseract, OCREngineVision:
	default:
		return fmt.Errorf("OCR_ENGINE must be %q or %q, got %q", OCREngineTesseract, OCREngineVision, c.OCREngine)
	}
	switch c.PDFEngine {
	case PDFEngineText, PDFEngineVision:
	default:
		return fmt.Errorf("PDF_ENGINE must be %q or %q, got %q", PDFEngineText, PDFEngineVision, c.PDFEngine)
	}

	switch c.NERBackend {
	case ner.BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when NER_BACKEND=%s", ner.BackendOpenAI)
		}
	case ner.BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when NER_BACKEND=%s", ner.BackendGemini)
		}
	case ner.BackendDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required when NER_BACKEND=%s", ner.BackendDocumentAI)
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required when NER_BACKEND=%s", ner.BackendDocumentAI)
		}
	default:
		return fmt.Errorf("NER_BACKEND must be one of %s, %s, %s, got %q",
			ner.BackendOpenAI, ner.BackendGemini, ner.BackendDocumentAI, c.NERBackend)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// MaxUploadBytes is the per-request upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// GoogleClientOptions returns the credential options for Google API clients.
// Inline JSON takes precedence over a credentials file; with neither set the
// clients use application default credentials.
func (c *Config) GoogleClientOptions() []option.ClientOption {
	switch {
	case c.GoogleCredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(c.GoogleCredentialsJSON))}
	case c.GoogleCredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(c.GoogleCredentialsFile)}
	default:
		return nil
	}
}

// NERConfig returns the entity recognizer configuration.
func (c *Config) NERConfig() ner.Config {
	return ner.Config{
		Backend: c.NERBackend,
		OpenAI: ner.OpenAIConfig{
			APIKey: c.OpenAIAPIKey,
			Model:  c.OpenAIModel,
		},
		Gemini: ner.GeminiConfig{
			APIKey: c.GeminiAPIKey,
			Model:  c.GeminiModel,
		},
		DocumentAI: ner.DocumentAIConfig{
			ProjectID:        c.GoogleCloudProject,
			Location:         c.GoogleCloudLocation,
			ProcessorID:      c.DocumentAIProcessorID,
			ProcessorVersion: c.DocumentAIProcessorVersion,
			ClientOptions:    c.GoogleClientOptions(),
		},
	}
}

// TesseractLanguages splits TESSERACT_LANG ("eng+hin" or "eng,hin").
func (c *Config) TesseractLanguages() []string {
	return strings.FieldsFunc(c.TesseractLang, func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return n
}
