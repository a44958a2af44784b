// Package ocr turns uploaded identity document files into raw text.
//
// Image backends:
//   - TesseractEngine: local Tesseract OCR via gosseract (TESSERACT_LANG)
//   - GoogleVisionOCRService: Cloud Vision DOCUMENT_TEXT_DETECTION
//
// PDF backends:
//   - PDFTextExtractor: reads the embedded text layer page by page
//   - GoogleVisionOCRService: Cloud Vision file annotation (scanned PDFs)
//
// Google credentials are taken from the client options passed by the caller
// (GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS inline JSON,
// falling back to application default credentials).
//
// Cloud Vision API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Maximum pages: 5 pages for synchronous processing
package ocr

import (
	"context"
	"time"
)

// ImageRecognizer extracts text from an encoded image (JPEG or PNG).
type ImageRecognizer interface {
	// RecognizeImage returns the recognized text. An image without any
	// readable text yields an empty string and no error.
	RecognizeImage(ctx context.Context, image []byte) (string, error)
}

// PDFExtractor extracts text from a PDF document.
type PDFExtractor interface {
	// ExtractPDF returns the text of each page in page order.
	ExtractPDF(ctx context.Context, pdf []byte) ([]string, error)
}

// OCRResult contains the results of PDF processing with metadata.
type OCRResult struct {
	// Pages holds the text of each page in page order.
	Pages []string `json:"pages"`

	// PageCount is the number of pages that were processed.
	PageCount int `json:"page_count"`

	// Confidence is the average confidence score across all detected text (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// ProcessedAt is the timestamp when the OCR processing completed.
	ProcessedAt time.Time `json:"processed_at"`

	// LanguageCodes contains the detected languages in the document.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessingDuration is how long the OCR processing took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// HasPDFHeader reports whether data starts with the PDF magic bytes.
func HasPDFHeader(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "%PDF"
}
