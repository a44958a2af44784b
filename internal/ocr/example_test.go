package ocr_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"
	"kyccheck/internal/ocr"
)

// Example demonstrates OCR of an identity card photo with the local Tesseract engine.
func Example() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	image, err := os.ReadFile("pan_card.jpg")
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}

	engine := ocr.NewTesseractEngine("eng")
	text, err := engine.RecognizeImage(ctx, image)
	if err != nil {
		log.Fatalf("Failed to recognize image: %v", err)
	}

	fmt.Printf("Extracted text (%d characters):\n%s\n", len(text), text)
}

// ExampleNewPDFTextExtractor demonstrates reading the text layer of an e-Aadhar PDF.
func ExampleNewPDFTextExtractor() {
	data, err := os.ReadFile("e_aadhar.pdf")
	if err != nil {
		log.Fatalf("Failed to read PDF: %v", err)
	}

	pages, err := ocr.NewPDFTextExtractor().ExtractPDF(context.Background(), data)
	if err != nil {
		log.Fatalf("Failed to extract PDF: %v", err)
	}

	fmt.Printf("Pages: %d\n%s", len(pages), strings.Join(pages, ""))
}

// ExampleGoogleVisionOCRService_ProcessPDFWithMetadata demonstrates scanned PDF OCR with Cloud Vision.
func ExampleGoogleVisionOCRService_ProcessPDFWithMetadata() {
	ctx := context.Background()

	// Credentials are normally resolved by the config package
	service, err := ocr.NewGoogleVisionOCRService(ctx, option.WithCredentialsFile(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")))
	if err != nil {
		log.Fatalf("Failed to create OCR service: %v", err)
	}
	defer service.Close()

	data, err := os.ReadFile("scanned_pan.pdf")
	if err != nil {
		log.Fatalf("Failed to read PDF: %v", err)
	}

	result, err := service.ProcessPDFWithMetadata(ctx, data)
	if err != nil {
		log.Fatalf("Failed to process PDF: %v", err)
	}

	fmt.Printf("OCR Results:\n")
	fmt.Printf("  Pages processed: %d\n", result.PageCount)
	fmt.Printf("  Confidence: %.2f%%\n", result.Confidence*100)
	fmt.Printf("  Languages: %s\n", strings.Join(result.LanguageCodes, ", "))
	fmt.Printf("  Processing time: %v\n", result.ProcessingDuration)
	fmt.Printf("\nExtracted text:\n%s\n", strings.Join(result.Pages, ""))
}
