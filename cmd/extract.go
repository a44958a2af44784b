package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"kyccheck/internal/logger"
	"kyccheck/internal/ner"
	"kyccheck/internal/pipeline"
	"kyccheck/pkg/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract text and KYC fields from one identity document",
	Long: `Read a single identity document (JPEG, PNG or PDF), print the text that was
recognized and the PAN, Aadhar number, name and date of birth found in it.

Useful for checking what the OCR engine and entity recognizer see before
running a full check.`,
	Example: `  # Human-readable summary
  kyccheck extract pan.jpg

  # JSON including the raw text
  kyccheck extract aadhar.pdf --json -o fields.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Bool("json", false, "Output as JSON")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	doc, closeFn, err := openDocument(args[0], log)
	if err != nil {
		return err
	}
	defer closeFn()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	svc, err := buildServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.pipeline.ExtractDocument(ctx, doc)
	if err != nil {
		return handleExtractError(err, result)
	}

	if jsonOutput {
		return writeJSONOutput(result, outputPath, log)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== %s (%s) ===\n", result.Name, result.MediaType)
	fmt.Fprintf(&out, "PAN:      %s\n", display(result.Fields.PANNumber))
	fmt.Fprintf(&out, "Aadhar:   %s\n", display(result.Fields.AadharNumber))
	fmt.Fprintf(&out, "Name:     %s\n", display(result.Fields.Name))
	fmt.Fprintf(&out, "DOB:      %s\n", display(result.Fields.DOB))
	out.WriteString("\n=== Extracted Text ===\n\n")
	out.WriteString(result.RawText)

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(out.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().Str("output_file", outputPath).Msg("Results written to file")
		return nil
	}
	_, err = os.Stdout.WriteString(out.String())
	return err
}

func display(p *string) string {
	if p == nil {
		return "(not found)"
	}
	return models.Value(p)
}

// handleExtractError provides user-friendly error messages for extraction failures
func handleExtractError(err error, result *pipeline.DocumentResult) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("processing timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("processing was canceled")
	case errors.Is(err, pipeline.ErrUnreadableDocument):
		return fmt.Errorf("no readable text found (outcome: %s). Use a clearer image or a text-based PDF", result.Outcome)
	case errors.Is(err, ner.ErrMissingCredentials):
		return fmt.Errorf("entity recognizer credentials are missing or invalid: %w", err)
	case errors.Is(err, ner.ErrQuotaExceeded):
		return fmt.Errorf("entity recognizer quota exceeded: %w", err)
	default:
		return fmt.Errorf("extraction failed: %w", err)
	}
}
