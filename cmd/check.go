package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"kyccheck/internal/logger"
	"kyccheck/internal/pipeline"
	"kyccheck/pkg/models"
)

// ErrCheckFailed is returned by "check --strict" when the documents disagree.
var ErrCheckFailed = errors.New("KYC check FAILED")

var checkCmd = &cobra.Command{
	Use:   "check [doc1] [doc2]",
	Short: "Cross-check two local identity documents",
	Long: `Run the full KYC check on two local files (JPEG, PNG or PDF) and print the
JSON report: per-field name and date of birth checks, the extracted fields of
both documents and the raw text that was read.

Media types are detected from file content, falling back to the extension.`,
	Example: `  # Compare a PAN card photo with an e-Aadhar PDF
  kyccheck check pan.jpg aadhar.pdf

  # Write the report to a file and exit non-zero on a failed check
  kyccheck check pan.jpg aadhar.pdf -o report.json --strict`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	checkCmd.Flags().Bool("strict", false, "Exit with an error when the check FAILED")
	checkCmd.Flags().Bool("no-raw-text", false, "Omit the raw extracted text from the report")
	checkCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("check")

	outputPath, _ := cmd.Flags().GetString("output")
	strict, _ := cmd.Flags().GetBool("strict")
	noRawText, _ := cmd.Flags().GetBool("no-raw-text")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	log.Info().
		Str("doc1", args[0]).
		Str("doc2", args[1]).
		Bool("strict", strict).
		Int("timeout", timeoutSecs).
		Msg("Starting KYC check")

	docs := make([]pipeline.Document, len(args))
	for i, path := range args {
		doc, closeFn, err := openDocument(path, log)
		if err != nil {
			return err
		}
		defer closeFn()
		docs[i] = doc
	}

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

	resp, err := svc.pipeline.Check(ctx, docs[0], docs[1])
	if err != nil {
		if errors.Is(err, pipeline.ErrUnreadableDocument) {
			return fmt.Errorf("could not read text from one or both files, use clearer images or text-based PDFs: %w", err)
		}
		return fmt.Errorf("KYC check failed: %w", err)
	}
	if noRawText {
		resp.DebugRawText = models.DocumentPair[string]{}
	}

	if err := writeJSONOutput(resp, outputPath, log); err != nil {
		return err
	}

	log.Info().
		Str("status", resp.Status).
		Strs("issues", resp.Issues).
		Msg("KYC check completed")

	if strict && resp.Status == models.ReportFailed {
		return ErrCheckFailed
	}
	return nil
}

// openDocument validates path and opens it as a pipeline document.
func openDocument(path string, log zerolog.Logger) (pipeline.Document, func(), error) {
	if _, err := validateDocumentFile(path, log); err != nil {
		return pipeline.Document{}, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", path).
			Msg("Failed to open document file")
		return pipeline.Document{}, nil, fmt.Errorf("failed to open document file: %w", err)
	}
	closeFn := func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("file", path).Msg("Failed to close document file")
		}
	}

	mediaType, err := detectMediaType(f, path)
	if err != nil {
		closeFn()
		return pipeline.Document{}, nil, err
	}

	log.Debug().
		Str("file", path).
		Str("media_type", mediaType).
		Msg("Document opened")

	return pipeline.Document{Name: path, Content: f, MediaType: mediaType}, closeFn, nil
}

// writeJSONOutput writes v as indented JSON to outputPath or stdout.
func writeJSONOutput(v any, outputPath string, log zerolog.Logger) error {
	outputData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON output")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	outputData = append(outputData, '\n')

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0o644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Results written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
