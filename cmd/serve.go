package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"kyccheck/internal/logger"
	"kyccheck/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the KYC check HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  GET  /            welcome message
  POST /check-kyc/  multipart form with file fields doc1 and doc2

Relevant environment variables:
  SERVER_ADDR     - listen address (default 127.0.0.1:8000)
  MAX_UPLOAD_MB   - request size limit in MB (default 20)
  UPLOAD_TMP_DIR  - parent directory for per-request upload folders`,
	Example: `  # Serve on the default address
  kyccheck serve

  # Listen on all interfaces
  kyccheck serve --addr 0.0.0.0:8000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides SERVER_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("serve")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.ServerAddr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close backend clients")
		}
	}()

	srv := server.New(svc.pipeline, server.Options{
		Addr:           cfg.ServerAddr,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		TempDir:        cfg.UploadTmpDir,
	})

	log.Info().
		Str("addr", cfg.ServerAddr).
		Int("max_upload_mb", cfg.MaxUploadMB).
		Msg("Starting KYC API")

	return srv.ListenAndServe(ctx)
}
