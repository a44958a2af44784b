package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"kyccheck/cmd"
	"kyccheck/internal/config"
	"kyccheck/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Commands load and validate the full configuration themselves; here it
	// only drives logger setup.
	cfg, err := config.Load()
	if err != nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting kyccheck")

	cmd.Execute()

	log.Debug().Msg("kyccheck shutdown")
	os.Exit(0)
}
