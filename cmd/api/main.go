package main

import (
	"os"

	"github.com/yigit/orghub/internal/bootstrap"
	"github.com/yigit/orghub/internal/pkg/logger"
	"github.com/yigit/orghub/internal/server"
)

// @title OrgHub API
// @version 1.0
// @description API for browsing college organizations and managing their members and applicants

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := os.Getenv("ORGHUB_CONFIG")
	if configPath == "" {
		configPath = bootstrap.DefaultConfigPath
	}

	srv, err := server.NewServer(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
