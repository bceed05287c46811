package main

import (
	"os"

	"github.com/peerconnect/api/internal/pkg/logger"
	"github.com/peerconnect/api/internal/server"
)

// @title PeerConnect API
// @version 1.0
// @description Campus activity RSVP backend with waitlists, activity chat and mention notifications

// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
