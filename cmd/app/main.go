package main

import (
	"os"

	"lodge/config"
	"lodge/di"
	"lodge/helper"
	"lodge/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Lodge API
// @version 1.0
// @description Hotel room catalogue, availability, booking and back-office API.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)
	logger.SetOutput(cfg, os.Stdout)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
