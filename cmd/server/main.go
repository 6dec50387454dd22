package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"bunyang/server/config"
	"bunyang/server/internal/api"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using process environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.ServiceKey == "" {
		logger.Warn("SERVICE_KEY is not set; trade registry queries will fail")
	}

	// Load the legal district reference table
	logger.Infof("Loading district table from: %s", cfg.DistrictTablePath)
	if err := config.LoadDistrictTable(cfg.DistrictTablePath); err != nil {
		logger.WithError(err).Warn("Failed to load district table; district search disabled")
	}

	// Initialize router
	router := gin.Default()

	// Apply CORS middleware
	router.Use(cors.Default())

	// Define routes
	api.SetupRoutes(router, cfg, logger)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
