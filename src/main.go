package main

import (
	"os"

	"github.com/nas-ai/filemanager/src/config"
	"github.com/nas-ai/filemanager/src/server"
	"github.com/sirupsen/logrus"

	_ "github.com/nas-ai/filemanager/docs" // swagger docs
)

// @title NAS File Manager API
// @version 1.0
// @description File-manager backend for Vuefinder-style frontends over named storages (memory, local disk, S3).

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration (FAIL-FAST on invalid storages)
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	storageNames := make([]string, 0, len(cfg.Storages))
	for _, sc := range cfg.Storages {
		storageNames = append(storageNames, sc.Name)
	}
	logger.WithFields(logrus.Fields{
		"port":         cfg.Port,
		"environment":  cfg.Environment,
		"log_level":    cfg.LogLevel,
		"enable_cors":  cfg.EnableCORS,
		"cors_origins": cfg.CORSOrigins,
		"rate_limit":   cfg.RateLimitPerMin,
		"storages":     storageNames,
	}).Info("Starting NAS file manager")

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize server")
	}
	defer srv.Close()

	if err := srv.Run(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		srv.Close()
		os.Exit(1)
	}
}
