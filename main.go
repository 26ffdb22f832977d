// @title Vocaman API
// @version 2.0
// @description Vocabulary word-card backend: datasets, game sessions and parent-assigned homework.

// @host localhost:3000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"vocaman_backend/internal/app"
	"vocaman_backend/internal/config"
	"vocaman_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations on startup even in release mode")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Sync()

	if *migrateOnly {
		logger.Log.Info("Migration-only run finished")
		return
	}

	application.Run()
}
