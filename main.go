package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"ablab/adapters/postgres"
	"ablab/app"
	"ablab/internal"
	"ablab/internal/config"
	"ablab/ports"
	"ablab/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	// Reports live in Postgres when a URL is configured, in memory otherwise
	var repo ports.ReportRepository
	if appConfig.Database.URL != "" {
		db, err := sqlx.Connect("postgres", appConfig.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		pgRepo := postgres.NewReportRepository(db)
		if err := pgRepo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare report schema: %v", err)
		}
		repo = pgRepo
		logger.Info("report storage: postgres")
	} else {
		repo = app.NewMemoryReportRepository()
		logger.Info("report storage: in-memory")
	}

	server := ui.NewApp(ui.Config{
		Port:     appConfig.Server.Port,
		Defaults: appConfig.Params(),
	}, repo, logger)

	log.Fatal(server.Start(appConfig.Server.Port))
}
