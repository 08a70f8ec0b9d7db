// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"registrar/internal/app"
	"registrar/internal/domain/auth"
	"registrar/internal/infrastructure/storage/postgres"
	"registrar/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := logger.WithLogger(context.Background(), log.WithComponent("seed"))

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	registry := app.NewRegistry()
	backend, err := app.NewPostgresBackend(pool, registry)
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	c, err := app.NewContainer(backend, registry, app.Config{
		JWT:  auth.DefaultJWTConfig(getEnv("JWT_SECRET", "seed-only")),
		Auth: auth.DefaultServiceConfig(),
	})
	if err != nil {
		log.Fatalw("failed to build services", "error", err)
	}

	// The admin is created by the system actor; everything after it is
	// attributed to the admin.
	adminID, err := app.SeedAdmin(ctx, c, getEnv("ADMIN_EMAIL", "admin@registrar.local"), getEnv("ADMIN_PASSWORD", "Admin123!"))
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}
	log.Infow("admin user ready", "user_id", adminID)

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := app.SeedDemo(ctx, c, adminID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
