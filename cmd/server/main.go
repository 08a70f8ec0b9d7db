// Package main is the entry point for the Registrar API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"registrar/internal/app"
	"registrar/internal/domain/auth"
	v1 "registrar/internal/infrastructure/http/v1"
	"registrar/internal/infrastructure/http/v1/handlers"
	"registrar/internal/infrastructure/storage/postgres"
	"registrar/pkg/logger"
)

var version = "dev"

func main() {
	memoryMode := flag.Bool("memory", false, "keep all data in process (development only)")
	flag.Parse()

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	registry := app.NewRegistry()

	// --- Storage ---
	var backend *app.Backend
	if *memoryMode {
		log.Warn("starting registrar with in-memory storage; data is lost on exit")
		backend = app.NewMemoryBackend()
	} else {
		poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
		if maxConns := getEnvInt("POOL_MAX_CONNS", 0); maxConns > 0 {
			poolCfg.MaxConns = int32(maxConns)
		}
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		log.Infow("database connection established", "max_conns", poolCfg.MaxConns)

		backend, err = app.NewPostgresBackend(pool, registry)
		if err != nil {
			log.Fatalw("failed to initialize storage", "error", err)
		}
	}

	// --- Services ---
	jwtConfig := auth.DefaultJWTConfig(getEnv("JWT_SECRET", "your-secret-key-change-in-production"))
	jwtConfig.AccessTokenTTL = getEnvDuration("ACCESS_TOKEN_TTL", jwtConfig.AccessTokenTTL)

	c, err := app.NewContainer(backend, registry, app.Config{
		JWT:  jwtConfig,
		Auth: auth.DefaultServiceConfig(),
	})
	if err != nil {
		log.Fatalw("failed to build services", "error", err)
	}
	log.Infow("services initialized",
		"storage", backend.Kind,
		"pipeline", c.Units.Pipeline().StageNames(),
		"policies", c.Policies.Names(),
	)

	if *memoryMode {
		adminID, err := app.SeedAdmin(ctx, c, getEnv("ADMIN_EMAIL", "admin@registrar.local"), getEnv("ADMIN_PASSWORD", "Admin123!"))
		if err != nil {
			log.Fatalw("failed to seed admin user", "error", err)
		}
		if err := app.SeedDemo(ctx, c, adminID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: c.JWT,
		Policies:     c.Policies,
		Services: v1.Services{
			Auth:        c.Auth,
			Courses:     c.Courses,
			Students:    c.Students,
			Professors:  c.Professors,
			Enrollments: c.Enrollments,
			Audit:       c.Audit,
		},
		MetadataRegistry: c.Registry,
		DB:               backend.DB,
		Info: handlers.AppInfo{
			Name:     "registrar",
			Version:  version,
			Storage:  backend.Kind,
			Pipeline: c.Units.Pipeline().StageNames(),
		},
		Debug: getEnv("APP_ENV", "development") == "development",
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port, "storage", backend.Kind)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
