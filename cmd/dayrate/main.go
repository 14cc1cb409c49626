package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"dayrate/internal/api"
	"dayrate/internal/db"
)

func main() {
	// .env is for local development; in production the variables come from
	// the environment and the file is simply absent.
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	dbPath := getEnv("DB_PATH", filepath.Join("data", "dayrate.db"))
	port := getEnv("PORT", "3001")
	frontendOrigin := getEnv("FRONTEND_URL", "http://localhost:5173")
	cookieSecure := getEnv("COOKIE_SECURE", "") == "true"

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	// Stale refresh tokens only ever accumulate; sweep them once per start.
	if err := db.NewRepositories(database).Tokens.DeleteExpiredBefore(time.Now().UTC()); err != nil {
		log.Warn("expired token sweep failed", zap.Error(err))
	}

	handler := api.NewHandler(database, secretKey, log, cookieSecure)

	app := fiber.New(fiber.Config{
		AppName:               "dayrate",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     frontendOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("dayrate listening",
		zap.String("addr", "0.0.0.0:"+port),
		zap.String("db", dbPath),
	)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
