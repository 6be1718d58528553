package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dentasys/clinic-api/internal/config"
	"github.com/dentasys/clinic-api/internal/handlers"
	"github.com/dentasys/clinic-api/internal/services"
	"github.com/dentasys/clinic-api/internal/store/mongostore"
	"github.com/dentasys/clinic-api/internal/utils"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("no .env file found, relying on environment variables")
	}

	cfg := config.New()
	if cfg.Env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is not set")
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDatabase)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to create indexes")
	}
	logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")

	// --- Services & Handlers ---
	h := handlers.NewHandler(
		mongostore.New(db),
		services.NewTokenInfoVerifier(),
		services.NewChatbotService(cfg.GeminiAPIKey),
		logger,
	)

	r := handlers.NewRouter(h, logger, cfg.AllowedOrigins)

	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
