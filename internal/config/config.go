package config

import (
	"os"
	"strings"
)

type Config struct {
	Port           string
	Env            string
	MongoURI       string
	MongoDatabase  string
	JWTSecret      string
	AllowedOrigins []string
	GeminiAPIKey   string
}

func New() *Config {
	allowedOrigins := []string{"http://localhost:3000"}
	if s := os.Getenv("ALLOWED_ORIGINS"); s != "" {
		allowedOrigins = strings.Split(s, ",")
	}

	return &Config{
		Port:           getEnvOrDefault("API_PORT", "8080"),
		Env:            getEnvOrDefault("ENVIRONMENT", "development"),
		MongoURI:       getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnvOrDefault("MONGO_DATABASE", "dentasys"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: allowedOrigins,
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
