package config

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	// Optional vars fall back to an empty string, which individual
	// components treat as "feature disabled".
	getOptionalEnv := func(key string) string {
		return os.Getenv(key)
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Port:          getEnv("PORT"),
		Slack: SlackConfig{
			Token:     getOptionalEnv("SLACK_BOT_TOKEN"),
			ChannelID: getOptionalEnv("SLACK_CHANNEL_ID"),
		},
		Turso: TursoConfig{
			PrimaryURL: getOptionalEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getOptionalEnv("TURSO_AUTH_TOKEN"),
		},
		ProjectID: getOptionalEnv("GCP_PROJECT"),
	}
	return cfg
}
