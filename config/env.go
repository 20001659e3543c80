package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env into the process environment outside of Railway,
// where variables come from the platform instead.
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") != "" {
		return
	}
	if err := godotenv.Load(); err != nil {
		logger.Debug(".env file not loaded", "err", err)
	}
}
