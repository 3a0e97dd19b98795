package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

const (
	DatabaseURLEnv = "DATABASE_URL"
	SchemaEnv      = "FKSYNC_SCHEMA"
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("ℹ️  No .env file found, continuing...")
	}
}

// GetDatabaseURL returns override when set, otherwise DATABASE_URL.
func GetDatabaseURL(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	url := os.Getenv(DatabaseURLEnv)
	if url == "" {
		return "", fmt.Errorf("%s not set (in .env or environment)", DatabaseURLEnv)
	}
	return url, nil
}

// GetSchemaName resolves the namespace: the flag wins, then FKSYNC_SCHEMA,
// then fallback.
func GetSchemaName(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(SchemaEnv); env != "" {
		return env
	}
	return fallback
}
