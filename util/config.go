package util

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env from the current working directory into the process
// environment. A missing file is not an error worth surfacing; callers fall
// back to system env and defaults.
func LoadEnv() {
	_ = godotenv.Load()
}

// GetEnv returns the value of the environment variable named by key, or
// fallback if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by
// key, or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}
