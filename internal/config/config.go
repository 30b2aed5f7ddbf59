// Package config centralizes environment-variable configuration for all
// three processes, loading a .env file when present (spec §6.5: "no flags
// required for the core").
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Load reads a .env file if one exists in the working directory. A missing
// file is not an error; explicit environment variables always win.
func Load() {
	_ = godotenv.Load()
}

// Getenv returns the environment variable named key, or fallback if unset
// or empty.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
