// Package config reads the few settings the server takes from the
// environment, with an optional .env file for local runs.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	StaticDir        string
	CountdownSeconds int
}

func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Port:             getenv("PORT", "3000"),
		StaticDir:        getenv("STATIC_DIR", "public"),
		CountdownSeconds: getenvInt("COUNTDOWN_SECONDS", 5),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
