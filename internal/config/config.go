// Package config loads application settings from the environment
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings
type Config struct {
	Addr          string
	WorkDir       string
	SessionTTL    time.Duration
	Engine        string
	ASCIISTL      bool
	PreviewWidth  int
	PreviewHeight int
}

// Load reads the settings, after loading a .env file when one exists
func Load() *Config {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() *Config {
	addr := getEnv("GOBOX_ADDR", "")
	if addr == "" {
		addr = ":" + getEnv("PORT", "8080")
	}

	return &Config{
		Addr:          addr,
		WorkDir:       getEnv("GOBOX_WORKDIR", os.TempDir()),
		SessionTTL:    time.Duration(getEnvAsInt("GOBOX_SESSION_TTL", 600)) * time.Second,
		Engine:        getEnv("GOBOX_ENGINE", "builtin"),
		ASCIISTL:      getEnvAsBool("GOBOX_STL_ASCII", false),
		PreviewWidth:  getEnvAsInt("GOBOX_PREVIEW_WIDTH", 800),
		PreviewHeight: getEnvAsInt("GOBOX_PREVIEW_HEIGHT", 240),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
