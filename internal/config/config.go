// Package config loads runtime configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the process needs at startup.
type Config struct {
	DBConnStr string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBConnStr: buildConnStr(),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// buildConnStr uses DB_CONN_STR verbatim when set, otherwise assembles the
// connection string from individual vars (Docker friendly).
func buildConnStr() string {
	if s := os.Getenv("DB_CONN_STR"); s != "" {
		return s
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "schoolpay")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// NewLogger builds the process logger from the config.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", c.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(c.LogFormat) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
