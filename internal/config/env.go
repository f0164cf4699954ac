package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvAPIURL is the single override for the API base address. It is also
// honored in a .env file.
const EnvAPIURL = "API_URL"

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setEnv := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
		setEnv("api_url")
	}
	if v := os.Getenv("TASKLIST_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
		setEnv("listen_addr")
	}
	if v := os.Getenv("TASKLIST_TIMEOUT"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TASKLIST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeoutSeconds = i
		setEnv("request_timeout_seconds")
	}
	if v := os.Getenv("TASKLIST_LOG_DIR"); v != "" {
		cfg.LogDir = v
		setEnv("log_dir")
	}

	// Logging configuration
	if v := os.Getenv("TASKLIST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := os.Getenv("TASKLIST_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := os.Getenv("TASKLIST_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		setEnv("log_timestamps")
	}
	if v := os.Getenv("TASKLIST_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		setEnv("log_caller")
	}
	return nil
}

// loadDotEnv reads API_URL from a .env file. Other keys in the file are
// ignored and the process environment is left untouched.
func loadDotEnv(cfg *Config, path string, sources map[string]ConfigSource) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	if v := values[EnvAPIURL]; v != "" {
		cfg.APIURL = v
		if sources != nil {
			sources["api_url"] = SourceDotEnv
		}
	}
	return nil
}
