package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Backend connection
	ServerURL string `yaml:"server_url"`
	Project   string `yaml:"project"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	// raw log level string from the YAML file, resolved in Load
	LogLevelName string `yaml:"log_level"`
}

// Load reads configuration from the optional YAML config file, then lets
// environment variables override it. Missing file is not an error.
func Load() (Config, error) {
	cfg := Config{
		ServerURL: "http://localhost:8000",
		LogFile:   "/tmp/ingestctl.log",
		LogLevel:  slog.LevelInfo,
	}

	if path := configFilePath(); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.ServerURL = getEnv("INGESTCTL_SERVER_URL", cfg.ServerURL)
	cfg.Project = getEnv("INGESTCTL_PROJECT", cfg.Project)
	cfg.LogFile = getEnv("INGESTCTL_LOG_FILE", cfg.LogFile)
	cfg.LogLevelName = getEnv("INGESTCTL_LOG_LEVEL", cfg.LogLevelName)
	if cfg.LogLevelName != "" {
		cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	}

	return cfg, nil
}

// configFilePath resolves the YAML config location:
// $INGESTCTL_CONFIG, else ~/.config/ingestctl/config.yaml.
func configFilePath() string {
	if p := os.Getenv("INGESTCTL_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ingestctl", "config.yaml")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
