package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadSettings
const (
	EnvConfigFile     = "CIRCUIT_TRACER_CONFIG"
	EnvBoardsDir      = "CIRCUIT_BOARDS_DIR"
	EnvHost           = "CIRCUIT_HOST"
	EnvPort           = "CIRCUIT_PORT"
	EnvLogLevel       = "CIRCUIT_LOG_LEVEL"
	EnvTraceTimeout   = "CIRCUIT_TRACE_TIMEOUT"
	EnvRunRetention   = "CIRCUIT_RUN_RETENTION"
	EnvDefaultStorage = "CIRCUIT_DEFAULT_STORAGE"
)

// Settings holds application configuration
type Settings struct {
	BoardsDir      string        `yaml:"boards_dir"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	LogLevel       string        `yaml:"log_level"`       // debug, info, warn, error
	TraceTimeout   time.Duration `yaml:"trace_timeout"`   // bound on one HTTP-triggered search
	RunRetention   time.Duration `yaml:"run_retention"`   // how long finished runs stay listed
	DefaultStorage string        `yaml:"default_storage"` // stack or queue
}

// DefaultSettings returns the built-in configuration
func DefaultSettings() Settings {
	return Settings{
		BoardsDir:      "boards",
		Host:           "localhost",
		Port:           8080,
		LogLevel:       "info",
		TraceTimeout:   30 * time.Second,
		RunRetention:   24 * time.Hour,
		DefaultStorage: "queue",
	}
}

// Addr returns host:port
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadSettings builds Settings from defaults, the YAML file at path (if path is
// non-empty, or CIRCUIT_TRACER_CONFIG names one), a .env file in the working
// directory and CIRCUIT_* environment variables, in that order.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	// Load .env file if it exists; variables already set win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return settings, fmt.Errorf("failed to load .env file: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return settings, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
	}

	if err := settings.applyEnv(); err != nil {
		return settings, err
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// applyEnv overrides fields from environment variables
func (s *Settings) applyEnv() error {
	if v := os.Getenv(EnvBoardsDir); v != "" {
		s.BoardsDir = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		s.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		s.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(EnvTraceTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTraceTimeout, err)
		}
		s.TraceTimeout = d
	}
	if v := os.Getenv(EnvRunRetention); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRunRetention, err)
		}
		s.RunRetention = d
	}
	if v := os.Getenv(EnvDefaultStorage); v != "" {
		s.DefaultStorage = v
	}
	return nil
}

// Validate checks settings for values the server cannot run with
func (s Settings) Validate() error {
	if s.BoardsDir == "" {
		return fmt.Errorf("settings validation: boards_dir is required")
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("settings validation: port must be between 0 and 65535, got %d", s.Port)
	}
	if s.TraceTimeout < 0 {
		return fmt.Errorf("settings validation: trace_timeout cannot be negative")
	}
	if s.RunRetention <= 0 {
		return fmt.Errorf("settings validation: run_retention must be positive")
	}
	switch s.DefaultStorage {
	case "stack", "queue":
	default:
		return fmt.Errorf("settings validation: default_storage must be stack or queue, got %q", s.DefaultStorage)
	}
	return nil
}
