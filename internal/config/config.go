// Package config loads calcmv settings from defaults, an optional YAML
// file, a .env file and CALCMV_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// DefaultPath is read when no path is given and CALCMV_CONFIG is unset.
const DefaultPath = "calcmv.yaml"

// Config represents the calcmv configuration
type Config struct {
	HistoryPath string `yaml:"history_path"`
	// Precision is the number of decimals shown for numeric values.
	Precision         int32        `yaml:"precision"`
	Color             string       `yaml:"color"`
	LogLevel          string       `yaml:"log_level"`
	JacobianHeuristic bool         `yaml:"jacobian_heuristic"`
	Server            ServerConfig `yaml:"server"`
	Batch             BatchConfig  `yaml:"batch"`
}

// ServerConfig represents the tool server settings
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// BatchConfig represents batch evaluation settings
type BatchConfig struct {
	Parallel int `yaml:"parallel"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HistoryPath:       "historial_mv.json",
		Precision:         6,
		Color:             "auto",
		LogLevel:          "warn",
		JacobianHeuristic: true,
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Batch: BatchConfig{Parallel: 4},
	}
}

// Load builds the configuration. An empty path falls back to CALCMV_CONFIG
// and then DefaultPath; only an explicitly named file must exist.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	explicit := path != ""
	if !explicit {
		if env := os.Getenv("CALCMV_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath
		}
	}

	config := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.UnmarshalWithOptions(data, config, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadEnvFiles loads .env if it exists. Variables already set win.
func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load(".env")
}

func applyEnv(c *Config) error {
	if v, ok := os.LookupEnv("CALCMV_HISTORY"); ok {
		c.HistoryPath = v
	}
	if v, ok := os.LookupEnv("CALCMV_COLOR"); ok {
		c.Color = v
	}
	if v, ok := os.LookupEnv("CALCMV_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("CALCMV_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv("CALCMV_PRECISION"); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: CALCMV_PRECISION: %v", ErrConfigValidation, err)
		}
		c.Precision = int32(n)
	}
	if v, ok := os.LookupEnv("CALCMV_PARALLEL"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CALCMV_PARALLEL: %v", ErrConfigValidation, err)
		}
		c.Batch.Parallel = n
	}
	if v, ok := os.LookupEnv("CALCMV_JACOBIAN_HEURISTIC"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: CALCMV_JACOBIAN_HEURISTIC: %v", ErrConfigValidation, err)
		}
		c.JacobianHeuristic = b
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.HistoryPath == "" {
		errs = append(errs, errors.New("history_path is empty"))
	}
	if c.Precision < 0 || c.Precision > 30 {
		errs = append(errs, fmt.Errorf("precision must be between 0 and 30, got %d", c.Precision))
	}
	switch strings.ToLower(c.Color) {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("color must be auto, always or never, got %q", c.Color))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Batch.Parallel < 1 {
		errs = append(errs, fmt.Errorf("batch.parallel must be at least 1, got %d", c.Batch.Parallel))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigValidation, errors.Join(errs...))
	}
	return nil
}

// SlogLevel converts LogLevel for slog handlers. Validate has already
// rejected unknown names.
func (c *Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log_level must be debug, info, warn or error, got %q", s)
}
