// Package config loads qe settings.
//
// Precedence, lowest to highest:
//  1. Defaults
//  2. The YAML config file, when one is given
//  3. The .env file in the working directory, if it exists
//  4. QE_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/query"
)

// Environment variable names.
const (
	EnvDialect  = "QE_DIALECT"
	EnvMaxDepth = "QE_MAX_DEPTH"
	EnvMaxNodes = "QE_MAX_NODES"
	EnvSchema   = "QE_SCHEMA"
	EnvDB       = "QE_DB"
	EnvTable    = "QE_TABLE"
	EnvLogLevel = "QE_LOG_LEVEL"
	EnvHistory  = "QE_HISTORY"
)

// DefaultEnvFile is the .env file Load reads when present.
const DefaultEnvFile = ".env"

// Config holds qe settings.
type Config struct {
	// Dialect is the SQL dialect name (sqlite, postgres).
	Dialect string `yaml:"dialect"`

	// MaxDepth and MaxNodes bound decoded queries. Zero means the default.
	MaxDepth int `yaml:"max_depth"`
	MaxNodes int `yaml:"max_nodes"`

	// Schema is a YAML or CUE schema file describing the table's columns.
	Schema string `yaml:"schema"`

	// DB is a database DSN to introspect the table's columns from.
	DB string `yaml:"db"`

	// Table is the default table compiled queries target.
	Table string `yaml:"table"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// History is a SQLite file compilations are recorded in. Empty
	// disables recording.
	History string `yaml:"history"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Dialect:  "sqlite",
		MaxDepth: query.DefaultMaxDepth,
		MaxNodes: query.DefaultMaxNodes,
		LogLevel: "warn",
	}
}

// Load reads settings from the YAML file at path (skipped when path is
// empty), the .env file and the process environment.
func Load(path string) (*Config, error) {
	return LoadWith(path, DefaultEnvFile, environ())
}

// LoadWith is Load with an explicit .env file and environment, for tests.
// A missing .env file is not an error; a missing config file is.
func LoadWith(path, envFile string, env map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	merged := map[string]string{}
	if envFile != "" {
		dotenv, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for k, v := range dotenv {
				merged[k] = v
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}
	// Explicit environment variables win over the .env file.
	for k, v := range env {
		merged[k] = v
	}

	if err := cfg.applyEnv(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	strs := map[string]*string{
		EnvDialect:  &c.Dialect,
		EnvSchema:   &c.Schema,
		EnvDB:       &c.DB,
		EnvTable:    &c.Table,
		EnvLogLevel: &c.LogLevel,
		EnvHistory:  &c.History,
	}
	for key, dst := range strs {
		if v, ok := env[key]; ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		EnvMaxDepth: &c.MaxDepth,
		EnvMaxNodes: &c.MaxNodes,
	}
	for key, dst := range ints {
		v, ok := env[key]
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		*dst = n
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if _, err := predicate.DialectByName(c.Dialect); err != nil {
		return err
	}
	if c.MaxDepth < 0 || c.MaxNodes < 0 {
		return fmt.Errorf("limits must not be negative (max_depth=%d, max_nodes=%d)", c.MaxDepth, c.MaxNodes)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Schema != "" && c.DB != "" {
		return fmt.Errorf("schema file and database cannot both be set")
	}
	return nil
}

// SQLDialect returns the configured dialect.
func (c *Config) SQLDialect() (predicate.Dialect, error) {
	return predicate.DialectByName(c.Dialect)
}

// Limits returns the configured decode limits.
func (c *Config) Limits() query.Limits {
	return query.Limits{MaxDepth: c.MaxDepth, MaxNodes: c.MaxNodes}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

func environ() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "QE_") {
			env[k] = v
		}
	}
	return env
}
