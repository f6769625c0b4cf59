package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/siherrmann/mailrag/core/pipeline"
	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
	"github.com/spf13/viper"
)

const (
	storePostgres = "postgres"
	storeMemory   = "memory"
)

// Config is the CLI configuration, read from config.yaml and MAILRAG_* variables.
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Store    string         `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Chunker  ChunkerConfig  `mapstructure:"chunker"`
	Query    QueryConfig    `mapstructure:"query"`
	Embedder EmbedderConfig `mapstructure:"embedder"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Schema   string `mapstructure:"schema"`
	SSLMode  string `mapstructure:"sslmode"`
}

type ChunkerConfig struct {
	MaxChunkChars int `mapstructure:"max_chunk_chars"`
}

type QueryConfig struct {
	Mode string `mapstructure:"mode"`
	TopK int    `mapstructure:"top_k"`
}

type EmbedderConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Dimension int           `mapstructure:"dimension"`
	ModelDir  string        `mapstructure:"model_dir"`

	// Concurrency is the number of chunks of one email embedded in parallel.
	Concurrency int `mapstructure:"concurrency"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("store", storePostgres)
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("chunker.max_chunk_chars", pipeline.DefaultMaxChunkChars)
	v.SetDefault("query.mode", "")
	v.SetDefault("query.top_k", model.DefaultQueryConfig().TopK)
	v.SetDefault("embedder.enabled", true)
	v.SetDefault("embedder.timeout", pipeline.DefaultEmbedTimeout)
	v.SetDefault("embedder.dimension", pipeline.DefaultEmbeddingDim)
	v.SetDefault("embedder.model_dir", helper.ModelDir)
	v.SetDefault("embedder.concurrency", 1)
}

// newViper creates a viper instance searching config.yaml in
// $MAILRAG_CONFIG_DIR, ~/.config/mailrag and the working directory.
// The database keys also accept the MAILRAG_DB_* variables of the library.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MAILRAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"host", "port", "database", "username", "password", "schema", "sslmode"} {
		_ = v.BindEnv("database."+key, "MAILRAG_DATABASE_"+strings.ToUpper(key), "MAILRAG_DB_"+strings.ToUpper(key))
	}

	setDefaults(v)

	if dir := os.Getenv("MAILRAG_CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "mailrag"))
	}
	v.AddConfigPath(".")

	return v
}

// loadConfig reads the optional .env and config file and validates the result.
// A missing config file is not an error.
func loadConfig(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load()

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config; %w", err)
		}
	}

	config := &Config{}
	err = v.Unmarshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config; %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Store != storePostgres && c.Store != storeMemory {
		return fmt.Errorf("invalid store %q (use '%s' or '%s')", c.Store, storePostgres, storeMemory)
	}
	if c.Chunker.MaxChunkChars <= 0 {
		return fmt.Errorf("chunker.max_chunk_chars must be positive")
	}
	if c.Query.Mode != "" {
		if _, err := model.ParseQueryMode(c.Query.Mode); err != nil {
			return err
		}
	}
	if c.Query.TopK <= 0 {
		return fmt.Errorf("query.top_k must be positive")
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("embedder.dimension must be positive")
	}
	if c.Embedder.Timeout <= 0 {
		return fmt.Errorf("embedder.timeout must be positive")
	}
	if c.Embedder.Concurrency <= 0 {
		return fmt.Errorf("embedder.concurrency must be positive")
	}
	return nil
}

// DatabaseConfiguration converts the database section for helper.NewDatabase.
func (c *Config) DatabaseConfiguration() (*helper.DatabaseConfiguration, error) {
	config := &helper.DatabaseConfiguration{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Database: c.Database.Database,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Schema:   c.Database.Schema,
		SSLMode:  c.Database.SSLMode,
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (use debug, info, warn or error)", s)
	}
}
