package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Matching MatchingConfig `mapstructure:"matching"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Session  SessionConfig  `mapstructure:"session"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb"`
}

// IsProduction reports whether the server runs in production mode
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
	File   string `mapstructure:"file"`
}

// CatalogConfig selects and configures the catalog source
type CatalogConfig struct {
	Source             string        `mapstructure:"source"` // "file", "sqlite" or "http"
	FilePath           string        `mapstructure:"file_path"`
	SQLitePath         string        `mapstructure:"sqlite_path"`
	BaseURL            string        `mapstructure:"base_url"`
	RateLimitPerSecond float64       `mapstructure:"rate_limit_per_second"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// MatchingConfig holds the matching pipeline thresholds
type MatchingConfig struct {
	IndexThreshold      float64 `mapstructure:"index_threshold"`
	SuggestionThreshold float64 `mapstructure:"suggestion_threshold"`
	MatchThreshold      float64 `mapstructure:"match_threshold"`
	ConfirmThreshold    float64 `mapstructure:"confirm_threshold"`
	MinQueryLength      int     `mapstructure:"min_query_length"`
	MaxCandidates       int     `mapstructure:"max_candidates"`
	MaxAlternatives     int     `mapstructure:"max_alternatives"` // 0 attaches none
	MinNameLength       int     `mapstructure:"min_name_length"`
	MinLineLength       int     `mapstructure:"min_line_length"`
}

// OCRConfig configures text extraction from uploads
type OCRConfig struct {
	Provider     string        `mapstructure:"provider"` // "http" or "demo"
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DemoFallback bool          `mapstructure:"demo_fallback"`
	PDFText      bool          `mapstructure:"pdf_text"`
}

// SessionConfig configures reconciliation session storage
type SessionConfig struct {
	Store         string        `mapstructure:"store"` // "memory" or "redis"
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/listcart/")

	// LISTCART_SERVER_PORT -> server.port
	v.SetEnvPrefix("LISTCART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// demo_fallback defaults on outside production unless set explicitly
	if !v.IsSet("ocr.demo_fallback") {
		v.SetDefault("ocr.demo_fallback", v.GetString("server.environment") != "production")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env when present. Existing variables win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key needs a default
// so that AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetDefault("catalog.source", "file")
	v.SetDefault("catalog.file_path", "catalog.yaml")
	v.SetDefault("catalog.sqlite_path", "listcart.db")
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.rate_limit_per_second", 5)
	v.SetDefault("catalog.timeout", "10s")

	v.SetDefault("matching.index_threshold", 0.6)
	v.SetDefault("matching.suggestion_threshold", 0.85)
	v.SetDefault("matching.match_threshold", 0.7)
	v.SetDefault("matching.confirm_threshold", 0.8)
	v.SetDefault("matching.min_query_length", 2)
	v.SetDefault("matching.max_candidates", 3)
	v.SetDefault("matching.max_alternatives", 2)
	v.SetDefault("matching.min_name_length", 2)
	v.SetDefault("matching.min_line_length", 3)

	v.SetDefault("ocr.provider", "demo")
	v.SetDefault("ocr.base_url", "")
	v.SetDefault("ocr.timeout", "45s")
	v.SetDefault("ocr.pdf_text", true)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.redis_addr", "")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.ttl", "2h")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Source {
	case "file", "sqlite":
	case "http":
		if config.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog base URL is required when source is 'http' (set LISTCART_CATALOG_BASE_URL)")
		}
	default:
		return fmt.Errorf("catalog source must be 'file', 'sqlite' or 'http', got: %s", config.Catalog.Source)
	}

	switch config.OCR.Provider {
	case "demo":
	case "http":
		if config.OCR.BaseURL == "" {
			return fmt.Errorf("OCR base URL is required when provider is 'http' (set LISTCART_OCR_BASE_URL)")
		}
	default:
		return fmt.Errorf("OCR provider must be 'http' or 'demo', got: %s", config.OCR.Provider)
	}

	if config.Session.Store != "memory" && config.Session.Store != "redis" {
		return fmt.Errorf("session store must be 'memory' or 'redis', got: %s", config.Session.Store)
	}
	if config.Session.Store == "redis" && config.Session.RedisAddr == "" {
		return fmt.Errorf("Redis address is required when session store is 'redis'")
	}

	if config.Log.Format != "" && config.Log.Format != "console" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", config.Log.Format)
	}

	m := config.Matching
	thresholds := []struct {
		name  string
		value float64
	}{
		{"index_threshold", m.IndexThreshold},
		{"suggestion_threshold", m.SuggestionThreshold},
		{"match_threshold", m.MatchThreshold},
		{"confirm_threshold", m.ConfirmThreshold},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 1 {
			return fmt.Errorf("matching.%s must be within [0,1], got: %v", th.name, th.value)
		}
	}
	// Below this no accepted item could ever require confirmation
	if m.ConfirmThreshold < 1-m.MatchThreshold {
		return fmt.Errorf("matching.confirm_threshold (%v) must be at least 1 - match_threshold (%v)", m.ConfirmThreshold, 1-m.MatchThreshold)
	}
	if m.MaxCandidates < 1 {
		return fmt.Errorf("matching.max_candidates must be at least 1, got: %d", m.MaxCandidates)
	}
	if m.MaxAlternatives < 0 {
		return fmt.Errorf("matching.max_alternatives must not be negative, got: %d", m.MaxAlternatives)
	}

	return nil
}
