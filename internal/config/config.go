package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	Data     DataConfig     `koanf:"data"`
	Analysis AnalysisConfig `koanf:"analysis"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Port            string        `koanf:"port"`
	JWTSecret       string        `koanf:"jwt_secret"`
	RateLimit       int           `koanf:"rate_limit"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds the SQLite feature store location
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig selects level and output format
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
}

// DataConfig locates input tables and the app metadata cache
type DataConfig struct {
	Dir          string `koanf:"dir"`
	AppMetaPath  string `koanf:"app_meta_path"`
	CSVSeparator string `koanf:"csv_separator"`
}

// AnalysisConfig holds the normalization and feature knobs
type AnalysisConfig struct {
	ClearNegativeDurations bool    `koanf:"clear_negative_durations"`
	HolidaysSeparate       bool    `koanf:"holidays_separate"`
	StrictSchema           bool    `koanf:"strict_schema"`
	CustomCategories       bool    `koanf:"custom_categories"`
	HomeWindowStart        string  `koanf:"home_window_start"`
	HomeWindowEnd          string  `koanf:"home_window_end"`
	HomeTolerance          float64 `koanf:"home_tolerance"`
	Workers                int     `koanf:"workers"` // 0 = runtime.NumCPU()

	Strip StripConfig `koanf:"strip"`
}

// StripConfig holds the default trimming applied to app events before feature extraction
type StripConfig struct {
	Enabled       bool `koanf:"enabled"`
	Uninterrupted bool `koanf:"uninterrupted"`
	NumberOfDays  int  `koanf:"number_of_days"`
	MinLogDays    int  `koanf:"min_log_days"`
}

// ConfigPathEnvVar overrides the config file location
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			JWTSecret:       "your-secret-key-change-in-production",
			RateLimit:       120,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Path: "./data/mobiledna.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Data: DataConfig{
			Dir:          "./data",
			AppMetaPath:  "./cache/app_meta.json",
			CSVSeparator: ";",
		},
		Analysis: AnalysisConfig{
			ClearNegativeDurations: true,
			HolidaysSeparate:       false,
			StrictSchema:           false,
			CustomCategories:       true,
			HomeWindowStart:        "23:30",
			HomeWindowEnd:          "04:30",
			HomeTolerance:          1e-7,
			Strip: StripConfig{
				Enabled:       false,
				Uninterrupted: true,
			},
		},
	}
}

// Load 加载配置: defaults, then config file, then environment
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings keeps the short variable names the server has always read
var envMappings = map[string]string{
	"port":          "server.port",
	"jwt_secret":    "server.jwt_secret",
	"db_path":       "database.path",
	"log_level":     "logging.level",
	"log_format":    "logging.format",
	"data_dir":      "data.dir",
	"app_meta_path": "data.app_meta_path",
}

// envTransformFunc maps PORT-style names and MOBILEDNA_<SECTION>_<KEY> names
// onto config keys. Anything else is ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	const prefix = "mobiledna_"
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(key, prefix)
	section, field, ok := strings.Cut(rest, "_")
	if !ok {
		return ""
	}
	if section == "analysis" && strings.HasPrefix(field, "strip_") {
		return "analysis.strip." + strings.TrimPrefix(field, "strip_")
	}
	return section + "." + field
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Analysis.HomeTolerance <= 0 {
		return fmt.Errorf("analysis.home_tolerance must be positive, got %g", c.Analysis.HomeTolerance)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative")
	}
	if c.Analysis.Strip.NumberOfDays < 0 || c.Analysis.Strip.MinLogDays < 0 {
		return fmt.Errorf("analysis.strip day counts must not be negative")
	}
	if len([]rune(c.Data.CSVSeparator)) != 1 {
		return fmt.Errorf("data.csv_separator must be a single character, got %q", c.Data.CSVSeparator)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
