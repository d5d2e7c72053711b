package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the resolvex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Vocab     VocabConfig     `yaml:"vocab"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ResolverConfig holds scoring weights and decision thresholds. Zero values
// fall back to the tuned defaults.
type ResolverConfig struct {
	AliasWeight      float64 `yaml:"alias_weight"`
	FTSWeight        float64 `yaml:"fts_weight"`
	SingleMinScore   float64 `yaml:"single_min_score"`
	SingleMinGap     float64 `yaml:"single_min_gap"`
	MultipleMinScore float64 `yaml:"multiple_min_score"`
	TopK             int     `yaml:"top_k"`
}

// VocabConfig holds vocabulary cache settings.
type VocabConfig struct {
	CacheTTLSec int `yaml:"cache_ttl_sec"`
}

// TelemetryConfig holds telemetry sink settings.
type TelemetryConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Resolver.AliasWeight <= 0 {
		c.Resolver.AliasWeight = 1.0
	}
	if c.Resolver.FTSWeight <= 0 {
		c.Resolver.FTSWeight = 0.7
	}
	if c.Resolver.SingleMinScore <= 0 {
		c.Resolver.SingleMinScore = 0.7
	}
	if c.Resolver.SingleMinGap <= 0 {
		c.Resolver.SingleMinGap = 0.2
	}
	if c.Resolver.MultipleMinScore <= 0 {
		c.Resolver.MultipleMinScore = 0.4
	}
	if c.Resolver.TopK <= 0 {
		c.Resolver.TopK = 10
	}
	if c.Vocab.CacheTTLSec <= 0 {
		c.Vocab.CacheTTLSec = 300
	}
	if c.Telemetry.BufferSize <= 0 {
		c.Telemetry.BufferSize = 1024
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Resolver.SingleMinScore < c.Resolver.MultipleMinScore {
		return fmt.Errorf(
			"resolver.single_min_score (%g) must not be below resolver.multiple_min_score (%g)",
			c.Resolver.SingleMinScore, c.Resolver.MultipleMinScore,
		)
	}
	if c.Resolver.SingleMinGap >= 1 {
		return fmt.Errorf("resolver.single_min_gap must be below 1, got %g", c.Resolver.SingleMinGap)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
