package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/runtime-config/internal/docstore"
	"github.com/eugenenazirov/runtime-config/internal/runtimeconfig"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
	defaultStoreBackend   = docstore.BackendMongo
	defaultStoreDatabase  = "cardtraders"
	defaultFetchTimeout   = 5 * time.Second
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	LogLevel             string
	PublicEnvPrefix      string
	MetricsEnabled       bool
	Store                StoreConfig
}

// StoreConfig selects the document store holding the runtime config document.
type StoreConfig struct {
	Backend      string
	URI          string
	Database     string
	Enabled      bool
	FetchTimeout time.Duration
}

// Options converts the store settings into docstore options.
func (s StoreConfig) Options() docstore.Options {
	return docstore.Options{
		Backend:  s.Backend,
		URI:      s.URI,
		Database: s.Database,
		Enabled:  s.Enabled,
	}
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	LogLevel             string        `yaml:"log_level"`
	PublicEnvPrefix      string        `yaml:"public_env_prefix"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	Store                yamlStore     `yaml:"store"`
	Metrics              yamlMetrics   `yaml:"metrics"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

type yamlStore struct {
	Backend      string `yaml:"backend"`
	URI          string `yaml:"uri"`
	Database     string `yaml:"database"`
	Enabled      *bool  `yaml:"enabled"`
	FetchTimeout string `yaml:"fetch_timeout"`
}

type yamlMetrics struct {
	Enabled *bool `yaml:"enabled"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	LogLevel       *string
	StoreBackend   *string
	StoreURI       *string
	DisableStore   bool
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment sits below the YAML file
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, err
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		LogLevel:             defaultLogLevel,
		PublicEnvPrefix:      runtimeconfig.DefaultEnvPrefix,
		MetricsEnabled:       true,
		Store: StoreConfig{
			Backend:      defaultStoreBackend,
			Database:     defaultStoreDatabase,
			Enabled:      true,
			FetchTimeout: defaultFetchTimeout,
		},
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	durations := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
		{"store.fetch_timeout", yamlCfg.Store.FetchTimeout, &cfg.Store.FetchTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.field = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.PublicEnvPrefix != "" {
		cfg.PublicEnvPrefix = yamlCfg.PublicEnvPrefix
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	if yamlCfg.Metrics.Enabled != nil {
		cfg.MetricsEnabled = *yamlCfg.Metrics.Enabled
	}

	if yamlCfg.Store.Backend != "" {
		cfg.Store.Backend = yamlCfg.Store.Backend
	}
	if yamlCfg.Store.URI != "" {
		cfg.Store.URI = yamlCfg.Store.URI
	}
	if yamlCfg.Store.Database != "" {
		cfg.Store.Database = yamlCfg.Store.Database
	}
	if yamlCfg.Store.Enabled != nil {
		cfg.Store.Enabled = *yamlCfg.Store.Enabled
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.StoreBackend != nil && *overrides.StoreBackend != "" {
		cfg.Store.Backend = *overrides.StoreBackend
	}

	if overrides.StoreURI != nil && *overrides.StoreURI != "" {
		cfg.Store.URI = *overrides.StoreURI
	}

	if overrides.DisableStore {
		cfg.Store.Enabled = false
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	var errs []error
	if strings.TrimSpace(cfg.Port) == "" {
		errs = append(errs, errors.New("port cannot be empty"))
	}
	if cfg.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be >= 0"))
	}
	if cfg.RateLimitBurst < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be >= 0"))
	}
	if cfg.PublicEnvPrefix == "" {
		errs = append(errs, errors.New("public env prefix cannot be empty"))
	}
	if !docstore.KnownBackend(cfg.Store.Backend) {
		errs = append(errs, fmt.Errorf("unknown store backend %q", cfg.Store.Backend))
	}
	if cfg.Store.Backend != docstore.BackendMongo && isMongoURI(cfg.Store.URI) {
		errs = append(errs, fmt.Errorf("store uri is a MongoDB connection string but backend is %q", cfg.Store.Backend))
	}
	if cfg.Store.FetchTimeout <= 0 {
		errs = append(errs, errors.New("store fetch timeout must be positive"))
	}
	return errors.Join(errs...)
}

func isMongoURI(uri string) bool {
	uri = strings.ToLower(strings.TrimSpace(uri))
	return strings.HasPrefix(uri, "mongodb://") || strings.HasPrefix(uri, "mongodb+srv://")
}

// parseEnabled reports whether raw is one of the truthy indicators 1, true or
// yes. Any other non-empty value disables the feature.
func parseEnabled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
