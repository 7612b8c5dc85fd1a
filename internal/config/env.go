package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/eugenenazirov/runtime-config/internal/docstore"
)

// envConfig mirrors the environment variables understood by the service.
// Pointer fields stay nil when the variable is unset.
type envConfig struct {
	Port                 string         `env:"PORT"`
	ShutdownGracePeriod  *time.Duration `env:"SHUTDOWN_GRACE_PERIOD"`
	ReadHeaderTimeout    *time.Duration `env:"READ_HEADER_TIMEOUT"`
	WriteTimeout         *time.Duration `env:"WRITE_TIMEOUT"`
	IdleTimeout          *time.Duration `env:"IDLE_TIMEOUT"`
	EnableRequestLogging *bool          `env:"REQUEST_LOGGING"`
	RateLimitRPS         *float64       `env:"RATE_LIMIT_RPS"`
	RateLimitBurst       *int           `env:"RATE_LIMIT_BURST"`
	LogLevel             string         `env:"LOG_LEVEL"`
	PublicEnvPrefix      string         `env:"PUBLIC_ENV_PREFIX"`
	MetricsEnabled       *bool          `env:"METRICS_ENABLED"`
	Store                envStore       `envPrefix:"CONFIG_STORE_"`

	// Legacy MongoDB variable names.
	MongoURI     string `env:"MONGODB_URI"`
	MongoDBName  string `env:"MONGODB_DB_NAME"`
	MongoEnabled string `env:"MONGO_ENABLED"`
}

type envStore struct {
	Backend      string         `env:"BACKEND"`
	URI          string         `env:"URI"`
	Database     string         `env:"DATABASE"`
	Enabled      string         `env:"ENABLED"`
	FetchTimeout *time.Duration `env:"FETCH_TIMEOUT"`
}

// parseEnv populates an envConfig from the process environment.
func parseEnv() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return envConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	envCfg, err := parseEnv()
	if err != nil {
		return err
	}

	if port := strings.TrimSpace(envCfg.Port); port != "" {
		cfg.Port = port
	}
	setDuration(&cfg.ShutdownGracePeriod, envCfg.ShutdownGracePeriod)
	setDuration(&cfg.ReadHeaderTimeout, envCfg.ReadHeaderTimeout)
	setDuration(&cfg.WriteTimeout, envCfg.WriteTimeout)
	setDuration(&cfg.IdleTimeout, envCfg.IdleTimeout)

	if envCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *envCfg.EnableRequestLogging
	}
	if envCfg.RateLimitRPS != nil {
		cfg.RateLimitRPS = *envCfg.RateLimitRPS
	}
	if envCfg.RateLimitBurst != nil {
		cfg.RateLimitBurst = *envCfg.RateLimitBurst
	}
	if level := strings.TrimSpace(envCfg.LogLevel); level != "" {
		cfg.LogLevel = level
	}
	if envCfg.PublicEnvPrefix != "" {
		cfg.PublicEnvPrefix = envCfg.PublicEnvPrefix
	}
	if envCfg.MetricsEnabled != nil {
		cfg.MetricsEnabled = *envCfg.MetricsEnabled
	}

	applyEnvStore(&cfg.Store, envCfg)
	return nil
}

// applyEnvStore resolves store settings. The legacy MONGO* variables only
// apply to the mongo backend, and the CONFIG_STORE_* ones win over them.
func applyEnvStore(store *StoreConfig, envCfg envConfig) {
	if backend := strings.TrimSpace(envCfg.Store.Backend); backend != "" {
		store.Backend = strings.ToLower(backend)
	}

	if store.Backend == docstore.BackendMongo {
		if envCfg.MongoURI != "" {
			store.URI = envCfg.MongoURI
		}
		if envCfg.MongoDBName != "" {
			store.Database = envCfg.MongoDBName
		}
		if envCfg.MongoEnabled != "" {
			store.Enabled = parseEnabled(envCfg.MongoEnabled)
		}
	}

	if envCfg.Store.URI != "" {
		store.URI = envCfg.Store.URI
	}
	if envCfg.Store.Database != "" {
		store.Database = envCfg.Store.Database
	}
	if envCfg.Store.Enabled != "" {
		store.Enabled = parseEnabled(envCfg.Store.Enabled)
	}
	setDuration(&store.FetchTimeout, envCfg.Store.FetchTimeout)
}

func setDuration(dst *time.Duration, src *time.Duration) {
	if src != nil {
		*dst = *src
	}
}
