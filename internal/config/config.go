package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Rules  RulesConfig  `yaml:"rules" mapstructure:"rules"`
	Locale LocaleConfig `yaml:"locale" mapstructure:"locale"`
	Retry  RetryConfig  `yaml:"retry" mapstructure:"retry"`
}

// StoreConfig configures the database backend. For the sqlite driver
// DatabaseURL is a file path.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	RateLimit           float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst               int      `yaml:"burst" mapstructure:"burst"`
	AllowedOrigins      []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RulesConfig points at the default rule template file.
type RulesConfig struct {
	TemplatesPath string `yaml:"templates_path" mapstructure:"templates_path"`
}

// LocaleConfig sets the fallback language for CLI output and exports.
type LocaleConfig struct {
	Language string `yaml:"language" mapstructure:"language"`
}

// RetryConfig tunes retries of transient store errors.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INSPECTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "inspection.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("rules.templates_path", "rules.yaml")
	v.SetDefault("locale.language", "fi")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 100)
	v.SetDefault("retry.max_backoff_ms", 2000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Every problem
// found is reported in one error.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be postgres or sqlite", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	if _, err := language.Parse(c.Locale.Language); err != nil {
		errs = append(errs, fmt.Sprintf("locale.language %q is not a valid language tag", c.Locale.Language))
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimit <= 0 {
			errs = append(errs, "server.rate_limit must be > 0")
		}
		if c.Server.Burst < 1 {
			errs = append(errs, "server.burst must be >= 1")
		}
	case "migrate":
		if c.Rules.TemplatesPath == "" {
			errs = append(errs, "rules.templates_path is required")
		}
	case "cli":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
