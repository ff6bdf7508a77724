// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	NSE     NSEConfig     `yaml:"nse" mapstructure:"nse"`
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Symbols SymbolsConfig `yaml:"symbols" mapstructure:"symbols"`
	Expiry  ExpiryConfig  `yaml:"expiry" mapstructure:"expiry"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NSEConfig configures the exchange endpoints and fetch behavior.
type NSEConfig struct {
	APIBase            string `yaml:"api_base" mapstructure:"api_base"`
	ArchiveBase        string `yaml:"archive_base" mapstructure:"archive_base"`
	UserAgent          string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries         int    `yaml:"max_retries" mapstructure:"max_retries"`
	AvailableAfterHour int    `yaml:"available_after_hour" mapstructure:"available_after_hour"`
}

// DataConfig configures local file staging.
type DataConfig struct {
	StagingDir string `yaml:"staging_dir" mapstructure:"staging_dir"`
}

// SymbolsConfig lists the instruments the pipeline tracks. Index symbols
// drive FUTIDX contracts and land in the index table.
type SymbolsConfig struct {
	Shares  []string `yaml:"shares" mapstructure:"shares"`
	Indexes []string `yaml:"indexes" mapstructure:"indexes"`
}

// ExpiryConfig points to an optional YAML file extending the built-in expiry
// calendar past its last populated month.
type ExpiryConfig struct {
	ExtensionFile string `yaml:"extension_file" mapstructure:"extension_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NSESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "nsesync.db")
	v.SetDefault("nse.api_base", "https://www.nseindia.com")
	v.SetDefault("nse.archive_base", "https://www1.nseindia.com")
	v.SetDefault("nse.timeout_secs", 60)
	v.SetDefault("nse.max_retries", 3)
	v.SetDefault("nse.available_after_hour", 21)
	v.SetDefault("data.staging_dir", "files")
	v.SetDefault("symbols.shares", []string{"DIXON", "TATAMOTORS", "TCS", "INFY", "RELIANCE", "INDUSINDBK", "RVNL"})
	v.SetDefault("symbols.indexes", []string{"NIFTY", "BANKNIFTY"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
