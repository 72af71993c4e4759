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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Detector DetectorConfig `yaml:"detector" mapstructure:"detector"`
}

// StoreConfig configures the results database backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional Postgres connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DetectorConfig configures the disruption detection pipeline. Weights
// must sum to 1.0; see detect.ValidateConfig.
type DetectorConfig struct {
	MinDocs     int    `yaml:"min_docs" mapstructure:"min_docs"`
	Lookback    int    `yaml:"lookback" mapstructure:"lookback"`
	NormMethod  string `yaml:"norm_method" mapstructure:"norm_method"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`

	VelocityWeight   float64 `yaml:"velocity_weight" mapstructure:"velocity_weight"`
	NoveltyWeight    float64 `yaml:"novelty_weight" mapstructure:"novelty_weight"`
	TopicShiftWeight float64 `yaml:"topic_shift_weight" mapstructure:"topic_shift_weight"`
	MarginWeight     float64 `yaml:"margin_weight" mapstructure:"margin_weight"`
	TransitionWeight float64 `yaml:"transition_weight" mapstructure:"transition_weight"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISRUPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "disruption.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("detector.min_docs", 3)
	v.SetDefault("detector.lookback", 2)
	v.SetDefault("detector.norm_method", "minmax")
	v.SetDefault("detector.concurrency", 8)
	v.SetDefault("detector.velocity_weight", 0.30)
	v.SetDefault("detector.novelty_weight", 0.25)
	v.SetDefault("detector.topic_shift_weight", 0.20)
	v.SetDefault("detector.margin_weight", 0.15)
	v.SetDefault("detector.transition_weight", 0.10)

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
