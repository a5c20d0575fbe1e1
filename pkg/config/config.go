package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RiskStore RiskStoreConfig `mapstructure:"riskstore"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type MetricsConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	Workers   int  `mapstructure:"workers"`
	QueueSize int  `mapstructure:"queue_size"`
}

type RiskStoreConfig struct {
	Key      string        `mapstructure:"key"`
	FreshFor time.Duration `mapstructure:"fresh_for"`
	Source   string        `mapstructure:"source"`

	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
}

// ScoringWeights is the explicit surface operators retune instead of
// redeploying scoring logic. The composite score normalizes by the
// weight sum, so partial overrides stay in [0,1].
type ScoringWeights struct {
	Entropy     float64 `mapstructure:"entropy"`
	TLD         float64 `mapstructure:"tld"`
	Fingerprint float64 `mapstructure:"fingerprint"`
}

type ScoringConfig struct {
	Weights ScoringWeights `mapstructure:"weights"`

	// phase-1 gates
	MaxEntropy     float64 `mapstructure:"max_entropy"`
	MinLocalLength int     `mapstructure:"min_local_length"`

	// decision thresholds
	WarnThreshold  float64 `mapstructure:"warn_threshold"`
	BlockThreshold float64 `mapstructure:"block_threshold"`

	// tld multiplier mapping
	NeutralTLDMultiplier float64 `mapstructure:"neutral_tld_multiplier"`
	MaxTLDMultiplier     float64 `mapstructure:"max_tld_multiplier"`

	// floor applied to the fingerprint term for disposable domains
	DisposableScore float64 `mapstructure:"disposable_score"`
}

var globalConfig Config

// Load reads config.yaml and environment overrides into the global
// config. Defaults are applied even when no config file is found, so a
// caller that treats the returned error as a warning still runs with a
// complete scoring configuration.
func Load(configPath string) error {
	err := loadConfigFile(configPath, "config", &globalConfig)
	setDefaultValues(&globalConfig)
	if err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Metrics.Workers == 0 {
		cfg.Metrics.Workers = 4
	}
	if cfg.Metrics.QueueSize == 0 {
		cfg.Metrics.QueueSize = 1000
	}
	if cfg.RiskStore.Key == "" {
		cfg.RiskStore.Key = "tld_risk_table"
	}
	if cfg.RiskStore.FreshFor == 0 {
		cfg.RiskStore.FreshFor = 24 * time.Hour
	}
	if cfg.RiskStore.Source == "" {
		cfg.RiskStore.Source = "admin"
	}
	if cfg.RiskStore.BreakerTimeout == 0 {
		cfg.RiskStore.BreakerTimeout = 30 * time.Second
	}
	if cfg.RiskStore.BreakerMaxFailures == 0 {
		cfg.RiskStore.BreakerMaxFailures = 5
	}
	cfg.Scoring = scoringWithDefaults(cfg.Scoring)
}

func scoringWithDefaults(s ScoringConfig) ScoringConfig {
	if s.Weights.Entropy == 0 && s.Weights.TLD == 0 && s.Weights.Fingerprint == 0 {
		s.Weights = ScoringWeights{Entropy: 0.45, TLD: 0.35, Fingerprint: 0.20}
	}
	if s.MaxEntropy == 0 {
		s.MaxEntropy = 0.85
	}
	if s.MinLocalLength == 0 {
		s.MinLocalLength = 3
	}
	if s.WarnThreshold == 0 {
		s.WarnThreshold = 0.5
	}
	if s.BlockThreshold == 0 {
		s.BlockThreshold = 0.8
	}
	if s.NeutralTLDMultiplier == 0 {
		s.NeutralTLDMultiplier = 1.0
	}
	if s.MaxTLDMultiplier == 0 {
		s.MaxTLDMultiplier = 3.0
	}
	if s.DisposableScore == 0 {
		s.DisposableScore = 0.6
	}
	return s
}

// DefaultScoring returns the scoring configuration with every default
// applied, for callers running without a config file.
func DefaultScoring() ScoringConfig {
	return scoringWithDefaults(ScoringConfig{})
}

func GetConfig() *Config {
	return &globalConfig
}
