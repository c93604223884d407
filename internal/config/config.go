package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration shared by both daemons.
type Config struct {
	WSEndpoint string `mapstructure:"ws_endpoint"`
	ProgramID  string `mapstructure:"program_id"`
	Commitment string `mapstructure:"commitment"`

	RetryDelaySeconds int `mapstructure:"retry_delay"`
	MaxRetries        int `mapstructure:"max_retries"` // 0 = retry forever

	PostgresDSN   string `mapstructure:"postgres_dsn"` // empty = in-memory stores
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`

	KafkaBrokers     string `mapstructure:"kafka_brokers"`
	KafkaTopicPrefix string `mapstructure:"kafka_topic_prefix"`

	MetadataGateways []string `mapstructure:"metadata_gateways"`

	ScoringIntervalSeconds int `mapstructure:"scoring_interval"`

	MetricsAddr  string `mapstructure:"metrics_addr"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	BusBuffer    int    `mapstructure:"bus_buffer"`
}

// Default configuration values.
const (
	DefaultCommitment      = "confirmed"
	DefaultRetryDelay      = 3
	DefaultScoringInterval = 3600
	DefaultMetricsAddr     = ":9100"
	DefaultBusBuffer       = 64
	DefaultKafkaPrefix     = "drc"
)

// Load reads the configuration file at path and applies environment
// overrides with the SOLANA_DRC prefix.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"commitment":         DefaultCommitment,
		"retry_delay":        DefaultRetryDelay,
		"max_retries":        0,
		"scoring_interval":   DefaultScoringInterval,
		"metrics_addr":       DefaultMetricsAddr,
		"bus_buffer":         DefaultBusBuffer,
		"kafka_topic_prefix": DefaultKafkaPrefix,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("SOLANA_DRC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, cfg.Validate()
}

// Validate checks the required fields. A failed validation aborts startup.
func (c *Config) Validate() error {
	if c.WSEndpoint == "" {
		return errors.New("missing ws_endpoint in configuration")
	}
	if err := validateURL(c.WSEndpoint, "ws"); err != nil {
		return fmt.Errorf("invalid ws_endpoint: %w", err)
	}
	if c.ProgramID == "" {
		return errors.New("missing program_id in configuration")
	}
	switch c.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid commitment %q", c.Commitment)
	}
	if c.RetryDelaySeconds <= 0 {
		return errors.New("invalid retry_delay")
	}
	if c.MaxRetries < 0 {
		return errors.New("invalid max_retries")
	}
	if c.ScoringIntervalSeconds <= 0 {
		return errors.New("invalid scoring_interval")
	}
	if c.BusBuffer <= 0 {
		return errors.New("invalid bus_buffer")
	}
	if c.KafkaBrokers != "" && c.KafkaTopicPrefix == "" {
		return errors.New("kafka_brokers set without kafka_topic_prefix")
	}
	return nil
}

func validateURL(rawURL, scheme string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, scheme) {
		return fmt.Errorf("URL scheme must be %s or %ss", scheme, scheme)
	}
	return nil
}
