package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quantrail/brokergate/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Endpoints   EndpointsConfig   `mapstructure:"endpoints"`
	Archive     ArchiveConfig     `mapstructure:"archive"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CredentialsConfig holds the per-mode brokerage key pairs. Either pair may
// be absent; resolution of a missing pair fails at call time, never by
// falling back to the other mode.
type CredentialsConfig struct {
	Paper KeyPair `mapstructure:"paper"`
	Live  KeyPair `mapstructure:"live"`
}

// KeyPair is one brokerage API key pair, scoped to exactly one mode.
type KeyPair struct {
	APIKey    string `mapstructure:"api_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Configured reports whether both halves of the pair are present.
func (k KeyPair) Configured() bool {
	return k.APIKey != "" && k.SecretKey != ""
}

// partial reports a half-set pair, which is always a configuration mistake.
func (k KeyPair) partial() bool {
	return (k.APIKey == "") != (k.SecretKey == "")
}

// EndpointsConfig holds the three upstream base URLs. Market data is shared
// across modes; the trading URLs are mode-specific.
type EndpointsConfig struct {
	PaperTrading string `mapstructure:"paper_trading"`
	LiveTrading  string `mapstructure:"live_trading"`
	MarketData   string `mapstructure:"market_data"`
}

// ArchiveConfig holds order audit trail settings.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults. The endpoint URLs point
// at the Alpaca production hosts; tests override them.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 10 * time.Second,
		},
		Endpoints: EndpointsConfig{
			PaperTrading: "https://paper-api.alpaca.markets",
			LiveTrading:  "https://api.alpaca.markets",
			MarketData:   "https://data.alpaca.markets",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Server.Timeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("timeout must be positive, got %s", c.Server.Timeout))
	}

	if c.Credentials.Paper.partial() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("paper credentials: api_key and secret_key must both be set"))
	}
	if c.Credentials.Live.partial() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("live credentials: api_key and secret_key must both be set"))
	}

	if c.Endpoints.PaperTrading == "" || c.Endpoints.LiveTrading == "" || c.Endpoints.MarketData == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("all three endpoint base URLs are required"))
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required for localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required for s3 archive"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type: %s", c.Archive.Type))
		}
	}

	return nil
}
