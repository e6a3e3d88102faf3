package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CRYPTONAUT"

// ErrMissingSetting reports a required setting with no value in any source.
var ErrMissingSetting = errors.New("missing required setting")

// DefaultPaths lists the optional config files merged in order.
var DefaultPaths = []string{"src/config.yaml", "/etc/dracoon/config.yaml"}

// Config holds runtime settings for cryptonaut.
type Config struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	RefreshToken string        `mapstructure:"refresh_token"`
	RescueKey    string        `mapstructure:"rescue_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBatches   int           `mapstructure:"max_batches"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Timeout = 30 * time.Second
	c.MaxBatches = 1000
}

// LoadConfig applies defaults, merges the default files, the explicit file
// (if path is not empty) and the environment, and decodes the result.
func LoadConfig(path string) (*Config, error) {
	defaults := &Config{}
	defaults.LoadDefaults()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// every key needs a default so AutomaticEnv picks it up on Unmarshal
	v.SetDefault("client_id", "")
	v.SetDefault("client_secret", "")
	v.SetDefault("refresh_token", "")
	v.SetDefault("rescue_key", "")
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("max_batches", defaults.MaxBatches)

	for _, p := range DefaultPaths {
		if err := mergeFile(v, p, false); err != nil {
			return nil, err
		}
	}
	if path != "" {
		if err := mergeFile(v, path, true); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Validate checks that the settings needed to talk to DRACOON are present.
func (c *Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "refresh_token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	if c.MaxBatches < 0 {
		return fmt.Errorf("max_batches must not be negative, got %d", c.MaxBatches)
	}
	return nil
}
