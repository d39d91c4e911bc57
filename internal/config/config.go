package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tailsift/internal/app/errors"
)

// Config represents the application configuration
type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}
	Pipeline struct {
		FlushInterval  time.Duration `yaml:"flush_interval" mapstructure:"flush_interval"`
		FlushThreshold int           `yaml:"flush_threshold" mapstructure:"flush_threshold"`
		Debounce       time.Duration `yaml:"debounce"`
		ContextLines   int           `yaml:"context_lines" mapstructure:"context_lines"`
		Buffer         int           `yaml:"buffer"`
	}
	Store struct {
		MaxLines int `yaml:"max_lines" mapstructure:"max_lines"`
	}
	Source struct {
		Path    string   `yaml:"path"`
		Include []string `yaml:"include"`
		Ignore  []string `yaml:"ignore"`
	}
	Filter struct {
		Path string `yaml:"path"`
	}
	Version int
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{Version: 1}

	cfg.Logging.Level = LogLevel
	cfg.Logging.Format = LogFormat

	cfg.Pipeline.FlushInterval = FlushInterval
	cfg.Pipeline.FlushThreshold = FlushThreshold
	cfg.Pipeline.Debounce = Debounce
	cfg.Pipeline.ContextLines = ContextLines
	cfg.Pipeline.Buffer = UpdateBuffer

	cfg.Store.MaxLines = MaxLines

	return cfg
}

// Load loads the configuration from file and environment
func Load() (*Config, error) {
	return LoadFile(ConfigFile)
}

// LoadFile loads the configuration from the given file path
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// A missing .env is fine; only explicit values override.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
			}

			return cfg, nil
		}

		return nil, errors.ErrFailedToReadConfig
	}

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.ErrFailedToReadConfig
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.ErrFailedToParseConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}

	return c.validateStore()
}

// validatePipeline validates pipeline settings
func (c *Config) validatePipeline() error {
	if c.Pipeline.FlushInterval <= 0 {
		return errors.ErrInvalidFlushInterval
	}

	if c.Pipeline.FlushThreshold <= 0 {
		return errors.ErrInvalidFlushThreshold
	}

	if c.Pipeline.Debounce <= 0 {
		return errors.ErrInvalidDebounce
	}

	if c.Pipeline.ContextLines < 0 {
		return errors.ErrInvalidContextLines
	}

	if c.Pipeline.Buffer <= 0 {
		return errors.ErrInvalidUpdateBuffer
	}

	return nil
}

// validateStore validates store settings
func (c *Config) validateStore() error {
	if c.Store.MaxLines <= 0 {
		return errors.ErrInvalidMaxLines
	}

	return nil
}
