package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL         = "https://adventofcode.com"
	DefaultRequestInterval = 3 * time.Second

	envSession  = "AOC_SESSION"
	envCacheDir = "AOC_CACHE_DIR"
)

// Config controls where puzzle inputs come from and how the tools log.
type Config struct {
	// Year is the default event year for commands that take a day only.
	Year int `yaml:"year" validate:"gte=2015"`

	// Session is the value of the site's session cookie. Overridden by
	// AOC_SESSION.
	Session string `yaml:"session"`

	// CacheDir holds fetched inputs. Empty keeps the cache in memory.
	// Overridden by AOC_CACHE_DIR.
	CacheDir string `yaml:"cache_dir"`

	BaseURL         string        `yaml:"base_url" validate:"required,url"`
	RequestInterval time.Duration `yaml:"request_interval" validate:"gt=0"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn error"`
}

func DefaultConfig() Config {
	return Config{
		Year:            2023,
		BaseURL:         DefaultBaseURL,
		RequestInterval: DefaultRequestInterval,
		LogLevel:        "info",
	}
}

var validate = validator.New()

// LoadConfig reads the YAML file at path on top of DefaultConfig, applies
// environment overrides and validates the result. A missing file is not an
// error; the defaults are used instead.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("os.ReadFile: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("yaml.Unmarshal %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv(envSession); v != "" {
		cfg.Session = v
	}
	if v := os.Getenv(envCacheDir); v != "" {
		cfg.CacheDir = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
