// Package config loads the command line client's settings from a YAML file
// and the environment.
package config

import (
	"cmp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "CHATGPT"

// DefaultFile is the name of the config file looked up in the home
// directory.
const DefaultFile = ".chatgpt.yaml"

// ErrMissingAPIKey is returned by Validate when no API key is configured.
var ErrMissingAPIKey = errors.New("missing API key: set api_key, CHATGPT_API_KEY or OPENAI_API_KEY")

// Config holds the application configuration.
type Config struct {
	APIKey       string        `mapstructure:"api_key"`
	APIHost      string        `mapstructure:"api_host"`
	Organization string        `mapstructure:"organization"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	LogLevel     string        `mapstructure:"log_level"`
	HistoryPath  string        `mapstructure:"history_path"`
}

func homeDir() string {
	return cmp.Or(os.Getenv("HOME"), os.Getenv("USERPROFILE"))
}

// DefaultHistoryPath is where chat history is stored unless configured.
func DefaultHistoryPath() string {
	return filepath.Join(homeDir(), ".chatgpt-history")
}

func defaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("api_host", chatgpt.DefaultBaseURL)
	v.SetDefault("organization", "")
	v.SetDefault("model", chatgpt.ModelGPT35Turbo)
	v.SetDefault("timeout", chatgpt.DefaultTimeout)
	v.SetDefault("log_level", "warn")
	v.SetDefault("history_path", DefaultHistoryPath())
}

// Load reads the configuration. Values come, from lowest to highest
// precedence, from defaults, the config file, and CHATGPT_* environment
// variables. OPENAI_API_KEY is accepted as a fallback for the API key.
//
// If path is empty, $HOME/.chatgpt.yaml is read when it exists. A path that
// is given must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, errors.Wrap(err, "bind api key env")
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else if def := filepath.Join(homeDir(), DefaultFile); fileExists(def) {
		v.SetConfigFile(def)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", def)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	return &cfg, nil
}

// Validate reports settings that make the client unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
