// Package config loads querybench settings and route tables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. QUERYBENCH_API_URL.
const EnvPrefix = "QUERYBENCH"

// DefaultAPIURL is the base URL panels target when nothing else is set.
const DefaultAPIURL = "http://127.0.0.1:5000"

// ErrInvalidSettings is returned when loaded settings cannot be used.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the resolved runtime settings.
type Settings struct {
	APIURL     string
	RoutesFile string
	// Timeout bounds each round trip. Zero waits indefinitely.
	Timeout time.Duration
	Log     LogSettings
}

// LogSettings configures the logger.
type LogSettings struct {
	Level  string
	File   string
	Format string
}

// flagKeys maps command-line flag names to setting keys.
var flagKeys = map[string]string{
	"base-url":   "api_url",
	"routes":     "routes_file",
	"timeout":    "timeout",
	"log-level":  "log.level",
	"log-file":   "log.file",
	"log-format": "log.format",
}

// LoadSettings resolves settings from defaults, an optional config file,
// QUERYBENCH_* environment variables and flags, in increasing precedence.
// flags may be nil.
func LoadSettings(configFile string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("routes_file", "")
	v.SetDefault("timeout", "0s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	s := &Settings{
		APIURL:     strings.TrimSpace(v.GetString("api_url")),
		RoutesFile: strings.TrimSpace(v.GetString("routes_file")),
		Timeout:    v.GetDuration("timeout"),
		Log: LogSettings{
			Level:  v.GetString("log.level"),
			File:   v.GetString("log.file"),
			Format: v.GetString("log.format"),
		},
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the base URL and timeout.
func (s *Settings) Validate() error {
	u, err := url.Parse(s.APIURL)
	if err != nil {
		return fmt.Errorf("%w: api_url: %v", ErrInvalidSettings, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: api_url must be an http or https URL, got %q", ErrInvalidSettings, s.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: api_url has no host", ErrInvalidSettings)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%w: timeout cannot be negative", ErrInvalidSettings)
	}
	return nil
}
