package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides (NODERUNTIME_DIST_URL, ...).
const EnvPrefix = "NODERUNTIME"

// SettingsFileName is the base name looked up in the root directory when no
// explicit config file is given (settings.yaml, settings.json, settings.toml).
const SettingsFileName = "settings"

// DefaultDistURL is the base URL of the Node.js distribution site.
const DefaultDistURL = "https://nodejs.org/dist"

// Settings holds tunables for provisioning and npm invocation
type Settings struct {
	DistURL            string        `mapstructure:"dist_url"`
	HealthCheckTimeout time.Duration `mapstructure:"health_check_timeout"`
	DownloadTimeout    time.Duration `mapstructure:"download_timeout"`
	VerifyChecksums    bool          `mapstructure:"verify_checksums"`
	ShowProgress       bool          `mapstructure:"show_progress"`
	LatestCacheTTL     time.Duration `mapstructure:"latest_cache_ttl"`
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		DistURL:            DefaultDistURL,
		HealthCheckTimeout: 30 * time.Second,
		DownloadTimeout:    10 * time.Minute,
		VerifyChecksums:    true,
		ShowProgress:       true,
		LatestCacheTTL:     time.Hour,
	}
}

// LoadSettings reads settings from defaults, an optional config file and
// NODERUNTIME_* environment variables, in increasing order of precedence.
// When configFile is empty, <root>/settings.{yaml,json,toml} is used if present.
func LoadSettings(configFile string, paths *Paths) (*Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("dist_url", defaults.DistURL)
	v.SetDefault("health_check_timeout", defaults.HealthCheckTimeout)
	v.SetDefault("download_timeout", defaults.DownloadTimeout)
	v.SetDefault("verify_checksums", defaults.VerifyChecksums)
	v.SetDefault("show_progress", defaults.ShowProgress)
	v.SetDefault("latest_cache_ttl", defaults.LatestCacheTTL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else if paths != nil {
		v.SetConfigName(SettingsFileName)
		v.AddConfigPath(paths.Root)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file in %s: %w", paths.Root, err)
			}
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := settings.validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

func (s *Settings) validate() error {
	s.DistURL = strings.TrimRight(strings.TrimSpace(s.DistURL), "/")
	if s.DistURL == "" {
		return fmt.Errorf("dist_url must not be empty")
	}
	if s.HealthCheckTimeout < 0 || s.DownloadTimeout < 0 || s.LatestCacheTTL < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

var settingsExts = []string{"yaml", "yml", "json", "toml"}

// ConfigFileUsed reports which settings file LoadSettings would pick up under root,
// or an empty string if there is none.
func ConfigFileUsed(paths *Paths) string {
	for _, ext := range settingsExts {
		candidate := filepath.Join(paths.Root, SettingsFileName+"."+ext)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
