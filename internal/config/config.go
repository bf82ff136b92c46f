// Package config loads the optional guarddog.yaml configuration file.
//
// Only product-decision tuning knobs live here (probe timeout, screen lock
// thresholds, report directory). The manifest trust anchor is deliberately
// not configurable: the verification gate must not be swappable at runtime.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime-tunable settings.
type Config struct {
	// ProbeTimeout bounds every external process launch and OS query made
	// by a probe. A probe that exceeds it reports UNKNOWN.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`

	// ScreenLockOKTimeout is the longest idle timeout still considered OK.
	ScreenLockOKTimeout time.Duration `mapstructure:"screen_lock_ok_timeout"`

	// ScreenLockWarnTimeout is the idle timeout beyond which the screen
	// lock check reports a long-timeout warning.
	ScreenLockWarnTimeout time.Duration `mapstructure:"screen_lock_warn_timeout"`

	// ReportDir is the directory name for generated reports, relative to
	// the GuardDog base directory.
	ReportDir string `mapstructure:"report_dir"`
}

// Load reads the configuration from the given file path. An empty path or a
// missing file yields the defaults; a present but malformed file is an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("probe_timeout", 8*time.Second)
	v.SetDefault("screen_lock_ok_timeout", 15*time.Minute)
	v.SetDefault("screen_lock_warn_timeout", 30*time.Minute)
	v.SetDefault("report_dir", "reports")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, _ := Load("")
	return cfg
}
