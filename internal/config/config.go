// Package config loads user configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/utils"
)

// Config is the resolved application configuration.
type Config struct {
	Database      string `mapstructure:"database" validate:"required"`
	Timezone      string `mapstructure:"timezone"`
	Locale        string `mapstructure:"locale" validate:"required|in:en,ja"`
	TimerMinutes  int    `mapstructure:"timer_minutes" validate:"min:1|max:120"`
	Notifications bool   `mapstructure:"notifications"`
	Debug         bool   `mapstructure:"debug"`

	// File is the config file that was read, empty when none existed.
	File string `mapstructure:"-"`
	// Dir holds logs and other per-user state.
	Dir string `mapstructure:"-"`
}

// DefaultPath returns the config file location under the user's config directory.
func DefaultPath() string {
	return filepath.Join(ExpandHome(constants.DefaultConfigDir), constants.ConfigFileName+".yaml")
}

// Load reads defaults, then the YAML file at path (if it exists), then DROPTIME_*
// environment variables. An empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	path = ExpandHome(path)

	v := viper.New()
	v.SetDefault(constants.ConfigDatabase, constants.DefaultConfigPath)
	v.SetDefault(constants.ConfigTimezone, constants.DefaultTimezone)
	v.SetDefault(constants.ConfigLocale, constants.DefaultLocale)
	v.SetDefault(constants.ConfigTimerMinutes, constants.DefaultTimerMinutes)
	v.SetDefault(constants.ConfigNotifications, true)
	v.SetDefault(constants.ConfigDebug, false)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		cfg.File = path
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Dir = filepath.Dir(path)
	cfg.Database = ExpandHome(cfg.Database)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field rules and that the timezone resolves.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid config: unknown timezone %q", c.Timezone)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// TimerDuration is the countdown length after a dose.
func (c *Config) TimerDuration() time.Duration {
	return time.Duration(c.TimerMinutes) * time.Minute
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
