package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database      DatabaseConfig
	Scheduler     SchedulerConfig
	Notifications NotificationsConfig
	Log           LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// SchedulerConfig holds generation and tick settings.
type SchedulerConfig struct {
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	HorizonMonths int           `mapstructure:"horizon_months"`
	Timezone      string
}

// NotificationsConfig holds alert settings.
type NotificationsConfig struct {
	// Hour is the local hour of day at which date-level reminders fire.
	Hour int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Location resolves the configured timezone. "Local" keeps the system zone.
func (s SchedulerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || strings.EqualFold(s.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// Load reads configuration from file and env. Env var overrides use prefix TALLY_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "tally", "tally.db"))
	v.SetDefault("scheduler.tick_interval", "5m")
	v.SetDefault("scheduler.horizon_months", 3)
	v.SetDefault("scheduler.timezone", "Local")
	v.SetDefault("notifications.hour", 9)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TALLY_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "tally"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TALLY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed.
func Save(cfg Config) error {
	path := os.Getenv("TALLY_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "tally", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("scheduler.tick_interval", cfg.Scheduler.TickInterval.String())
	v.Set("scheduler.horizon_months", cfg.Scheduler.HorizonMonths)
	v.Set("scheduler.timezone", cfg.Scheduler.Timezone)
	v.Set("notifications.hour", cfg.Notifications.Hour)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
