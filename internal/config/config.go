// Package config loads user settings from ~/.config/foodmood/config.yaml
// and FOODMOOD_* environment variables.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/hold"
)

type HoldConfig struct {
	ArmDelay       time.Duration `mapstructure:"arm_delay"`
	RepeatInterval time.Duration `mapstructure:"repeat_interval"`
}

type NotificationsConfig struct {
	Desktop bool `mapstructure:"desktop"`
	Tray    bool `mapstructure:"tray"`
}

type BackupConfig struct {
	Max int `mapstructure:"max"`
}

type Config struct {
	Database      string              `mapstructure:"database"`
	Timezone      string              `mapstructure:"timezone"`
	Debug         bool                `mapstructure:"debug"`
	Hold          HoldConfig          `mapstructure:"hold"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Backup        BackupConfig        `mapstructure:"backup"`

	// path of the file that was read, empty when none was found
	file string
}

func Default() Config {
	return Config{
		Database: constants.DefaultConfigPath,
		Timezone: constants.DefaultTimezone,
		Hold: HoldConfig{
			ArmDelay:       constants.HoldArmDelay,
			RepeatInterval: constants.HoldRepeatInterval,
		},
		Notifications: NotificationsConfig{
			Desktop: constants.DefaultNotificationsDesktop,
			Tray:    constants.DefaultNotificationsTray,
		},
		Backup: BackupConfig{Max: constants.MaxBackups},
	}
}

// DefaultPath is the config file location.
func DefaultPath() (string, error) {
	dir, err := homedir.Expand(constants.DefaultConfigDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// Load reads path (DefaultPath when empty). A missing file yields the
// defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	} else if p, err := homedir.Expand(path); err == nil {
		path = p
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(constants.SettingDatabase, cfg.Database)
	v.SetDefault(constants.SettingTimezone, cfg.Timezone)
	v.SetDefault(constants.SettingDebug, cfg.Debug)
	v.SetDefault(constants.SettingHoldArmDelay, cfg.Hold.ArmDelay)
	v.SetDefault(constants.SettingHoldRepeatInterval, cfg.Hold.RepeatInterval)
	v.SetDefault(constants.SettingNotificationsDesktop, cfg.Notifications.Desktop)
	v.SetDefault(constants.SettingNotificationsTray, cfg.Notifications.Tray)
	v.SetDefault(constants.SettingBackupMax, cfg.Backup.Max)

	if err := v.ReadInConfig(); err != nil {
		if !isNotFound(err) {
			return cfg, fmt.Errorf("config read: %w", err)
		}
	} else {
		cfg.file = path
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}

	if db, err := homedir.Expand(cfg.Database); err == nil && !strings.Contains(cfg.Database, "://") {
		cfg.Database = db
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return stderrors.As(err, &nf) || stderrors.Is(err, fs.ErrNotExist)
}

// File returns the config file that was read, or "".
func (c Config) File() string { return c.file }

func (c Config) Validate() error {
	if c.Hold.ArmDelay <= 0 {
		return fmt.Errorf("hold.arm_delay must be positive, got %s", c.Hold.ArmDelay)
	}
	if c.Hold.RepeatInterval <= 0 {
		return fmt.Errorf("hold.repeat_interval must be positive, got %s", c.Hold.RepeatInterval)
	}
	if c.Backup.Max < 1 {
		return fmt.Errorf("backup.max must be at least 1, got %d", c.Backup.Max)
	}
	if _, err := c.loadLocation(); err != nil {
		return err
	}
	return nil
}

func (c Config) loadLocation() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || tz == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Location is the zone "today" is computed in.
func (c Config) Location() *time.Location {
	loc, err := c.loadLocation()
	if err != nil {
		return time.Local
	}
	return loc
}

// HoldTimings converts the hold settings for the gesture engine.
func (c Config) HoldTimings() hold.Config {
	return hold.Config{ArmDelay: c.Hold.ArmDelay, RepeatInterval: c.Hold.RepeatInterval}
}

// ConfigDir is the directory logs and the default database live in.
func ConfigDir() string {
	dir, err := homedir.Expand(constants.DefaultConfigDir)
	if err != nil {
		return constants.DefaultConfigDir
	}
	return dir
}
