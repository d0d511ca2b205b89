// Package config loads the run configuration: source lists, time window,
// storage directories and Telegram credentials.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultWindowHours     = 24
	DefaultChannelMediaDir = "telegram_media"
	DefaultGroupMediaDir   = "telegram_group_media"
	DefaultOutputDir       = "."
	DefaultSessionDir      = "priv/session"
	DefaultLogLevel        = "info"
)

type Config struct {
	// Channels and Groups are ordered source identifiers, e.g.
	// "@golang_news". Which list a run uses depends on the subcommand.
	Channels []string `mapstructure:"channels"`
	Groups   []string `mapstructure:"groups"`

	Window   WindowConfig   `mapstructure:"window"`
	Media    MediaConfig    `mapstructure:"media"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// WindowConfig bounds the fetch window. Days takes precedence over Hours
// when both are set; with neither, the window is 24 hours.
type WindowConfig struct {
	Days  int `mapstructure:"days" validate:"gte=0"`
	Hours int `mapstructure:"hours" validate:"gte=0"`
}

type MediaConfig struct {
	ChannelDir string `mapstructure:"channel_dir" validate:"required"`
	GroupDir   string `mapstructure:"group_dir" validate:"required"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type TelegramConfig struct {
	AppID      int    `mapstructure:"app_id" validate:"required"`
	AppHash    string `mapstructure:"app_hash" validate:"required"`
	Phone      string `mapstructure:"phone" validate:"required"`
	SessionDir string `mapstructure:"session_dir" validate:"required"`
}

// Duration converts the window selection into a cutoff offset.
func (w WindowConfig) Duration() time.Duration {
	if w.Days > 0 {
		return time.Duration(w.Days) * 24 * time.Hour
	}
	if w.Hours > 0 {
		return time.Duration(w.Hours) * time.Hour
	}
	return DefaultWindowHours * time.Hour
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
