package config

import (
	"strconv"
	"strings"

	mochiconfig "github.com/consolelabs/mochi-toolkit/config"
	"github.com/go-faster/errors"
	"github.com/spf13/viper"
)

// Load builds the configuration from defaults, an optional yaml file and
// TG_* environment variables, then fills Telegram credentials from the
// process environment and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config file")
		}
		// No config file is fine, defaults plus env carry a run.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	if err := loadCredentials(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return cfg, nil
}

// loadCredentials reads the TELEGRAM_* variables when the file config left
// the credentials unset.
func loadCredentials(cfg *Config) error {
	env, err := mochiconfig.Read()
	if err != nil {
		return errors.Wrap(err, "read env config")
	}
	if cfg.Telegram.Phone == "" {
		cfg.Telegram.Phone = env.GetString("TELEGRAM_PHONE")
	}
	if cfg.Telegram.AppHash == "" {
		cfg.Telegram.AppHash = env.GetString("TELEGRAM_APP_HASH")
	}
	if cfg.Telegram.AppID == 0 {
		raw := env.GetString("TELEGRAM_APP_ID")
		if raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return errors.Wrap(err, "parse app id")
			}
			cfg.Telegram.AppID = id
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("window.days", 0)
	v.SetDefault("window.hours", DefaultWindowHours)
	v.SetDefault("media.channel_dir", DefaultChannelMediaDir)
	v.SetDefault("media.group_dir", DefaultGroupMediaDir)
	v.SetDefault("output.dir", DefaultOutputDir)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("telegram.session_dir", DefaultSessionDir)
}
