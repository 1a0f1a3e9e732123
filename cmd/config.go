package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func setConfig(configPath string) error {
	log.Debug().Msg("setting up config default values")
	viper.SetDefault("log.pretty", true)
	viper.SetDefault("log.level", "info")

	viper.SetDefault("server.listen_addr", ":8080")

	viper.SetDefault("download.default_size_mb", 10)
	viper.SetDefault("download.max_size_mb", 1024)
	viper.SetDefault("download.pace_mbps", 0.0)

	viper.SetDefault("speed.simulated", false)
	viper.SetDefault("speed.simulated_attempts", 3)
	viper.SetDefault("speed.simulated_pause", 500*time.Millisecond)
	viper.SetDefault("speed.clamp_enabled", false)
	viper.SetDefault("speed.max_download_mbps", 100.0)
	viper.SetDefault("speed.max_upload_mbps", 20.0)

	viper.SetDefault("lookup.echo_ip_url", "https://api.ipify.org?format=json")
	viper.SetDefault("lookup.geo_url", "http://ip-api.com/json/")
	viper.SetDefault("lookup.timeout", 2*time.Second)

	viper.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Warn().Str("config_path", configPath).Msg("config file does not exist, creating new one")

		if err := os.WriteFile(configPath, []byte{}, 0644); err != nil {
			return errors.Wrap(err, "cannot write defaults to config file")
		}
	}

	log.Debug().Str("config_path", configPath).Msg("reading config file")

	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrap(err, "cannot read config file")
	}

	envBindingMap := map[string]string{
		"server.listen_addr": "LISTEN_ADDR",
		"lookup.echo_ip_url": "ECHO_IP_URL",
		"lookup.geo_url":     "GEO_IP_URL",
	}

	for key, env := range envBindingMap {
		log.Debug().Str("key", key).Str("env", env).Msg("binding environment variables to config")

		if err := viper.BindEnv(key, env); err != nil {
			return errors.Wrap(err, "cannot bind env variable")
		}
	}

	return nil
}
