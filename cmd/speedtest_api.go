package main

import (
	"os"

	"github.com/SumanReddy568/speedtest-api/api"
	"github.com/SumanReddy568/speedtest-api/netinfo"
	"github.com/SumanReddy568/speedtest-api/stream"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"github.com/ziflex/lecho/v3"
)

func newHandler() *api.Handler {
	lookup := netinfo.NewHTTPLookup(netinfo.LookupConfig{
		EchoIPURL: viper.GetString("lookup.echo_ip_url"),
		GeoURL:    viper.GetString("lookup.geo_url"),
		Timeout:   viper.GetDuration("lookup.timeout"),
	})

	metrics := api.NewMetrics(prometheus.NewRegistry())

	config := api.Config{
		DefaultDownloadMB: viper.GetInt("download.default_size_mb"),
		MaxDownloadMB:     viper.GetInt("download.max_size_mb"),
		PaceMbps:          viper.GetFloat64("download.pace_mbps"),
		Simulated:         viper.GetBool("speed.simulated"),
		SimulatedAttempts: viper.GetInt("speed.simulated_attempts"),
		SimulatedPause:    viper.GetDuration("speed.simulated_pause"),
		Clamp: stream.ClampPolicy{
			Enabled:         viper.GetBool("speed.clamp_enabled"),
			DownloadCapMbps: viper.GetFloat64("speed.max_download_mbps"),
			UploadCapMbps:   viper.GetFloat64("speed.max_upload_mbps"),
		},
	}

	return api.New(config, netinfo.NewEnricher(lookup), metrics)
}

func run(configPath string) error {
	err := setConfig(configPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return errors.Wrap(err, "cannot parse log level")
	}

	zerolog.SetGlobalLevel(level)

	if !viper.GetBool("log.pretty") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	server := echo.New()
	server.HideBanner = true
	server.Logger = lecho.From(log.Logger)
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())
	server.Use(middleware.RequestID())

	newHandler().Register(server)

	listenAddr := viper.GetString("server.listen_addr")
	log.Info().Str("listen_addr", listenAddr).Msg("starting speedtest api")

	return errors.Wrap(server.Start(listenAddr), "server stopped")
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var configPath string
	app := &cli.App{
		Name: "speedtest-api",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "start serving the speed test endpoints",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "config",
						Aliases:     []string{"c"},
						Usage:       "path to the config file",
						Value:       "./config.toml",
						Destination: &configPath,
					},
				},
				Action: func(c *cli.Context) error {
					return run(configPath)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("")
		os.Exit(1)
	}
}
