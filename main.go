package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dht-to-mqtt/adapters"
	"dht-to-mqtt/application"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Flags = []cli.Flag{
	FlagConfig,
	FlagLogLevel,
	FlagLogWriter,
}

func main() {
	var logger zerolog.Logger
	var logWriter io.Writer

	app := cli.App{
		Name:    "dht-to-mqtt",
		Version: "v0.1.0",
		Usage:   "measure temperature/humidity from a DHT sensor and publish it to MQTT",
		Flags:   Flags,
		Before: func(ctx *cli.Context) error {
			if ctx.String(FlagLogWriter.Name) == "console" {
				logWriter = zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: time.RFC3339Nano,
				}
			} else if ctx.String(FlagLogWriter.Name) == "json" {
				logWriter = os.Stderr
			}

			logger = zerolog.New(logWriter).With().Timestamp().
				Str("service", "dht-to-mqtt").
				Str("module", "main").
				Logger()

			level, err := zerolog.ParseLevel(ctx.String(FlagLogLevel.Name))
			if err != nil {
				return err
			}

			zerolog.SetGlobalLevel(level)

			return nil
		},
		Action: func(ctx *cli.Context) error {
			logger.Info().Msg("service starting...")

			cfg, err := loadConfig(ctx.String(FlagConfig.Name))
			if err != nil {
				return err
			}

			if cfg.Logging.File != "" {
				fileWriter := &lumberjack.Logger{
					Filename:   cfg.Logging.File,
					MaxSize:    cfg.Logging.FileMaxSizeMB,
					MaxBackups: cfg.Logging.FileMaxBackups,
				}
				logger = logger.Output(zerolog.MultiLevelWriter(logWriter, fileWriter))
			}
			if cfg.Logging.Level != "" {
				level, err := zerolog.ParseLevel(cfg.Logging.Level)
				if err != nil {
					return err
				}
				zerolog.SetGlobalLevel(level)
			}

			appCtx, cancel := context.WithCancel(logger.WithContext(context.Background()))
			go func() {
				c := make(chan os.Signal, 1)
				signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

				<-c

				logger.Warn().Msg("interrupt signal received")
				cancel()
			}()

			sensor, err := adapters.NewDHTSensor(adapters.DHTSensorParams{
				SensorType:      cfg.Sensor.Type,
				Pin:             cfg.Sensor.Pin,
				TemperatureUnit: cfg.Sensor.TemperatureUnit,
				ReadRetries:     cfg.Sensor.ReadRetries,
				Log:             logger.With().Str("module", "dht-sensor").Logger(),
			})
			if err != nil {
				return err
			}
			logger.Info().Msgf("%s sensor initialized on pin %d (unit = %s)",
				cfg.Sensor.Type, cfg.Sensor.Pin, cfg.Sensor.TemperatureUnit)

			var tlsConfig *tls.Config
			if cfg.MQTT.TLS != nil {
				tlsConfig, err = adapters.NewTLSConfig(*cfg.MQTT.TLS)
				if err != nil {
					return err
				}
			}

			mqttClient := adapters.NewMQTTClient(adapters.MQTTClientParams{
				ClientID:  cfg.MQTT.ClientID,
				Username:  cfg.MQTT.Username,
				Password:  cfg.MQTT.Password,
				BrokerURL: cfg.MQTT.BrokerURL(),
				TLS:       tlsConfig,
				Log:       logger.With().Str("module", "mqtt-client").Logger(),
			})
			if err := mqttClient.Connect(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			defer mqttClient.Disconnect()
			logger.Info().Msgf("mqtt client connected to broker %s", cfg.MQTT.BrokerURL())

			payloadBuilder, err := application.NewPayloadBuilder(application.PayloadBuilderParams{
				Temperature: cfg.Temperature,
				Humidity:    cfg.Humidity,
			})
			if err != nil {
				return err
			}

			service, err := application.NewDHTToMQTTService(application.DHTToMQTTServiceParams{
				Sensor:               sensor,
				MQTTClient:           mqttClient,
				PayloadBuilder:       payloadBuilder,
				Interval:             cfg.Sensor.Interval,
				RepeatConfigEvery:    cfg.MQTT.RepeatConfigEvery,
				PublishConfigOnStart: cfg.MQTT.PublishConfigOnStart,
				Log:                  logger.With().Str("module", "service").Logger(),
			})
			if err != nil {
				return err
			}

			logger.Info().Msg("service started")
			if err := service.Run(appCtx); err != nil {
				return err
			}

			logger.Info().Msg("service terminating...")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Err(err).Msg("service terminated")
		os.Exit(1)
	}
}
