package main

import (
	"fmt"
	"time"

	"dht-to-mqtt/application"

	"github.com/spf13/viper"
)

// loadConfig reads the INI config file and maps it onto the typed application
// config. Missing required keys or unusable values fail startup.
func loadConfig(path string) (*application.Config, error) {
	config := viper.New()

	config.SetConfigFile(path)
	config.SetConfigType("ini")

	config.SetDefault("dht.sensor_type", "DHT22")
	config.SetDefault("dht.temperature_unit", "C")
	config.SetDefault("dht.time_between_measurements", 10)

	config.SetDefault("mqtt.port", 1883)
	config.SetDefault("mqtt.client_id", "dht-to-mqtt")
	config.SetDefault("mqtt.repeat_config_every", 15)
	config.SetDefault("mqtt.publish_config_on_start", true)

	config.SetDefault("mqtt_temperature.base_topic", "homeassistant/sensor/dht_temperature")
	config.SetDefault("mqtt_humidity.base_topic", "homeassistant/sensor/dht_humidity")

	config.SetDefault("logging.file_max_size_mb", 10)
	config.SetDefault("logging.file_max_backups", 3)

	if err := config.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	requiredArgs := []string{"mqtt.host", "dht.pin", "mqtt_temperature.state_topic", "mqtt_humidity.state_topic"}
	for _, argName := range requiredArgs {
		if config.GetString(argName) == "" {
			return nil, fmt.Errorf("missing required config key: %s", argName)
		}
	}

	cfg := &application.Config{
		Sensor: application.SensorConfig{
			Type:            config.GetString("dht.sensor_type"),
			Pin:             config.GetInt("dht.pin"),
			TemperatureUnit: config.GetString("dht.temperature_unit"),
			Interval:        time.Duration(config.GetInt("dht.time_between_measurements")) * time.Second,
			ReadRetries:     config.GetInt("dht.read_retries"),
		},
		MQTT: application.MQTTConfig{
			Host:                 config.GetString("mqtt.host"),
			Port:                 config.GetInt("mqtt.port"),
			ClientID:             config.GetString("mqtt.client_id"),
			Username:             config.GetString("mqtt.username"),
			Password:             config.GetString("mqtt.password"),
			RepeatConfigEvery:    config.GetInt("mqtt.repeat_config_every"),
			PublishConfigOnStart: config.GetBool("mqtt.publish_config_on_start"),
		},
		Logging: application.LoggingConfig{
			Level:          config.GetString("logging.level"),
			File:           config.GetString("logging.file"),
			FileMaxSizeMB:  config.GetInt("logging.file_max_size_mb"),
			FileMaxBackups: config.GetInt("logging.file_max_backups"),
		},
		Temperature: entityConfig(config, "mqtt_temperature"),
		Humidity:    entityConfig(config, "mqtt_humidity"),
	}

	if config.IsSet("mqtt_tls.ca_file") || config.IsSet("mqtt_tls.cert_file") ||
		config.IsSet("mqtt_tls.key_file") || config.IsSet("mqtt_tls.insecure_skip_verify") {
		cfg.MQTT.TLS = &application.TLSConfig{
			CAFile:             config.GetString("mqtt_tls.ca_file"),
			CertFile:           config.GetString("mqtt_tls.cert_file"),
			KeyFile:            config.GetString("mqtt_tls.key_file"),
			InsecureSkipVerify: config.GetBool("mqtt_tls.insecure_skip_verify"),
		}
	}

	if cfg.Sensor.Interval <= 0 {
		return nil, fmt.Errorf("dht.time_between_measurements must be positive")
	}
	if cfg.MQTT.RepeatConfigEvery <= 0 {
		return nil, fmt.Errorf("mqtt.repeat_config_every must be positive")
	}

	return cfg, nil
}

func entityConfig(config *viper.Viper, section string) application.EntityConfig {
	return application.EntityConfig{
		Name:              config.GetString(section + ".name"),
		DeviceClass:       config.GetString(section + ".device_class"),
		StateTopic:        config.GetString(section + ".state_topic"),
		BaseTopic:         config.GetString(section + ".base_topic"),
		UnitOfMeasurement: config.GetString(section + ".unit_of_measurement"),
		ValueTemplate:     config.GetString(section + ".value_template"),
		UniqueID:          config.GetString(section + ".unique_id"),
	}
}
