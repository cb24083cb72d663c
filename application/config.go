package application

import (
	"fmt"
	"time"
)

// Config holds everything loaded from the config file. It is built once at
// startup and never mutated afterwards.
type Config struct {
	Sensor  SensorConfig
	MQTT    MQTTConfig
	Logging LoggingConfig

	Temperature EntityConfig
	Humidity    EntityConfig
}

type SensorConfig struct {
	Type            string
	Pin             int
	TemperatureUnit string
	Interval        time.Duration
	ReadRetries     int
}

type MQTTConfig struct {
	Host     string
	Port     int
	ClientID string
	Username string
	Password string

	RepeatConfigEvery    int
	PublishConfigOnStart bool

	TLS *TLSConfig
}

// BrokerURL returns the broker address in the form the MQTT client expects.
func (c MQTTConfig) BrokerURL() string {
	scheme := "tcp"
	if c.TLS != nil {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// TLSConfig is pass-through transport configuration. Files are handed to the
// TLS layer as-is, nothing is validated here.
type TLSConfig struct {
	CAFile             string
	CertFile           string
	KeyFile            string
	InsecureSkipVerify bool
}

// EntityConfig describes one home assistant entity: where its state is
// published and the metadata announced on the discovery topic.
type EntityConfig struct {
	Name              string
	DeviceClass       string
	StateTopic        string
	BaseTopic         string
	UnitOfMeasurement string
	ValueTemplate     string
	UniqueID          string
}

type LoggingConfig struct {
	Level          string
	File           string
	FileMaxSizeMB  int
	FileMaxBackups int
}
