package adapters

import (
	"context"
	"fmt"
	"strings"

	"dht-to-mqtt/application"

	"github.com/d2r2/go-dht"
	"github.com/rs/zerolog"
)

const DHTDefaultReadRetries = 3

// DHTReadFunc matches dht.ReadDHTxxWithContextAndRetry and exists so tests
// can stand in for the hardware.
type DHTReadFunc func(ctx context.Context, sensorType dht.SensorType, pin int, boostPerfFlag bool, retry int) (float32, float32, int, error)

type DHTSensorParams struct {
	// SensorType is one of DHT11, DHT22 or AM2302.
	SensorType string
	// Pin is the GPIO number the sensor data line is wired to.
	Pin int
	// TemperatureUnit is C or F. The driver reports Celsius, conversion
	// happens here.
	TemperatureUnit string
	ReadRetries     int

	ReadFunc DHTReadFunc

	Log zerolog.Logger
}

func (p *DHTSensorParams) EnsureDefaults() {
	if p.ReadRetries == 0 {
		p.ReadRetries = DHTDefaultReadRetries
	}

	if p.TemperatureUnit == "" {
		p.TemperatureUnit = "C"
	}

	if p.ReadFunc == nil {
		p.ReadFunc = dht.ReadDHTxxWithContextAndRetry
	}
}

// DHTSensor reads a DHT temperature/humidity sensor through the go-dht GPIO
// driver. It keeps no state between reads.
type DHTSensor struct {
	params DHTSensorParams

	sensorType dht.SensorType
	fahrenheit bool

	log zerolog.Logger
}

func NewDHTSensor(params DHTSensorParams) (*DHTSensor, error) {
	params.EnsureDefaults()

	var sensorType dht.SensorType
	switch strings.ToUpper(params.SensorType) {
	case "DHT11":
		sensorType = dht.DHT11
	case "DHT22":
		sensorType = dht.DHT22
	case "AM2302":
		sensorType = dht.AM2302
	default:
		return nil, fmt.Errorf("unsupported sensor type %q, must be one of: DHT11, DHT22, AM2302", params.SensorType)
	}

	var fahrenheit bool
	switch strings.ToUpper(params.TemperatureUnit) {
	case "C":
	case "F":
		fahrenheit = true
	default:
		return nil, fmt.Errorf("unsupported temperature unit %q, must be C or F", params.TemperatureUnit)
	}

	if params.Pin <= 0 {
		return nil, fmt.Errorf("invalid GPIO pin %d", params.Pin)
	}

	return &DHTSensor{
		params:     params,
		sensorType: sensorType,
		fahrenheit: fahrenheit,
		log:        params.Log,
	}, nil
}

// Read blocks for the duration of the driver read. Checksum failures and
// timeouts surface as errors after the driver's own retries are exhausted.
func (s *DHTSensor) Read(ctx context.Context) (application.Sample, error) {
	temperature, humidity, retried, err := s.params.ReadFunc(ctx, s.sensorType, s.params.Pin, false, s.params.ReadRetries)
	if err != nil {
		return application.Sample{}, err
	}

	if retried > 0 {
		s.log.Debug().Int("retried", retried).Msg("sensor read needed retries")
	}

	t := float64(temperature)
	if s.fahrenheit {
		t = t*9/5 + 32
	}

	return application.Sample{Temperature: t, Humidity: float64(humidity)}, nil
}

var _ application.SensorReader = &DHTSensor{}
