package application

import (
	"encoding/json"
	"fmt"
	"strings"
)

type EntityKind string

const (
	EntityTemperature EntityKind = "temperature"
	EntityHumidity    EntityKind = "humidity"
)

// StatePayload is the JSON object published to a state topic.
type StatePayload struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// DiscoveryPayload is the entity metadata announced on the discovery topic so
// home assistant can auto-register the sensor.
type DiscoveryPayload struct {
	DeviceClass       string `json:"device_class"`
	Name              string `json:"name"`
	StateTopic        string `json:"state_topic"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
	ValueTemplate     string `json:"value_template"`
	UniqueID          string `json:"unique_id,omitempty"`
}

// Publication is a topic/payload pair ready to hand to the broker.
type Publication struct {
	Topic   string
	Payload []byte
}

type PayloadBuilderParams struct {
	Temperature EntityConfig
	Humidity    EntityConfig
}

// PayloadBuilder derives publish payloads from the entity configuration. It
// is a pure value: the same configuration and sample always produce the same
// output.
type PayloadBuilder struct {
	temperature EntityConfig
	humidity    EntityConfig
}

func NewPayloadBuilder(params PayloadBuilderParams) (PayloadBuilder, error) {
	if params.Temperature.StateTopic == "" {
		return PayloadBuilder{}, fmt.Errorf("temperature state topic is required")
	}
	if params.Humidity.StateTopic == "" {
		return PayloadBuilder{}, fmt.Errorf("humidity state topic is required")
	}
	if params.Temperature.BaseTopic == "" {
		return PayloadBuilder{}, fmt.Errorf("temperature base topic is required")
	}
	if params.Humidity.BaseTopic == "" {
		return PayloadBuilder{}, fmt.Errorf("humidity base topic is required")
	}

	return PayloadBuilder{
		temperature: params.Temperature,
		humidity:    params.Humidity,
	}, nil
}

// StatePayload maps a sample onto the wire format without touching the
// values.
func (b PayloadBuilder) StatePayload(s Sample) StatePayload {
	return StatePayload{
		Temperature: s.Temperature,
		Humidity:    s.Humidity,
	}
}

// StatePublications returns the state publishes for one sample. When both
// entities share a state topic a single combined payload is published,
// otherwise each topic gets a payload holding just its own value.
func (b PayloadBuilder) StatePublications(s Sample) ([]Publication, error) {
	if b.temperature.StateTopic == b.humidity.StateTopic {
		payload, err := json.Marshal(b.StatePayload(s))
		if err != nil {
			return nil, err
		}
		return []Publication{{Topic: b.temperature.StateTopic, Payload: payload}}, nil
	}

	temperature, err := json.Marshal(map[string]float64{"temperature": s.Temperature})
	if err != nil {
		return nil, err
	}
	humidity, err := json.Marshal(map[string]float64{"humidity": s.Humidity})
	if err != nil {
		return nil, err
	}

	return []Publication{
		{Topic: b.temperature.StateTopic, Payload: temperature},
		{Topic: b.humidity.StateTopic, Payload: humidity},
	}, nil
}

func (b PayloadBuilder) DiscoveryPayload(kind EntityKind) (DiscoveryPayload, error) {
	entity, err := b.entity(kind)
	if err != nil {
		return DiscoveryPayload{}, err
	}

	return DiscoveryPayload{
		DeviceClass:       entity.DeviceClass,
		Name:              entity.Name,
		StateTopic:        entity.StateTopic,
		UnitOfMeasurement: entity.UnitOfMeasurement,
		ValueTemplate:     entity.ValueTemplate,
		UniqueID:          entity.UniqueID,
	}, nil
}

// DiscoveryTopic is the entity base topic, normalized to exactly one trailing
// slash, with the config suffix appended.
func (b PayloadBuilder) DiscoveryTopic(kind EntityKind) (string, error) {
	entity, err := b.entity(kind)
	if err != nil {
		return "", err
	}

	base := entity.BaseTopic
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "config", nil
}

// DiscoveryPublications returns the discovery publish for every entity, in a
// fixed order.
func (b PayloadBuilder) DiscoveryPublications() ([]Publication, error) {
	kinds := []EntityKind{EntityTemperature, EntityHumidity}

	publications := make([]Publication, 0, len(kinds))
	for _, kind := range kinds {
		topic, err := b.DiscoveryTopic(kind)
		if err != nil {
			return nil, err
		}

		discovery, err := b.DiscoveryPayload(kind)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(discovery)
		if err != nil {
			return nil, err
		}

		publications = append(publications, Publication{Topic: topic, Payload: payload})
	}

	return publications, nil
}

func (b PayloadBuilder) entity(kind EntityKind) (EntityConfig, error) {
	switch kind {
	case EntityTemperature:
		return b.temperature, nil
	case EntityHumidity:
		return b.humidity, nil
	default:
		return EntityConfig{}, fmt.Errorf("unknown entity kind %q", kind)
	}
}
