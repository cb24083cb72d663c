package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
)

const DefaultStatusReportInterval = 30 * time.Second

type DHTToMQTTService interface {
	Run(ctx context.Context) error
}

type DHTToMQTTServiceParams struct {
	Sensor         SensorReader
	MQTTClient     MQTTClient
	PayloadBuilder PayloadBuilder

	// Interval is the time between measurement cycles.
	Interval time.Duration
	// RepeatConfigEvery is the number of successful cycles between discovery
	// publishes. Failed reads do not count.
	RepeatConfigEvery int
	// PublishConfigOnStart makes the first successful cycle publish discovery
	// immediately instead of waiting for a full RepeatConfigEvery window.
	PublishConfigOnStart bool

	StatusReportInterval time.Duration

	Log zerolog.Logger
}

func (p *DHTToMQTTServiceParams) EnsureDefaults() {
	if p.StatusReportInterval == 0 {
		p.StatusReportInterval = DefaultStatusReportInterval
	}
}

type dhtToMQTTService struct {
	params DHTToMQTTServiceParams

	cyclesSinceConfig int

	log zerolog.Logger
}

func NewDHTToMQTTService(params DHTToMQTTServiceParams) (DHTToMQTTService, error) {
	params.EnsureDefaults()

	if params.Sensor == nil {
		return nil, fmt.Errorf("Sensor is nil")
	}
	if params.MQTTClient == nil {
		return nil, fmt.Errorf("MQTTClient is nil")
	}
	if params.Interval <= 0 {
		return nil, fmt.Errorf("Interval must be positive")
	}
	if params.RepeatConfigEvery <= 0 {
		return nil, fmt.Errorf("RepeatConfigEvery must be positive")
	}

	s := &dhtToMQTTService{params: params, log: params.Log}
	if params.PublishConfigOnStart {
		s.cyclesSinceConfig = params.RepeatConfigEvery - 1
	}
	return s, nil
}

func (s *dhtToMQTTService) Run(ctx context.Context) error {
	g := errgroup.Group{}

	// measurement loop
	g.Go(func() error {
		s.log.Info().Msgf("starting measurement loop (every %s)", s.params.Interval)
		defer s.log.Info().Msg("measurement loop stopped")

		ticker := time.NewTicker(s.params.Interval)
		defer ticker.Stop()

		for {
			if r := panics.Try(func() { s.cycle(ctx) }); r != nil {
				s.log.Error().Str("panic", r.String()).Msg("measurement cycle panicked")
			}

			select {
			case <-ctx.Done():
				return nil
			default:
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	// publish status reporter
	g.Go(func() error {
		ticker := time.NewTicker(s.params.StatusReportInterval)
		defer ticker.Stop()

		lastStatus := MQTTStatus{}
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				newStatus := s.params.MQTTClient.Status()
				s.log.Info().
					Uint64("published_total", newStatus.MessageCount).
					Uint64("published_since_last_report", newStatus.MessageCount-lastStatus.MessageCount).
					Bool("is_connected", newStatus.Connected).
					Time("last_time_published", newStatus.LastTimePublished).
					Msg("publish report")
				lastStatus = newStatus
			}
		}
	})

	return g.Wait()
}

// cycle runs one measurement: read, publish state, then publish discovery
// once enough successful cycles have passed. Any failure is logged and the
// cycle ends, the next tick starts fresh.
func (s *dhtToMQTTService) cycle(ctx context.Context) {
	sample, err := s.params.Sensor.Read(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("sensor read failed, skipping cycle")
		return
	}

	s.log.Info().
		Float64("temperature", sample.Temperature).
		Float64("humidity", sample.Humidity).
		Msg("new measurement")

	publications, err := s.params.PayloadBuilder.StatePublications(sample)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to build state payload")
		return
	}
	for _, p := range publications {
		if err := s.params.MQTTClient.Publish(p.Topic, 0, false, p.Payload); err != nil {
			s.log.Error().Err(err).Str("topic", p.Topic).Msg("state publish failed")
		}
	}

	s.cyclesSinceConfig++
	if s.cyclesSinceConfig < s.params.RepeatConfigEvery {
		return
	}

	discovery, err := s.params.PayloadBuilder.DiscoveryPublications()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to build discovery payload")
		return
	}
	for _, p := range discovery {
		if err := s.params.MQTTClient.Publish(p.Topic, 0, false, p.Payload); err != nil {
			s.log.Error().Err(err).Str("topic", p.Topic).Msg("discovery publish failed")
			continue
		}
		s.log.Info().Str("topic", p.Topic).Msg("published discovery config")
	}
	s.cyclesSinceConfig = 0
}
