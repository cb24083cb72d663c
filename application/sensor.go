package application

import "context"

// Sample is a single temperature/humidity readout. It lives for one
// measurement cycle and is never persisted.
type Sample struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// SensorReader produces one Sample per call. Calls are independent, there is
// no smoothing or caching of the last good value.
type SensorReader interface {
	Read(ctx context.Context) (Sample, error)
}
