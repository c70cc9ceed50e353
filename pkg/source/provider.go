package source

import (
	"context"

	"github.com/sunwarden/sunwarden/pkg/types"
)

// Provider defines the interface for obtaining power readings from a data
// source (like a Fronius inverter).
type Provider interface {
	// Sample returns the current power reading.
	Sample(ctx context.Context) (types.PowerSample, error)

	// HealthCheck probes the source's liveness without taking a full sample.
	// A nil error means the source is usable.
	HealthCheck(ctx context.Context) error
}
