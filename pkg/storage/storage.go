// Package storage persists samples, transition events, device definitions,
// and runtime settings.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sunwarden/sunwarden/pkg/types"
)

// Database defines the interface for persisting data and retrieving settings.
type Database interface {
	// Settings
	GetSettings(ctx context.Context) (types.Settings, int, error)
	SetSettings(ctx context.Context, settings types.Settings, version int) error

	// Data Persistence
	StoreSample(ctx context.Context, sample types.PowerSample) error
	InsertEvent(ctx context.Context, event types.TransitionEvent) error

	// History
	GetSampleHistory(ctx context.Context, start, end time.Time) ([]types.PowerSample, error)
	GetEventHistory(ctx context.Context, start, end time.Time) ([]types.TransitionEvent, error)

	// Devices
	SaveDevice(ctx context.Context, config types.DeviceConfig) error
	DeleteDevice(ctx context.Context, name string) error
	ListDevices(ctx context.Context) ([]types.DeviceConfig, error)

	// Lifecycle
	Close() error
}

// Configured sets up the storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
