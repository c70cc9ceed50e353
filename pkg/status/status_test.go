package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunwarden/sunwarden/pkg/controller"
	"github.com/sunwarden/sunwarden/pkg/device"
	"github.com/sunwarden/sunwarden/pkg/source"
	"github.com/sunwarden/sunwarden/pkg/types"
)

type healthyProvider struct{}

func (healthyProvider) Sample(ctx context.Context) (types.PowerSample, error) {
	return types.PowerSample{ProductionWatts: 2000, LoadWatts: 500}, nil
}

func (healthyProvider) HealthCheck(ctx context.Context) error { return nil }

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	sel := source.NewSelector(ctx, healthyProvider{}, healthyProvider{}, time.Minute)
	reg := device.NewRegistry()
	heater, err := reg.Register("Heater", 1500, 8)
	require.NoError(t, err)
	heater.TurnOn()
	ctrl := controller.NewController()

	snap := NewReporter(sel, reg, ctrl).Snapshot()
	assert.Equal(t, types.SourceModePrimary, snap.SourceMode)
	require.Len(t, snap.Devices, 1)
	assert.True(t, snap.Devices[0].IsOn)
	assert.Equal(t, 1500.0, snap.Devices[0].CurrentWatts)
	assert.WithinDuration(t, time.Now(), snap.Timestamp, time.Second)
	assert.Zero(t, snap.Stats.TotalEvents)
}
