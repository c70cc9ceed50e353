// Package storagemock provides a testify mock of the storage.Database
// interface for handler and tick-loop tests.
package storagemock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/sunwarden/sunwarden/pkg/storage"
	"github.com/sunwarden/sunwarden/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) GetSettings(ctx context.Context) (types.Settings, int, error) {
	args := m.Called(ctx)
	if len(args) > 0 {
		return args.Get(0).(types.Settings), args.Int(1), args.Error(2)
	}
	return types.Settings{}, 0, nil
}

func (m *MockDatabase) SetSettings(ctx context.Context, settings types.Settings, version int) error {
	args := m.Called(ctx, settings, version)
	return args.Error(0)
}

func (m *MockDatabase) StoreSample(ctx context.Context, sample types.PowerSample) error {
	args := m.Called(ctx, sample)
	return args.Error(0)
}

func (m *MockDatabase) InsertEvent(ctx context.Context, event types.TransitionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDatabase) GetSampleHistory(ctx context.Context, start, end time.Time) ([]types.PowerSample, error) {
	args := m.Called(ctx, start, end)
	if len(args) > 0 {
		return args.Get(0).([]types.PowerSample), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) GetEventHistory(ctx context.Context, start, end time.Time) ([]types.TransitionEvent, error) {
	args := m.Called(ctx, start, end)
	if len(args) > 0 {
		return args.Get(0).([]types.TransitionEvent), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) SaveDevice(ctx context.Context, config types.DeviceConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockDatabase) DeleteDevice(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockDatabase) ListDevices(ctx context.Context) ([]types.DeviceConfig, error) {
	args := m.Called(ctx)
	if len(args) > 0 {
		if devices, ok := args.Get(0).([]types.DeviceConfig); ok {
			return devices, args.Error(1)
		}
		return nil, args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
