// Package device holds the registry of controllable loads managed by the
// surplus allocation controller.
package device

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sunwarden/sunwarden/pkg/types"
)

var (
	// ErrEmptyName is returned when a device is created without a name.
	ErrEmptyName = errors.New("device name cannot be empty")
	// ErrInvalidRatedPower is returned when the rated power is not positive.
	ErrInvalidRatedPower = errors.New("device rated power must be positive")
)

// Device is one controllable load. Its on/off state only changes through
// TurnOn/TurnOff so the last-transition time always matches the state.
type Device struct {
	name            string
	ratedPowerWatts float64
	priority        int

	mu             sync.Mutex
	on             bool
	lastTransition time.Time
}

// New validates the configuration and returns a device in the off state.
func New(name string, ratedPowerWatts float64, priority int) (*Device, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if ratedPowerWatts <= 0 {
		return nil, fmt.Errorf("%w: %s (%.0fW)", ErrInvalidRatedPower, name, ratedPowerWatts)
	}
	return &Device{
		name:            name,
		ratedPowerWatts: ratedPowerWatts,
		priority:        priority,
		lastTransition:  time.Now(),
	}, nil
}

// Name returns the device's unique name.
func (d *Device) Name() string { return d.name }

// RatedPowerWatts returns the power the device draws while on.
func (d *Device) RatedPowerWatts() float64 { return d.ratedPowerWatts }

// Priority returns the allocation priority, higher is served first.
func (d *Device) Priority() int { return d.priority }

// IsOn reports the current state.
func (d *Device) IsOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.on
}

// LastTransitionAt returns when the state last changed.
func (d *Device) LastTransitionAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastTransition
}

// TurnOn switches the device on. It reports false if the device was already
// on; that is a no-op, not an error.
func (d *Device) TurnOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.on {
		return false
	}
	d.on = true
	d.lastTransition = time.Now()
	return true
}

// TurnOff switches the device off. It reports false if the device was
// already off.
func (d *Device) TurnOff() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.on {
		return false
	}
	d.on = false
	d.lastTransition = time.Now()
	return true
}

// Status returns a point-in-time view of the device.
func (d *Device) Status() types.DeviceStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	status := types.DeviceStatus{
		Name:             d.name,
		RatedPowerWatts:  d.ratedPowerWatts,
		Priority:         d.priority,
		IsOn:             d.on,
		LastTransitionAt: d.lastTransition,
	}
	if d.on {
		status.CurrentWatts = d.ratedPowerWatts
	}
	return status
}

// Config returns the registration-time configuration of the device.
func (d *Device) Config() types.DeviceConfig {
	return types.DeviceConfig{
		Name:            d.name,
		RatedPowerWatts: d.ratedPowerWatts,
		Priority:        d.priority,
	}
}
