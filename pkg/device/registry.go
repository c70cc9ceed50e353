package device

import (
	"fmt"
	"sync"

	"github.com/sunwarden/sunwarden/pkg/types"
)

// DuplicateDeviceError is returned when registering a device whose name is
// already taken. Names are case-sensitive identity keys.
type DuplicateDeviceError struct {
	Name string
}

func (e *DuplicateDeviceError) Error() string {
	return fmt.Sprintf("device already registered: %s", e.Name)
}

// Registry is the ordered collection of automatable devices. It preserves
// registration order; callers needing priority order sort explicitly so the
// registry itself stays policy-free.
type Registry struct {
	mu      sync.Mutex
	devices []*Device
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers the device, failing with a DuplicateDeviceError if the name
// is taken. The registry is unchanged on failure.
func (r *Registry) Add(d *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.devices {
		if existing.Name() == d.Name() {
			return &DuplicateDeviceError{Name: d.Name()}
		}
	}
	r.devices = append(r.devices, d)
	return nil
}

// Register validates, creates, and adds a device in one step.
func (r *Registry) Register(name string, ratedPowerWatts float64, priority int) (*Device, error) {
	d, err := New(name, ratedPowerWatts, priority)
	if err != nil {
		return nil, err
	}
	if err := r.Add(d); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns a snapshot of the devices in registration order.
func (r *Registry) List() []*Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Find returns the device with the given name.
func (r *Registry) Find(name string) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.devices {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// Remove deletes the device with the given name, reporting whether it was
// present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.devices {
		if d.Name() == name {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			return true
		}
	}
	return false
}

// Statuses returns the live status of every device in registration order.
func (r *Registry) Statuses() []types.DeviceStatus {
	devices := r.List()
	out := make([]types.DeviceStatus, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.Status())
	}
	return out
}
