// Package status assembles read-only snapshots of the whole system for the
// HTTP API.
package status

import (
	"time"

	"github.com/sunwarden/sunwarden/pkg/controller"
	"github.com/sunwarden/sunwarden/pkg/device"
	"github.com/sunwarden/sunwarden/pkg/source"
	"github.com/sunwarden/sunwarden/pkg/types"
)

// Reporter builds snapshots from the live selector, registry, and controller.
type Reporter struct {
	selector   *source.Selector
	registry   *device.Registry
	controller *controller.Controller
}

// NewReporter returns a reporter over the given components.
func NewReporter(sel *source.Selector, reg *device.Registry, ctrl *controller.Controller) *Reporter {
	return &Reporter{
		selector:   sel,
		registry:   reg,
		controller: ctrl,
	}
}

// Snapshot returns the current state of the system. It holds no locks across
// components, so the snapshot is consistent per-component, not globally.
func (r *Reporter) Snapshot() types.Snapshot {
	return types.Snapshot{
		Timestamp:  time.Now().UTC(),
		SourceMode: r.selector.Mode(),
		Devices:    r.registry.Statuses(),
		Stats:      r.controller.Stats(),
	}
}
