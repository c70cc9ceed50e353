package types

import "time"

// AllocationStats tracks the cumulative effect of the automation controller.
type AllocationStats struct {
	// TotalEvents counts on/off transitions actually applied.
	TotalEvents int `json:"totalEvents"`
	// EstimatedAutomatedEnergyKWh is a coarse duty-cycle estimate of energy
	// routed through automated devices. It only ever grows and is not a
	// metered value.
	EstimatedAutomatedEnergyKWh float64 `json:"estimatedAutomatedEnergyKWh"`
	// LastSurplusWatts is the surplus computed on the most recent tick.
	LastSurplusWatts float64 `json:"lastSurplusWatts"`
}

// Snapshot is the read-only view of the whole automation system, consumed by
// the HTTP API and CLI.
type Snapshot struct {
	Timestamp  time.Time       `json:"timestamp"`
	SourceMode SourceMode      `json:"sourceMode"`
	Devices    []DeviceStatus  `json:"devices"`
	Stats      AllocationStats `json:"stats"`
}
