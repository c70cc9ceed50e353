package types

import "time"

// SourceMode identifies which power data source is currently active.
type SourceMode string

const (
	// SourceModePrimary means samples come from the real inverter.
	SourceModePrimary SourceMode = "primary"
	// SourceModeSecondary means samples come from the simulated source.
	SourceModeSecondary SourceMode = "secondary"
)

// Valid reports whether m is one of the known source modes.
func (m SourceMode) Valid() bool {
	return m == SourceModePrimary || m == SourceModeSecondary
}

// PowerSample is a single instantaneous reading of the home's energy flows.
// It is a value type and is never mutated after construction.
type PowerSample struct {
	Timestamp time.Time `json:"timestamp"`
	// ProductionWatts is the solar generation (W, >= 0).
	ProductionWatts float64 `json:"productionWatts"`
	// LoadWatts is the household consumption excluding automated devices (W, >= 0).
	LoadWatts float64 `json:"loadWatts"`
	// GridWatts is the grid flow (W, positive importing, negative exporting).
	GridWatts float64 `json:"gridWatts"`
}

// SurplusWatts is the power available for automation before any of the
// controller's own devices are factored in.
func (s PowerSample) SurplusWatts() float64 {
	return s.ProductionWatts - s.LoadWatts
}

// Degenerate reports whether the sample looks like a dead reading. Inverters
// that lose their meter connection report zeros across the board, which is
// indistinguishable from real data only at night with nothing running.
func (s PowerSample) Degenerate() bool {
	return s.ProductionWatts == 0 && s.LoadWatts == 0
}
