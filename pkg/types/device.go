package types

import "time"

// DeviceConfig describes a controllable load as registered by the user.
type DeviceConfig struct {
	Name string `json:"name"`
	// RatedPowerWatts is the power the device draws when on (W, > 0).
	RatedPowerWatts float64 `json:"ratedPowerWatts"`
	// Priority orders allocation, higher values are served first.
	Priority int `json:"priority"`
}

// DeviceStatus is the live state of a registered device.
type DeviceStatus struct {
	Name            string    `json:"name"`
	RatedPowerWatts float64   `json:"ratedPowerWatts"`
	Priority        int       `json:"priority"`
	IsOn            bool      `json:"isOn"`
	// CurrentWatts is the rated power while on, 0 while off.
	CurrentWatts     float64   `json:"currentWatts"`
	LastTransitionAt time.Time `json:"lastTransitionAt"`
}
