package types

import "time"

// TransitionAction is the direction of a device state change.
type TransitionAction string

const (
	TransitionActionOn  TransitionAction = "on"
	TransitionActionOff TransitionAction = "off"
)

// TransitionReason explains why the controller changed a device's state.
type TransitionReason string

const (
	// TransitionReasonSurplusAvailable means enough unclaimed surplus
	// remained to cover the device's rated power.
	TransitionReasonSurplusAvailable TransitionReason = "surplusAvailable"
	// TransitionReasonInsufficientSurplus means the tick's surplus dropped
	// below the device's rated power while it was on.
	TransitionReasonInsufficientSurplus TransitionReason = "insufficientSurplus"
)

// TransitionEvent records one applied device state change.
type TransitionEvent struct {
	Timestamp       time.Time        `json:"timestamp"`
	Device          string           `json:"device"`
	Action          TransitionAction `json:"action"`
	Reason          TransitionReason `json:"reason"`
	SurplusWatts    float64          `json:"surplusWatts"`
	RatedPowerWatts float64          `json:"ratedPowerWatts"`
}
