package source

import (
	"context"
	"math"
	"time"

	"github.com/sunwarden/sunwarden/pkg/types"
	"github.com/sunwarden/sunwarden/pkg/weather"
)

// Simulated implements the Provider interface with synthesized readings. It
// is the always-available fallback and must never fail by contract.
type Simulated struct {
	// maxSolarWatts is the peak production of the simulated array.
	maxSolarWatts float64
	// baseLoadWatts is the household floor consumption.
	baseLoadWatts float64
	weather       *weather.Service
	now           func() time.Time
}

func newSimulated(w *weather.Service) *Simulated {
	return &Simulated{
		maxSolarWatts: 5000,
		baseLoadWatts: 300,
		weather:       w,
		now:           time.Now,
	}
}

// Sample synthesizes a plausible reading for the current wall-clock time:
// a bell-shaped production curve between 06:00 and 19:00, scaled by live
// cloud cover when weather data is available, and a slow sine-wave household
// load. The returned error is always nil.
func (s *Simulated) Sample(ctx context.Context) (types.PowerSample, error) {
	now := s.now()
	hour := float64(now.Hour()) + float64(now.Minute())/60.0

	production := 0.0
	if hour >= 6 && hour <= 19 {
		production = s.maxSolarWatts * math.Sin((hour-6)/13*math.Pi)
	}
	if s.weather != nil {
		if cloudCover, ok := s.weather.CloudCover(ctx); ok {
			// heavy overcast still leaves ~30% diffuse production
			production *= 1 - cloudCover/100*0.7
		}
	}

	// load swings between base and base+1000W, peaking mid-morning and evening
	load := s.baseLoadWatts + 500*(1+math.Sin(hour/24*4*math.Pi))

	return types.PowerSample{
		Timestamp:       now,
		ProductionWatts: production,
		LoadWatts:       load,
		GridWatts:       load - production,
	}, nil
}

// HealthCheck always succeeds, the simulation has nothing to probe.
func (s *Simulated) HealthCheck(ctx context.Context) error {
	return nil
}
