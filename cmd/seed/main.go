// Command seed fills the Firestore emulator with a plausible day of samples,
// transition events, and device definitions for local development.
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sunwarden/sunwarden/pkg/log"
	"github.com/sunwarden/sunwarden/pkg/storage"
	"github.com/sunwarden/sunwarden/pkg/types"
)

func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	db := storage.Configured()
	lflag.Configure()

	ctx := context.Background()

	log.Ctx(ctx).InfoContext(ctx, "seeding mock data")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := db.SetSettings(ctx, types.Settings{DryRun: true}, types.CurrentSettingsVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed settings", "error", err)
		os.Exit(1)
	}

	devices := []types.DeviceConfig{
		{Name: "Water Heater", RatedPowerWatts: 1500, Priority: 8},
		{Name: "Pool Pump", RatedPowerWatts: 1100, Priority: 6},
		{Name: "Washing Machine", RatedPowerWatts: 800, Priority: 5},
	}
	for _, d := range devices {
		if err := db.SaveDevice(ctx, d); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to seed device", "error", err)
			os.Exit(1)
		}
	}

	const (
		solarPeakW = 5000.0
		baseLoadW  = 300.0
	)

	now := time.Now()
	start := now.Truncate(24 * time.Hour)

	heaterOn := false
	for t := start; t.Before(now); t = t.Add(15 * time.Minute) {
		hour := float64(t.Hour()) + float64(t.Minute())/60

		productionW := 0.0
		if hour >= 6 && hour <= 19 {
			productionW = solarPeakW * math.Sin((hour-6)/13*math.Pi)
		}
		loadW := baseLoadW + 500*(1+math.Sin(hour/24*4*math.Pi)) + rng.Float64()*200

		sample := types.PowerSample{
			Timestamp:       t,
			ProductionWatts: productionW,
			LoadWatts:       loadW,
			GridWatts:       loadW - productionW,
		}
		if err := db.StoreSample(ctx, sample); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to seed sample", "error", err)
			os.Exit(1)
		}

		// mimic the controller's decisions for the water heater
		surplus := productionW - loadW
		var event *types.TransitionEvent
		if !heaterOn && surplus >= 1500 {
			heaterOn = true
			event = &types.TransitionEvent{
				Timestamp:       t,
				Device:          "Water Heater",
				Action:          types.TransitionActionOn,
				Reason:          types.TransitionReasonSurplusAvailable,
				SurplusWatts:    surplus,
				RatedPowerWatts: 1500,
			}
		} else if heaterOn && surplus < 1500 {
			heaterOn = false
			event = &types.TransitionEvent{
				Timestamp:       t,
				Device:          "Water Heater",
				Action:          types.TransitionActionOff,
				Reason:          types.TransitionReasonInsufficientSurplus,
				SurplusWatts:    surplus,
				RatedPowerWatts: 1500,
			}
		}
		if event != nil {
			if err := db.InsertEvent(ctx, *event); err != nil {
				log.Ctx(ctx).ErrorContext(ctx, "failed to seed event", "error", err)
				os.Exit(1)
			}
			fmt.Printf("Seeded event at %s: %s %s (surplus %.0fW)\n",
				t.Format(time.Kitchen), event.Device, event.Action, surplus)
		}
	}

	log.Ctx(ctx).InfoContext(ctx, "seeded mock data successfully")
}
