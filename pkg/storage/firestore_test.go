package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunwarden/sunwarden/pkg/types"
)

func TestFirestoreProvider(t *testing.T) {
	// Check if emulator is running or configured
	// We assume it is running on localhost:8087 as per task
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")

	// Use a test project ID
	projectID := "test-project-id"

	// Use a random database for isolation
	randDB := fmt.Sprintf("test-db-%d", time.Now().UnixNano())
	f := &FirestoreProvider{
		projectID: projectID,
		database:  randDB,
	}

	ctx := context.Background()
	require.NoError(t, f.Init(ctx))
	defer f.Close()

	t.Run("Validate", func(t *testing.T) {
		require.NoError(t, f.Validate())
	})

	t.Run("SettingsDefaultsWhenMissing", func(t *testing.T) {
		// fresh database, the settings doc doesn't exist yet
		settings, version, err := f.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, version)
		assert.Equal(t, types.Settings{}, settings)
	})

	t.Run("Settings", func(t *testing.T) {
		settings := types.Settings{
			Pause:  true,
			DryRun: true,
		}
		require.NoError(t, f.SetSettings(ctx, settings, types.CurrentSettingsVersion))

		gotSettings, version, err := f.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, types.CurrentSettingsVersion, version)
		assert.Equal(t, settings.Pause, gotSettings.Pause)
		assert.Equal(t, settings.DryRun, gotSettings.DryRun)
	})

	t.Run("Samples", func(t *testing.T) {
		now := time.Now().Truncate(time.Second).UTC() // Firestore timestamp precision (RFC3339 is seconds)
		s1 := types.PowerSample{Timestamp: now.Add(-1 * time.Hour), ProductionWatts: 2000, LoadWatts: 500, GridWatts: -1500}
		s2 := types.PowerSample{Timestamp: now, ProductionWatts: 3000, LoadWatts: 800, GridWatts: -2200}
		old := types.PowerSample{Timestamp: now.Add(-48 * time.Hour), ProductionWatts: 100, LoadWatts: 100}

		require.NoError(t, f.StoreSample(ctx, s1))
		require.NoError(t, f.StoreSample(ctx, s2))
		require.NoError(t, f.StoreSample(ctx, old))

		samples, err := f.GetSampleHistory(ctx, now.Add(-2*time.Hour), now.Add(1*time.Minute))
		require.NoError(t, err)

		foundS1 := false
		foundS2 := false
		for _, s := range samples {
			if s.ProductionWatts == 2000 && s.Timestamp.Equal(s1.Timestamp) {
				foundS1 = true
			}
			if s.ProductionWatts == 3000 && s.Timestamp.Equal(s2.Timestamp) {
				foundS2 = true
			}
			assert.False(t, s.Timestamp.Equal(old.Timestamp), "sample outside range should not be returned")
		}
		assert.True(t, foundS1, "did not find inserted s1")
		assert.True(t, foundS2, "did not find inserted s2")

		t.Run("StoreOverwrite", func(t *testing.T) {
			s2Updated := types.PowerSample{Timestamp: s2.Timestamp, ProductionWatts: 3500, LoadWatts: 800, GridWatts: -2700}
			require.NoError(t, f.StoreSample(ctx, s2Updated))

			samplesUpdated, err := f.GetSampleHistory(ctx, now.Add(-2*time.Hour), now.Add(1*time.Minute))
			require.NoError(t, err)

			foundUpdated := false
			for _, s := range samplesUpdated {
				if s.Timestamp.Equal(s2.Timestamp) {
					if s.ProductionWatts == 3500 {
						foundUpdated = true
					} else {
						assert.Fail(t, "expected updated production 3500", "got %f", s.ProductionWatts)
					}
				}
			}
			assert.True(t, foundUpdated, "did not find updated sample s2")
		})
	})

	t.Run("Events", func(t *testing.T) {
		now := time.Now().Truncate(time.Second).UTC()
		e1 := types.TransitionEvent{
			Timestamp:       now,
			Device:          "Water Heater",
			Action:          types.TransitionActionOn,
			Reason:          types.TransitionReasonSurplusAvailable,
			SurplusWatts:    1800,
			RatedPowerWatts: 1500,
		}
		require.NoError(t, f.InsertEvent(ctx, e1))

		events, err := f.GetEventHistory(ctx, now.Add(-1*time.Minute), now.Add(1*time.Minute))
		require.NoError(t, err)

		foundE1 := false
		for _, ev := range events {
			if ev.Device == "Water Heater" && ev.Action == types.TransitionActionOn {
				foundE1 = true
			}
		}
		assert.True(t, foundE1, "did not find inserted event in history")

		t.Run("SameTickDistinctDevices", func(t *testing.T) {
			// two devices transitioning on the same timestamp must both persist
			e2 := types.TransitionEvent{
				Timestamp:       now,
				Device:          "Washing Machine",
				Action:          types.TransitionActionOn,
				Reason:          types.TransitionReasonSurplusAvailable,
				SurplusWatts:    1800,
				RatedPowerWatts: 800,
			}
			require.NoError(t, f.InsertEvent(ctx, e2))

			eventsBoth, err := f.GetEventHistory(ctx, now.Add(-1*time.Minute), now.Add(1*time.Minute))
			require.NoError(t, err)

			foundHeater := false
			foundWasher := false
			for _, ev := range eventsBoth {
				if ev.Timestamp.Equal(now) && ev.Device == "Water Heater" {
					foundHeater = true
				}
				if ev.Timestamp.Equal(now) && ev.Device == "Washing Machine" {
					foundWasher = true
				}
			}
			assert.True(t, foundHeater, "heater event lost after same-timestamp insert")
			assert.True(t, foundWasher, "washer event not stored alongside heater")
		})

		t.Run("EventRangeFiltering", func(t *testing.T) {
			e3 := types.TransitionEvent{
				Timestamp:       now.Add(-2 * time.Hour),
				Device:          "Pool Pump",
				Action:          types.TransitionActionOff,
				Reason:          types.TransitionReasonInsufficientSurplus,
				SurplusWatts:    -200,
				RatedPowerWatts: 1100,
			}
			require.NoError(t, f.InsertEvent(ctx, e3))

			eventsFiltered, err := f.GetEventHistory(ctx, now.Add(-1*time.Minute), now.Add(1*time.Minute))
			require.NoError(t, err)
			for _, ev := range eventsFiltered {
				assert.NotEqual(t, "Pool Pump", ev.Device, "event outside range should not be returned")
			}
		})
	})

	t.Run("Devices", func(t *testing.T) {
		heater := types.DeviceConfig{Name: "Water Heater", RatedPowerWatts: 1500, Priority: 8}
		washer := types.DeviceConfig{Name: "Washing Machine", RatedPowerWatts: 800, Priority: 5}
		require.NoError(t, f.SaveDevice(ctx, heater))
		require.NoError(t, f.SaveDevice(ctx, washer))

		devices, err := f.ListDevices(ctx)
		require.NoError(t, err)

		foundHeater := false
		foundWasher := false
		for _, d := range devices {
			if d.Name == "Water Heater" && d.RatedPowerWatts == 1500 && d.Priority == 8 {
				foundHeater = true
			}
			if d.Name == "Washing Machine" && d.RatedPowerWatts == 800 && d.Priority == 5 {
				foundWasher = true
			}
		}
		assert.True(t, foundHeater, "ListDevices did not return the heater")
		assert.True(t, foundWasher, "ListDevices did not return the washer")

		t.Run("SaveOverwrite", func(t *testing.T) {
			updated := types.DeviceConfig{Name: "Water Heater", RatedPowerWatts: 2000, Priority: 9}
			require.NoError(t, f.SaveDevice(ctx, updated))

			devicesUpdated, err := f.ListDevices(ctx)
			require.NoError(t, err)

			for _, d := range devicesUpdated {
				if d.Name == "Water Heater" {
					assert.Equal(t, 2000.0, d.RatedPowerWatts)
					assert.Equal(t, 9, d.Priority)
				}
			}
		})

		t.Run("Delete", func(t *testing.T) {
			require.NoError(t, f.DeleteDevice(ctx, "Washing Machine"))

			devicesAfter, err := f.ListDevices(ctx)
			require.NoError(t, err)
			for _, d := range devicesAfter {
				assert.NotEqual(t, "Washing Machine", d.Name, "deleted device still listed")
			}
		})

		t.Run("DeleteAbsent", func(t *testing.T) {
			// Firestore deletes are idempotent, absent devices are not an error
			require.NoError(t, f.DeleteDevice(ctx, "Nonexistent"))
		})
	})
}
