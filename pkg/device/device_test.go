package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		d, err := New("Water Heater", 1500, 8)
		require.NoError(t, err)
		assert.Equal(t, "Water Heater", d.Name())
		assert.Equal(t, 1500.0, d.RatedPowerWatts())
		assert.Equal(t, 8, d.Priority())
		assert.False(t, d.IsOn())
	})

	t.Run("Empty Name", func(t *testing.T) {
		_, err := New("", 1500, 8)
		require.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("Zero Power", func(t *testing.T) {
		_, err := New("Heater", 0, 1)
		require.ErrorIs(t, err, ErrInvalidRatedPower)
	})

	t.Run("Negative Power", func(t *testing.T) {
		_, err := New("Heater", -100, 1)
		require.ErrorIs(t, err, ErrInvalidRatedPower)
	})
}

func TestDeviceTransitions(t *testing.T) {
	d, err := New("Pump", 750, 3)
	require.NoError(t, err)

	created := d.LastTransitionAt()

	assert.True(t, d.TurnOn())
	assert.True(t, d.IsOn())
	assert.False(t, d.TurnOn(), "second TurnOn is a no-op")
	first := d.LastTransitionAt()
	assert.False(t, first.Before(created))

	time.Sleep(time.Millisecond)
	assert.True(t, d.TurnOff())
	assert.False(t, d.IsOn())
	assert.False(t, d.TurnOff(), "second TurnOff is a no-op")
	assert.True(t, d.LastTransitionAt().After(first))
}

func TestDeviceStatus(t *testing.T) {
	d, err := New("Pump", 750, 3)
	require.NoError(t, err)

	status := d.Status()
	assert.Equal(t, "Pump", status.Name)
	assert.False(t, status.IsOn)
	assert.Zero(t, status.CurrentWatts)

	d.TurnOn()
	status = d.Status()
	assert.True(t, status.IsOn)
	assert.Equal(t, 750.0, status.CurrentWatts)
}
