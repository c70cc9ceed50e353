package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("A", 100, 1)
	require.NoError(t, err)

	t.Run("Duplicate", func(t *testing.T) {
		_, err := r.Register("A", 200, 2)
		var dup *DuplicateDeviceError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "A", dup.Name)
		assert.Len(t, r.List(), 1, "registry unchanged on duplicate")
	})

	t.Run("Case Sensitive Names", func(t *testing.T) {
		_, err := r.Register("a", 200, 2)
		require.NoError(t, err)
	})

	t.Run("Invalid Config Rejected", func(t *testing.T) {
		_, err := r.Register("", 100, 1)
		require.ErrorIs(t, err, ErrEmptyName)
	})
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"C", "A", "B"} {
		_, err := r.Register(name, 100, 1)
		require.NoError(t, err)
	}

	var names []string
	for _, d := range r.List() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{"C", "A", "B"}, names, "registration order preserved")
}

func TestRegistryFindRemove(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("Heater", 1500, 8)
	require.NoError(t, err)

	d, ok := r.Find("Heater")
	require.True(t, ok)
	assert.Equal(t, "Heater", d.Name())

	_, ok = r.Find("Missing")
	assert.False(t, ok)

	assert.True(t, r.Remove("Heater"))
	assert.False(t, r.Remove("Heater"), "second remove reports absent")
	assert.Empty(t, r.List())
}

func TestRegistryStatuses(t *testing.T) {
	r := NewRegistry()
	heater, err := r.Register("Heater", 1500, 8)
	require.NoError(t, err)
	_, err = r.Register("Washer", 800, 5)
	require.NoError(t, err)
	heater.TurnOn()

	statuses := r.Statuses()
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].IsOn)
	assert.Equal(t, 1500.0, statuses[0].CurrentWatts)
	assert.False(t, statuses[1].IsOn)
}

func TestDuplicateErrorMessage(t *testing.T) {
	err := error(&DuplicateDeviceError{Name: "Pump"})
	assert.Equal(t, "device already registered: Pump", err.Error())
	assert.False(t, errors.Is(err, ErrEmptyName))
}
