package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunwarden/sunwarden/pkg/types"
)

func TestTopic(t *testing.T) {
	n := &Notifier{topicPrefix: "sunwarden/devices"}
	assert.Equal(t, "sunwarden/devices/Heater/set", n.Topic("Heater"))
	assert.Equal(t, "sunwarden/devices/Water_Heater/set", n.Topic("Water Heater"))
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	ctx := context.Background()
	n := &Notifier{topicPrefix: "sunwarden/devices"}

	require.NoError(t, n.Connect(ctx))
	require.NoError(t, n.PublishTransition(ctx, types.TransitionEvent{
		Device: "Heater",
		Action: types.TransitionActionOn,
	}))
	n.Close()
}
