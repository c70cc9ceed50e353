// Package notify publishes device transitions over MQTT so external
// automation (smart plugs, home automation bridges) can act on them.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/levenlabs/go-lflag"
	"github.com/sunwarden/sunwarden/pkg/log"
	"github.com/sunwarden/sunwarden/pkg/types"
)

const publishTimeout = 5 * time.Second

// Notifier publishes transition events to an MQTT broker. A notifier with no
// broker configured is valid and does nothing, so callers never branch on
// whether MQTT is enabled.
type Notifier struct {
	client      mqtt.Client
	topicPrefix string
}

// Configured sets up the notifier from flags. An empty broker disables it.
func Configured() *Notifier {
	broker := lflag.String("mqtt-broker", "", "MQTT broker URL for device command publishing (empty disables)")
	username := lflag.String("mqtt-username", "", "MQTT username")
	password := lflag.String("mqtt-password", "", "MQTT password")
	topicPrefix := lflag.String("mqtt-topic-prefix", "sunwarden/devices", "Topic prefix for device commands")

	n := &Notifier{}

	lflag.Do(func() {
		n.topicPrefix = *topicPrefix
		if *broker == "" {
			return
		}
		opts := mqtt.NewClientOptions().AddBroker(*broker).SetClientID("sunwarden")
		opts.SetKeepAlive(60 * time.Second)
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectRetryInterval(5 * time.Second)
		if *username != "" {
			opts.SetUsername(*username)
			opts.SetPassword(*password)
		}
		n.client = mqtt.NewClient(opts)
	})

	return n
}

// Connect establishes the broker connection. It is a no-op when no broker is
// configured.
func (n *Notifier) Connect(ctx context.Context) error {
	if n.client == nil {
		return nil
	}
	token := n.client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out connecting to mqtt broker")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}
	log.Ctx(ctx).InfoContext(ctx, "connected to mqtt broker")
	return nil
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	if n.client != nil {
		n.client.Disconnect(250)
	}
}

// Topic returns the command topic for a device name. Spaces are replaced so
// the name stays a single topic level.
func (n *Notifier) Topic(deviceName string) string {
	return n.topicPrefix + "/" + strings.ReplaceAll(deviceName, " ", "_") + "/set"
}

// PublishTransition publishes the new device state as an ON/OFF command at
// QoS 1.
func (n *Notifier) PublishTransition(ctx context.Context, event types.TransitionEvent) error {
	if n.client == nil {
		return nil
	}
	payload := "OFF"
	if event.Action == types.TransitionActionOn {
		payload = "ON"
	}
	topic := n.Topic(event.Device)
	token := n.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	log.Ctx(ctx).DebugContext(ctx, "published device command",
		slog.String("topic", topic),
		slog.String("payload", payload),
	)
	return nil
}
