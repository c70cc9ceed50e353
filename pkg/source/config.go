package source

import (
	"context"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sunwarden/sunwarden/pkg/weather"
)

// Configured sets up the source selector from flags, backed by a Fronius
// primary and a simulated secondary.
func Configured(w *weather.Service) *Selector {
	host := lflag.String("fronius-host", "192.168.1.128", "Hostname or IP of the Fronius inverter")
	port := lflag.Int("fronius-port", 80, "Port of the Fronius inverter")
	checkInterval := lflag.Duration("source-check-interval", 5*time.Minute, "How often to re-probe the primary source")

	s := &Selector{now: time.Now}

	lflag.Do(func() {
		s.primary = newFronius(*host, *port)
		s.secondary = newSimulated(w)
		s.checkInterval = *checkInterval
		s.init(context.Background())
	})

	return s
}
