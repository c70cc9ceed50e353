package device

import (
	"github.com/levenlabs/go-lflag"
)

// Configured returns a registry, optionally preloaded from a YAML devices
// file. Devices can also be registered later over the API.
func Configured() *Registry {
	r := NewRegistry()
	path := lflag.String("devices-file", "", "Optional YAML file of devices to register at startup")
	lflag.Do(func() {
		if *path == "" {
			return
		}
		if err := LoadFile(r, *path); err != nil {
			panic(err)
		}
	})
	return r
}
