package device

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type fileDevice struct {
	Name            string  `yaml:"name"`
	RatedPowerWatts float64 `yaml:"ratedPowerWatts"`
	Priority        int     `yaml:"priority"`
}

type deviceFile struct {
	Devices []fileDevice `yaml:"devices"`
}

// LoadFile reads a YAML device definition file and registers every device it
// lists into the registry. Validation failures abort the load.
func LoadFile(r *Registry, path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading devices file: %w", err)
	}
	var parsed deviceFile
	if err := yaml.Unmarshal(contents, &parsed); err != nil {
		return fmt.Errorf("parsing devices file %s: %w", path, err)
	}
	for _, fd := range parsed.Devices {
		if _, err := r.Register(fd.Name, fd.RatedPowerWatts, fd.Priority); err != nil {
			return fmt.Errorf("registering device from %s: %w", path, err)
		}
	}
	return nil
}
