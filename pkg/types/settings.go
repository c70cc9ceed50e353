package types

// CurrentSettingsVersion is the current version of the settings struct.
// Increment this value when adding new fields that require default values.
const CurrentSettingsVersion = 2

// Settings represents the dynamic configuration stored in the database.
// These can be changed without redeploying.
type Settings struct {
	// Pause stops the tick loop from sampling or reconciling.
	Pause bool `json:"pause"`
	// DryRun applies transitions in memory but never publishes device
	// commands, useful while validating priorities.
	DryRun bool `json:"dryRun"`
}
