package instrumentation

import "os"

// Config holds instrumentation settings.
type Config struct {
	// Enabled turns metrics collection on or off. When disabled, record
	// calls are no-ops.
	Enabled bool

	// ServiceName identifies this service in the exported resource.
	ServiceName string

	// ServiceVersion is the build version, set from the main package.
	ServiceVersion string
}

// DefaultConfig returns the default instrumentation configuration.
// INSTRUMENTATION_ENABLED=false disables metrics collection.
func DefaultConfig() Config {
	enabled := os.Getenv("INSTRUMENTATION_ENABLED") != "false"
	return Config{
		Enabled:     enabled,
		ServiceName: "freeweek",
	}
}
