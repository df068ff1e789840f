// internal/config/normalize.go
package config

import "strings"

// Normalize trims user input in place.
// Call it before Validate / ValidateRelay so padded values pass URL checks.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Device.ID = strings.TrimSpace(cfg.Device.ID)

	for i := range cfg.Sinks {
		s := &cfg.Sinks[i]

		// Deployed configs carry endpoints padded with spaces.
		s.Endpoint = strings.TrimSpace(s.Endpoint)
	}
}
