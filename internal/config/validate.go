// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks configuration correctness for the snapshot writer and
// the shared register. It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Device.ID) == "" {
		return fmt.Errorf("device.id must not be empty")
	}
	if cfg.Snapshot.Path == "" {
		return fmt.Errorf("snapshot.path must not be empty")
	}
	if cfg.Snapshot.IntervalMs <= 0 {
		return fmt.Errorf("snapshot.interval_ms must be > 0, got %d", cfg.Snapshot.IntervalMs)
	}
	if cfg.Snapshot.MaxRecords < 0 {
		return fmt.Errorf("snapshot.max_records must be >= 0, got %d", cfg.Snapshot.MaxRecords)
	}

	switch cfg.Snapshot.Source {
	case SourceRegister:
		switch cfg.Register.Kind {
		case RegisterFile:
			if cfg.Register.Path == "" {
				return fmt.Errorf("register.path must not be empty for a file register")
			}
		case RegisterMemory:
		default:
			return fmt.Errorf("register.kind %q: must be %q or %q", cfg.Register.Kind, RegisterFile, RegisterMemory)
		}
	case SourceSimulate:
		if err := validateSimulation(cfg.Simulation); err != nil {
			return err
		}
	default:
		return fmt.Errorf("snapshot.source %q: must be %q or %q", cfg.Snapshot.Source, SourceRegister, SourceSimulate)
	}

	return nil
}

// ValidateRelay checks what the delivery process needs on top of Validate.
// Missing credentials or endpoints fail here, before the loop starts.
func ValidateRelay(cfg *Config) error {
	if cfg.Snapshot.Path == "" {
		return fmt.Errorf("snapshot.path must not be empty")
	}
	if cfg.Relay.IntervalMs <= 0 {
		return fmt.Errorf("relay.interval_ms must be > 0, got %d", cfg.Relay.IntervalMs)
	}
	if cfg.Relay.MaxBackoffMs < cfg.Relay.IntervalMs {
		return fmt.Errorf("relay.max_backoff_ms (%d) must be >= relay.interval_ms (%d)",
			cfg.Relay.MaxBackoffMs, cfg.Relay.IntervalMs)
	}
	if cfg.Relay.DeliveryTimeoutMs <= 0 {
		return fmt.Errorf("relay.delivery_timeout_ms must be > 0, got %d", cfg.Relay.DeliveryTimeoutMs)
	}
	if len(cfg.Sinks) == 0 {
		return fmt.Errorf("at least one sink is required")
	}

	for i, s := range cfg.Sinks {
		if err := validateSink(s); err != nil {
			return fmt.Errorf("sinks[%d] (%s): %w", i, s.Kind, err)
		}
	}
	return nil
}

func validateSink(s SinkConfig) error {
	if s.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must be >= 0")
	}

	switch s.Kind {
	case SinkHTTP:
		if err := requireURL(s.Endpoint, "http", "https"); err != nil {
			return err
		}
		return requireCredentials(s)

	case SinkObjectStore:
		if strings.TrimSpace(s.Endpoint) == "" {
			return fmt.Errorf("endpoint is required")
		}
		if s.Bucket == "" {
			return fmt.Errorf("bucket is required")
		}
		if s.Folder != "" && !strings.HasSuffix(s.Folder, "/") {
			return fmt.Errorf("folder %q must end with '/'", s.Folder)
		}
		return requireCredentials(s)

	case SinkModbus:
		if s.Endpoint == "" {
			return fmt.Errorf("endpoint is required")
		}
		return nil

	case SinkMongo:
		if s.URI == "" || s.Database == "" {
			return fmt.Errorf("uri and database are required")
		}
		return nil

	case SinkCSV:
		if s.Path == "" {
			return fmt.Errorf("path is required")
		}
		return nil

	default:
		return fmt.Errorf("unknown sink kind %q", s.Kind)
	}
}

func requireCredentials(s SinkConfig) error {
	if s.AccessKey == "" || s.SecretKey == "" {
		return fmt.Errorf("access_key and secret_key are required")
	}
	return nil
}

func requireURL(raw string, schemes ...string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("endpoint %q: %w", raw, err)
	}
	for _, sc := range schemes {
		if u.Scheme == sc && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("endpoint %q must be an absolute %s URL", raw, strings.Join(schemes, "/"))
}

func validateSimulation(s SimulationConfig) error {
	if s.Initial < 0 || s.Initial > 2 {
		return fmt.Errorf("simulation.initial must be 0, 1 or 2, got %d", s.Initial)
	}
	if len(s.Matrix) == 0 {
		return nil
	}
	if len(s.Matrix) != 3 {
		return fmt.Errorf("simulation.matrix must have 3 rows, got %d", len(s.Matrix))
	}
	for i, row := range s.Matrix {
		if len(row) != 3 {
			return fmt.Errorf("simulation.matrix row %d must have 3 columns, got %d", i, len(row))
		}
	}
	return nil
}
