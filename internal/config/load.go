// internal/config/load.go
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultDeviceID          = "default_device"
	DefaultSnapshotPath      = "fatigue.json"
	DefaultWriteIntervalMs   = 1000
	DefaultPollIntervalMs    = 10000
	DefaultMaxBackoffMs      = 60000
	DefaultDeliveryTimeoutMs = 10000
	DefaultRegisterPath      = "fatigue.status"
	DefaultReceiverListen    = ":5000"
	DefaultReceiverSavePath  = "received_data.json"
)

// Load reads the YAML file at path (optional: "" skips it), overlays the
// environment and fills defaults. It does not validate.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("FATIGUE_DEVICE_ID", &cfg.Device.ID)
	str("FATIGUE_SNAPSHOT_PATH", &cfg.Snapshot.Path)
	str("FATIGUE_SOURCE", &cfg.Snapshot.Source)
	str("FATIGUE_REGISTER_PATH", &cfg.Register.Path)
	str("FATIGUE_METRICS_ADDR", &cfg.Metrics.Listen)

	if v, ok := lookup("FATIGUE_POLL_INTERVAL"); ok && v != "" {
		ms, err := secondsToMs(v)
		if err != nil {
			return fmt.Errorf("config: FATIGUE_POLL_INTERVAL: %w", err)
		}
		cfg.Relay.IntervalMs = ms
	}
	if v, ok := lookup("FATIGUE_WRITE_INTERVAL"); ok && v != "" {
		ms, err := secondsToMs(v)
		if err != nil {
			return fmt.Errorf("config: FATIGUE_WRITE_INTERVAL: %w", err)
		}
		cfg.Snapshot.IntervalMs = ms
	}
	if v, ok := lookup("FATIGUE_MAX_RECORDS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: FATIGUE_MAX_RECORDS: %w", err)
		}
		cfg.Snapshot.MaxRecords = n
	}

	// HTTP upload sink.
	if anySet(lookup, "UPLOAD_AK", "UPLOAD_SK", "UPLOAD_API_ENDPOINT") {
		sc := sinkOfKind(cfg, SinkHTTP)
		str("UPLOAD_AK", &sc.AccessKey)
		str("UPLOAD_SK", &sc.SecretKey)
		str("UPLOAD_API_ENDPOINT", &sc.Endpoint)
	}

	// Object storage sink.
	if anySet(lookup, "OBS_AK", "OBS_SK", "OBS_ENDPOINT", "OBS_BUCKET", "OBS_FOLDER") {
		sc := sinkOfKind(cfg, SinkObjectStore)
		str("OBS_AK", &sc.AccessKey)
		str("OBS_SK", &sc.SecretKey)
		str("OBS_ENDPOINT", &sc.Endpoint)
		str("OBS_BUCKET", &sc.Bucket)
		str("OBS_FOLDER", &sc.Folder)
	}

	return nil
}

// sinkOfKind returns the first sink of kind, appending one if none exists.
func sinkOfKind(cfg *Config, kind string) *SinkConfig {
	for i := range cfg.Sinks {
		if cfg.Sinks[i].Kind == kind {
			return &cfg.Sinks[i]
		}
	}
	cfg.Sinks = append(cfg.Sinks, SinkConfig{Kind: kind})
	return &cfg.Sinks[len(cfg.Sinks)-1]
}

func anySet(lookup lookupFunc, keys ...string) bool {
	for _, k := range keys {
		if v, ok := lookup(k); ok && v != "" {
			return true
		}
	}
	return false
}

func secondsToMs(v string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("must be a positive number of seconds, got %q", v)
	}
	ms := math.Round(f * 1000)
	if ms < 1 {
		return 0, fmt.Errorf("must be at least 0.001 seconds, got %q", v)
	}
	if ms > math.MaxInt32 {
		return 0, fmt.Errorf("too large, got %q", v)
	}
	return int(ms), nil
}

func applyDefaults(cfg *Config) {
	if cfg.Device.ID == "" {
		cfg.Device.ID = DefaultDeviceID
	}
	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = DefaultSnapshotPath
	}
	if cfg.Snapshot.IntervalMs == 0 {
		cfg.Snapshot.IntervalMs = DefaultWriteIntervalMs
	}
	if cfg.Snapshot.Source == "" {
		cfg.Snapshot.Source = SourceRegister
	}
	if cfg.Register.Kind == "" {
		cfg.Register.Kind = RegisterFile
	}
	if cfg.Register.Path == "" {
		cfg.Register.Path = DefaultRegisterPath
	}
	if cfg.Relay.IntervalMs == 0 {
		cfg.Relay.IntervalMs = DefaultPollIntervalMs
	}
	if cfg.Relay.MaxBackoffMs == 0 {
		cfg.Relay.MaxBackoffMs = DefaultMaxBackoffMs
	}
	if cfg.Relay.DeliveryTimeoutMs == 0 {
		cfg.Relay.DeliveryTimeoutMs = DefaultDeliveryTimeoutMs
	}
	if cfg.Receiver.Listen == "" {
		cfg.Receiver.Listen = DefaultReceiverListen
	}
	if cfg.Receiver.SavePath == "" {
		cfg.Receiver.SavePath = DefaultReceiverSavePath
	}
}

// Warnings lists non-fatal problems such as placeholder credentials.
func (c *Config) Warnings() []string {
	var out []string
	for i, s := range c.Sinks {
		for _, v := range []string{s.AccessKey, s.SecretKey} {
			if isPlaceholder(v) {
				out = append(out, fmt.Sprintf("sink %d (%s): placeholder credentials, replace before production", i, s.Kind))
				break
			}
		}
	}
	return out
}

func isPlaceholder(v string) bool {
	l := strings.ToLower(v)
	return strings.HasPrefix(l, "your-") || strings.HasPrefix(l, "your_")
}
