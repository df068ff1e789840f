// internal/config/config.go
package config

type Config struct {
	Device     DeviceConfig     `yaml:"device"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Register   RegisterConfig   `yaml:"register"`
	Simulation SimulationConfig `yaml:"simulation"`
	Relay      RelayConfig      `yaml:"relay"`
	Sinks      []SinkConfig     `yaml:"sinks"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Receiver   ReceiverConfig   `yaml:"receiver"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID string `yaml:"id"`
}

// ---- SNAPSHOT WRITER ----

type SnapshotConfig struct {
	Path       string `yaml:"path"`
	IntervalMs int    `yaml:"interval_ms"`
	MaxRecords int    `yaml:"max_records"` // 0 = unbounded
	Source     string `yaml:"source"`      // register | simulate
}

const (
	SourceRegister = "register"
	SourceSimulate = "simulate"
)

// ---- SHARED REGISTER ----

type RegisterConfig struct {
	Kind string `yaml:"kind"` // file | memory
	Path string `yaml:"path"`
}

const (
	RegisterFile   = "file"
	RegisterMemory = "memory"
)

// ---- SIMULATION ----

type SimulationConfig struct {
	Seed    int64       `yaml:"seed"`
	Initial int         `yaml:"initial"`
	Matrix  [][]float64 `yaml:"matrix"` // 3x3, rows sum to 1; empty = default
}

// ---- RELAY (poll-detect-deliver) ----

type RelayConfig struct {
	IntervalMs        int `yaml:"interval_ms"`
	MaxBackoffMs      int `yaml:"max_backoff_ms"`
	DeliveryTimeoutMs int `yaml:"delivery_timeout_ms"`
}

// ---- SINKS ----

type SinkConfig struct {
	Kind string `yaml:"kind"` // http | objectstore | modbus | mongo | csv

	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// objectstore
	Bucket string `yaml:"bucket"`
	Folder string `yaml:"folder"`
	Region string `yaml:"region"`

	// modbus
	UnitID   uint8  `yaml:"unit_id"`
	BaseSlot uint16 `yaml:"base_slot"`

	// mongo
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`

	// csv
	Path string `yaml:"path"`
}

const (
	SinkHTTP        = "http"
	SinkObjectStore = "objectstore"
	SinkModbus      = "modbus"
	SinkMongo       = "mongo"
	SinkCSV         = "csv"
)

// ---- METRICS ----

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty = disabled
}

// ---- RECEIVER ----

type ReceiverConfig struct {
	Listen    string `yaml:"listen"`
	SavePath  string `yaml:"save_path"`
	AccessKey string `yaml:"access_key"` // empty = no auth
	SecretKey string `yaml:"secret_key"`
}
