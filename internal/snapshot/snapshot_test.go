package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/tamzrod/fatigue-relay/internal/generator"
	"github.com/tamzrod/fatigue-relay/internal/register"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestWriteOnce_FromRegister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fatigue.json")
	reg := register.NewMemory()
	_ = reg.Update(status.Drowsy)

	at := time.Date(2025, 5, 4, 12, 0, 0, 987_654_321, time.UTC)
	w, err := NewWriter(
		Config{DeviceID: "driver_001", Path: path, Interval: time.Second},
		RegisterSource{Register: reg},
		WithLogger(zaptest.NewLogger(t)),
		WithClock(fixedClock(at)),
	)
	if err != nil {
		t.Fatalf("NewWriter err=%v", err)
	}

	if _, err := w.WriteOnce(context.Background()); err != nil {
		t.Fatalf("WriteOnce err=%v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if got.DeviceID != "driver_001" || got.StatusCode != status.Drowsy || !got.IsAlert {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if got.BlinkCount != nil {
		t.Fatalf("register source must not produce counters")
	}
	if !got.Timestamp.Equal(at.Truncate(time.Millisecond)) {
		t.Fatalf("timestamp: got=%v", got.Timestamp)
	}
}

func TestWriteOnce_OverwritesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fatigue.json")
	reg := register.NewMemory()

	w, _ := NewWriter(Config{Path: path, Interval: time.Second}, RegisterSource{Register: reg})

	_, _ = w.WriteOnce(context.Background())
	_ = reg.Update(status.MildFatigue)
	_, _ = w.WriteOnce(context.Background())

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if got.StatusCode != status.MildFatigue {
		t.Fatalf("expected latest value, got %v", got.StatusCode)
	}
	if got.DeviceID != status.DefaultDeviceID {
		t.Fatalf("device id default: got=%q", got.DeviceID)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %d entries", len(entries))
	}
}

func TestWriteOnce_FromGenerator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fatigue.json")
	gen, _ := generator.New(generator.Config{Matrix: generator.DefaultMatrix, Seed: 9})

	w, _ := NewWriter(Config{DeviceID: "simulated_driver_001", Path: path, Interval: time.Second},
		GeneratorSource{Generator: gen})

	s, err := w.WriteOnce(context.Background())
	if err != nil {
		t.Fatalf("WriteOnce err=%v", err)
	}
	if s.BlinkCount == nil || s.YawnCount == nil || s.HeadNodCount == nil {
		t.Fatalf("generator snapshot must carry counters: %+v", s)
	}
}

type failingSource struct{}

func (failingSource) Next(context.Context) (Reading, error) {
	return Reading{}, errors.New("sensor offline")
}

func TestWriteOnce_SourceError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fatigue.json")
	w, _ := NewWriter(Config{Path: path, Interval: time.Second}, failingSource{})

	if _, err := w.WriteOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("no snapshot should be written on source error")
	}
}

func TestRun_StopsAtMaxRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fatigue.json")
	gen, _ := generator.New(generator.Config{Matrix: generator.DefaultMatrix, Seed: 1})

	w, _ := NewWriter(
		Config{Path: path, Interval: time.Millisecond, MaxRecords: 3},
		GeneratorSource{Generator: gen},
		WithLogger(zaptest.NewLogger(t)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run err=%v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("Run should return on max records, not on timeout")
	}
	if _, err := Read(path); err != nil {
		t.Fatalf("Read err=%v", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fatigue.json")
	w, _ := NewWriter(Config{Path: path, Interval: 10 * time.Millisecond},
		RegisterSource{Register: register.NewMemory()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run err=%v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}

func TestNewWriter_Validation(t *testing.T) {
	src := RegisterSource{Register: register.NewMemory()}
	if _, err := NewWriter(Config{Interval: time.Second}, src); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := NewWriter(Config{Path: "x"}, src); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if _, err := NewWriter(Config{Path: "x", Interval: time.Second}, nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
}

func TestRead_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fatigue.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Fatalf("expected parse error")
	}

	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file should wrap ErrNotExist, got %v", err)
	}
}
