// internal/poller/builder_test.go
package poller

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	cfg "github.com/tamzrod/fatigue-relay/internal/config"
	"github.com/tamzrod/fatigue-relay/internal/sink/csvfile"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

func TestBuild_CSVRelay(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "fatigue.json")
	archive := filepath.Join(dir, "history.csv")

	c := &cfg.Config{
		Snapshot: cfg.SnapshotConfig{Path: snapPath},
		Relay: cfg.RelayConfig{
			IntervalMs:        1000,
			MaxBackoffMs:      5000,
			DeliveryTimeoutMs: 1000,
		},
		Sinks: []cfg.SinkConfig{{Kind: cfg.SinkCSV, Path: archive}},
	}

	p, closer, err := Build(context.Background(), c, zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatalf("Build err=%v", err)
	}
	defer closer()

	writeSnapshot(t, snapPath, status.MildFatigue, time.Date(2025, 6, 7, 8, 9, 11, 0, time.UTC))

	if res := p.PollOnce(context.Background()); res.Outcome != OutcomeDelivered {
		t.Fatalf("outcome=%s err=%v", res.Outcome, res.Err)
	}
	if p.sink.Name() != "csv" {
		t.Fatalf("sink name=%q", p.sink.Name())
	}
}

func TestBuildSinks_UnknownKind(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "history.csv")

	_, err := BuildSinks(context.Background(), []cfg.SinkConfig{
		{Kind: cfg.SinkCSV, Path: archive},
		{Kind: "carrier-pigeon"},
	})
	if err == nil {
		t.Fatalf("expected error for unknown sink kind")
	}
}

func TestBuildSinks_Kinds(t *testing.T) {
	sinks, err := BuildSinks(context.Background(), []cfg.SinkConfig{
		{Kind: cfg.SinkHTTP, Endpoint: "http://127.0.0.1:5000/upload", AccessKey: "ak", SecretKey: "sk"},
		{Kind: cfg.SinkCSV, Path: filepath.Join(t.TempDir(), "history.csv")},
	})
	if err != nil {
		t.Fatalf("BuildSinks err=%v", err)
	}
	if len(sinks) != 2 {
		t.Fatalf("got %d sinks", len(sinks))
	}
	if _, ok := sinks[1].(*csvfile.Sink); !ok {
		t.Fatalf("second sink is %T", sinks[1])
	}
	for _, s := range sinks {
		_ = s.Close()
	}
}
