package csvfile

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

func TestDeliver_HeaderOnceThenRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.csv")
	sk, err := New(path)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}

	a, _ := status.New("d1", time.Unix(1_700_000_000, 0), status.Normal)
	b, _ := status.New("d1", time.Unix(1_700_000_002, 0), status.Drowsy)
	b = b.WithCounters(status.Counters{Blink: 20, Yawn: 3, HeadNod: 5})

	for _, s := range []status.Snapshot{a, b} {
		if err := sk.Deliver(context.Background(), s); err != nil {
			t.Fatalf("Deliver err=%v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("csv read err=%v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "device_id" || rows[0][7] != "head_nod_count" {
		t.Fatalf("header: %v", rows[0])
	}
	if rows[1][5] != "" {
		t.Fatalf("absent counter should be empty, got %q", rows[1][5])
	}
	if rows[2][2] != "2" || rows[2][4] != "true" || rows[2][5] != "20" {
		t.Fatalf("row: %v", rows[2])
	}
}

func TestDeliver_HeaderForEmptyExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	sk, err := New(path)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	snap, _ := status.New("d1", time.Unix(1_700_000_000, 0), status.MildFatigue)
	if err := sk.Deliver(context.Background(), snap); err != nil {
		t.Fatalf("Deliver err=%v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("csv read err=%v", err)
	}
	if len(rows) != 2 || rows[0][0] != "device_id" || rows[1][3] != "轻微疲劳" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
