// internal/sink/csvfile/archive.go
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

// Header is the fixed column order of the archive.
var Header = []string{
	"device_id",
	"timestamp",
	"status_code",
	"status_text",
	"is_alert",
	"blink_count",
	"yawn_count",
	"head_nod_count",
}

// Sink appends one row per delivered snapshot to a local CSV file.
// The header is written when the file is empty.
type Sink struct {
	mu   sync.Mutex
	path string
}

func New(path string) (*Sink, error) {
	if path == "" {
		return nil, errors.New("sink csv: path required")
	}
	return &Sink{path: path}, nil
}

func (s *Sink) Name() string { return "csv" }

func (s *Sink) Deliver(_ context.Context, snap status.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("sink csv: open %s: %w", s.path, err)
	}

	if err := s.append(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("sink csv: write %s: %w", s.path, err)
	}
	return f.Close()
}

// append writes the header first when f is empty.
func (s *Sink) append(f *os.File, snap status.Snapshot) error {
	fi, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if fi.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return err
		}
	}
	if err := w.Write(Row(snap)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (s *Sink) Close() error { return nil }

// Row renders a snapshot in Header order. Absent counters are empty cells.
func Row(snap status.Snapshot) []string {
	return []string{
		snap.DeviceID,
		snap.Timestamp.String(),
		strconv.Itoa(int(snap.StatusCode)),
		snap.StatusText,
		strconv.FormatBool(snap.IsAlert),
		optional(snap.BlinkCount),
		optional(snap.YawnCount),
		optional(snap.HeadNodCount),
	}
}

func optional(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
