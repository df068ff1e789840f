// internal/snapshot/file.go
package snapshot

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

// WriteFile replaces the snapshot at path atomically.
// A concurrent reader sees either the previous or the new document, never a partial one.
func WriteFile(path string, s status.Snapshot) error {
	data, err := status.Marshal(s)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	return nil
}

// Read loads and validates the snapshot at path.
func Read(path string) (status.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return status.Snapshot{}, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	s, err := status.Unmarshal(data)
	if err != nil {
		return status.Snapshot{}, fmt.Errorf("snapshot: parse %s: %w", path, err)
	}
	return s, nil
}
