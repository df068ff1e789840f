// internal/status/timestamp.go
package status

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a snapshot time with sub-second precision.
// It is written as RFC 3339 and also accepts the space separated
// forms produced by older writers.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("status: timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("status: unrecognized timestamp %q", s)
}

// String returns the wire form of the timestamp.
func (t Timestamp) String() string {
	return t.Time.Format(time.RFC3339Nano)
}
