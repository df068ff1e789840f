// internal/status/snapshot.go
package status

import (
	"fmt"
	"time"
)

// Snapshot is the point-in-time document exchanged between the snapshot
// writer and the delivery loop.
// StatusText and IsAlert are derived from StatusCode and must agree with it.
type Snapshot struct {
	DeviceID   string    `json:"device_id"`
	Timestamp  Timestamp `json:"timestamp"`
	StatusCode Code      `json:"status_code"`
	StatusText string    `json:"status_text"`
	IsAlert    bool      `json:"is_alert"`

	// Optional behavioral counters; nil means absent.
	BlinkCount   *int `json:"blink_count,omitempty"`
	YawnCount    *int `json:"yawn_count,omitempty"`
	HeadNodCount *int `json:"head_nod_count,omitempty"`
}

// Counters groups the optional behavioral counters.
type Counters struct {
	Blink   int
	Yawn    int
	HeadNod int
}

// New builds a consistent snapshot. An empty deviceID becomes DefaultDeviceID.
func New(deviceID string, at time.Time, code Code) (Snapshot, error) {
	if !code.Valid() {
		return Snapshot{}, &ValidationError{Field: "status_code", Value: int(code), Reason: "must be 0, 1 or 2"}
	}
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}
	return Snapshot{
		DeviceID:   deviceID,
		Timestamp:  Timestamp{Time: at},
		StatusCode: code,
		StatusText: code.Label(),
		IsAlert:    code.IsAlert(),
	}, nil
}

// WithCounters returns a copy of s carrying the given counters.
func (s Snapshot) WithCounters(c Counters) Snapshot {
	blink, yawn, nod := c.Blink, c.Yawn, c.HeadNod
	s.BlinkCount = &blink
	s.YawnCount = &yawn
	s.HeadNodCount = &nod
	return s
}

// Validate checks that derived fields agree with the status code.
// StatusText may be the label or its English alias.
func (s Snapshot) Validate() error {
	if s.DeviceID == "" {
		return &ValidationError{Field: "device_id", Value: s.DeviceID, Reason: "must not be empty"}
	}
	if !s.StatusCode.Valid() {
		return &ValidationError{Field: "status_code", Value: int(s.StatusCode), Reason: "must be 0, 1 or 2"}
	}
	if !s.StatusCode.Describes(s.StatusText) {
		return &ValidationError{
			Field:  "status_text",
			Value:  s.StatusText,
			Reason: fmt.Sprintf("does not match status_code %d", int(s.StatusCode)),
		}
	}
	if s.IsAlert != s.StatusCode.IsAlert() {
		return &ValidationError{
			Field:  "is_alert",
			Value:  s.IsAlert,
			Reason: fmt.Sprintf("does not match status_code %d", int(s.StatusCode)),
		}
	}
	for name, p := range map[string]*int{
		"blink_count":    s.BlinkCount,
		"yawn_count":     s.YawnCount,
		"head_nod_count": s.HeadNodCount,
	} {
		if p != nil && *p < 0 {
			return &ValidationError{Field: name, Value: *p, Reason: "must be non-negative"}
		}
	}
	return nil
}
