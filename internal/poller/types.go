// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

// Outcome classifies one poll cycle.
type Outcome int

const (
	// OutcomeUnchanged: modification time not newer than the watermark.
	OutcomeUnchanged Outcome = iota
	// OutcomeDelivered: delivered and the watermark advanced.
	OutcomeDelivered
	// OutcomeTransientRead: snapshot missing or unparsable; retry next poll.
	OutcomeTransientRead
	// OutcomeDeliveryFailed: sink rejected or transport failed; retry next poll.
	OutcomeDeliveryFailed
	// OutcomeUnexpected: anything else; the runner backs off.
	OutcomeUnexpected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeTransientRead:
		return "transient_read"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	case OutcomeUnexpected:
		return "unexpected"
	default:
		return "invalid"
	}
}

// PollResult is produced by one poll cycle.
type PollResult struct {
	At      time.Time
	Outcome Outcome

	// ModTime is the observed modification time (zero if stat failed).
	ModTime time.Time

	// Snapshot is set once the file parsed.
	Snapshot *status.Snapshot

	Err error // non-nil for every failing outcome
}
