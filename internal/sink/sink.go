// internal/sink/sink.go
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

// Sink is the delivery-only contract for one remote target.
// It receives a snapshot and delivers it verbatim.
// No retries, no state about what was delivered before.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, s status.Snapshot) error
	Close() error
}

// StatusError is a non-success response from a remote target.
type StatusError struct {
	Sink   string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", e.Sink, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Sink, e.Code, e.Detail)
}

// Success reports whether a protocol status code counts as delivered.
func Success(code int) bool {
	return code < 300
}

// Multi fans a snapshot out to every sink.
// All-or-nothing: the delivery succeeds only if every sink succeeded.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Name() string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return strings.Join(names, "+")
}

// Sinks returns the fan-out members.
func (m *Multi) Sinks() []Sink {
	return m.sinks
}

func (m *Multi) Deliver(ctx context.Context, s status.Snapshot) error {
	if len(m.sinks) == 0 {
		return errors.New("sink: no sinks configured")
	}

	var errs []error
	for _, sk := range m.sinks {
		if err := sk.Deliver(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("sink %s: %w", sk.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var last error
	for _, sk := range m.sinks {
		if err := sk.Close(); err != nil {
			last = err
		}
	}
	return last
}
