// internal/snapshot/writer.go
package snapshot

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/fatigue-relay/internal/metrics"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

// Config is the minimal runtime config the writer needs.
type Config struct {
	DeviceID   string
	Path       string
	Interval   time.Duration
	MaxRecords int // 0 = unbounded
}

// Writer periodically turns the current status into a snapshot file.
type Writer struct {
	cfg     Config
	src     Source
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option customizes a Writer.
type Option func(*Writer)

// WithLogger sets the writer's logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}

// WithMetrics records snapshot writes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// NewWriter creates a writer with immutable config.
func NewWriter(cfg Config, src Source, opts ...Option) (*Writer, error) {
	if cfg.Path == "" {
		return nil, errors.New("snapshot: path required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("snapshot: interval must be > 0")
	}
	if cfg.MaxRecords < 0 {
		return nil, errors.New("snapshot: max records must be >= 0")
	}
	if src == nil {
		return nil, errors.New("snapshot: source required")
	}

	w := &Writer{
		cfg: cfg,
		src: src,
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// WriteOnce takes one reading and overwrites the snapshot file.
func (w *Writer) WriteOnce(ctx context.Context) (status.Snapshot, error) {
	r, err := w.src.Next(ctx)
	if err != nil {
		return status.Snapshot{}, err
	}

	// Millisecond precision, matching what downstream consumers display.
	at := w.now().Truncate(time.Millisecond)

	s, err := status.New(w.cfg.DeviceID, at, r.Code)
	if err != nil {
		return status.Snapshot{}, err
	}
	if r.Counters != nil {
		s = s.WithCounters(*r.Counters)
	}

	if err := WriteFile(w.cfg.Path, s); err != nil {
		return status.Snapshot{}, err
	}
	w.metrics.SnapshotWritten(s.StatusCode)

	switch s.StatusCode {
	case status.MildFatigue:
		w.log.Warn("mild fatigue detected",
			zap.String("device_id", s.DeviceID),
			zap.Stringer("timestamp", s.Timestamp))
	case status.Drowsy:
		w.log.Error("ALERT: drowsiness detected",
			zap.String("device_id", s.DeviceID),
			zap.Stringer("timestamp", s.Timestamp))
	}

	return s, nil
}

// Run writes on every tick until ctx is cancelled or MaxRecords snapshots
// were written. A failed write is logged and does not count as a record.
func (w *Writer) Run(ctx context.Context) error {
	w.log.Info("snapshot writer started",
		zap.String("path", w.cfg.Path),
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("max_records", w.cfg.MaxRecords))

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	written := 0
	for {
		if _, err := w.WriteOnce(ctx); err != nil {
			w.log.Error("snapshot write failed", zap.Error(err))
		} else {
			written++
		}

		if w.cfg.MaxRecords > 0 && written >= w.cfg.MaxRecords {
			w.log.Info("snapshot writer reached max records", zap.Int("written", written))
			return nil
		}

		select {
		case <-ctx.Done():
			w.log.Info("snapshot writer stopped", zap.Int("written", written))
			return nil
		case <-ticker.C:
		}
	}
}
