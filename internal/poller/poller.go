// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/fatigue-relay/internal/metrics"
	"github.com/tamzrod/fatigue-relay/internal/snapshot"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

// Sink abstracts the delivery target the poller needs.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, s status.Snapshot) error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Path            string
	Interval        time.Duration
	MaxBackoff      time.Duration
	DeliveryTimeout time.Duration
}

// Poller watches the snapshot file's modification time and delivers new
// snapshots. The watermark only advances after a confirmed delivery.
type Poller struct {
	cfg     Config
	sink    Sink
	log     *zap.Logger
	metrics *metrics.Metrics

	stat func(string) (fs.FileInfo, error)
	read func(string) (status.Snapshot, error)

	watermark time.Time
	backoff   Backoff
}

// Option customizes a Poller.
type Option func(*Poller)

func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

// WithWatermark starts from a known delivered modification time.
func WithWatermark(t time.Time) Option {
	return func(p *Poller) { p.watermark = t }
}

// New creates a poller with immutable config.
func New(cfg Config, sink Sink, opts ...Option) (*Poller, error) {
	if cfg.Path == "" {
		return nil, errors.New("poller: snapshot path required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 60 * time.Second
	}
	if cfg.MaxBackoff < cfg.Interval {
		return nil, errors.New("poller: max backoff must be >= interval")
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 10 * time.Second
	}
	if sink == nil {
		return nil, errors.New("poller: sink required")
	}

	p := &Poller{
		cfg:  cfg,
		sink: sink,
		log:  zap.NewNop(),
		stat: os.Stat,
		read: snapshot.Read,
		backoff: Backoff{
			Base: cfg.Interval,
			Max:  cfg.MaxBackoff,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Watermark returns the modification time of the last delivered snapshot.
func (p *Poller) Watermark() time.Time {
	return p.watermark
}

// PollOnce performs exactly one poll cycle.
func (p *Poller) PollOnce(ctx context.Context) (res PollResult) {
	res = PollResult{At: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeUnexpected
			res.Err = fmt.Errorf("poller: panic: %v\n%s", r, debug.Stack())
		}
		p.metrics.PollOutcome(res.Outcome.String())
	}()

	// ---- Idle: compare modification time with the watermark ----
	fi, err := p.stat(p.cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Outcome = OutcomeTransientRead
		} else {
			res.Outcome = OutcomeUnexpected
		}
		res.Err = fmt.Errorf("poller: stat: %w", err)
		return res
	}

	res.ModTime = fi.ModTime()
	if !res.ModTime.After(p.watermark) {
		res.Outcome = OutcomeUnchanged
		return res
	}

	// ---- Reading ----
	snap, err := p.read(p.cfg.Path)
	if err != nil {
		// Malformed, or replaced between stat and read.
		res.Outcome = OutcomeTransientRead
		res.Err = err
		return res
	}
	res.Snapshot = &snap

	// ---- Delivering ----
	// An in-flight delivery is not aborted by cancellation; the timeout bounds it.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.DeliveryTimeout)
	defer cancel()

	start := time.Now()
	err = p.sink.Deliver(dctx, snap)
	p.metrics.Delivery(p.sink.Name(), err == nil, time.Since(start))

	if err != nil {
		res.Outcome = OutcomeDeliveryFailed
		res.Err = err
		return res
	}

	// Commit only after a confirmed delivery.
	p.watermark = res.ModTime
	p.metrics.WatermarkAdvanced(p.watermark)
	res.Outcome = OutcomeDelivered
	return res
}
