// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run polls until ctx is cancelled. Polls never overlap.
// Ordinary failures retry at the normal interval; unexpected ones back off.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("relay started",
		zap.String("path", p.cfg.Path),
		zap.String("sink", p.sink.Name()),
		zap.Duration("interval", p.cfg.Interval))

	for {
		if ctx.Err() != nil {
			p.log.Info("relay stopped", zap.Time("watermark", p.watermark))
			return nil
		}

		res := p.PollOnce(ctx)
		wait := p.next(res)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.log.Info("relay stopped", zap.Time("watermark", p.watermark))
			return nil
		case <-timer.C:
		}
	}
}

// next logs the result and picks the sleep before the following poll.
func (p *Poller) next(res PollResult) time.Duration {
	switch res.Outcome {
	case OutcomeDelivered:
		p.log.Info("snapshot delivered",
			zap.String("device_id", res.Snapshot.DeviceID),
			zap.Int("status_code", int(res.Snapshot.StatusCode)),
			zap.Time("mtime", res.ModTime))

	case OutcomeUnchanged:
		p.log.Debug("snapshot unchanged", zap.Time("mtime", res.ModTime))

	case OutcomeTransientRead:
		p.log.Warn("snapshot not readable, retrying next poll",
			zap.Duration("retry_in", p.cfg.Interval),
			zap.Error(res.Err))

	case OutcomeDeliveryFailed:
		p.log.Error("delivery failed, retrying next poll",
			zap.String("sink", p.sink.Name()),
			zap.Time("mtime", res.ModTime),
			zap.Error(res.Err))

	case OutcomeUnexpected:
		wait := p.backoff.Next()
		p.log.Error("unexpected poll error, backing off",
			zap.Duration("retry_in", wait),
			zap.Error(res.Err),
			zap.Stack("stack"))
		return wait
	}

	p.backoff.Reset()
	return p.cfg.Interval
}
