// internal/poller/builder.go
package poller

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/fatigue-relay/internal/config"
	"github.com/tamzrod/fatigue-relay/internal/metrics"
	"github.com/tamzrod/fatigue-relay/internal/sink"
	"github.com/tamzrod/fatigue-relay/internal/sink/csvfile"
	"github.com/tamzrod/fatigue-relay/internal/sink/httpbasic"
	smodbus "github.com/tamzrod/fatigue-relay/internal/sink/modbus"
	"github.com/tamzrod/fatigue-relay/internal/sink/mongostore"
	"github.com/tamzrod/fatigue-relay/internal/sink/objectstore"
)

// Build constructs the sinks and the Poller from a validated config.
// Sinks connect once at startup (fail fast); the returned closer releases them.
func Build(ctx context.Context, c *cfg.Config, log *zap.Logger, m *metrics.Metrics) (*Poller, func() error, error) {
	sinks, err := BuildSinks(ctx, c.Sinks)
	if err != nil {
		return nil, nil, err
	}

	multi := sink.NewMulti(sinks...)

	p, err := New(
		Config{
			Path:            c.Snapshot.Path,
			Interval:        time.Duration(c.Relay.IntervalMs) * time.Millisecond,
			MaxBackoff:      time.Duration(c.Relay.MaxBackoffMs) * time.Millisecond,
			DeliveryTimeout: time.Duration(c.Relay.DeliveryTimeoutMs) * time.Millisecond,
		},
		multi,
		WithLogger(log),
		WithMetrics(m),
	)
	if err != nil {
		_ = multi.Close()
		return nil, nil, err
	}

	return p, multi.Close, nil
}

// BuildSinks creates one sink per config entry. On error every sink
// already built is closed.
func BuildSinks(ctx context.Context, cfgs []cfg.SinkConfig) ([]sink.Sink, error) {
	var out []sink.Sink

	fail := func(i int, kind string, err error) ([]sink.Sink, error) {
		for _, s := range out {
			_ = s.Close()
		}
		return nil, fmt.Errorf("sink %d (%s): %w", i, kind, err)
	}

	for i, sc := range cfgs {
		timeout := time.Duration(sc.TimeoutMs) * time.Millisecond

		var (
			s   sink.Sink
			err error
		)
		switch sc.Kind {
		case cfg.SinkHTTP:
			s, err = httpbasic.New(httpbasic.Config{
				Endpoint:  sc.Endpoint,
				AccessKey: sc.AccessKey,
				SecretKey: sc.SecretKey,
				Timeout:   timeout,
			}, nil)

		case cfg.SinkObjectStore:
			s, err = objectstore.New(objectstore.Config{
				Endpoint:  sc.Endpoint,
				AccessKey: sc.AccessKey,
				SecretKey: sc.SecretKey,
				Bucket:    sc.Bucket,
				Folder:    sc.Folder,
				Region:    sc.Region,
				Timeout:   timeout,
			})

		case cfg.SinkModbus:
			if timeout <= 0 {
				timeout = 2 * time.Second
			}
			s, err = smodbus.Dial(smodbus.Plan{
				Endpoint: sc.Endpoint,
				UnitID:   sc.UnitID,
				BaseSlot: sc.BaseSlot,
			}, timeout)

		case cfg.SinkMongo:
			s, err = mongostore.Connect(ctx, mongostore.Config{
				URI:        sc.URI,
				Database:   sc.Database,
				Collection: sc.Collection,
				Timeout:    timeout,
			})

		case cfg.SinkCSV:
			s, err = csvfile.New(sc.Path)

		default:
			err = fmt.Errorf("unknown sink kind %q", sc.Kind)
		}

		if err != nil {
			return fail(i, sc.Kind, err)
		}
		out = append(out, s)
	}

	return out, nil
}
