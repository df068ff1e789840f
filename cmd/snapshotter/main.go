// cmd/snapshotter/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/fatigue-relay/internal/config"
	"github.com/tamzrod/fatigue-relay/internal/generator"
	"github.com/tamzrod/fatigue-relay/internal/logging"
	"github.com/tamzrod/fatigue-relay/internal/metrics"
	"github.com/tamzrod/fatigue-relay/internal/register"
	"github.com/tamzrod/fatigue-relay/internal/snapshot"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

var (
	configPath = flag.String("config", "", "YAML config file (optional; environment overrides it)")
	simulate   = flag.Bool("simulate", false, "use the synthetic generator instead of the shared register")
	debug      = flag.Bool("debug", false, "development logging")
)

func main() {
	flag.Parse()

	logger, err := logging.New(*debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if *simulate {
		cfg.Snapshot.Source = config.SourceSimulate
	}
	config.Normalize(cfg)
	if err := config.Validate(cfg); err != nil {
		logger.Fatal("config validation failed", zap.Error(err))
	}

	src, err := buildSource(cfg, logger)
	if err != nil {
		logger.Fatal("source build failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, reg, logger); err != nil {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	w, err := snapshot.NewWriter(
		snapshot.Config{
			DeviceID:   cfg.Device.ID,
			Path:       cfg.Snapshot.Path,
			Interval:   time.Duration(cfg.Snapshot.IntervalMs) * time.Millisecond,
			MaxRecords: cfg.Snapshot.MaxRecords,
		},
		src,
		snapshot.WithLogger(logger),
		snapshot.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		logger.Fatal("writer build failed", zap.Error(err))
	}

	if err := w.Run(ctx); err != nil {
		logger.Fatal("writer exited", zap.Error(err))
	}
}

func buildSource(cfg *config.Config, logger *zap.Logger) (snapshot.Source, error) {
	if cfg.Snapshot.Source == config.SourceSimulate {
		m := generator.DefaultMatrix
		for i, row := range cfg.Simulation.Matrix {
			copy(m[i][:], row)
		}

		seed := cfg.Simulation.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		g, err := generator.New(generator.Config{
			Matrix:  m,
			Initial: status.Code(cfg.Simulation.Initial),
			Seed:    seed,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("simulating fatigue status", zap.Int64("seed", seed))
		return snapshot.GeneratorSource{Generator: g}, nil
	}

	if cfg.Register.Kind == config.RegisterMemory {
		logger.Warn("memory register is private to this process; status stays normal unless updated in-process")
		return snapshot.RegisterSource{Register: register.NewMemory()}, nil
	}

	reg, err := register.NewFile(cfg.Register.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("reading shared register", zap.String("path", reg.Path()))
	return snapshot.RegisterSource{Register: reg}, nil
}
