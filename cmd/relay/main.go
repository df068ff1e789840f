// cmd/relay/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tamzrod/fatigue-relay/internal/config"
	"github.com/tamzrod/fatigue-relay/internal/logging"
	"github.com/tamzrod/fatigue-relay/internal/metrics"
	"github.com/tamzrod/fatigue-relay/internal/poller"
)

var (
	configPath = flag.String("config", "", "YAML config file (optional; environment overrides it)")
	debug      = flag.Bool("debug", false, "development logging")
)

func main() {
	flag.Parse()

	logger, err := logging.New(*debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	config.Normalize(cfg)
	if err := config.ValidateRelay(cfg); err != nil {
		logger.Fatal("config validation failed", zap.Error(err))
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("config", zap.String("warning", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- metrics ----
	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, reg, logger); err != nil {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	// ---- poller + sinks ----
	p, closeSinks, err := poller.Build(ctx, cfg, logger, m)
	if err != nil {
		logger.Fatal("relay build failed", zap.Error(err))
	}
	defer func() {
		if err := closeSinks(); err != nil {
			logger.Warn("sink close failed", zap.Error(err))
		}
	}()

	if err := p.Run(ctx); err != nil {
		logger.Error("relay exited", zap.Error(err))
	}
}
