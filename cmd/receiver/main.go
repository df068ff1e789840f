// cmd/receiver/main.go
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
	"github.com/tamzrod/fatigue-relay/internal/receiver"
)

var (
	configPath = flag.String("config", "", "YAML config file (optional; environment overrides it)")
	addr       = flag.String("addr", "", "listen address (overrides receiver.listen)")
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
	if *addr != "" {
		cfg.Receiver.Listen = *addr
	}

	reg := metrics.NewRegistry()
	srv, err := receiver.New(receiver.Config{
		SavePath:  cfg.Receiver.SavePath,
		AccessKey: cfg.Receiver.AccessKey,
		SecretKey: cfg.Receiver.SecretKey,
	}, logger, metrics.New(reg), reg)
	if err != nil {
		logger.Fatal("receiver build failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Receiver.Listen); err != nil {
		logger.Fatal("receiver exited", zap.Error(err))
	}
}
