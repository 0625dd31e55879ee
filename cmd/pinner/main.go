package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/solstice-labs/ipfs-pinner/pkg/pinner"
	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/setup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	config, err := setup.NewConfigFromEnv()
	if err != nil {
		slog.Error("failed to get config from env", "error", err)
		return
	}

	serviceConfig, err := pinner.NewServiceConfigFromSetup(config)
	if err != nil {
		slog.Error("failed to create service config", "error", err)
		return
	}

	service, err := pinner.NewService(serviceConfig)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		return
	}

	if err := service.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("service stopped", "error", err)
	}
}
