package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hoanghai1803/newsdash/internal/app"
	"github.com/hoanghai1803/newsdash/internal/client"
	"github.com/hoanghai1803/newsdash/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := app.SetupLogging(cfg.Log.Level); err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}

	newsAPI := client.New(cfg.API)

	ctrl, err := app.NewController(cfg, newsAPI)
	if err != nil {
		slog.Error("failed to create dashboard", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Serve(ctx, cfg, ctrl); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
