package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/printwatch/internal/config"
	"git.home.luguber.info/inful/printwatch/internal/daemon"
	"git.home.luguber.info/inful/printwatch/internal/version"
)

var CLI struct {
	Config string `arg:"" optional:"" help:"Settings file path (defaults to printwatch.yaml next to the executable)" type:"path"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("printwatch"),
		kong.Description("Watches a print queue and toggles printer power over a GPIO pin."),
	)

	// Bootstrap logging before the settings file is read; the configured
	// level and format take over once loading succeeds.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))

	if err := runDaemon(cfg, configPath); err != nil {
		slog.Error("Daemon failed", "error", err)
		os.Exit(1)
	}
}

func runDaemon(cfg *config.Config, configPath string) error {
	slog.Info("Starting printwatch", "version", version.Version, "config", configPath)

	// Create main context for the daemon
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.NewDaemon(cfg, configPath)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	// Start daemon in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- d.Start(ctx)
	}()

	slog.Info("Daemon started, waiting for shutdown signal...")

	// Wait for either error or shutdown signal
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("daemon error: %w", err)
		}
		<-ctx.Done()
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping daemon...")
	}

	// Stop daemon gracefully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	slog.Info("Daemon stopped successfully")
	return nil
}
