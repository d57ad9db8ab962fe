package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/printwatch/internal/logfields"
)

// AdminServer serves the optional observability endpoints: health, the
// controller status snapshot, and Prometheus metrics. It is only started
// when a listen address is configured.
type AdminServer struct {
	server *http.Server
}

// NewAdminServer wires the admin routes for the given daemon.
func NewAdminServer(listen string, d *Daemon) *AdminServer {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", d.handleHealth)
	mux.HandleFunc("GET /status", d.handleStatus)
	mux.Handle("GET /metrics", d.metrics.Handler())

	return &AdminServer{
		server: &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving in the background.
func (a *AdminServer) Start(ctx context.Context) {
	slog.Info("Starting admin server", slog.String("listen", a.server.Addr))
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Admin server failed", logfields.Error(err))
		}
	}()
}

// Stop shuts the server down gracefully.
func (a *AdminServer) Stop(ctx context.Context) error {
	slog.Info("Stopping admin server")
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown admin server: %w", err)
	}
	return nil
}

func (d *Daemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := d.PerformHealthChecks()

	w.Header().Set("Content-Type", "application/json")
	if health.Status == HealthStatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		slog.Error("Failed to encode health response", logfields.Error(err))
	}
}

func (d *Daemon) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := d.controller.GetSnapshot()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		slog.Error("Failed to encode status response", logfields.Error(err))
	}
}
