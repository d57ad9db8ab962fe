// Package queue probes the print service for the number of active jobs on a
// single queue. A probe failure is always surfaced as an error, never as a
// zero count, so the control loop cannot mistake an unreachable print
// service for an idle printer.
package queue

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/printwatch/internal/config"
)

// Inspector reports the number of active (queued or printing) jobs.
type Inspector interface {
	// ActiveJobs returns the current count of not-completed jobs on the
	// configured queue.
	ActiveJobs(ctx context.Context) (int, error)
}

// New creates the Inspector selected by the queue configuration.
func New(cfg config.QueueConfig) (Inspector, error) {
	switch cfg.Backend {
	case config.QueueBackendIPP:
		return NewIPPInspector(cfg), nil
	case config.QueueBackendCommand:
		return NewCommandInspector(cfg.Command), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
	}
}
