package daemon

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/printwatch/internal/version"
)

// HealthStatus represents the overall health of the daemon
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents a single health check
type HealthCheck struct {
	Name        string       `json:"name"`
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	LastChecked time.Time    `json:"last_checked"`
}

// HealthResponse represents the complete health check response
type HealthResponse struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Version   string        `json:"version"`
	Checks    []HealthCheck `json:"checks"`
}

// PerformHealthChecks executes all health checks and returns the overall status
func (d *Daemon) PerformHealthChecks() *HealthResponse {
	var checks []HealthCheck
	overallStatus := HealthStatusHealthy

	degrade := func(c HealthCheck) {
		checks = append(checks, c)
		if c.Status != HealthStatusHealthy && overallStatus == HealthStatusHealthy {
			overallStatus = HealthStatusDegraded
		}
	}

	degrade(d.checkDaemonHealth())
	degrade(d.checkPollHealth())

	return &HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Uptime:    time.Since(d.startTime).String(),
		Version:   version.Version,
		Checks:    checks,
	}
}

// checkDaemonHealth verifies the daemon is in a healthy state
func (d *Daemon) checkDaemonHealth() HealthCheck {
	status := d.GetStatus()
	check := HealthCheck{
		Name:        "daemon_status",
		LastChecked: time.Now(),
	}

	switch status {
	case StatusRunning:
		check.Status = HealthStatusHealthy
		check.Message = "Daemon is running normally"
	case StatusStarting:
		check.Status = HealthStatusDegraded
		check.Message = "Daemon is still starting up"
	case StatusStopping, StatusStopped:
		check.Status = HealthStatusUnhealthy
		check.Message = fmt.Sprintf("Daemon is %s", status)
	default:
		check.Status = HealthStatusUnhealthy
		check.Message = fmt.Sprintf("Unknown daemon status: %s", status)
	}

	return check
}

// checkPollHealth verifies the control loop is actually polling.
func (d *Daemon) checkPollHealth() HealthCheck {
	check := HealthCheck{
		Name:        "poll_loop",
		LastChecked: time.Now(),
	}

	snap := d.controller.GetSnapshot()
	interval := d.GetConfig().Timers.Poll

	switch {
	case snap.LastPoll.IsZero():
		if time.Since(d.startTime) > 2*interval {
			check.Status = HealthStatusDegraded
			check.Message = "No poll cycle has completed yet"
		} else {
			check.Status = HealthStatusHealthy
			check.Message = "First poll cycle pending"
		}
	case time.Since(snap.LastPoll) > 3*interval:
		check.Status = HealthStatusDegraded
		check.Message = fmt.Sprintf("Last poll was %s ago", time.Since(snap.LastPoll).Round(time.Second))
	case snap.LastError != "":
		check.Status = HealthStatusDegraded
		check.Message = fmt.Sprintf("Last poll failed: %s", snap.LastError)
	default:
		check.Status = HealthStatusHealthy
		check.Message = fmt.Sprintf("Polling every %s", interval)
	}

	return check
}
