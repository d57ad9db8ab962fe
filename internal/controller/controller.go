// Package controller holds the poll-cycle state machine deciding when the
// printer is powered on and off.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/printwatch/internal/logfields"
	"git.home.luguber.info/inful/printwatch/internal/notify"
	"git.home.luguber.info/inful/printwatch/internal/power"
	"git.home.luguber.info/inful/printwatch/internal/queue"
)

// maxTransitions bounds the in-memory transition history served by /status.
const maxTransitions = 16

// Transition records one power state change.
type Transition struct {
	Time time.Time `json:"time"`
	On   bool      `json:"on"`
	Jobs int       `json:"jobs"`
}

// Snapshot is a point-in-time view of the controller for the admin surface.
type Snapshot struct {
	PowerOn       bool         `json:"power_on"`
	LastActive    time.Time    `json:"last_active,omitzero"`
	LastPoll      time.Time    `json:"last_poll,omitzero"`
	LastJobs      int          `json:"last_jobs"`
	LastError     string       `json:"last_error,omitempty"`
	Polls         uint64       `json:"polls"`
	PollErrors    uint64       `json:"poll_errors"`
	Activations   uint64       `json:"activations"`
	Deactivations uint64       `json:"deactivations"`
	Transitions   []Transition `json:"transitions,omitempty"`
}

// Controller owns the two pieces of control state: the power flag and the
// last-active timestamp. Both live only for the life of the process; a
// restart starts from "off" regardless of real printer power.
type Controller struct {
	queue    queue.Inspector
	sw       power.Switch
	notifier notify.Notifier
	now      func() time.Time

	mu            sync.Mutex
	idle          time.Duration
	on            bool
	lastActive    time.Time
	lastPoll      time.Time
	lastJobs      int
	lastErr       string
	polls         uint64
	pollErrors    uint64
	activations   uint64
	deactivations uint64
	transitions   []Transition
}

// New creates a controller in the off state.
func New(insp queue.Inspector, sw power.Switch, notifier notify.Notifier, idleTimeout time.Duration) *Controller {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Controller{
		queue:    insp,
		sw:       sw,
		notifier: notifier,
		idle:     idleTimeout,
		now:      time.Now,
	}
}

// Tick runs one poll cycle: probe the queue, update the last-active
// timestamp, and apply the two transition rules. Collaborator errors are
// logged and notified but never stop the loop; the recorded power state is
// only changed after a switch action succeeds.
func (c *Controller) Tick(ctx context.Context) {
	jobs, err := c.queue.ActiveJobs(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.polls++
	c.lastPoll = now

	if err != nil {
		c.pollErrors++
		c.lastErr = err.Error()
		c.report(ctx, "queue", err)
		return
	}

	c.lastErr = ""
	c.lastJobs = jobs
	if jobs > 0 {
		c.lastActive = now
	}

	switch {
	case !c.on && jobs > 0:
		if err := c.sw.Activate(ctx); err != nil {
			c.report(ctx, "power", err)
			return
		}
		c.on = true
		c.activations++
		c.recordTransition(now, jobs)
		slog.Info("Printer powered on", logfields.Jobs(jobs))

	case c.on && jobs == 0 && now.Sub(c.lastActive) >= c.idle:
		if err := c.sw.Deactivate(ctx); err != nil {
			c.report(ctx, "power", err)
			return
		}
		c.on = false
		c.deactivations++
		c.recordTransition(now, jobs)
		slog.Info("Idle timeout elapsed, printer powered off",
			logfields.Idle(now.Sub(c.lastActive).String()))
	}
}

// SetIdleTimeout applies a reloaded idle timeout to the running loop.
func (c *Controller) SetIdleTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idle = d
}

// SetNotifier swaps the notification sink, used on config reload.
func (c *Controller) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = notify.Nop{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = n
}

// PowerOn reports the tracked power state.
func (c *Controller) PowerOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.on
}

// ActiveJobs reports the job count from the last successful poll.
func (c *Controller) ActiveJobs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastJobs
}

// IdleFor reports how long no job has been observed. Zero until the first
// job is seen.
func (c *Controller) IdleFor() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastActive.IsZero() {
		return 0
	}
	return c.now().Sub(c.lastActive)
}

// GetSnapshot returns a copy of the controller state for the admin surface.
func (c *Controller) GetSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		PowerOn:       c.on,
		LastActive:    c.lastActive,
		LastPoll:      c.lastPoll,
		LastJobs:      c.lastJobs,
		LastError:     c.lastErr,
		Polls:         c.polls,
		PollErrors:    c.pollErrors,
		Activations:   c.activations,
		Deactivations: c.deactivations,
	}
	snap.Transitions = append(snap.Transitions, c.transitions...)
	return snap
}

// recordTransition appends to the bounded transition history. Caller holds
// the lock.
func (c *Controller) recordTransition(now time.Time, jobs int) {
	c.transitions = append(c.transitions, Transition{Time: now, On: c.on, Jobs: jobs})
	if len(c.transitions) > maxTransitions {
		c.transitions = c.transitions[len(c.transitions)-maxTransitions:]
	}
}

// report logs a collaborator error and forwards it to the notifier. A
// notification delivery failure is logged and swallowed so it cannot mask
// the original error.
func (c *Controller) report(ctx context.Context, source string, err error) {
	slog.Error("Poll cycle error", slog.String("source", source), logfields.Error(err))

	event := notify.NewEvent(notify.SeverityError, source, err.Error())
	if nerr := c.notifier.Notify(ctx, event); nerr != nil {
		slog.Warn("Notification delivery failed",
			logfields.EventID(event.ID), logfields.Error(nerr))
	}
}
