package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/printwatch/internal/config"
	"git.home.luguber.info/inful/printwatch/internal/controller"
	"git.home.luguber.info/inful/printwatch/internal/logfields"
	"git.home.luguber.info/inful/printwatch/internal/notify"
	"git.home.luguber.info/inful/printwatch/internal/power"
	"git.home.luguber.info/inful/printwatch/internal/queue"
)

// Status represents the current state of the daemon
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
)

// pollJobName names the single scheduled job.
const pollJobName = "queue-poll"

// Daemon owns the control loop and its supporting services: the scheduler
// driving poll cycles, the optional admin HTTP endpoint, and the optional
// settings file watcher.
type Daemon struct {
	mu             sync.RWMutex
	config         *config.Config
	configFilePath string
	status         atomic.Value // Status
	startTime      time.Time

	inspector  queue.Inspector
	powerSw    power.Switch
	notifier   notify.Notifier
	controller *controller.Controller
	metrics    *Metrics
	scheduler  *Scheduler
	admin      *AdminServer
	watcher    *ConfigWatcher

	pollJobID string
}

// Option overrides a collaborator, used by tests to substitute fakes for
// the GPIO line and the print service.
type Option func(*Daemon)

// WithInspector substitutes the queue inspector.
func WithInspector(i queue.Inspector) Option { return func(d *Daemon) { d.inspector = i } }

// WithSwitch substitutes the power switch.
func WithSwitch(s power.Switch) Option { return func(d *Daemon) { d.powerSw = s } }

// WithNotifier substitutes the notifier.
func WithNotifier(n notify.Notifier) Option { return func(d *Daemon) { d.notifier = n } }

// NewDaemon creates a daemon from validated configuration. With a non-empty
// configFilePath the settings file is watched for live reloads.
func NewDaemon(cfg *config.Config, configFilePath string, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	d := &Daemon{
		config:         cfg,
		configFilePath: configFilePath,
	}
	d.status.Store(StatusStopped)

	for _, opt := range opts {
		opt(d)
	}

	if d.inspector == nil {
		insp, err := queue.New(cfg.Queue)
		if err != nil {
			return nil, fmt.Errorf("create queue inspector: %w", err)
		}
		d.inspector = insp
	}

	if d.powerSw == nil {
		sw, err := power.NewGPIOSwitch(cfg.GPIO)
		if err != nil {
			return nil, fmt.Errorf("create power switch: %w", err)
		}
		d.powerSw = sw
	}

	if d.notifier == nil {
		n, err := notify.New(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("create notifier: %w", err)
		}
		d.notifier = n
	}

	d.controller = controller.New(d.inspector, d.powerSw, d.notifier, cfg.Timers.Idle)
	d.metrics = NewMetrics(d.controller)

	scheduler, err := NewScheduler()
	if err != nil {
		return nil, err
	}
	d.scheduler = scheduler

	if cfg.Admin.Listen != "" {
		d.admin = NewAdminServer(cfg.Admin.Listen, d)
	}

	if configFilePath != "" {
		watcher, err := NewConfigWatcher(configFilePath, d)
		if err != nil {
			return nil, fmt.Errorf("create config watcher: %w", err)
		}
		d.watcher = watcher
	}

	return d, nil
}

// Start schedules the poll job and brings up the supporting services.
func (d *Daemon) Start(ctx context.Context) error {
	d.status.Store(StatusStarting)
	d.startTime = time.Now()

	cfg := d.GetConfig()
	slog.Info("Starting printer power daemon",
		logfields.Queue(cfg.Queue.Name),
		logfields.Backend(cfg.Queue.Backend),
		logfields.Interval(cfg.Timers.Poll.String()),
		logfields.Idle(cfg.Timers.Idle.String()))

	jobID, err := d.scheduler.ScheduleEvery(pollJobName, cfg.Timers.Poll, func() {
		d.controller.Tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule poll job: %w", err)
	}
	d.mu.Lock()
	d.pollJobID = jobID
	d.mu.Unlock()

	d.scheduler.Start(ctx)

	if d.admin != nil {
		d.admin.Start(ctx)
	}

	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			return fmt.Errorf("start config watcher: %w", err)
		}
	}

	d.status.Store(StatusRunning)
	return nil
}

// Stop shuts everything down and releases the control line.
func (d *Daemon) Stop(ctx context.Context) error {
	d.status.Store(StatusStopping)

	var firstErr error
	keep := func(err error) {
		if err != nil {
			slog.Warn("Shutdown step failed", logfields.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if d.watcher != nil {
		keep(d.watcher.Stop(ctx))
	}
	keep(d.scheduler.Stop(ctx))
	if d.admin != nil {
		keep(d.admin.Stop(ctx))
	}
	keep(d.powerSw.Close())
	if closer, ok := d.notifier.(interface{ Close() }); ok {
		closer.Close()
	}

	d.status.Store(StatusStopped)
	return firstErr
}

// ReloadConfig applies a changed settings file to the running daemon. Loop
// timing and notification settings apply live; queue, GPIO, and admin
// changes need a restart and are rejected.
func (d *Daemon) ReloadConfig(ctx context.Context, newCfg *config.Config) error {
	current := d.GetConfig()

	if !reflect.DeepEqual(current.Queue, newCfg.Queue) {
		return fmt.Errorf("queue settings changed; restart required")
	}
	if !reflect.DeepEqual(current.GPIO, newCfg.GPIO) {
		return fmt.Errorf("gpio settings changed; restart required")
	}
	if current.Admin.Listen != newCfg.Admin.Listen {
		return fmt.Errorf("admin listen address changed; restart required")
	}

	if current.Timers.Idle != newCfg.Timers.Idle {
		d.controller.SetIdleTimeout(newCfg.Timers.Idle)
		slog.Info("Idle timeout updated", logfields.Idle(newCfg.Timers.Idle.String()))
	}

	if current.Timers.Poll != newCfg.Timers.Poll {
		d.mu.Lock()
		oldJobID := d.pollJobID
		d.mu.Unlock()

		if err := d.scheduler.Remove(oldJobID); err != nil {
			return fmt.Errorf("remove poll job: %w", err)
		}
		jobID, err := d.scheduler.ScheduleEvery(pollJobName, newCfg.Timers.Poll, func() {
			d.controller.Tick(ctx)
		})
		if err != nil {
			return fmt.Errorf("reschedule poll job: %w", err)
		}

		d.mu.Lock()
		d.pollJobID = jobID
		d.mu.Unlock()
		slog.Info("Poll interval updated", logfields.Interval(newCfg.Timers.Poll.String()))
	}

	if !reflect.DeepEqual(current.Notify, newCfg.Notify) {
		n, err := notify.New(newCfg.Notify)
		if err != nil {
			return fmt.Errorf("rebuild notifier: %w", err)
		}
		if closer, ok := d.notifier.(interface{ Close() }); ok {
			closer.Close()
		}
		d.mu.Lock()
		d.notifier = n
		d.mu.Unlock()
		d.controller.SetNotifier(n)
		slog.Info("Notifier configuration updated")
	}

	d.mu.Lock()
	d.config = newCfg
	d.mu.Unlock()

	return nil
}

// GetStatus returns the daemon lifecycle status.
func (d *Daemon) GetStatus() Status {
	return d.status.Load().(Status)
}

// GetConfig returns the current daemon configuration.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

// Controller exposes the control loop, used by the admin handlers.
func (d *Daemon) Controller() *controller.Controller {
	return d.controller
}
