package config

import (
	"fmt"
	"time"
)

// Validate checks the configuration for fatal errors and fills in the parsed
// duration fields. A failing Validate aborts startup; nothing here is
// recoverable at runtime.
func (c *Config) Validate() error {
	switch c.Queue.Backend {
	case QueueBackendIPP:
		if c.Queue.Name == "" {
			return fmt.Errorf("queue.name is required for the ipp backend")
		}
	case QueueBackendCommand:
		if len(c.Queue.Command) == 0 {
			return fmt.Errorf("queue.command is required for the command backend")
		}
	default:
		return fmt.Errorf("queue.backend must be %q or %q, got %q",
			QueueBackendIPP, QueueBackendCommand, c.Queue.Backend)
	}

	if c.GPIO.Line == nil {
		return fmt.Errorf("gpio.line is required")
	}
	if *c.GPIO.Line < 0 {
		return fmt.Errorf("gpio.line must be a non-negative line offset, got %d", *c.GPIO.Line)
	}
	if c.GPIO.Drive != DriveModePulse && c.GPIO.Drive != DriveModeLevel {
		return fmt.Errorf("gpio.drive must be %q or %q, got %q",
			DriveModePulse, DriveModeLevel, c.GPIO.Drive)
	}

	pulse, err := time.ParseDuration(c.GPIO.PulseWidth)
	if err != nil {
		return fmt.Errorf("invalid gpio.pulse_width %q: %w", c.GPIO.PulseWidth, err)
	}
	if pulse <= 0 {
		return fmt.Errorf("gpio.pulse_width must be positive, got %s", pulse)
	}
	c.GPIO.Pulse = pulse

	poll, err := time.ParseDuration(c.Timers.PollInterval)
	if err != nil {
		return fmt.Errorf("invalid timers.poll_interval %q: %w", c.Timers.PollInterval, err)
	}
	if poll <= 0 {
		return fmt.Errorf("timers.poll_interval must be positive, got %s", poll)
	}
	c.Timers.Poll = poll

	idle, err := time.ParseDuration(c.Timers.IdleTimeout)
	if err != nil {
		return fmt.Errorf("invalid timers.idle_timeout %q: %w", c.Timers.IdleTimeout, err)
	}
	if idle <= 0 {
		return fmt.Errorf("timers.idle_timeout must be positive, got %s", idle)
	}
	c.Timers.Idle = idle

	if c.Notify.NATSURL != "" && c.Notify.NATSSubject == "" {
		return fmt.Errorf("notify.nats_subject is required when notify.nats_url is set")
	}

	return nil
}
