package power

import (
	"context"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"git.home.luguber.info/inful/printwatch/internal/config"
)

// consumerLabel is reported to the kernel as the line consumer.
const consumerLabel = "printwatch"

// outputLine is the subset of *gpiocdev.Line the switch needs. Tests
// substitute a recording fake.
type outputLine interface {
	SetValue(value int) error
	Close() error
}

// GPIOSwitch drives a single GPIO output line. Polarity is handled at
// request time (active-low lines invert in the kernel), so value 1 always
// means "asserted" here.
type GPIOSwitch struct {
	line  outputLine
	drive string
	pulse time.Duration
}

// NewGPIOSwitch requests the configured line as an output, initially
// released.
func NewGPIOSwitch(cfg config.GPIOConfig) (*GPIOSwitch, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(consumerLabel),
	}
	if cfg.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := gpiocdev.RequestLine(cfg.Chip, *cfg.Line, opts...)
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", cfg.Chip, *cfg.Line, err)
	}

	return &GPIOSwitch{
		line:  line,
		drive: cfg.Drive,
		pulse: cfg.Pulse,
	}, nil
}

// Activate implements Switch.
func (s *GPIOSwitch) Activate(ctx context.Context) error {
	if s.drive == config.DriveModeLevel {
		if err := s.line.SetValue(1); err != nil {
			return fmt.Errorf("assert control line: %w", err)
		}
		return nil
	}
	return s.emitPulse(ctx)
}

// Deactivate implements Switch.
func (s *GPIOSwitch) Deactivate(ctx context.Context) error {
	if s.drive == config.DriveModeLevel {
		if err := s.line.SetValue(0); err != nil {
			return fmt.Errorf("release control line: %w", err)
		}
		return nil
	}
	// Momentary switches toggle power with the same press either way.
	return s.emitPulse(ctx)
}

// Close implements Switch.
func (s *GPIOSwitch) Close() error {
	return s.line.Close()
}

// emitPulse asserts the line for the configured width, then releases it. The
// release is attempted even when the wait is cut short so the line is never
// left asserted.
func (s *GPIOSwitch) emitPulse(ctx context.Context) error {
	if err := s.line.SetValue(1); err != nil {
		return fmt.Errorf("assert control line: %w", err)
	}

	timer := time.NewTimer(s.pulse)
	defer timer.Stop()

	var waitErr error
	select {
	case <-timer.C:
	case <-ctx.Done():
		waitErr = ctx.Err()
	}

	if err := s.line.SetValue(0); err != nil {
		return fmt.Errorf("release control line: %w", err)
	}
	return waitErr
}
