// Package power drives the printer's power control pin. The physical switch
// being emulated decides the drive mode: a momentary button press maps to a
// timed pulse, a latching switch maps to a sustained level.
package power

import "context"

// Switch turns the printer's power control on and off.
type Switch interface {
	// Activate asserts the control output and returns once the configured
	// pulse or level change is complete.
	Activate(ctx context.Context) error
	// Deactivate releases the control output.
	Deactivate(ctx context.Context) error
	// Close releases the underlying output resource.
	Close() error
}
