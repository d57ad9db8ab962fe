package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyQueue      = "queue"
	KeyBackend    = "backend"
	KeyJobs       = "jobs"
	KeyPowerState = "power_state"
	KeyIdle       = "idle"
	KeyChip       = "chip"
	KeyLine       = "line"
	KeyDrive      = "drive"
	KeyURL        = "url"
	KeySubject    = "subject"
	KeyEventID    = "event_id"
	KeyInterval   = "interval"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Queue(name string) slog.Attr  { return slog.String(KeyQueue, name) }
func Backend(b string) slog.Attr   { return slog.String(KeyBackend, b) }
func Jobs(n int) slog.Attr         { return slog.Int(KeyJobs, n) }
func PowerState(on bool) slog.Attr { return slog.Bool(KeyPowerState, on) }
func Idle(d string) slog.Attr      { return slog.String(KeyIdle, d) }
func Chip(c string) slog.Attr      { return slog.String(KeyChip, c) }
func Line(n int) slog.Attr         { return slog.Int(KeyLine, n) }
func Drive(mode string) slog.Attr  { return slog.String(KeyDrive, mode) }
func URL(u string) slog.Attr       { return slog.String(KeyURL, u) }
func Subject(s string) slog.Attr   { return slog.String(KeySubject, s) }
func EventID(id string) slog.Attr  { return slog.String(KeyEventID, id) }
func Interval(d string) slog.Attr  { return slog.String(KeyInterval, d) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
