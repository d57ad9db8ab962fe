package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "printwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
queue:
  name: hp-p1006
gpio:
  line: 17
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, QueueBackendIPP, cfg.Queue.Backend)
	require.Equal(t, "localhost", cfg.Queue.CUPS.Host)
	require.Equal(t, 631, cfg.Queue.CUPS.Port)
	require.Equal(t, "gpiochip0", cfg.GPIO.Chip)
	require.Equal(t, DriveModePulse, cfg.GPIO.Drive)
	require.Equal(t, 300*time.Millisecond, cfg.GPIO.Pulse)
	require.Equal(t, 5*time.Second, cfg.Timers.Poll)
	require.Equal(t, 5*time.Minute, cfg.Timers.Idle)
	require.Equal(t, 17, *cfg.GPIO.Line)
}

func TestLoad_ParsesDurations(t *testing.T) {
	path := writeConfig(t, `
queue:
  name: lab
gpio:
  line: 4
  pulse_width: 150ms
timers:
  poll_interval: 2s
  idle_timeout: 90s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 150*time.Millisecond, cfg.GPIO.Pulse)
	require.Equal(t, 2*time.Second, cfg.Timers.Poll)
	require.Equal(t, 90*time.Second, cfg.Timers.Idle)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("PW_TEST_TOKEN", "sekrit")

	path := writeConfig(t, `
queue:
  name: hp-p1006
gpio:
  line: 17
notify:
  webhook_url: http://hooks.local/printer
  webhook_token: ${PW_TEST_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "sekrit", cfg.Notify.WebhookToken)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestValidate_Fatals(t *testing.T) {
	line := 17

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing queue name for ipp",
			mutate:  func(c *Config) { c.Queue.Name = "" },
			wantErr: "queue.name",
		},
		{
			name: "missing command for command backend",
			mutate: func(c *Config) {
				c.Queue.Backend = QueueBackendCommand
				c.Queue.Command = nil
			},
			wantErr: "queue.command",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Queue.Backend = "smb" },
			wantErr: "queue.backend",
		},
		{
			name:    "missing gpio line",
			mutate:  func(c *Config) { c.GPIO.Line = nil },
			wantErr: "gpio.line",
		},
		{
			name:    "negative gpio line",
			mutate:  func(c *Config) { neg := -1; c.GPIO.Line = &neg },
			wantErr: "gpio.line",
		},
		{
			name:    "bad drive mode",
			mutate:  func(c *Config) { c.GPIO.Drive = "toggle" },
			wantErr: "gpio.drive",
		},
		{
			name:    "bad pulse width",
			mutate:  func(c *Config) { c.GPIO.PulseWidth = "wide" },
			wantErr: "pulse_width",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Timers.PollInterval = "0s" },
			wantErr: "poll_interval",
		},
		{
			name:    "zero idle timeout",
			mutate:  func(c *Config) { c.Timers.IdleTimeout = "0s" },
			wantErr: "idle_timeout",
		},
		{
			name: "nats url without subject",
			mutate: func(c *Config) {
				c.Notify.NATSURL = "nats://localhost:4222"
				c.Notify.NATSSubject = ""
			},
			wantErr: "nats_subject",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Queue: QueueConfig{Name: "hp-p1006"},
				GPIO:  GPIOConfig{Line: &line},
			}
			cfg.applyDefaults()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNormalizeLogLevelAndFormat(t *testing.T) {
	require.Equal(t, LogLevelDebug, NormalizeLogLevel("DEBUG"))
	require.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	require.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	require.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
	require.Equal(t, LogFormatText, NormalizeLogFormat(""))
}
