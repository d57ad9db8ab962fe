package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the settings file looked up next to the executable when
// no path is given on the command line.
const DefaultFileName = "printwatch.yaml"

// Queue backends.
const (
	QueueBackendIPP     = "ipp"
	QueueBackendCommand = "command"
)

// GPIO drive modes. Pulse emulates a momentary button press; level holds the
// line for as long as the printer should stay powered.
const (
	DriveModePulse = "pulse"
	DriveModeLevel = "level"
)

// Config represents the daemon configuration.
type Config struct {
	Log    LogConfig    `yaml:"log,omitempty"`
	Queue  QueueConfig  `yaml:"queue"`
	GPIO   GPIOConfig   `yaml:"gpio"`
	Timers TimersConfig `yaml:"timers,omitempty"`
	Notify NotifyConfig `yaml:"notify,omitempty"`
	Admin  AdminConfig  `yaml:"admin,omitempty"`
}

// QueueConfig identifies the print queue and how to probe it.
type QueueConfig struct {
	Name    string     `yaml:"name"`
	Backend string     `yaml:"backend,omitempty"` // "ipp" or "command"
	CUPS    CUPSConfig `yaml:"cups,omitempty"`
	// Command is the probe command for the "command" backend. It must print
	// one line per active job, lpstat -o style.
	Command []string `yaml:"command,omitempty"`
}

// CUPSConfig holds the IPP connection settings for the CUPS server.
type CUPSConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	TLS      bool   `yaml:"tls,omitempty"`
}

// GPIOConfig describes the control pin and how it is driven.
type GPIOConfig struct {
	Chip      string `yaml:"chip,omitempty"`
	Line      *int   `yaml:"line"`
	ActiveLow bool   `yaml:"active_low,omitempty"`
	Drive     string `yaml:"drive,omitempty"` // "pulse" or "level"

	PulseWidth string        `yaml:"pulse_width,omitempty"`
	Pulse      time.Duration `yaml:"-"`
}

// TimersConfig holds the loop timing knobs. Durations are Go duration
// strings in YAML; the parsed values are filled in by Validate.
type TimersConfig struct {
	PollInterval string `yaml:"poll_interval,omitempty"`
	IdleTimeout  string `yaml:"idle_timeout,omitempty"`

	Poll time.Duration `yaml:"-"`
	Idle time.Duration `yaml:"-"`
}

// NotifyConfig configures the optional error notification channels.
type NotifyConfig struct {
	WebhookURL   string `yaml:"webhook_url,omitempty"`
	WebhookToken string `yaml:"webhook_token,omitempty"`
	NATSURL      string `yaml:"nats_url,omitempty"`
	NATSSubject  string `yaml:"nats_subject,omitempty"`
}

// AdminConfig configures the optional admin HTTP endpoint. An empty listen
// address disables it.
type AdminConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// DefaultPath returns the settings file co-located with the running
// executable, falling back to the working directory when the executable
// path cannot be resolved.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just note it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = string(LogLevelInfo)
	}
	if c.Log.Format == "" {
		c.Log.Format = string(LogFormatText)
	}
	if c.Queue.Backend == "" {
		c.Queue.Backend = QueueBackendIPP
	}
	if c.Queue.CUPS.Host == "" {
		c.Queue.CUPS.Host = "localhost"
	}
	if c.Queue.CUPS.Port == 0 {
		c.Queue.CUPS.Port = 631
	}
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = "gpiochip0"
	}
	if c.GPIO.Drive == "" {
		c.GPIO.Drive = DriveModePulse
	}
	if c.GPIO.PulseWidth == "" {
		c.GPIO.PulseWidth = "300ms"
	}
	if c.Timers.PollInterval == "" {
		c.Timers.PollInterval = "5s"
	}
	if c.Timers.IdleTimeout == "" {
		c.Timers.IdleTimeout = "5m"
	}
}

// loadEnvFile loads environment variables from .env file
func loadEnvFile() error {
	envPaths := []string{".env", ".env.local"}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}
