package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/logging"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/types"
)

// Validation errors.
var (
	ErrNoDevices        = errors.New("no devices specified")
	ErrNegativeWindow   = errors.New("window cannot be negative")
	ErrNegativeInterval = errors.New("interval cannot be negative")
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" yaml:"max_size" json:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level" json:"level"`
	Path       string            `mapstructure:"path" yaml:"path" json:"path"`
	Console    string            `mapstructure:"console" yaml:"console" json:"console"`
	Rotation   RotationConfig    `mapstructure:"rotation" yaml:"rotation" json:"rotation"`
	Components map[string]string `mapstructure:"components" yaml:"components,omitempty" json:"components,omitempty"`
}

// Config represents the application configuration.
type Config struct {
	// WindowKiB is the guard-window half-width in KiB.
	WindowKiB int64 `mapstructure:"window" yaml:"window" json:"window"`

	// IntervalSeconds is the pause between visits. Zero means the default.
	IntervalSeconds float64 `mapstructure:"interval" yaml:"interval" json:"interval"`

	// Seed makes offset sampling reproducible when non-zero.
	Seed uint64 `mapstructure:"seed" yaml:"seed" json:"seed"`

	Devices []string      `mapstructure:"devices" yaml:"devices" json:"devices"`
	PIDFile string        `mapstructure:"pid_file" yaml:"pid_file" json:"pid_file"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// Window returns the guard-window half-width in bytes.
func (c *Config) Window() int64 {
	if c.WindowKiB > math.MaxInt64>>10 {
		return math.MaxInt64
	}
	return c.WindowKiB << 10
}

// PaceInterval returns the pause between visits. A zero interval selects
// DefaultInterval.
func (c *Config) PaceInterval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return DefaultInterval
	}
	return time.Duration(c.IntervalSeconds * float64(time.Second))
}

// Validate reports the first problem that prevents a run.
func (c *Config) Validate() error {
	if c.WindowKiB < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeWindow, c.WindowKiB)
	}
	if c.IntervalSeconds < 0 || math.IsNaN(c.IntervalSeconds) {
		return fmt.Errorf("%w: %v", ErrNegativeInterval, c.IntervalSeconds)
	}
	if len(c.Devices) == 0 {
		return ErrNoDevices
	}
	if _, err := c.LoggingConfig(); err != nil {
		return err
	}
	return nil
}

// LoggingConfig converts the logging section into a logging.Config.
func (c *Config) LoggingConfig() (logging.Config, error) {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return logging.Config{}, err
	}

	rotation := logging.DefaultRotationConfig()
	if c.Logging.Rotation.MaxSize != "" {
		size, err := types.ParseSize(c.Logging.Rotation.MaxSize)
		if err != nil {
			return logging.Config{}, fmt.Errorf("logging.rotation.max_size: %w", err)
		}
		rotation.MaxSize = size
	}
	if c.Logging.Rotation.MaxBackups > 0 {
		rotation.MaxBackups = c.Logging.Rotation.MaxBackups
	}

	return logging.Config{
		Level:        c.Logging.Level,
		Path:         c.Logging.Path,
		Rotation:     rotation,
		Components:   c.Logging.Components,
		ConsoleLevel: c.Logging.Console,
	}, nil
}

// New returns a viper instance prepared by Configure.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	if err := Configure(v, file); err != nil {
		return nil, err
	}
	return v, nil
}

// Configure sets spinkeep's defaults, search paths and environment binding
// on v. A non-empty file replaces the search paths.
//
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/spinkeep/config.yaml
//   - $HOME/.config/spinkeep/config.yaml
//
// Environment variables are prefixed with SPINKEEP_ (e.g. SPINKEEP_WINDOW).
func Configure(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return nil
}

// SetDefaults registers the built-in configuration values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("window", DefaultWindowKiB)
	v.SetDefault("interval", DefaultIntervalSeconds)
	v.SetDefault("seed", 0)
	v.SetDefault("devices", []string{})
	v.SetDefault("pid_file", DefaultPIDPath())

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty means use logging.DefaultLogPath
	v.SetDefault("logging.console", "")
	v.SetDefault("logging.rotation.max_size", DefaultMaxLogSize)
	v.SetDefault("logging.rotation.max_backups", DefaultMaxLogBackups)
	v.SetDefault("logging.components", map[string]string{
		"scheduler": "info",
		"device":    "info",
		"daemon":    "info",
	})
}

// Read reads the config file into v. A missing file is not an error when
// the search paths were used.
func Read(v *viper.Viper) error {
	if explicit := v.ConfigFileUsed(); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Decode unmarshals v into a Config and expands ~ in paths.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	if cfg.PIDFile, err = ExpandPath(cfg.PIDFile); err != nil {
		return nil, err
	}
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from file (or the default locations when file is
// empty) and the environment.
func Load(file string) (*Config, error) {
	v, err := New(file)
	if err != nil {
		return nil, err
	}
	if err := Read(v); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", AppName), nil
}

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns $XDG_DATA_HOME/spinkeep/ for the pid file.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StateDir returns $XDG_STATE_HOME/spinkeep/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultPIDPath returns the default PID file path.
func DefaultPIDPath() string {
	return filepath.Join(DataDir(), AppName+".pid")
}

// WriteDefault writes a commented default config file and returns its
// path. An existing file is left untouched and reported with
// os.ErrExist.
func WriteDefault() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s: %w", path, os.ErrExist)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# spinkeep configuration

# Guard-window half-width in KiB. A sampled offset within this distance of
# the device's previous offset is not read.
window: %d

# Seconds to wait after every visit. 0 selects the default.
interval: %g

# Devices to keep spinning when none are given on the command line.
devices: []

# PID file (empty disables it)
pid_file: %s

logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means use default: $XDG_STATE_HOME/spinkeep/spinkeep.log)
  path: ""
  # Mirror log records at or above this level to stderr (empty disables)
  console: ""
  rotation:
    max_size: %s
    max_backups: %d
  # Per-component log levels
  components:
    scheduler: info
    device: info
    daemon: info
`, DefaultWindowKiB, DefaultIntervalSeconds, DefaultPIDPath(), DefaultLogLevel, DefaultMaxLogSize, DefaultMaxLogBackups)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return path, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
