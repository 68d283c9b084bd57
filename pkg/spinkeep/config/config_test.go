package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func isolate(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	for _, key := range []string{"SPINKEEP_WINDOW", "SPINKEEP_INTERVAL", "SPINKEEP_DEVICES", "SPINKEEP_PID_FILE", "SPINKEEP_SEED"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return tempDir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WindowKiB != DefaultWindowKiB {
		t.Errorf("WindowKiB = %d, want %d", cfg.WindowKiB, DefaultWindowKiB)
	}
	if cfg.IntervalSeconds != DefaultIntervalSeconds {
		t.Errorf("IntervalSeconds = %v, want %v", cfg.IntervalSeconds, DefaultIntervalSeconds)
	}
	if len(cfg.Devices) != 0 {
		t.Errorf("Devices = %v, want empty", cfg.Devices)
	}
	if cfg.PIDFile != DefaultPIDPath() {
		t.Errorf("PIDFile = %q, want %q", cfg.PIDFile, DefaultPIDPath())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Rotation.MaxSize != "10MB" {
		t.Errorf("Logging.Rotation.MaxSize = %q, want %q", cfg.Logging.Rotation.MaxSize, "10MB")
	}
	if cfg.Logging.Rotation.MaxBackups != 5 {
		t.Errorf("Logging.Rotation.MaxBackups = %d, want 5", cfg.Logging.Rotation.MaxBackups)
	}
	if cfg.Logging.Components["scheduler"] != "info" {
		t.Errorf("Logging.Components[scheduler] = %q, want info", cfg.Logging.Components["scheduler"])
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := isolate(t)
	writeConfig(t, filepath.Join(tempDir, ".config", "spinkeep"), `
window: 1024
interval: 0.5
seed: 7
devices:
  - /dev/sda
  - /dev/sdb
pid_file: ~/run/spinkeep.pid
logging:
  level: debug
  rotation:
    max_size: 1MB
    max_backups: 2
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WindowKiB != 1024 {
		t.Errorf("WindowKiB = %d, want 1024", cfg.WindowKiB)
	}
	if cfg.PaceInterval() != 500*time.Millisecond {
		t.Errorf("PaceInterval() = %v, want 500ms", cfg.PaceInterval())
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if len(cfg.Devices) != 2 || cfg.Devices[0] != "/dev/sda" || cfg.Devices[1] != "/dev/sdb" {
		t.Errorf("Devices = %v, want [/dev/sda /dev/sdb]", cfg.Devices)
	}
	if want := filepath.Join(tempDir, "run", "spinkeep.pid"); cfg.PIDFile != want {
		t.Errorf("PIDFile = %q, want %q", cfg.PIDFile, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, filepath.Join(t.TempDir(), "elsewhere"), "window: 8\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WindowKiB != 8 {
		t.Errorf("WindowKiB = %d, want 8", cfg.WindowKiB)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() error = nil, want error for missing explicit file")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	tempDir := isolate(t)
	writeConfig(t, filepath.Join(tempDir, ".config", "spinkeep"), "window: [\n")

	if _, err := Load(""); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	isolate(t)
	xdgHome := filepath.Join(t.TempDir(), "xdg-config")
	writeConfig(t, filepath.Join(xdgHome, "spinkeep"), "interval: 10\n")
	t.Setenv("XDG_CONFIG_HOME", xdgHome)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PaceInterval() != 10*time.Second {
		t.Errorf("PaceInterval() = %v, want 10s", cfg.PaceInterval())
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("SPINKEEP_WINDOW", "64")
	t.Setenv("SPINKEEP_INTERVAL", "2.5")
	t.Setenv("SPINKEEP_DEVICES", "/dev/sdc,/dev/sdd")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WindowKiB != 64 {
		t.Errorf("WindowKiB = %d, want 64", cfg.WindowKiB)
	}
	if cfg.PaceInterval() != 2500*time.Millisecond {
		t.Errorf("PaceInterval() = %v, want 2.5s", cfg.PaceInterval())
	}
	if len(cfg.Devices) != 2 {
		t.Errorf("Devices = %v, want two entries", cfg.Devices)
	}
}

func TestConfig_Window(t *testing.T) {
	tests := []struct {
		kib  int64
		want int64
	}{
		{0, 0},
		{1, 1024},
		{DefaultWindowKiB, 16 * 1024 * 1024},
		{1 << 62, 1<<63 - 1},
	}
	for _, tt := range tests {
		cfg := Config{WindowKiB: tt.kib}
		if got := cfg.Window(); got != tt.want {
			t.Errorf("Window() with %d KiB = %d, want %d", tt.kib, got, tt.want)
		}
	}
}

func TestConfig_PaceInterval(t *testing.T) {
	tests := []struct {
		seconds float64
		want    time.Duration
	}{
		{0, DefaultInterval},
		{1, time.Second},
		{0.25, 250 * time.Millisecond},
		{60, time.Minute},
	}
	for _, tt := range tests {
		cfg := Config{IntervalSeconds: tt.seconds}
		if got := cfg.PaceInterval(); got != tt.want {
			t.Errorf("PaceInterval() with %v = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			WindowKiB:       16,
			IntervalSeconds: 1,
			Devices:         []string{"/dev/sda"},
			Logging:         LoggingConfig{Level: "info", Rotation: RotationConfig{MaxSize: "1MB"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"zero window", func(c *Config) { c.WindowKiB = 0 }, nil},
		{"zero interval", func(c *Config) { c.IntervalSeconds = 0 }, nil},
		{"negative window", func(c *Config) { c.WindowKiB = -1 }, ErrNegativeWindow},
		{"negative interval", func(c *Config) { c.IntervalSeconds = -0.5 }, ErrNegativeInterval},
		{"no devices", func(c *Config) { c.Devices = nil }, ErrNoDevices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateLogging(t *testing.T) {
	cfg := Config{Devices: []string{"/dev/sda"}, Logging: LoggingConfig{Level: "loud"}}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want invalid level error")
	}

	cfg.Logging = LoggingConfig{Level: "info", Rotation: RotationConfig{MaxSize: "lots"}}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want invalid size error")
	}
}

func TestConfig_LoggingConfig(t *testing.T) {
	cfg := Config{Logging: LoggingConfig{
		Level:      "warn",
		Path:       "/tmp/spinkeep.log",
		Console:    "error",
		Rotation:   RotationConfig{MaxSize: "2MB", MaxBackups: 3},
		Components: map[string]string{"scheduler": "debug"},
	}}

	lc, err := cfg.LoggingConfig()
	if err != nil {
		t.Fatalf("LoggingConfig() error = %v", err)
	}
	if lc.Rotation.MaxSize != 2*1024*1024 {
		t.Errorf("Rotation.MaxSize = %d, want %d", lc.Rotation.MaxSize, 2*1024*1024)
	}
	if lc.Rotation.MaxBackups != 3 {
		t.Errorf("Rotation.MaxBackups = %d, want 3", lc.Rotation.MaxBackups)
	}
	if lc.ConsoleLevel != "error" || lc.Level != "warn" || lc.Path != "/tmp/spinkeep.log" {
		t.Errorf("LoggingConfig() = %+v", lc)
	}
	if lc.Components["scheduler"] != "debug" {
		t.Errorf("Components[scheduler] = %q, want debug", lc.Components["scheduler"])
	}
}

func TestConfigDir(t *testing.T) {
	tempDir := isolate(t)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if want := filepath.Join(tempDir, ".config", "spinkeep"); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != "/custom/config/spinkeep" {
		t.Errorf("ConfigDir() = %q, want %q", dir, "/custom/config/spinkeep")
	}
}

func TestWriteDefault(t *testing.T) {
	tempDir := isolate(t)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if want := filepath.Join(tempDir, ".config", "spinkeep", "config.yaml"); path != want {
		t.Errorf("WriteDefault() path = %q, want %q", path, want)
	}

	// The written file must load back to the defaults.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() after WriteDefault error = %v", err)
	}
	if cfg.WindowKiB != DefaultWindowKiB {
		t.Errorf("WindowKiB = %d, want %d", cfg.WindowKiB, DefaultWindowKiB)
	}
	if cfg.PaceInterval() != DefaultInterval {
		t.Errorf("PaceInterval() = %v, want %v", cfg.PaceInterval(), DefaultInterval)
	}

	// A second call must not overwrite.
	if err := os.WriteFile(path, []byte("window: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteDefault(); !errors.Is(err, os.ErrExist) {
		t.Errorf("WriteDefault() second call error = %v, want os.ErrExist", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "window: 1\n" {
		t.Errorf("existing config was overwritten: %q", data)
	}
}

func TestExpandPath(t *testing.T) {
	tempDir := isolate(t)

	tests := []struct {
		in   string
		want string
	}{
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
		{"~", tempDir},
		{"~/spinkeep.pid", filepath.Join(tempDir, "spinkeep.pid")},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestXDGPaths(t *testing.T) {
	dataHome := t.TempDir()
	stateHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("XDG_STATE_HOME", stateHome)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	if got, want := DataDir(), filepath.Join(dataHome, "spinkeep"); got != want {
		t.Errorf("DataDir() = %q, want %q", got, want)
	}
	if got, want := StateDir(), filepath.Join(stateHome, "spinkeep"); got != want {
		t.Errorf("StateDir() = %q, want %q", got, want)
	}
	if got := DefaultPIDPath(); !strings.HasSuffix(got, filepath.Join("spinkeep", "spinkeep.pid")) {
		t.Errorf("DefaultPIDPath() = %q", got)
	}
}
