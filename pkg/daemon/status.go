package daemon

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/scheduler"
)

// Status is the snapshot a running scheduler publishes next to its PID file.
type Status struct {
	PID      int             `json:"pid" yaml:"pid"`
	RunID    string          `json:"run_id" yaml:"run_id"`
	Started  time.Time       `json:"started" yaml:"started"`
	Updated  time.Time       `json:"updated" yaml:"updated"`
	Devices  []string        `json:"devices" yaml:"devices"`
	Window   int64           `json:"window" yaml:"window"`
	Interval string          `json:"interval" yaml:"interval"`
	Stats    scheduler.Stats `json:"stats" yaml:"stats"`
}

// WriteStatus writes status to path atomically.
func WriteStatus(path string, status *Status) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadStatus reads a status file.
func ReadStatus(path string) (*Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// RemoveStatus removes the status file. A missing file is not an error.
func RemoveStatus(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// StatusPath returns the status file path that belongs to pidPath:
// the same name with a .status extension.
func StatusPath(pidPath string) string {
	return strings.TrimSuffix(pidPath, filepath.Ext(pidPath)) + ".status"
}
