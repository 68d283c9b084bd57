// Package daemon manages the on-disk artifacts of a running spinkeep
// process: the PID file that enforces a single instance per PID path, and
// the status file that `spinkeep status` reads.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned when a live process already owns the PID file.
var ErrAlreadyRunning = errors.New("spinkeep already running")

// WritePIDFile writes the current process ID to path, creating the parent
// directory if needed.
func WritePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating pid directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// ReadPIDFile reads a PID from a file.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}

	return pid, nil
}

// RemovePIDFile removes the PID file. A missing file is not an error.
func RemovePIDFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsRunning reports whether the process named in the PID file is alive.
func IsRunning(pidPath string) bool {
	pid, err := ReadPIDFile(pidPath)
	if err != nil {
		return false
	}
	return IsProcessRunning(pid)
}

// IsProcessRunning checks if a process with the given PID is running.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 checks for existence without delivering anything.
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// Acquire claims pidPath for the current process. Stale artifacts left by a
// dead process are removed first. The returned release function removes the
// PID file and the status file.
func Acquire(pidPath string) (release func() error, err error) {
	if err := RecoverFromStale(pidPath); err != nil {
		return nil, err
	}
	if err := WritePIDFile(pidPath); err != nil {
		return nil, fmt.Errorf("writing pid file: %w", err)
	}

	return func() error {
		return errors.Join(
			RemovePIDFile(pidPath),
			RemoveStatus(StatusPath(pidPath)),
		)
	}, nil
}
