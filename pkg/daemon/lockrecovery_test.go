package daemon_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jamesainslie/spinkeep/pkg/daemon"
)

func TestRecoverFromStale_NoPIDFile(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "spinkeep.pid")

	if err := daemon.RecoverFromStale(pidPath); err != nil {
		t.Errorf("Expected nil when no PID file exists, got %v", err)
	}
}

func TestRecoverFromStale_ProcessRunning(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "spinkeep.pid")

	currentPID := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(currentPID)), 0o644); err != nil {
		t.Fatalf("Failed to write PID file: %v", err)
	}

	err := daemon.RecoverFromStale(pidPath)
	if !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Errorf("Expected ErrAlreadyRunning when process is running, got %v", err)
	}

	if _, err := os.Stat(pidPath); os.IsNotExist(err) {
		t.Error("PID file should not have been removed when process is running")
	}
}

func TestRecoverFromStale_StaleProcess(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "spinkeep.pid")
	statusPath := daemon.StatusPath(pidPath)

	if err := os.WriteFile(pidPath, []byte("999999999"), 0o644); err != nil {
		t.Fatalf("Failed to write PID file: %v", err)
	}
	if err := os.WriteFile(statusPath, []byte("{}"), 0o644); err != nil {
		t.Fatalf("Failed to write status file: %v", err)
	}

	if err := daemon.RecoverFromStale(pidPath); err != nil {
		t.Fatalf("Expected nil for stale process, got %v", err)
	}

	for _, path := range []string{pidPath, statusPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("File %s should have been removed", path)
		}
	}
}

func TestRecoverFromStale_InvalidPIDContent(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "spinkeep.pid")
	if err := os.WriteFile(pidPath, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := daemon.RecoverFromStale(pidPath); err != nil {
		t.Errorf("Expected nil for unreadable PID file, got %v", err)
	}
}
