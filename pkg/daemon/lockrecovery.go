package daemon

import (
	"fmt"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/logging"
)

// RecoverFromStale checks for and cleans up artifacts left by a process
// that exited without removing them.
// Returns nil if cleanup succeeded or wasn't needed.
// Returns ErrAlreadyRunning if the owning process is alive.
func RecoverFromStale(pidPath string) error {
	pid, err := ReadPIDFile(pidPath)
	if err != nil {
		// No PID file or garbage in it: nothing to recover.
		return nil //nolint:nilerr // missing/invalid PID file is not an error condition
	}

	if IsProcessRunning(pid) {
		return fmt.Errorf("%w (pid %d, %s)", ErrAlreadyRunning, pid, pidPath)
	}

	log := logging.Get("daemon")
	log.Warn("cleaning up stale pid file", "stale_pid", pid, "path", pidPath)

	_ = RemovePIDFile(pidPath)
	_ = RemoveStatus(StatusPath(pidPath))

	return nil
}
