// Package config provides configuration management for spinkeep.
package config

import "time"

// Default configuration values for spinkeep.
const (
	// DefaultWindowKiB is the default guard-window half-width in KiB (16 MiB).
	DefaultWindowKiB int64 = 16384

	// DefaultIntervalSeconds is the default pause between visits in seconds.
	DefaultIntervalSeconds = 4.0

	// DefaultInterval is DefaultIntervalSeconds as a duration.
	DefaultInterval = 4 * time.Second

	// BlockSize is the number of bytes read per visit.
	BlockSize = 64 * 1024

	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"

	// DefaultMaxLogSize is the size at which the log file is rotated.
	DefaultMaxLogSize = "10MB"

	// DefaultMaxLogBackups is the number of rotated log files kept.
	DefaultMaxLogBackups = 5

	// AppName names the XDG subdirectories and the environment prefix.
	AppName = "spinkeep"
)
