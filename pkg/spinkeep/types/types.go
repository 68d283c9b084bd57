// Package types provides core data types shared by the spinkeep packages.
// It includes the per-visit record emitted by the scheduler, the probe result
// for a single device, and helpers for parsing and formatting byte sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Outcome describes what the scheduler did on a single device visit.
type Outcome int

const (
	// OutcomeRead means the head was moved and a block was read.
	OutcomeRead Outcome = iota

	// OutcomeSkipped means the sampled offset fell inside the guard window
	// and no I/O was issued.
	OutcomeSkipped

	// OutcomeSeekFailed means repositioning the handle failed.
	OutcomeSeekFailed

	// OutcomeReadFailed means the block read failed.
	OutcomeReadFailed
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRead:
		return "read"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSeekFailed:
		return "seek_failed"
	case OutcomeReadFailed:
		return "read_failed"
	default:
		return "unknown"
	}
}

// Visit is the record of one scheduler visit to one device.
type Visit struct {
	// Path is the device path as registered.
	Path string `json:"path" yaml:"path"`

	// Offset is the sampled byte offset.
	Offset int64 `json:"offset" yaml:"offset"`

	// Size is the device size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// Outcome is what happened at Offset.
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// Bytes is the number of bytes read (zero unless Outcome is OutcomeRead).
	Bytes int `json:"bytes" yaml:"bytes"`

	// Err is the seek or read error, if any.
	Err error `json:"-" yaml:"-"`

	// At is when the visit happened.
	At time.Time `json:"at" yaml:"at"`
}

// Failed reports whether the visit ended in an I/O error.
func (v Visit) Failed() bool {
	return v.Outcome == OutcomeSeekFailed || v.Outcome == OutcomeReadFailed
}

// DeviceInfo is the result of probing a single device path.
type DeviceInfo struct {
	// Path is the device path that was probed.
	Path string `json:"path" yaml:"path"`

	// Size is the device size in bytes (zero when the probe failed).
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable size (e.g. "1.8 TiB").
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// Error is the probe failure text, empty when the device is usable.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the device could be registered.
func (d DeviceInfo) OK() bool {
	return d.Error == ""
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// Accepted forms are a plain byte count ("1024") or a number followed by one
// of K, M, G, T with an optional "B" or "iB" suffix. Units are binary.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}
