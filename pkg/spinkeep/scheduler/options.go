// Package scheduler drives spinkeep's main loop: it visits registered
// devices in round-robin order, samples an offset on each, suppresses
// accesses that fall inside the device's guard window, reads one block
// otherwise, and waits a fixed interval between visits.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/config"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/report"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/sampler"
)

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures the scheduler.
type Options struct {
	// Window is the guard-window half-width in bytes.
	Window int64

	// Interval is the pause after every visit, and after every pass over
	// an empty registry. Non-positive values use config.DefaultInterval.
	Interval time.Duration

	// BlockSize is the number of bytes read per visit.
	BlockSize int

	// Sampler draws candidate offsets. Nil uses a randomly seeded sampler.
	Sampler sampler.Sampler

	// Reporter receives one event per visit. Nil discards them.
	Reporter report.Reporter

	// Sleep implements the pause. Nil uses a timer that honours ctx.
	Sleep SleepFunc

	// Now returns the current time for visit records. Nil uses time.Now.
	Now func() time.Time
}

// ErrNegativeWindow is returned for a negative guard window.
var ErrNegativeWindow = errors.New("guard window cannot be negative")

// DefaultOptions returns options matching the built-in configuration.
func DefaultOptions() Options {
	return Options{
		Window:    config.DefaultWindowKiB * 1024,
		Interval:  config.DefaultInterval,
		BlockSize: config.BlockSize,
	}
}

// Validate checks the options and fills in defaults for unset fields.
func (o *Options) Validate() error {
	if o.Window < 0 {
		return ErrNegativeWindow
	}
	if o.Interval <= 0 {
		o.Interval = config.DefaultInterval
	}
	if o.BlockSize <= 0 {
		o.BlockSize = config.BlockSize
	}
	if o.Sampler == nil {
		o.Sampler = sampler.New(0)
	}
	if o.Reporter == nil {
		o.Reporter = report.Discard
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return nil
}

// sleepContext waits for d on a timer, returning early when ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
