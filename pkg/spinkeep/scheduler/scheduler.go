package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/device"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/logging"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/types"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/window"
)

// ErrNilRegistry is returned by New when no registry is supplied.
var ErrNilRegistry = errors.New("scheduler requires a device registry")

// Stats is a snapshot of the scheduler's counters.
type Stats struct {
	// Passes is the number of round-robin passes started, including
	// passes over an empty registry.
	Passes int64 `json:"passes" yaml:"passes"`

	// Visits is the number of device visits.
	Visits int64 `json:"visits" yaml:"visits"`

	// Reads is the number of visits that read a block.
	Reads int64 `json:"reads" yaml:"reads"`

	// Skips is the number of visits suppressed by the guard window.
	Skips int64 `json:"skips" yaml:"skips"`

	// Errors is the number of visits that failed to seek or read.
	Errors int64 `json:"errors" yaml:"errors"`

	// BytesRead is the total number of bytes read.
	BytesRead int64 `json:"bytes_read" yaml:"bytes_read"`
}

type counters struct {
	passes    atomic.Int64
	visits    atomic.Int64
	reads     atomic.Int64
	skips     atomic.Int64
	errors    atomic.Int64
	bytesRead atomic.Int64
}

// Scheduler visits devices one at a time, forever. All visits, reads and
// pauses happen on the goroutine that calls Run or Step; only the window
// width and interval may be changed from elsewhere.
type Scheduler struct {
	reg    *device.Registry
	cursor *device.Cursor
	opts   Options
	buf    []byte

	window   atomic.Int64
	interval atomic.Int64

	runID string
	stats counters
	log   *logging.Logger
}

// New returns a scheduler over reg.
func New(reg *device.Registry, opts Options) (*Scheduler, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	s := &Scheduler{
		reg:    reg,
		cursor: reg.Cursor(),
		opts:   opts,
		buf:    make([]byte, opts.BlockSize),
		runID:  runID,
		log:    logging.Get("scheduler").With("run", runID),
	}
	s.window.Store(opts.Window)
	s.interval.Store(int64(opts.Interval))
	return s, nil
}

// RunID identifies this scheduler in logs and status files.
func (s *Scheduler) RunID() string {
	return s.runID
}

// Window returns the current guard-window width in bytes.
func (s *Scheduler) Window() int64 {
	return s.window.Load()
}

// SetWindow changes the guard-window width. Negative widths are rejected.
func (s *Scheduler) SetWindow(width int64) error {
	if width < 0 {
		return ErrNegativeWindow
	}
	if old := s.window.Swap(width); old != width {
		s.log.Info("guard window changed", "old", old, "new", width)
	}
	return nil
}

// Interval returns the current pause between visits.
func (s *Scheduler) Interval() time.Duration {
	return time.Duration(s.interval.Load())
}

// SetInterval changes the pause between visits. Non-positive values
// restore the default interval.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultOptions().Interval
	}
	if old := time.Duration(s.interval.Swap(int64(d))); old != d {
		s.log.Info("interval changed", "old", old, "new", d)
	}
}

// Stats returns a snapshot of the scheduler's counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Passes:    s.stats.passes.Load(),
		Visits:    s.stats.visits.Load(),
		Reads:     s.stats.reads.Load(),
		Skips:     s.stats.skips.Load(),
		Errors:    s.stats.errors.Load(),
		BytesRead: s.stats.bytesRead.Load(),
	}
}

// Run visits devices until ctx is done and returns ctx.Err(). It has no
// other exit: I/O failures are reported and the device is retried on the
// next pass.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started",
		"devices", s.reg.Len(),
		"window", s.Window(),
		"interval", s.Interval(),
		"block_size", s.opts.BlockSize,
	)

	for {
		if err := s.Step(ctx); err != nil {
			st := s.Stats()
			s.log.Info("scheduler stopped",
				"reason", err,
				"passes", st.Passes,
				"visits", st.Visits,
				"reads", st.Reads,
				"skips", st.Skips,
				"errors", st.Errors,
			)
			return err
		}
	}
}

// Step performs one visit to the next device in round-robin order and then
// pauses. With no devices registered it counts an empty pass and pauses,
// so an idle scheduler never spins.
func (s *Scheduler) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, start := s.cursor.Next()
	if e == nil {
		s.stats.passes.Add(1)
		s.log.Debug("empty pass")
		return s.opts.Sleep(ctx, s.Interval())
	}
	if start {
		s.stats.passes.Add(1)
	}

	s.Visit(e)
	return s.opts.Sleep(ctx, s.Interval())
}

// Visit samples an offset on e and reads a block there unless the offset
// is inside e's guard window. The sampled offset becomes e's last position
// either way.
func (s *Scheduler) Visit(e *device.Entry) types.Visit {
	size := e.Size()
	candidate := s.opts.Sampler.Sample(size)
	prev, visited := e.LastPosition()
	skip := window.Guard{Width: s.Window()}.Skip(prev, visited, candidate, size)
	e.SetLastPosition(candidate)

	v := types.Visit{
		Path:   e.Path(),
		Offset: candidate,
		Size:   size,
		At:     s.opts.Now(),
	}

	if skip {
		v.Outcome = types.OutcomeSkipped
	} else {
		s.read(e, &v)
	}

	s.record(v)
	s.opts.Reporter.Visited(v)
	return v
}

func (s *Scheduler) read(e *device.Entry, v *types.Visit) {
	if err := e.Seek(v.Offset); err != nil {
		v.Outcome = types.OutcomeSeekFailed
		v.Err = err
		return
	}

	n, err := e.Read(s.buf)
	if err != nil {
		v.Outcome = types.OutcomeReadFailed
		v.Err = err
		return
	}
	v.Outcome = types.OutcomeRead
	v.Bytes = n
}

func (s *Scheduler) record(v types.Visit) {
	s.stats.visits.Add(1)

	switch v.Outcome {
	case types.OutcomeSkipped:
		s.stats.skips.Add(1)
		s.log.Debug("in guard window", "path", v.Path, "offset", v.Offset)
	case types.OutcomeRead:
		s.stats.reads.Add(1)
		s.stats.bytesRead.Add(int64(v.Bytes))
		s.log.Debug("read", "path", v.Path, "offset", v.Offset, "bytes", v.Bytes)
	default:
		s.stats.errors.Add(1)
		s.log.Warn("visit failed", "path", v.Path, "offset", v.Offset, "outcome", v.Outcome, "error", v.Err)
	}
}
