// Package report writes the human-facing lines spinkeep prints while it
// runs: one line per registered device, one line per visit on stdout, and
// failures on stderr.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/types"
)

// Reporter receives registration and visit events.
type Reporter interface {
	// Registered is called after a device was added.
	Registered(path string, size int64)

	// RegisterFailed is called when a device could not be added.
	RegisterFailed(path string, err error)

	// Visited is called once per scheduler visit.
	Visited(v types.Visit)
}

// Text writes plain text lines to an output and an error stream.
type Text struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewText returns a Text reporter writing progress to out and failures
// to errOut.
func NewText(out, errOut io.Writer) *Text {
	return &Text{out: out, err: errOut}
}

// Registered prints "Added <path> (size <human>)".
func (t *Text) Registered(path string, size int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "Added %s (size %s)\n", path, types.FormatSize(size))
}

// RegisterFailed prints the registration error. RegistrationError already
// carries the path, so err is printed as is.
func (t *Text) RegisterFailed(_ string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.err, "%v\n", err)
}

// Visited prints the sampled offset, flagging guard-window skips, and
// reports seek or read failures on the error stream.
func (t *Text) Visited(v types.Visit) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch v.Outcome {
	case types.OutcomeSkipped:
		fmt.Fprintf(t.out, "%s: %d (in guard window)\n", v.Path, v.Offset)
	case types.OutcomeSeekFailed:
		fmt.Fprintf(t.out, "%s: %d\n", v.Path, v.Offset)
		fmt.Fprintf(t.err, "%s: seek: %v\n", v.Path, v.Err)
	case types.OutcomeReadFailed:
		fmt.Fprintf(t.out, "%s: %d\n", v.Path, v.Offset)
		fmt.Fprintf(t.err, "%s: read: %v\n", v.Path, v.Err)
	default:
		fmt.Fprintf(t.out, "%s: %d\n", v.Path, v.Offset)
	}
}

// Ensure Text implements Reporter.
var _ Reporter = (*Text)(nil)

// Discard is a Reporter that prints nothing.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Registered(string, int64)     {}
func (discard) RegisterFailed(string, error) {}
func (discard) Visited(types.Visit)          {}
