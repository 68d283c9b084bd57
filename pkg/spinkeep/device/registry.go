package device

import (
	"errors"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/logging"
)

// OpenFunc opens a device path and returns a sized entry.
type OpenFunc func(path string) (*Entry, error)

// Registry holds managed devices in registration order, which is also the
// order they are visited in. It is append-only; entries live until Close.
//
// Registry is not safe for concurrent registration.
type Registry struct {
	entries []*Entry
	open    OpenFunc
}

// Option configures a Registry.
type Option func(*Registry)

// WithOpener replaces the function used to open device paths.
func WithOpener(fn OpenFunc) Option {
	return func(r *Registry) {
		r.open = fn
	}
}

// NewRegistry returns an empty registry that opens devices with Open
// unless WithOpener says otherwise.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{open: Open}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register opens path, sizes it, and appends it. On failure nothing is
// appended and the error says which step failed. The same path may be
// registered more than once; each registration gets its own handle.
func (r *Registry) Register(path string) (*Entry, error) {
	e, err := r.open(path)
	if err != nil {
		logging.Get("device").Warn("registration failed", "path", path, "error", err)
		return nil, err
	}
	r.entries = append(r.entries, e)
	return e, nil
}

// Add appends an already-open entry.
func (r *Registry) Add(e *Entry) {
	r.entries = append(r.entries, e)
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns the entries in registration order. The slice is a copy;
// the entries are shared.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Cursor returns a circular iterator positioned before the first entry.
func (r *Registry) Cursor() *Cursor {
	return &Cursor{reg: r}
}

// Close releases every device handle, continuing past failures.
func (r *Registry) Close() error {
	var errs []error
	for _, e := range r.entries {
		if err := e.Close(); err != nil {
			errs = append(errs, &RegistrationError{Path: e.Path(), Op: "close", Err: err})
		}
	}
	return errors.Join(errs...)
}

// Cursor walks a registry in order, wrapping from the last entry back to
// the first indefinitely. Entries registered after the cursor was created
// are picked up when the walk reaches them.
type Cursor struct {
	reg  *Registry
	next int
}

// Next returns the next entry in round-robin order. The boolean reports
// whether the entry starts a new pass (it is the first entry). Next returns
// nil when the registry is empty.
func (c *Cursor) Next() (*Entry, bool) {
	n := len(c.reg.entries)
	if n == 0 {
		return nil, false
	}
	if c.next >= n {
		c.next = 0
	}
	idx := c.next
	c.next++
	return c.reg.entries[idx], idx == 0
}
