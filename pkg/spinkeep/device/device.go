// Package device manages the block devices spinkeep keeps busy: opening
// them, querying their size, and holding them in visitation order.
package device

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/logging"
)

// ErrEmptyDevice is returned when a device reports a size of zero.
var ErrEmptyDevice = errors.New("device has no addressable bytes")

// ErrIsDirectory is returned when a directory is given instead of a device.
var ErrIsDirectory = errors.New("is a directory")

// Handle is a read-capable, seekable device handle.
type Handle interface {
	io.ReadSeeker
	io.Closer
}

// RegistrationError describes why a device could not be registered.
type RegistrationError struct {
	// Path is the device path that failed.
	Path string

	// Op is the failing step ("open", "BLKGETSIZE64", "stat", "size").
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// Entry is one managed device. The handle is owned exclusively by the entry.
//
// The last-position field is written only by the goroutine driving visits to
// this entry; Entry has no internal locking.
type Entry struct {
	path    string
	size    int64
	handle  Handle
	last    int64
	visited bool
}

// NewEntry wraps an already-open handle. It fails with ErrEmptyDevice when
// size is not positive; the handle is left open in that case.
func NewEntry(path string, size int64, h Handle) (*Entry, error) {
	if size <= 0 {
		return nil, &RegistrationError{Path: path, Op: "size", Err: ErrEmptyDevice}
	}
	return &Entry{path: path, size: size, handle: h}, nil
}

// Open opens path read-only and queries its size. Block devices are sized
// with the BLKGETSIZE64 ioctl where available; regular files use their
// length, which lets images and test fixtures stand in for disks.
func Open(path string) (*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &RegistrationError{Path: path, Op: "open", Err: unwrapPathError(err)}
	}

	size, err := querySize(f)
	if err != nil {
		_ = f.Close()
		return nil, withPath(err, path)
	}

	e, err := NewEntry(path, size, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	logging.Get("device").Debug("opened device", "path", path, "size", size)
	return e, nil
}

// Path returns the device path as registered.
func (e *Entry) Path() string {
	return e.path
}

// Size returns the addressable size in bytes.
func (e *Entry) Size() int64 {
	return e.size
}

// LastPosition returns the most recently sampled offset and whether the
// device has been visited at all.
func (e *Entry) LastPosition() (int64, bool) {
	return e.last, e.visited
}

// SetLastPosition records off as the most recently sampled offset.
func (e *Entry) SetLastPosition(off int64) {
	e.last = off
	e.visited = true
}

// Seek repositions the handle to off bytes from the start of the device.
func (e *Entry) Seek(off int64) error {
	_, err := e.handle.Seek(off, io.SeekStart)
	return err
}

// Read reads up to len(buf) bytes at the current position. Reaching the end
// of the device is not an error.
func (e *Entry) Read(buf []byte) (int, error) {
	n, err := e.handle.Read(buf)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

// Close releases the device handle. Closing twice is a no-op.
func (e *Entry) Close() error {
	if e.handle == nil {
		return nil
	}
	err := e.handle.Close()
	e.handle = nil
	return err
}

// unwrapPathError strips *os.PathError so messages read "path: op: reason"
// instead of repeating the path.
func unwrapPathError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

func withPath(err error, path string) error {
	var re *RegistrationError
	if errors.As(err, &re) {
		re.Path = path
		return re
	}
	return &RegistrationError{Path: path, Op: "size", Err: err}
}
