package device

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createImage writes a file of the given size to stand in for a disk.
func createImage(t *testing.T, name string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

func TestOpen_RegularFile(t *testing.T) {
	path := createImage(t, "disk.img", 2_000_000)

	e, err := Open(path)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, path, e.Path())
	assert.Equal(t, int64(2_000_000), e.Size())

	_, visited := e.LastPosition()
	assert.False(t, visited)
}

func TestOpen_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")

	_, err := Open(path)
	require.Error(t, err)

	var re *RegistrationError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "open", re.Op)
	assert.Equal(t, path, re.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, path+": open: no such file or directory", err.Error())
}

func TestOpen_EmptyFile(t *testing.T) {
	path := createImage(t, "empty.img", 0)

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrEmptyDevice)

	var re *RegistrationError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, path, re.Path)
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(dir)
	assert.ErrorIs(t, err, ErrIsDirectory)
}

func TestNewEntry_RejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int64{0, -1} {
		_, err := NewEntry("/dev/fake", size, &fakeHandle{})
		assert.ErrorIs(t, err, ErrEmptyDevice)
	}
}

func TestEntry_SeekAndRead(t *testing.T) {
	path := createImage(t, "data.img", 0)
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	e, err := Open(path)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Seek(4))
	buf := make([]byte, 3)
	n, err := e.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "456", string(buf))
}

func TestEntry_ReadAtEndIsNotAnError(t *testing.T) {
	path := createImage(t, "tiny.img", 8)

	e, err := Open(path)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Seek(8))
	n, err := e.Read(make([]byte, 64))
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEntry_LastPosition(t *testing.T) {
	e, err := NewEntry("/dev/fake", 100, &fakeHandle{})
	require.NoError(t, err)

	e.SetLastPosition(0)
	pos, visited := e.LastPosition()
	assert.True(t, visited, "offset zero still counts as visited")
	assert.Equal(t, int64(0), pos)

	e.SetLastPosition(42)
	pos, _ = e.LastPosition()
	assert.Equal(t, int64(42), pos)
}

func TestEntry_CloseTwice(t *testing.T) {
	h := &fakeHandle{}
	e, err := NewEntry("/dev/fake", 100, h)
	require.NoError(t, err)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.Equal(t, 1, h.closed)
}

// fakeHandle is an in-memory Handle with injectable failures.
type fakeHandle struct {
	pos      int64
	seekErr  error
	readErr  error
	closeErr error
	closed   int
	seeks    []int64
}

func (h *fakeHandle) Seek(off int64, whence int) (int64, error) {
	if h.seekErr != nil {
		return 0, h.seekErr
	}
	if whence != io.SeekStart {
		return 0, errors.New("unsupported whence")
	}
	h.pos = off
	h.seeks = append(h.seeks, off)
	return off, nil
}

func (h *fakeHandle) Read(p []byte) (int, error) {
	if h.readErr != nil {
		return 0, h.readErr
	}
	return len(p), nil
}

func (h *fakeHandle) Close() error {
	h.closed++
	return h.closeErr
}
