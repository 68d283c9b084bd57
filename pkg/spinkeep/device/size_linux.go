//go:build linux

package device

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// querySize returns the addressable size of f. Block devices are asked via
// BLKGETSIZE64; anything else falls back to stat or seeking to the end.
func querySize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, &RegistrationError{Op: "stat", Err: unwrapPathError(err)}
	}

	if info.Mode()&os.ModeDevice == 0 || info.Mode()&os.ModeCharDevice != 0 {
		return sizeFromFile(f, info)
	}

	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, &RegistrationError{Op: "BLKGETSIZE64", Err: errno}
	}
	return int64(size), nil
}
