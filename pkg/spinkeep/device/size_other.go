//go:build !linux

package device

import (
	"os"
)

// querySize returns the addressable size of f. Without BLKGETSIZE64 the
// size comes from stat or from seeking to the end of the device.
func querySize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, &RegistrationError{Op: "stat", Err: unwrapPathError(err)}
	}
	return sizeFromFile(f, info)
}
