package device

import (
	"io"
	"os"
)

// sizeFromFile sizes a non-block-device handle: regular files report their
// length, everything else is measured by seeking to the end.
func sizeFromFile(f *os.File, info os.FileInfo) (int64, error) {
	if info.IsDir() {
		return 0, &RegistrationError{Op: "size", Err: ErrIsDirectory}
	}
	if info.Mode().IsRegular() {
		return info.Size(), nil
	}

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, &RegistrationError{Op: "size", Err: unwrapPathError(err)}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, &RegistrationError{Op: "size", Err: unwrapPathError(err)}
	}
	return end, nil
}
