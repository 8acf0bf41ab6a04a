//go:build !windows

package runtime

import (
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

// checkExecutable verifies node exists and the execute bit is usable.
func checkExecutable(path string) error {
	if err := unix.Access(path, unix.X_OK); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingBinaryError{Path: path}
		}
		return fmt.Errorf("node binary %s is not executable: %w", path, err)
	}
	return nil
}
