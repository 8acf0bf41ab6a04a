//go:build windows

package runtime

import "os"

func checkExecutable(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &MissingBinaryError{Path: path}
	}
	return nil
}
