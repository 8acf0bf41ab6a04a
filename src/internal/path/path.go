// Package path builds and inspects PATH-style search lists
package path

import (
	"os"
	"path/filepath"
)

// Prepend puts dir in front of the list pathEnv. An empty pathEnv yields dir alone.
func Prepend(dir, pathEnv string) string {
	if pathEnv == "" {
		return dir
	}
	return dir + string(os.PathListSeparator) + pathEnv
}

// Contains reports whether dir is one of the entries of pathEnv
func Contains(pathEnv, dir string) bool {
	if pathEnv == "" {
		return false
	}

	dir = filepath.Clean(dir)
	for _, p := range filepath.SplitList(pathEnv) {
		if filepath.Clean(p) == dir {
			return true
		}
	}
	return false
}

// IsInPath checks if a directory is in the process PATH
func IsInPath(dir string) bool {
	return Contains(os.Getenv("PATH"), dir)
}
