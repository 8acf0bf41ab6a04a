// Package config manages noderuntime configuration: on-disk paths and settings
package config

import (
	"os"
	"path/filepath"
	"sync"
)

// RootEnvVar overrides the root directory.
const RootEnvVar = "NODERUNTIME_ROOT"

// Paths holds all important noderuntime directory paths
type Paths struct {
	Root  string // Root directory (~/.noderuntime)
	Node  string // Directory containing Node.js installations (~/.noderuntime/node)
	Cache string // Cache directory (~/.noderuntime/cache)
}

var (
	defaultPaths *Paths
	pathsOnce    sync.Once
)

// DefaultPaths returns the default noderuntime paths.
// This function is thread-safe and guarantees single initialization.
func DefaultPaths() *Paths {
	pathsOnce.Do(func() {
		defaultPaths = NewPaths(getRootDir())
	})
	return defaultPaths
}

// NewPaths builds the directory layout under root
func NewPaths(root string) *Paths {
	return &Paths{
		Root:  root,
		Node:  filepath.Join(root, "node"),
		Cache: filepath.Join(root, "cache"),
	}
}

// getRootDir returns the root noderuntime directory
func getRootDir() string {
	if root := os.Getenv(RootEnvVar); root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			return abs
		}
		return root
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			return filepath.Join(cwd, ".noderuntime")
		}
		return ".noderuntime"
	}

	return filepath.Join(home, ".noderuntime")
}

// VersionCacheDir returns the directory holding cached npm registry lookups
func (p *Paths) VersionCacheDir() string {
	return filepath.Join(p.Cache, "versions")
}

// EnsureDirectories creates the root and cache directories.
// The node directory is owned by the installer, which wipes and recreates it.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.Cache} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ResetPathsCache resets the cached paths, forcing reinitialization on next access.
// This is primarily useful for testing.
func ResetPathsCache() {
	pathsOnce = sync.Once{}
	defaultPaths = nil
}
