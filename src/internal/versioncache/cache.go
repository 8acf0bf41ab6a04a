// Package versioncache caches npm "latest version" lookups on disk
package versioncache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtvem/noderuntime/src/internal/ui"
)

// DefaultTTL is how long a cached latest version is trusted.
const DefaultTTL = time.Hour

// LatestVersioner looks up the latest published version of an npm package.
type LatestVersioner interface {
	NpmPackageLatestVersion(ctx context.Context, name string) (string, error)
}

// Cached wraps a LatestVersioner and remembers its answers per package.
type Cached struct {
	source   LatestVersioner
	cacheDir string
	ttl      time.Duration
	now      func() time.Time
}

var _ LatestVersioner = (*Cached)(nil)

// cacheEntry stores a version along with its cache timestamp.
type cacheEntry struct {
	CachedAt time.Time `json:"cached_at"`
	Package  string    `json:"package"`
	Version  string    `json:"version"`
}

// New creates a cache in cacheDir. A non-positive ttl disables caching.
func New(source LatestVersioner, cacheDir string, ttl time.Duration) *Cached {
	return &Cached{
		source:   source,
		cacheDir: cacheDir,
		ttl:      ttl,
		now:      time.Now,
	}
}

// NpmPackageLatestVersion returns the cached version if still fresh,
// otherwise asks the source and caches its answer.
func (c *Cached) NpmPackageLatestVersion(ctx context.Context, name string) (string, error) {
	if version, ok := c.Lookup(name); ok {
		return version, nil
	}
	return c.fetch(ctx, name)
}

// Lookup returns the cached version of name without asking the source.
// ok is false when there is no fresh entry.
func (c *Cached) Lookup(name string) (version string, ok bool) {
	version, ok = c.load(name)
	if ok {
		ui.Debug("Using cached latest version of %s: %s", name, version)
	}
	return version, ok
}

// Refresh drops the cached entry for name and asks the source again.
func (c *Cached) Refresh(ctx context.Context, name string) (string, error) {
	_ = os.Remove(c.cachePath(name))
	return c.fetch(ctx, name)
}

// Clear removes all cached entries.
func (c *Cached) Clear() error {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cache.json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.cacheDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cached) fetch(ctx context.Context, name string) (string, error) {
	version, err := c.source.NpmPackageLatestVersion(ctx, name)
	if err != nil {
		return "", err
	}

	// Caching is best-effort
	if err := c.save(name, version); err != nil {
		ui.Debug("Could not cache latest version of %s: %v", name, err)
	}
	return version, nil
}

// cachePath maps a package name to a file; scoped names contain a slash.
func (c *Cached) cachePath(name string) string {
	fileName := strings.NewReplacer("/", "__", "@", "_at_").Replace(name)
	return filepath.Join(c.cacheDir, fileName+".cache.json")
}

func (c *Cached) load(name string) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}

	data, err := os.ReadFile(c.cachePath(name))
	if err != nil {
		return "", false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}

	if entry.Package != name || entry.Version == "" || c.now().Sub(entry.CachedAt) > c.ttl {
		return "", false
	}
	return entry.Version, true
}

func (c *Cached) save(name, version string) error {
	if c.ttl <= 0 {
		return nil
	}
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(cacheEntry{
		CachedAt: c.now(),
		Package:  name,
		Version:  version,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.cachePath(name), data, 0644)
}
