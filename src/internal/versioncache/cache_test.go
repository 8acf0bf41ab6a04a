package versioncache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// mockSource is a test source that tracks calls
type mockSource struct {
	versions  map[string]string
	callCount map[string]int
	returnErr error
}

func newMockSource() *mockSource {
	return &mockSource{
		versions:  make(map[string]string),
		callCount: make(map[string]int),
	}
}

func (s *mockSource) NpmPackageLatestVersion(_ context.Context, name string) (string, error) {
	s.callCount[name]++
	if s.returnErr != nil {
		return "", s.returnErr
	}
	return s.versions[name], nil
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	mock := newMockSource()
	mock.versions["left-pad"] = "1.3.0"
	cache := New(mock, t.TempDir(), time.Hour)

	t.Run("first call fetches from source", func(t *testing.T) {
		v, err := cache.NpmPackageLatestVersion(ctx, "left-pad")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "1.3.0" {
			t.Errorf("version = %q, want 1.3.0", v)
		}
		if mock.callCount["left-pad"] != 1 {
			t.Errorf("callCount = %d, want 1", mock.callCount["left-pad"])
		}
	})

	t.Run("second call uses cache", func(t *testing.T) {
		mock.versions["left-pad"] = "9.9.9"
		v, err := cache.NpmPackageLatestVersion(ctx, "left-pad")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "1.3.0" {
			t.Errorf("version = %q, want cached 1.3.0", v)
		}
		if mock.callCount["left-pad"] != 1 {
			t.Errorf("callCount = %d, want 1 (should use cache)", mock.callCount["left-pad"])
		}
	})

	t.Run("refresh bypasses cache", func(t *testing.T) {
		v, err := cache.Refresh(ctx, "left-pad")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "9.9.9" {
			t.Errorf("version = %q, want 9.9.9", v)
		}
		if mock.callCount["left-pad"] != 2 {
			t.Errorf("callCount = %d, want 2", mock.callCount["left-pad"])
		}
	})
}

func TestCachedExpiry(t *testing.T) {
	ctx := context.Background()
	mock := newMockSource()
	mock.versions["typescript"] = "5.0.0"
	cache := New(mock, t.TempDir(), time.Hour)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if _, err := cache.NpmPackageLatestVersion(ctx, "typescript"); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Hour)
	mock.versions["typescript"] = "5.1.0"

	v, err := cache.NpmPackageLatestVersion(ctx, "typescript")
	if err != nil {
		t.Fatal(err)
	}
	if v != "5.1.0" {
		t.Errorf("expired entry served: got %q, want 5.1.0", v)
	}
	if mock.callCount["typescript"] != 2 {
		t.Errorf("callCount = %d, want 2", mock.callCount["typescript"])
	}
}

func TestCachedScopedPackages(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mock := newMockSource()
	mock.versions["@types/node"] = "20.1.0"
	mock.versions["types__node"] = "0.0.1"
	cache := New(mock, dir, time.Hour)

	for _, name := range []string{"@types/node", "types__node", "@types/node"} {
		if _, err := cache.NpmPackageLatestVersion(ctx, name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}

	if mock.callCount["@types/node"] != 1 {
		t.Errorf("scoped package fetched %d times, want 1", mock.callCount["@types/node"])
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			t.Errorf("scoped name created a subdirectory: %s", entry.Name())
		}
	}
}

func TestCachedSourceError(t *testing.T) {
	mock := newMockSource()
	mock.returnErr = errors.New("registry unreachable")
	dir := t.TempDir()
	cache := New(mock, dir, time.Hour)

	_, err := cache.NpmPackageLatestVersion(context.Background(), "left-pad")
	if !errors.Is(err, mock.returnErr) {
		t.Errorf("expected source error, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(dir, "left-pad.cache.json")); !os.IsNotExist(statErr) {
		t.Error("failed lookup should not be cached")
	}
}

func TestCachedDisabled(t *testing.T) {
	mock := newMockSource()
	mock.versions["left-pad"] = "1.3.0"
	cache := New(mock, t.TempDir(), 0)

	for i := 0; i < 2; i++ {
		if _, err := cache.NpmPackageLatestVersion(context.Background(), "left-pad"); err != nil {
			t.Fatal(err)
		}
	}
	if mock.callCount["left-pad"] != 2 {
		t.Errorf("callCount = %d, want 2 with caching disabled", mock.callCount["left-pad"])
	}
}

func TestCachedCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	mock := newMockSource()
	mock.versions["left-pad"] = "1.3.0"
	cache := New(mock, dir, time.Hour)

	if err := os.WriteFile(filepath.Join(dir, "left-pad.cache.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := cache.NpmPackageLatestVersion(context.Background(), "left-pad")
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.3.0" || mock.callCount["left-pad"] != 1 {
		t.Errorf("corrupt entry not replaced: got %q after %d calls", v, mock.callCount["left-pad"])
	}
}

func TestLookup(t *testing.T) {
	mock := newMockSource()
	mock.versions["typescript"] = "5.4.2"
	cache := New(mock, t.TempDir(), time.Hour)

	if _, ok := cache.Lookup("typescript"); ok {
		t.Fatal("Lookup() found an entry in an empty cache")
	}
	if mock.callCount["typescript"] != 0 {
		t.Error("Lookup() asked the source")
	}

	if _, err := cache.NpmPackageLatestVersion(context.Background(), "typescript"); err != nil {
		t.Fatal(err)
	}
	v, ok := cache.Lookup("typescript")
	if !ok || v != "5.4.2" {
		t.Errorf("Lookup() = %q, %v; want 5.4.2, true", v, ok)
	}

	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := cache.Lookup("typescript"); ok {
		t.Error("Lookup() returned an expired entry")
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	mock := newMockSource()
	mock.versions["a"] = "1.0.0"
	mock.versions["b"] = "2.0.0"
	cache := New(mock, dir, time.Hour)

	for _, name := range []string{"a", "b"} {
		if _, err := cache.NpmPackageLatestVersion(context.Background(), name); err != nil {
			t.Fatal(err)
		}
	}
	keep := filepath.Join(dir, "unrelated.txt")
	if err := os.WriteFile(keep, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "unrelated.txt" {
		t.Errorf("Clear() left %v", entries)
	}
}

func TestClearMissingDir(t *testing.T) {
	cache := New(newMockSource(), filepath.Join(t.TempDir(), "missing"), time.Hour)
	if err := cache.Clear(); err != nil {
		t.Errorf("Clear() on missing dir: %v", err)
	}
}
