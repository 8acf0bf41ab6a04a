package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dtvem/noderuntime/src/internal/download"
	"github.com/dtvem/noderuntime/src/internal/platform"
	"github.com/dtvem/noderuntime/src/internal/process"
	"github.com/dtvem/noderuntime/src/internal/testutil"
)

const testDistURL = "https://dist.example.com"

var testPlatform = platform.Platform{OS: "linux", Arch: "x64"}

func testArchiveURL() string {
	return fmt.Sprintf("%s/%s/node-%s-linux-x64.tar.gz", testDistURL, NodeVersion, NodeVersion)
}

func testChecksumsURL() string {
	return fmt.Sprintf("%s/%s/%s", testDistURL, NodeVersion, download.ChecksumsFileName)
}

// fakeFetcher serves canned bodies and counts requests per URL
type fakeFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls map[string]int
	delay time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{files: map[string][]byte{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.calls[url]++
	data, ok := f.files[url]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if !ok {
		return nil, &download.ErrHTTPStatus{URL: url, StatusCode: http.StatusNotFound, Status: "404 Not Found"}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type runResult struct {
	out *process.Output
	err error
}

// fakeRunner answers health checks from the filesystem and replays scripted
// results for every other command
type fakeRunner struct {
	mu           sync.Mutex
	results      []runResult
	calls        []process.Command
	healthChecks []process.Command

	// onHealthCheck runs before a health check is answered
	onHealthCheck func()
}

func (f *fakeRunner) Run(ctx context.Context, cmd process.Command) (*process.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if isHealthCheck(cmd) {
		f.healthChecks = append(f.healthChecks, cmd)
		if f.onHealthCheck != nil {
			f.onHealthCheck()
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(cmd.Path); err != nil {
			return nil, fmt.Errorf("fork/exec %s: no such file or directory", cmd.Path)
		}
		return &process.Output{}, nil
	}

	f.calls = append(f.calls, cmd)
	if len(f.results) == 0 {
		return &process.Output{}, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.out, r.err
}

func (f *fakeRunner) script(results ...runResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, results...)
}

func (f *fakeRunner) commands() []process.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]process.Command(nil), f.calls...)
}

func isHealthCheck(cmd process.Command) bool {
	return cmd.Discard && len(cmd.Args) > 1 && cmd.Args[1] == "--version"
}

func distributionArchive(t *testing.T) []byte {
	t.Helper()
	return testutil.TarGz(t, testutil.NodeDistribution(testPlatform.FolderName(NodeVersion)))
}

func newTestInstaller(t *testing.T, fetcher *fakeFetcher, runner *fakeRunner, opts ...InstallerOption) *Installer {
	t.Helper()
	base := []InstallerOption{
		WithDistURL(testDistURL),
		WithPlatform(testPlatform),
		WithFetcher(fetcher),
		WithRunner(runner),
		WithChecksums(false),
	}
	return NewInstaller(filepath.Join(t.TempDir(), "node"), append(base, opts...)...)
}

// installDistribution lays out a working installation without downloading
func installDistribution(t *testing.T, installer *Installer) *Installation {
	t.Helper()
	inst := &Installation{dir: filepath.Join(installer.NodeDir(), testPlatform.FolderName(NodeVersion))}
	if err := os.MkdirAll(inst.BinDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(inst.NodeBinary(), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(inst.NpmScript(), []byte("// npm\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return inst
}

// newInstalledRuntime returns a runtime whose installation already passes
// the health check, so no download may happen
func newInstalledRuntime(t *testing.T) (*RealRuntime, *fakeRunner, *Installation) {
	t.Helper()
	fetcher := newFakeFetcher()
	runner := &fakeRunner{}
	installer := newTestInstaller(t, fetcher, runner)
	inst := installDistribution(t, installer)

	rt := NewRealRuntime(installer)
	rt.getenv = func(key string) string {
		if key == "PATH" {
			return "/usr/bin"
		}
		return ""
	}

	t.Cleanup(func() {
		if n := fetcher.total(); n != 0 {
			t.Errorf("unexpected downloads: %d", n)
		}
	})
	return rt, runner, inst
}
