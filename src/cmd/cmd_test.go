package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"
	"time"

	"github.com/dtvem/noderuntime/src/internal/config"
	"github.com/dtvem/noderuntime/src/internal/platform"
	"github.com/dtvem/noderuntime/src/internal/process"
	"github.com/dtvem/noderuntime/src/internal/runtime"
	"github.com/dtvem/noderuntime/src/internal/versioncache"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"version", "path", "npm", "latest", "install", "check", "ensure", "info"}

	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestParsePackages(t *testing.T) {
	packages, err := parsePackages([]string{"left-pad@1.3.0", "@types/node@18.15.0"})
	if err != nil {
		t.Fatalf("parsePackages() error: %v", err)
	}

	want := []runtime.Package{
		{Name: "left-pad", Version: "1.3.0"},
		{Name: "@types/node", Version: "18.15.0"},
	}
	if len(packages) != len(want) {
		t.Fatalf("got %d packages, want %d", len(packages), len(want))
	}
	for i := range want {
		if packages[i] != want[i] {
			t.Errorf("packages[%d] = %+v, want %+v", i, packages[i], want[i])
		}
	}

	if _, err := parsePackages([]string{"left-pad@1.3.0", "typescript"}); err == nil {
		t.Error("expected error for argument without a version")
	}
}

func TestDefaultBinPath(t *testing.T) {
	suffix := ""
	if goruntime.GOOS == "windows" {
		suffix = ".cmd"
	}

	tests := []struct {
		pkg  string
		want string
	}{
		{"typescript", filepath.Join("tools", "node_modules", ".bin", "typescript"+suffix)},
		{"@angular/cli", filepath.Join("tools", "node_modules", ".bin", "cli"+suffix)},
	}

	for _, tt := range tests {
		if got := defaultBinPath("tools", tt.pkg); got != tt.want {
			t.Errorf("defaultBinPath(%q) = %q, want %q", tt.pkg, got, tt.want)
		}
	}
}

func TestAbsDir(t *testing.T) {
	if got, err := absDir(""); err != nil || got != "" {
		t.Errorf("absDir(\"\") = %q, %v", got, err)
	}

	got, err := absDir("relative")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("absDir(\"relative\") = %q, want absolute path", got)
	}
}

// staticVersions answers every lookup with one version
type staticVersions struct {
	version string
	calls   int
}

func (s *staticVersions) NpmPackageLatestVersion(context.Context, string) (string, error) {
	s.calls++
	return s.version, nil
}

// withEnvironment swaps loadEnvironment for the duration of a test
func withEnvironment(t *testing.T, load func() (*environment, error)) {
	t.Helper()
	saved := loadEnvironment
	loadEnvironment = load
	t.Cleanup(func() { loadEnvironment = saved })
}

// offlineFetcher fails every download
type offlineFetcher struct{}

func (offlineFetcher) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("network is unreachable")
}

// recordingRunner fails every command and remembers what was run
type recordingRunner struct {
	commands []process.Command
}

func (r *recordingRunner) Run(_ context.Context, cmd process.Command) (*process.Output, error) {
	r.commands = append(r.commands, cmd)
	return &process.Output{ExitCode: 1}, nil
}

// newOfflineEnvironment has no Node.js installed and cannot download one
func newOfflineEnvironment(t *testing.T, runner process.Runner) *environment {
	t.Helper()
	root := t.TempDir()
	paths := &config.Paths{
		Root:  root,
		Node:  filepath.Join(root, "node"),
		Cache: filepath.Join(root, "cache"),
	}
	settings := config.DefaultSettings()
	settings.ShowProgress = true

	installer := runtime.NewInstaller(paths.Node,
		runtime.WithPlatform(platform.Platform{OS: "linux", Arch: "x64"}),
		runtime.WithFetcher(offlineFetcher{}),
		runtime.WithRunner(runner),
	)
	return &environment{
		paths:    paths,
		settings: &settings,
		runtime:  runtime.NewRealRuntime(installer),
	}
}

func TestLookupLatestUsesCache(t *testing.T) {
	runner := &recordingRunner{}
	env := newOfflineEnvironment(t, runner)

	source := &staticVersions{version: "5.4.2"}
	cache := versioncache.New(source, env.paths.VersionCacheDir(), time.Hour)
	if _, err := cache.NpmPackageLatestVersion(context.Background(), "typescript"); err != nil {
		t.Fatal(err)
	}

	got, err := lookupLatest(context.Background(), env, "typescript", false)
	if err != nil {
		t.Fatalf("lookupLatest() error: %v", err)
	}
	if got != "5.4.2" {
		t.Errorf("lookupLatest() = %q, want 5.4.2", got)
	}
	if len(runner.commands) != 0 {
		t.Errorf("a cached answer ran %d commands", len(runner.commands))
	}
}

func TestLookupLatestProvisionsBeforeRegistry(t *testing.T) {
	tests := []struct {
		name    string
		refresh bool
	}{
		{"cache miss", false},
		{"refresh", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{}
			env := newOfflineEnvironment(t, runner)

			_, err := lookupLatest(context.Background(), env, "typescript", tt.refresh)

			// Provisioning fails before npm is ever invoked, so the error is the
			// installer's and not the subcommand invoker's
			var provisionErr *runtime.ProvisionError
			if !errors.As(err, &provisionErr) {
				t.Fatalf("expected ProvisionError, got %v", err)
			}
			if runtime.IsLaunchError(err) {
				t.Errorf("registry was queried before Node.js was provisioned: %v", err)
			}
			if len(runner.commands) != 1 {
				t.Errorf("expected a single health check, ran %d commands", len(runner.commands))
			}
		})
	}
}

func TestLatestClearCache(t *testing.T) {
	env := newOfflineEnvironment(t, &recordingRunner{})
	withEnvironment(t, func() (*environment, error) { return env, nil })

	cache := env.latestVersions()
	if _, err := versioncache.New(&staticVersions{version: "1.0.0"}, env.paths.VersionCacheDir(), time.Hour).
		NpmPackageLatestVersion(context.Background(), "left-pad"); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Lookup("left-pad"); !ok {
		t.Fatal("expected a cached entry before clearing")
	}

	t.Cleanup(func() { latestClearCache = false })

	if err := run(context.Background(), []string{"latest", "--clear-cache"}); err != nil {
		t.Fatalf("latest --clear-cache error: %v", err)
	}
	if _, ok := cache.Lookup("left-pad"); ok {
		t.Error("cached entry survived --clear-cache")
	}
}

func TestIsVersionRequest(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"root flag", []string{"--version"}, true},
		{"after root flags", []string{"--verbose", "--config", "s.yaml", "--version"}, true},
		{"no flag", []string{"info"}, false},
		{"npm subcommand flag", []string{"npm", "ls", "--version"}, false},
		{"npm with dir", []string{"npm", "--dir", "x", "ls", "--version"}, false},
		{"after separator", []string{"--", "--version"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isVersionRequest(tt.args); got != tt.want {
				t.Errorf("isVersionRequest(%q) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestRunPassesVersionFlagToNpm(t *testing.T) {
	errLoaded := errors.New("environment loaded")
	loads := 0
	withEnvironment(t, func() (*environment, error) {
		loads++
		return nil, errLoaded
	})
	t.Cleanup(func() { npmDir = "" })

	err := run(context.Background(), []string{"npm", "--dir", t.TempDir(), "exec", "--", "tsc", "--version"})
	if !errors.Is(err, errLoaded) {
		t.Fatalf("expected the npm command to run, got %v", err)
	}
	if loads != 1 {
		t.Errorf("loadEnvironment called %d times, want 1", loads)
	}

	if err := run(context.Background(), []string{"--version"}); err != nil {
		t.Fatalf("run(--version) error: %v", err)
	}
	if loads != 1 {
		t.Error("--version before any subcommand should only print the version")
	}
}

func writeInstalledPackage(t *testing.T, dir, name, version string) string {
	t.Helper()
	bin := defaultBinPath(dir, name)
	if err := os.MkdirAll(filepath.Dir(bin), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"dependencies":{"` + name + `":"` + version + `"}}`
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestCheckPackage(t *testing.T) {
	dir := t.TempDir()
	writeInstalledPackage(t, dir, "typescript", "^5.0.4")

	tests := []struct {
		name      string
		latest    string
		wantNeeds bool
	}{
		{"up to date", "5.0.4", false},
		{"outdated", "5.1.0", true},
		{"older latest", "5.0.0", false},
		{"unparseable latest", "latest", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checkPackage("typescript", dir, "", tt.latest)
			if result.NeedsInstall != tt.wantNeeds {
				t.Errorf("NeedsInstall = %v, want %v", result.NeedsInstall, tt.wantNeeds)
			}
			if result.Bin != defaultBinPath(dir, "typescript") {
				t.Errorf("Bin = %q, want the default bin path", result.Bin)
			}
		})
	}
}

func TestRunCheckWithExplicitLatest(t *testing.T) {
	dir := t.TempDir()
	bin := writeInstalledPackage(t, dir, "pyright", "1.1.0")
	withEnvironment(t, func() (*environment, error) {
		t.Fatal("an explicit latest version must not load the runtime")
		return nil, nil
	})

	result, err := runCheck(context.Background(), "pyright", dir, bin, "1.1.300")
	if err != nil {
		t.Fatalf("runCheck() error: %v", err)
	}
	if !result.NeedsInstall {
		t.Error("1.1.0 is older than 1.1.300 and should need an install")
	}
}

func TestRunCheckRequiresDir(t *testing.T) {
	if _, err := runCheck(context.Background(), "typescript", "", "", "1.0.0"); err == nil {
		t.Error("expected error without --dir")
	}
}

func TestLoadEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Setenv(config.RootEnvVar, root)
	t.Setenv("NODERUNTIME_LATEST_CACHE_TTL", "5m")
	config.ResetPathsCache()
	t.Cleanup(config.ResetPathsCache)

	env, err := loadEnvironment()
	if err != nil {
		t.Fatalf("loadEnvironment() error: %v", err)
	}

	if env.paths.Root != root {
		t.Errorf("Root = %q, want %q", env.paths.Root, root)
	}
	if env.settings.LatestCacheTTL != 5*time.Minute {
		t.Errorf("LatestCacheTTL = %v, want 5m", env.settings.LatestCacheTTL)
	}
	if env.runtime.Installer().NodeDir() != filepath.Join(root, "node") {
		t.Errorf("NodeDir() = %q", env.runtime.Installer().NodeDir())
	}

	out := infoTable(env).Render()
	for _, want := range []string{runtime.NodeVersion, root, "5m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("info table missing %q:\n%s", want, out)
		}
	}
}
