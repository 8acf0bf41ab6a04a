package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dtvem/noderuntime/src/internal/config"
	"github.com/dtvem/noderuntime/src/internal/constants"
	"github.com/dtvem/noderuntime/src/internal/download"
	"github.com/dtvem/noderuntime/src/internal/platform"
	"github.com/dtvem/noderuntime/src/internal/process"
	"github.com/dtvem/noderuntime/src/internal/ui"
	"golang.org/x/sync/semaphore"
)

// Installation is a provisioned Node.js distribution directory.
type Installation struct {
	dir string
}

// Dir returns the installation root, <node dir>/node-<version>-<os>-<arch>.
func (i *Installation) Dir() string { return i.dir }

// BinDir returns the directory holding node and npm.
func (i *Installation) BinDir() string { return filepath.Join(i.dir, "bin") }

// NodeBinary returns the path of the node executable.
func (i *Installation) NodeBinary() string { return filepath.Join(i.dir, "bin", "node") }

// NpmScript returns the path of the npm entrypoint script.
func (i *Installation) NpmScript() string { return filepath.Join(i.dir, "bin", "npm") }

// CacheDir returns npm's private cache directory.
func (i *Installation) CacheDir() string { return filepath.Join(i.dir, "cache") }

// UserConfig returns the blank file passed as npm's --userconfig.
func (i *Installation) UserConfig() string { return filepath.Join(i.dir, "blank_user_npmrc") }

// GlobalConfig returns the blank file passed as npm's --globalconfig.
func (i *Installation) GlobalConfig() string { return filepath.Join(i.dir, "blank_global_npmrc") }

// ConfigArgs returns the flags that keep npm away from the user's own configuration.
func (i *Installation) ConfigArgs() []string {
	return []string{
		"--cache", i.CacheDir(),
		"--userconfig", i.UserConfig(),
		"--globalconfig", i.GlobalConfig(),
	}
}

// prepare creates the cache directory and blank npmrc files.
// Failures are ignored: npm still runs without them.
func (i *Installation) prepare() {
	if err := os.MkdirAll(i.CacheDir(), 0755); err != nil {
		ui.Debug("Could not create npm cache dir: %v", err)
	}
	for _, path := range []string{i.UserConfig(), i.GlobalConfig()} {
		if err := os.WriteFile(path, nil, 0644); err != nil {
			ui.Debug("Could not write %s: %v", path, err)
		}
	}
}

// Installer downloads and repairs the pinned Node.js distribution.
// Provisioning is serialized per Installer, so share one instance by pointer.
type Installer struct {
	nodeDir            string
	distURL            string
	platform           *platform.Platform
	fetcher            download.Fetcher
	archiveFetcher     download.Fetcher
	runner             process.Runner
	healthCheckTimeout time.Duration
	downloadTimeout    time.Duration
	verifyChecksums    bool

	gate *semaphore.Weighted
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithDistURL sets the base URL releases are downloaded from.
func WithDistURL(url string) InstallerOption {
	return func(i *Installer) { i.distURL = url }
}

// WithPlatform pins the platform instead of detecting the running one.
func WithPlatform(p platform.Platform) InstallerOption {
	return func(i *Installer) { i.platform = &p }
}

// WithFetcher replaces the HTTP fetcher used for every request.
func WithFetcher(f download.Fetcher) InstallerOption {
	return func(i *Installer) {
		i.fetcher = f
		i.archiveFetcher = f
	}
}

// WithArchiveFetcher replaces the fetcher used for the Node.js archive only.
// Checksum lists keep using the fetcher set by WithFetcher.
func WithArchiveFetcher(f download.Fetcher) InstallerOption {
	return func(i *Installer) { i.archiveFetcher = f }
}

// WithRunner replaces the process runner.
func WithRunner(r process.Runner) InstallerOption {
	return func(i *Installer) { i.runner = r }
}

// WithTimeouts bounds the health check and the download. Zero disables a bound.
func WithTimeouts(healthCheck, download time.Duration) InstallerOption {
	return func(i *Installer) {
		i.healthCheckTimeout = healthCheck
		i.downloadTimeout = download
	}
}

// WithChecksums turns SHASUMS256 verification of the archive on or off.
func WithChecksums(enabled bool) InstallerOption {
	return func(i *Installer) { i.verifyChecksums = enabled }
}

// NewInstaller creates an installer that keeps installations under nodeDir.
// nodeDir is wiped whenever the installation fails its health check.
func NewInstaller(nodeDir string, opts ...InstallerOption) *Installer {
	defaults := config.DefaultSettings()
	fetcher := download.NewHTTPFetcher()
	i := &Installer{
		nodeDir:            nodeDir,
		distURL:            defaults.DistURL,
		fetcher:            fetcher,
		archiveFetcher:     fetcher,
		runner:             process.NewExecRunner(),
		healthCheckTimeout: defaults.HealthCheckTimeout,
		downloadTimeout:    defaults.DownloadTimeout,
		verifyChecksums:    defaults.VerifyChecksums,
		gate:               semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// NewInstallerFromSettings creates an installer configured from loaded settings.
func NewInstallerFromSettings(paths *config.Paths, settings *config.Settings) *Installer {
	return NewInstaller(paths.Node,
		WithDistURL(settings.DistURL),
		WithFetcher(download.NewHTTPFetcher()),
		WithArchiveFetcher(download.NewHTTPFetcher(download.WithProgress(settings.ShowProgress))),
		WithTimeouts(settings.HealthCheckTimeout, settings.DownloadTimeout),
		WithChecksums(settings.VerifyChecksums),
	)
}

// NodeDir returns the directory installations are kept in.
func (i *Installer) NodeDir() string {
	return i.nodeDir
}

// Platform returns the platform installations are made for.
func (i *Installer) Platform() (platform.Platform, error) {
	if i.platform != nil {
		return *i.platform, nil
	}
	return platform.Current()
}

// ArchiveURL returns the download URL of the pinned release for p.
func (i *Installer) ArchiveURL(p platform.Platform) string {
	return fmt.Sprintf("%s/%s/%s", i.distURL, NodeVersion, p.ArchiveName(NodeVersion, constants.ExtTarGz))
}

// Installation returns where the installation lives, without checking or
// provisioning it.
func (i *Installer) Installation() (*Installation, error) {
	p, err := i.Platform()
	if err != nil {
		return nil, err
	}
	return i.installationFor(p), nil
}

func (i *Installer) installationFor(p platform.Platform) *Installation {
	return &Installation{dir: filepath.Join(i.nodeDir, p.FolderName(NodeVersion))}
}

// EnsureInstalled returns a working installation, downloading and unpacking
// the release first if the existing one is missing or broken. Concurrent
// callers wait for the first to finish and then reuse its result.
func (i *Installer) EnsureInstalled(ctx context.Context) (*Installation, error) {
	if err := i.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer i.gate.Release(1)

	p, err := i.Platform()
	if err != nil {
		return nil, err
	}
	inst := i.installationFor(p)

	if !i.healthy(ctx, inst) {
		// A canceled caller must not trigger a wipe of a good installation
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ui.Debug("Node.js installation at %s failed health check, reinstalling", inst.Dir())
		if err := i.provision(ctx, p); err != nil {
			return nil, err
		}
	}

	inst.prepare()
	return inst, nil
}

// healthy runs `node npm --version` with an empty environment.
func (i *Installer) healthy(ctx context.Context, inst *Installation) bool {
	ctx, cancel := withOptionalTimeout(ctx, i.healthCheckTimeout)
	defer cancel()

	args := append([]string{inst.NpmScript(), "--version"}, inst.ConfigArgs()...)
	out, err := i.runner.Run(ctx, process.Command{
		Path:    inst.NodeBinary(),
		Args:    args,
		Env:     []string{},
		Discard: true,
	})
	if err != nil {
		ui.Debug("Health check could not run: %v", err)
		return false
	}
	return out.Success()
}

// provision wipes nodeDir and unpacks a fresh release into it.
func (i *Installer) provision(ctx context.Context, p platform.Platform) error {
	ctx, cancel := withOptionalTimeout(ctx, i.downloadTimeout)
	defer cancel()

	_ = os.RemoveAll(i.nodeDir)
	if err := os.MkdirAll(i.nodeDir, 0755); err != nil {
		return &ProvisionError{Op: "create node directory", Err: err}
	}

	archiveName := p.ArchiveName(NodeVersion, constants.ExtTarGz)

	var expected string
	if i.verifyChecksums {
		var err error
		expected, err = i.expectedChecksum(ctx, archiveName)
		if err != nil {
			return &ProvisionError{Op: "fetch checksums", Err: err}
		}
	}

	url := i.ArchiveURL(p)
	ui.Debug("Downloading %s", url)

	body, err := i.archiveFetcher.Get(ctx, url)
	if err != nil {
		return &ProvisionError{Op: "download Node.js archive", Err: err}
	}
	defer func() { _ = body.Close() }()

	reader := download.NewHashingReader(body)
	if err := download.ExtractTarGz(reader, i.nodeDir); err != nil {
		return &ProvisionError{Op: "extract Node.js archive", Err: err}
	}

	if expected != "" {
		if err := reader.Verify(expected); err != nil {
			_ = os.RemoveAll(i.nodeDir)
			return &ProvisionError{Op: "verify Node.js archive", Err: err}
		}
		ui.Debug("Checksum verified: %s", expected)
	}

	return nil
}

// expectedChecksum looks up archiveName in the release's SHASUMS256.txt.
func (i *Installer) expectedChecksum(ctx context.Context, archiveName string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s", i.distURL, NodeVersion, download.ChecksumsFileName)

	body, err := i.fetcher.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", download.ChecksumsFileName, err)
	}
	return download.ParseChecksums(data, archiveName)
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
