package cmd

import (
	"fmt"

	"github.com/dtvem/noderuntime/src/internal/config"
	"github.com/dtvem/noderuntime/src/internal/runtime"
	"github.com/dtvem/noderuntime/src/internal/ui"
	"github.com/dtvem/noderuntime/src/internal/versioncache"
)

// environment holds what every command needs, built once per invocation
type environment struct {
	paths    *config.Paths
	settings *config.Settings
	runtime  *runtime.RealRuntime
}

// loadEnvironment is swapped out by tests
var loadEnvironment = func() (*environment, error) {
	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create noderuntime directories: %w", err)
	}

	settings, err := config.LoadSettings(configFile, paths)
	if err != nil {
		return nil, err
	}
	ui.Debug("Settings: dist_url=%s verify_checksums=%t", settings.DistURL, settings.VerifyChecksums)

	installer := runtime.NewInstallerFromSettings(paths, settings)
	return &environment{
		paths:    paths,
		settings: settings,
		runtime:  runtime.NewRealRuntime(installer),
	}, nil
}

// latestVersions returns a cached view of the registry's latest versions
func (e *environment) latestVersions() *versioncache.Cached {
	return versioncache.New(e.runtime, e.paths.VersionCacheDir(), e.settings.LatestCacheTTL)
}
