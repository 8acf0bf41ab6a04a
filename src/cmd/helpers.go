package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/dtvem/noderuntime/src/internal/constants"
	"github.com/dtvem/noderuntime/src/internal/runtime"
	"github.com/dtvem/noderuntime/src/internal/ui"
)

// prepareRuntime provisions Node.js before a command produces output, so
// download progress and command output do not interleave
func prepareRuntime(ctx context.Context, env *environment) (*runtime.Installation, error) {
	installer := env.runtime.Installer()
	if env.settings.ShowProgress {
		// The download draws its own progress bar
		return installer.EnsureInstalled(ctx)
	}

	var inst *runtime.Installation
	err := ui.WithSpinner(fmt.Sprintf("Preparing Node.js %s", runtime.NodeVersion), func() error {
		var err error
		inst, err = installer.EnsureInstalled(ctx)
		return err
	})
	return inst, err
}

// lookupLatest answers from the version cache when it can. Otherwise Node.js
// is provisioned first, so a cold download gets the same progress display
// as every other command, and the registry is asked.
func lookupLatest(ctx context.Context, env *environment, name string, refresh bool) (string, error) {
	cache := env.latestVersions()
	if !refresh {
		if version, ok := cache.Lookup(name); ok {
			return version, nil
		}
	}

	if _, err := prepareRuntime(ctx, env); err != nil {
		return "", err
	}
	if refresh {
		return cache.Refresh(ctx, name)
	}
	return cache.NpmPackageLatestVersion(ctx, name)
}

// absDir makes a --dir value absolute; npm receives it both as the working
// directory and as --prefix
func absDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	return filepath.Abs(dir)
}

// parsePackages parses name@version arguments
func parsePackages(args []string) ([]runtime.Package, error) {
	packages := make([]runtime.Package, 0, len(args))
	for _, arg := range args {
		pkg, err := runtime.ParsePackage(arg)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	return packages, nil
}

// defaultBinPath is where npm links a package's executable inside dir
func defaultBinPath(dir, packageName string) string {
	name := packageName
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if goruntime.GOOS == constants.OSWindows {
		name += ".cmd"
	}
	return filepath.Join(dir, "node_modules", ".bin", name)
}
