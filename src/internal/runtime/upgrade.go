package runtime

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtvem/noderuntime/src/internal/ui"
	"golang.org/x/mod/semver"
)

// ShouldInstallPackage reports whether packageName needs to be (re)installed
// into packageDir to reach latestVersion. Anything that prevents a confident
// comparison counts as needing an install.
func ShouldInstallPackage(packageName, executablePath, packageDir, latestVersion string) bool {
	if _, err := os.Stat(executablePath); err != nil {
		ui.Debug("%s: executable not found: %v", packageName, err)
		return true
	}

	data, err := os.ReadFile(filepath.Join(packageDir, "package.json"))
	if err != nil {
		ui.Debug("%s: cannot read package.json: %v", packageName, err)
		return true
	}

	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		ui.Debug("%s: invalid package.json: %v", packageName, err)
		return true
	}

	installed, ok := installedVersion(manifest, packageName)
	if !ok {
		ui.Debug("%s: not listed in package.json dependencies", packageName)
		return true
	}

	latest, err := NormalizeVersion(latestVersion)
	if err != nil {
		ui.Debug("%s: latest version: %v", packageName, err)
		return true
	}

	current, err := NormalizeVersion(stripVersionPrefix(installed))
	if err != nil {
		ui.Debug("%s: installed version: %v", packageName, err)
		return true
	}

	return semver.Compare(current, latest) < 0
}

// installedVersion returns dependencies[name] when it is a string.
func installedVersion(manifest map[string]any, name string) (string, bool) {
	deps, ok := manifest["dependencies"].(map[string]any)
	if !ok {
		return "", false
	}
	version, ok := deps[name].(string)
	return version, ok
}

// stripVersionPrefix drops leading non-digits such as range operators ("^", "~", ">=").
func stripVersionPrefix(version string) string {
	return strings.TrimLeftFunc(version, func(r rune) bool {
		return r < '0' || r > '9'
	})
}

// NormalizeVersion validates a MAJOR.MINOR.PATCH version (with optional
// pre-release and build) and returns it in golang.org/x/mod/semver form.
func NormalizeVersion(version string) (string, error) {
	norm := "v" + version
	if !semver.IsValid(norm) || !hasFullCore(version) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	return norm, nil
}

// hasFullCore rejects the v1 and v1.2 shorthands x/mod/semver accepts.
func hasFullCore(version string) bool {
	core := version
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	return strings.Count(core, ".") == 2
}
