// Package runtime provisions a pinned Node.js distribution and runs npm through it
package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtvem/noderuntime/src/internal/process"
)

// NodeVersion is the Node.js release every installation is pinned to.
const NodeVersion = "v18.15.0"

// launchAttempts is how many times a subcommand launch is attempted before giving up.
const launchAttempts = 2

// fetchFlags bound npm's own registry retries and timeouts (milliseconds).
var fetchFlags = []string{
	"--fetch-retry-mintimeout", "2000",
	"--fetch-retry-maxtimeout", "5000",
	"--fetch-timeout", "5000",
}

// NodeRuntime is the capability host applications use to run Node.js tooling.
type NodeRuntime interface {
	// BinaryPath returns the path of the node executable, installing it if needed.
	BinaryPath(ctx context.Context) (string, error)

	// RunNpmSubcommand runs `npm <subcommand> <args...>` in an isolated environment.
	// A non-empty dir becomes the working directory and the npm prefix.
	RunNpmSubcommand(ctx context.Context, dir, subcommand string, args ...string) (*process.Output, error)

	// NpmPackageLatestVersion asks the registry for a package's latest version.
	NpmPackageLatestVersion(ctx context.Context, name string) (string, error)

	// NpmInstallPackages installs exact package versions into dir.
	NpmInstallPackages(ctx context.Context, dir string, packages []Package) error
}

// Package is an npm package pinned to a version.
type Package struct {
	Name    string
	Version string
}

// String returns the npm install spec, name@version.
func (p Package) String() string {
	return p.Name + "@" + p.Version
}

// ParsePackage parses a name@version spec. Scoped names such as
// @types/node@18.0.0 keep their leading '@'.
func ParsePackage(spec string) (Package, error) {
	at := strings.LastIndex(spec, "@")
	if at <= 0 || at == len(spec)-1 {
		return Package{}, fmt.Errorf("invalid package spec %q: expected name@version", spec)
	}
	return Package{Name: spec[:at], Version: spec[at+1:]}, nil
}
