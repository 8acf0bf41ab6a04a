package runtime

import (
	"context"
	"fmt"

	"github.com/dtvem/noderuntime/src/internal/process"
)

// FakeRuntime is a NodeRuntime for tests that must never reach Node.js.
// Every method panics, naming the call that was made.
type FakeRuntime struct{}

var _ NodeRuntime = FakeRuntime{}

// NewFakeRuntime returns a FakeRuntime.
func NewFakeRuntime() NodeRuntime {
	return FakeRuntime{}
}

// BinaryPath implements NodeRuntime.
func (FakeRuntime) BinaryPath(context.Context) (string, error) {
	panic("FakeRuntime: should not request the node binary path")
}

// RunNpmSubcommand implements NodeRuntime.
func (FakeRuntime) RunNpmSubcommand(_ context.Context, _ string, subcommand string, args ...string) (*process.Output, error) {
	panic(fmt.Sprintf("FakeRuntime: should not run npm subcommand %q with args %q", subcommand, args))
}

// NpmPackageLatestVersion implements NodeRuntime.
func (FakeRuntime) NpmPackageLatestVersion(_ context.Context, name string) (string, error) {
	panic(fmt.Sprintf("FakeRuntime: should not query npm package %q for latest version", name))
}

// NpmInstallPackages implements NodeRuntime.
func (FakeRuntime) NpmInstallPackages(_ context.Context, _ string, packages []Package) error {
	panic(fmt.Sprintf("FakeRuntime: should not install packages %v", packages))
}
