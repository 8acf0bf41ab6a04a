package runtime

import (
	"context"
	"os"

	searchpath "github.com/dtvem/noderuntime/src/internal/path"
	"github.com/dtvem/noderuntime/src/internal/process"
	"github.com/dtvem/noderuntime/src/internal/ui"
)

// RealRuntime runs npm through an Installer-managed Node.js distribution.
type RealRuntime struct {
	installer *Installer
	runner    process.Runner
	getenv    func(string) string
}

var _ NodeRuntime = (*RealRuntime)(nil)

// NewRealRuntime creates a runtime backed by installer. Subcommands are
// spawned with the installer's process runner.
func NewRealRuntime(installer *Installer) *RealRuntime {
	return &RealRuntime{
		installer: installer,
		runner:    installer.runner,
		getenv:    os.Getenv,
	}
}

// Installer returns the installer backing this runtime.
func (r *RealRuntime) Installer() *Installer {
	return r.installer
}

// BinaryPath implements NodeRuntime.
func (r *RealRuntime) BinaryPath(ctx context.Context) (string, error) {
	inst, err := r.installer.EnsureInstalled(ctx)
	if err != nil {
		return "", err
	}
	return inst.NodeBinary(), nil
}

// RunNpmSubcommand implements NodeRuntime.
//
// A failed launch (provisioning, missing files, spawn error) is retried once
// and the last error is returned wrapped in a LaunchError. A process that
// starts and exits non-zero is reported as a CommandError without a retry.
func (r *RealRuntime) RunNpmSubcommand(ctx context.Context, dir, subcommand string, args ...string) (*process.Output, error) {
	var lastErr error
	for attempt := 1; attempt <= launchAttempts; attempt++ {
		out, err := r.launch(ctx, dir, subcommand, args)
		if err == nil {
			if !out.Success() {
				return nil, &CommandError{
					Subcommand: subcommand,
					ExitCode:   out.ExitCode,
					Stdout:     string(out.Stdout),
					Stderr:     string(out.Stderr),
				}
			}
			return out, nil
		}

		ui.Debug("npm %s attempt %d/%d failed: %v", subcommand, attempt, launchAttempts, err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, &LaunchError{Subcommand: subcommand, Err: lastErr}
}

func (r *RealRuntime) launch(ctx context.Context, dir, subcommand string, args []string) (*process.Output, error) {
	inst, err := r.installer.EnsureInstalled(ctx)
	if err != nil {
		return nil, err
	}

	if err := checkExecutable(inst.NodeBinary()); err != nil {
		return nil, err
	}
	if _, err := os.Stat(inst.NpmScript()); err != nil {
		return nil, &MissingBinaryError{Path: inst.NpmScript()}
	}

	cmdArgs := append([]string{inst.NpmScript(), subcommand}, inst.ConfigArgs()...)
	cmdArgs = append(cmdArgs, args...)

	cmd := process.Command{
		Path: inst.NodeBinary(),
		Env:  []string{"PATH=" + r.searchPath(inst)},
	}
	if dir != "" {
		cmd.Dir = dir
		cmdArgs = append(cmdArgs, "--prefix", dir)
	}
	cmd.Args = cmdArgs

	return r.runner.Run(ctx, cmd)
}

// searchPath puts the installation's bin directory ahead of the inherited PATH.
func (r *RealRuntime) searchPath(inst *Installation) string {
	return searchpath.Prepend(inst.BinDir(), r.getenv("PATH"))
}

// NpmPackageLatestVersion implements NodeRuntime.
func (r *RealRuntime) NpmPackageLatestVersion(ctx context.Context, name string) (string, error) {
	args := append([]string{name, "--json"}, fetchFlags...)
	out, err := r.RunNpmSubcommand(ctx, "", "info", args...)
	if err != nil {
		return "", err
	}

	info, err := ParseNpmInfo(out.Stdout)
	if err != nil {
		return "", &MetadataParseError{Package: name, Err: err}
	}

	latest, ok := info.Latest()
	if !ok {
		return "", &NoVersionFoundError{Package: name}
	}
	return latest, nil
}

// NpmInstallPackages implements NodeRuntime.
func (r *RealRuntime) NpmInstallPackages(ctx context.Context, dir string, packages []Package) error {
	_, err := r.RunNpmSubcommand(ctx, dir, "install", installArgs(packages)...)
	return err
}

func installArgs(packages []Package) []string {
	args := make([]string, 0, len(packages)+1+len(fetchFlags))
	for _, pkg := range packages {
		args = append(args, pkg.String())
	}
	args = append(args, "--save-exact")
	return append(args, fetchFlags...)
}
