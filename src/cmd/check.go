package cmd

import (
	"context"
	"errors"

	"github.com/dtvem/noderuntime/src/internal/runtime"
	"github.com/dtvem/noderuntime/src/internal/ui"
	"github.com/spf13/cobra"
)

var (
	checkDir    string
	checkBin    string
	checkLatest string
)

// checkResult is the outcome of comparing an installed package to the latest release
type checkResult struct {
	Package      string
	Latest       string
	Bin          string
	NeedsInstall bool
}

// checkPackage decides whether name, installed into dir, is older than latest
func checkPackage(name, dir, bin, latest string) *checkResult {
	if bin == "" {
		bin = defaultBinPath(dir, name)
	}
	return &checkResult{
		Package:      name,
		Latest:       latest,
		Bin:          bin,
		NeedsInstall: runtime.ShouldInstallPackage(name, bin, dir, latest),
	}
}

var checkCmd = &cobra.Command{
	Use:   "check <package> --dir <dir>",
	Short: "Report whether an npm package needs installing or upgrading",
	Long: `Compare the version of a package recorded in <dir>/package.json with the
latest published version. A missing executable, unreadable package.json, or
unparseable version all count as needing an install.

Examples:
  noderuntime check typescript --dir ./tools
  noderuntime check pyright --dir ./tools --latest 1.1.300`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runCheck(cmd.Context(), args[0], checkDir, checkBin, checkLatest)
		if err != nil {
			return err
		}

		if result.NeedsInstall {
			ui.Warning("%s needs install (latest %s)", result.Package, ui.HighlightVersion(result.Latest))
		} else {
			ui.Success("%s is up to date (%s)", result.Package, ui.HighlightVersion(result.Latest))
		}
		return nil
	},
}

var ensureCmd = &cobra.Command{
	Use:   "ensure <package> --dir <dir>",
	Short: "Install the latest version of an npm package if it is missing or outdated",
	Long: `Run the same comparison as "check" and, when an install is needed, install
<package>@<latest> into the directory with --save-exact.

Examples:
  noderuntime ensure typescript --dir ./tools`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		result, err := runCheck(ctx, args[0], checkDir, checkBin, checkLatest)
		if err != nil {
			return err
		}
		if !result.NeedsInstall {
			ui.Success("%s is up to date (%s)", result.Package, ui.HighlightVersion(result.Latest))
			return nil
		}

		dir, err := absDir(checkDir)
		if err != nil {
			return err
		}
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		ui.Info("Installing %s %s into %s", result.Package, ui.HighlightVersion(result.Latest), dir)
		if _, err := prepareRuntime(ctx, env); err != nil {
			return err
		}
		pkg := runtime.Package{Name: result.Package, Version: result.Latest}
		err = ui.WithSpinner("Installing "+pkg.String(), func() error {
			return env.runtime.NpmInstallPackages(ctx, dir, []runtime.Package{pkg})
		})
		if err != nil {
			return err
		}

		ui.Success("Installed %s %s", ui.Highlight(pkg.Name), ui.HighlightVersion(pkg.Version))
		return nil
	},
}

// runCheck only loads the runtime when the latest version must be looked up
func runCheck(ctx context.Context, name, dir, bin, latest string) (*checkResult, error) {
	dir, err := absDir(dir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, errors.New("--dir is required")
	}

	if latest == "" {
		env, err := loadEnvironment()
		if err != nil {
			return nil, err
		}
		latest, err = lookupLatest(ctx, env, name, false)
		if err != nil {
			return nil, err
		}
	}
	return checkPackage(name, dir, bin, latest), nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(ensureCmd)

	for _, c := range []*cobra.Command{checkCmd, ensureCmd} {
		c.Flags().StringVar(&checkDir, "dir", "", "Directory holding package.json and node_modules (required)")
		c.Flags().StringVar(&checkBin, "bin", "", "Package executable (default <dir>/node_modules/.bin/<name>)")
		c.Flags().StringVar(&checkLatest, "latest", "", "Compare against this version instead of asking the registry")
	}
}
