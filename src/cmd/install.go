package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dtvem/noderuntime/src/internal/ui"
	"github.com/spf13/cobra"
)

var installDir string

var installCmd = &cobra.Command{
	Use:   "install --dir <dir> <package@version>...",
	Short: "Install exact npm package versions into a directory",
	Long: `Install one or more packages at exact versions into a directory with
npm install --save-exact, using the managed Node.js.

Examples:
  noderuntime install --dir ./tools typescript@5.0.4
  noderuntime install --dir ./tools prettier@3.0.0 @types/node@18.15.0`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if installDir == "" {
			return errors.New("--dir is required")
		}
		dir, err := absDir(installDir)
		if err != nil {
			return err
		}

		packages, err := parsePackages(args)
		if err != nil {
			return err
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		if _, err := prepareRuntime(cmd.Context(), env); err != nil {
			return err
		}

		ui.Debug("Installing %v into %s", packages, dir)
		err = ui.WithSpinner(fmt.Sprintf("Installing %s", strings.Join(args, ", ")), func() error {
			return env.runtime.NpmInstallPackages(cmd.Context(), dir, packages)
		})
		if err != nil {
			return err
		}

		for _, pkg := range packages {
			ui.Success("Installed %s %s", ui.Highlight(pkg.Name), ui.HighlightVersion(pkg.Version))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().StringVar(&installDir, "dir", "", "Directory to install into (required)")
}
