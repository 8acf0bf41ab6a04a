package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/dtvem/noderuntime/src/internal/runtime"
	"github.com/spf13/cobra"
)

var npmDir string

var npmCmd = &cobra.Command{
	Use:   "npm <subcommand> [args...]",
	Short: "Run an npm subcommand with the managed Node.js",
	Long: `Run npm through the managed Node.js with an isolated environment: only PATH is
passed through, and npm's cache and config files live inside the installation.

Flags after the subcommand are passed to npm unchanged.

Examples:
  noderuntime npm --dir ./tools ls
  noderuntime npm view typescript version`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := absDir(npmDir)
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

		out, err := env.runtime.RunNpmSubcommand(cmd.Context(), dir, args[0], args[1:]...)

		var cmdErr *runtime.CommandError
		if errors.As(err, &cmdErr) {
			_, _ = fmt.Fprint(os.Stdout, cmdErr.Stdout)
			_, _ = fmt.Fprint(os.Stderr, cmdErr.Stderr)
			return fmt.Errorf("npm %s exited with code %d", cmdErr.Subcommand, cmdErr.ExitCode)
		}
		if err != nil {
			return err
		}

		_, _ = os.Stdout.Write(out.Stdout)
		_, _ = os.Stderr.Write(out.Stderr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(npmCmd)
	npmCmd.Flags().StringVar(&npmDir, "dir", "", "Run in this directory and use it as the npm prefix")
	npmCmd.Flags().SetInterspersed(false)
}
