package cmd

import (
	"fmt"

	"github.com/dtvem/noderuntime/src/internal/ui"
	"github.com/spf13/cobra"
)

var (
	latestRefresh    bool
	latestClearCache bool
)

var latestCmd = &cobra.Command{
	Use:   "latest <package>",
	Short: "Print the latest published version of an npm package",
	Long: `Query the npm registry for a package's "latest" dist-tag, falling back to the
last published version. Answers are cached under <root>/cache/versions for
latest_cache_ttl (default 1h). --clear-cache drops every cached answer; the
package argument is optional with it.

Examples:
  noderuntime latest typescript
  noderuntime latest @types/node --refresh
  noderuntime latest --clear-cache`,
	Args: func(cmd *cobra.Command, args []string) error {
		if latestClearCache {
			return cobra.MaximumNArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		if latestClearCache {
			if err := env.latestVersions().Clear(); err != nil {
				return fmt.Errorf("failed to clear version cache: %w", err)
			}
			ui.Success("Cleared cached latest versions")
			if len(args) == 0 {
				return nil
			}
		}

		version, err := lookupLatest(cmd.Context(), env, args[0], latestRefresh)
		if err != nil {
			return err
		}

		fmt.Println(version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(latestCmd)
	latestCmd.Flags().BoolVar(&latestRefresh, "refresh", false, "Ignore the cached answer")
	latestCmd.Flags().BoolVar(&latestClearCache, "clear-cache", false, "Remove all cached latest versions")
}
