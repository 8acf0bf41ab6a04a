package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the managed node binary",
	Long: `Make sure the pinned Node.js release is installed and print the path of its
node executable. The path is the only thing written to stdout.

Examples:
  noderuntime path
  "$(noderuntime path)" --version`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		inst, err := prepareRuntime(cmd.Context(), env)
		if err != nil {
			return err
		}

		fmt.Println(inst.NodeBinary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
