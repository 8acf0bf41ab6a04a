package cmd

import (
	"fmt"

	"github.com/dtvem/noderuntime/src/internal/runtime"
	"github.com/dtvem/noderuntime/src/internal/tui"
	"github.com/spf13/cobra"
)

// Version can be set at build time using ldflags
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the noderuntime version",
	Long:  `Display the current version of noderuntime and the Node.js release it provisions.`,
	Run: func(cmd *cobra.Command, args []string) {
		content := fmt.Sprintf("noderuntime %s\nNode.js %s",
			tui.RenderVersion(Version), tui.RenderVersion(runtime.NodeVersion))
		fmt.Println(tui.RenderInfoBox(content))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
