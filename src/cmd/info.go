package cmd

import (
	"fmt"
	"os"

	"github.com/dtvem/noderuntime/src/internal/config"
	searchpath "github.com/dtvem/noderuntime/src/internal/path"
	"github.com/dtvem/noderuntime/src/internal/runtime"
	"github.com/dtvem/noderuntime/src/internal/tui"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the runtime location and effective settings",
	Long:  `Show where the managed Node.js lives, whether it is installed, and the settings in effect. Nothing is downloaded.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		fmt.Println(infoTable(env).Render())
		return nil
	},
}

func infoTable(env *environment) *tui.Table {
	installer := env.runtime.Installer()

	table := tui.NewKeyValueTable("noderuntime " + Version)
	table.AddHighlightedRow("Node.js", runtime.NodeVersion)

	p, err := installer.Platform()
	if err != nil {
		table.AddRow("Platform", tui.RenderStatus(false, err.Error()))
	} else {
		table.AddRow("Platform", p.String())
		table.AddRow("Archive", installer.ArchiveURL(p))
	}

	table.AddRow("Root", env.paths.Root)
	if inst, err := installer.Installation(); err == nil {
		table.AddRow("Installation", inst.Dir())
		_, statErr := os.Stat(inst.NodeBinary())
		table.AddRow("Installed", tui.RenderStatus(statErr == nil, yesNo(statErr == nil)))
		table.AddRow("Bin dir on PATH", yesNo(searchpath.IsInPath(inst.BinDir())))
	}

	settingsFile := configFile
	if settingsFile == "" {
		settingsFile = config.ConfigFileUsed(env.paths)
	}
	if settingsFile == "" {
		settingsFile = tui.RenderMuted("(defaults)")
	}
	table.AddRow("Settings", settingsFile)
	table.AddRow("Verify checksums", yesNo(env.settings.VerifyChecksums))
	table.AddRow("Health check timeout", env.settings.HealthCheckTimeout.String())
	table.AddRow("Download timeout", env.settings.DownloadTimeout.String())
	table.AddRow("Latest cache TTL", env.settings.LatestCacheTTL.String())

	return table
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
