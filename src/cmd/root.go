// Package cmd implements the CLI commands for noderuntime
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/dtvem/noderuntime/src/internal/platform"
	"github.com/dtvem/noderuntime/src/internal/runtime"
	"github.com/dtvem/noderuntime/src/internal/tui"
	"github.com/dtvem/noderuntime/src/internal/ui"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:           "noderuntime",
	Short:         "Self-contained Node.js runtime provisioner",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.CheckVerboseEnv()
		if verbose {
			ui.SetVerbose(true)
		}
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		ui.Error("%v", err)
		if platform.IsUnsupported(err) {
			ui.Info("Prebuilt Node.js %s archives exist for darwin, linux and win on x64 and arm64", runtime.NodeVersion)
		}
		stop()
		os.Exit(1)
	}
}

// run executes the command line args, without the program name
func run(ctx context.Context, args []string) error {
	if isVersionRequest(args) {
		versionCmd.Run(versionCmd, nil)
		return nil
	}

	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// isVersionRequest reports whether --version appears among the root flags.
// Scanning stops at the first subcommand, so flags meant for npm pass through.
func isVersionRequest(args []string) bool {
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--version":
			return true
		case arg == "--config":
			i++ // skip its value
		case arg == "--" || !strings.HasPrefix(arg, "-"):
			return false
		}
	}
	return false
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Settings file (default <root>/settings.yaml)")

	rootCmd.SetUsageFunc(customUsage)
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		_ = customUsage(cmd)
	})
}

func customUsage(cmd *cobra.Command) error {
	const tableWidth = 90

	if cmd != rootCmd {
		fmt.Println(tui.RenderTitle(cmd.Short))
		fmt.Println()
		if cmd.Long != "" {
			fmt.Println(cmd.Long)
			fmt.Println()
		}
		fmt.Printf("Usage:\n  %s\n\n", cmd.UseLine())
		if flags := cmd.LocalFlags().FlagUsages(); flags != "" {
			fmt.Printf("Flags:\n%s\n", flags)
		}
		return nil
	}

	header := tui.NewTable("")
	header.SetTitle(cmd.Short)
	header.HideHeader()
	header.SetMinWidth(tableWidth)
	header.AddRow("Keeps a pinned Node.js and npm under ~/.noderuntime (or $NODERUNTIME_ROOT),")
	header.AddRow("downloading it on first use and running npm in an isolated environment.")

	fmt.Println(header.Render())
	fmt.Println()

	table := tui.NewTable("Command", "Description")
	table.SetTitle("Available Commands")
	table.SetMinWidth(tableWidth)

	for _, c := range cmd.Commands() {
		if c.Hidden || c.Name() == "completion" || c.Name() == "help" {
			continue
		}
		table.AddRow(c.Name(), c.Short)
	}

	fmt.Println(table.Render())
	return nil
}
