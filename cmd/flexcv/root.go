package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/flexcv/models"
)

// Set with -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func buildInfo() string {
	var info string
	info += fmt.Sprintln("Version:\t", Version)
	info += fmt.Sprintln("Go version:\t", runtime.Version())
	info += fmt.Sprintln("Git commit:\t", GitCommit)
	info += fmt.Sprintln("Built:\t\t", BuildTime)
	info += fmt.Sprintf("OS/Arch:\t %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return info
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "flexcv",
		Short:        "Compare regression model flexibility by cross-validated RMSE.",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newRunCommand(), newModelsCommand(), newVersionCommand())
	return root
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the built-in model kinds, least flexible first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Model", "Description")
			for _, e := range models.Catalogue() {
				if err := table.Append([]string{e.Name, e.Description}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), buildInfo())
		},
	}
}
