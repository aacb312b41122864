// Package version implements the version command.
package version

import (
	"github.com/spf13/cobra"

	"github.com/JimmyVaras/ros-web-app/cmd/cli"
	"github.com/JimmyVaras/ros-web-app/internal/buildinfo"
)

// Command prints build metadata.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Print(cmd.OutOrStdout(), buildinfo.Current())
		},
	}
}
