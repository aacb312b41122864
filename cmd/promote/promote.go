// Package promote provides the promote command.
package promote

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/JimmyVaras/ros-web-app/cmd/cli"
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/service"
)

// Command creates the promote command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "promote ID",
		Short: "Promote a tentative detection to a confirmed detection",
		Long: `Promote re-checks the tentative detection against every confirmed detection
with the same label. It fails with a conflict when one is closer than the
duplicate threshold and leaves the tentative detection in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cli.ParseID(args[0])
			if err != nil {
				return err
			}
			return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
				confirmed, err := svc.Engine.Promote(ctx, id)
				if err != nil {
					return err
				}
				return cli.Print(cmd.OutOrStdout(), confirmed)
			})
		},
	}
}
