// Package detections provides commands for confirmed detections.
package detections

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JimmyVaras/ros-web-app/cmd/cli"
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/service"
)

// Command creates the detections command group.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "detections",
		Aliases: []string{"confirmed"},
		Short:   "List and remove confirmed detections",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List confirmed detections",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
					items, err := svc.Engine.ListConfirmed(ctx)
					if err != nil {
						return err
					}
					return cli.Print(cmd.OutOrStdout(), items)
				})
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete one confirmed detection",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := cli.ParseID(args[0])
				if err != nil {
					return err
				}
				return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
					if err := svc.Engine.DeleteConfirmed(ctx, id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted detection %d\n", id)
					return nil
				})
			},
		},
	)

	return cmd
}
