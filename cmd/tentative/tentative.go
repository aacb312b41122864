// Package tentative provides commands for tentative detections.
package tentative

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JimmyVaras/ros-web-app/cmd/cli"
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/service"
)

// Command creates the tentative command group.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tentative",
		Short: "List and remove tentative detections",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List tentative detections",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
					items, err := svc.Engine.ListTentative(ctx)
					if err != nil {
						return err
					}
					return cli.Print(cmd.OutOrStdout(), items)
				})
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete one tentative detection",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := cli.ParseID(args[0])
				if err != nil {
					return err
				}
				return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
					if err := svc.Engine.DeleteTentative(ctx, id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted tentative detection %d\n", id)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all tentative detections",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
					removed, err := svc.Engine.DeleteAllTentative(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d tentative detections\n", removed)
					return nil
				})
			},
		},
	)

	return cmd
}
