// Package goal provides the goal and navigate commands.
package goal

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/JimmyVaras/ros-web-app/cmd/cli"
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/service"
)

// Command creates the goal command, which prints the navigation pose for a
// confirmed detection.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "goal ID",
		Short: "Print the navigation goal for a confirmed detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cli.ParseID(args[0])
			if err != nil {
				return err
			}
			return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
				pose, err := svc.Engine.BuildGoal(ctx, id)
				if err != nil {
					return err
				}
				return cli.Print(cmd.OutOrStdout(), pose)
			})
		},
	}
}

// NavigateCommand creates the navigate command, which publishes the goal
// for a confirmed detection over MQTT.
func NavigateCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "navigate ID",
		Short: "Send a robot to a confirmed detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cli.ParseID(args[0])
			if err != nil {
				return err
			}
			return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
				pose, err := svc.Engine.Navigate(ctx, id)
				if err != nil {
					return err
				}
				return cli.Print(cmd.OutOrStdout(), pose)
			}, service.WithMQTT())
		},
	}
}
