// Package rooms provides commands for the room rectangles used to geo-tag
// detections.
package rooms

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JimmyVaras/ros-web-app/cmd/cli"
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
	"github.com/JimmyVaras/ros-web-app/internal/service"
)

// Command creates the rooms command group.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage rooms",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List rooms in lookup order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
					rooms, err := svc.Engine.ListRooms(ctx)
					if err != nil {
						return err
					}
					return cli.Print(cmd.OutOrStdout(), rooms)
				})
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Add rooms from a YAML or JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rooms, err := ReadRooms(args[0])
				if err != nil {
					return err
				}
				return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
					for i := range rooms {
						if err := svc.Engine.AddRoom(ctx, &rooms[i]); err != nil {
							return fmt.Errorf("room %q: %w", rooms[i].Name, err)
						}
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rooms\n", len(rooms))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "locate X Y",
			Short: "Print the room containing a point",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				x, err := cli.ParseFloat("x", args[0])
				if err != nil {
					return err
				}
				y, err := cli.ParseFloat("y", args[1])
				if err != nil {
					return err
				}
				return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
					roomID, err := svc.Engine.FindRoom(ctx, geometry.Point3{X: x, Y: y})
					if err != nil {
						return err
					}
					return cli.Print(cmd.OutOrStdout(), map[string]uint{"room_id": roomID})
				})
			},
		},
	)

	return cmd
}

// ReadRooms loads a list of rooms. YAML is a superset of JSON, so one
// decoder handles both.
func ReadRooms(path string) ([]detection.Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component("cli").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	var rooms []detection.Room
	if err := yaml.Unmarshal(data, &rooms); err != nil {
		return nil, errors.New(err).
			Component("cli").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}
	return rooms, nil
}
