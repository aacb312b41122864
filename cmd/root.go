package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JimmyVaras/ros-web-app/cmd/cli"
	"github.com/JimmyVaras/ros-web-app/cmd/detections"
	"github.com/JimmyVaras/ros-web-app/cmd/goal"
	"github.com/JimmyVaras/ros-web-app/cmd/ingest"
	"github.com/JimmyVaras/ros-web-app/cmd/listen"
	"github.com/JimmyVaras/ros-web-app/cmd/mqtttest"
	"github.com/JimmyVaras/ros-web-app/cmd/promote"
	"github.com/JimmyVaras/ros-web-app/cmd/rooms"
	"github.com/JimmyVaras/ros-web-app/cmd/tentative"
	"github.com/JimmyVaras/ros-web-app/cmd/version"
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/logging"
)

// RootCommand creates and returns the root command. settings is filled from
// the configuration file, environment and flags before any subcommand runs.
func RootCommand(settings *conf.Settings) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "rosweb",
		Short:         "Object detection store and navigation goal service for ROS robots",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config.yaml (default: search standard locations)")
	if err := setupFlags(rootCmd); err != nil {
		panic(err)
	}

	subcommands := []*cobra.Command{
		ingest.Command(settings),
		promote.Command(settings),
		tentative.Command(settings),
		detections.Command(settings),
		goal.Command(settings),
		goal.NavigateCommand(settings),
		rooms.Command(settings),
		listen.Command(settings),
		mqtttest.Command(settings),
		version.Command(),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := conf.Load(configFile)
		if err != nil {
			return err
		}
		*settings = *loaded

		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command) error {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().String("format", cli.FormatJSON, "Output format (json|yaml)")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	if err := viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
