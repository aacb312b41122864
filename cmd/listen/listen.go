// Package listen provides the long-running listen command.
package listen

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JimmyVaras/ros-web-app/cmd/cli"
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/service"
)

// Command creates the listen command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Ingest marker batches from MQTT until interrupted",
		Long: `Listen subscribes to the configured marker topic, ingests every batch through
the deduplication engine and serves navigation goals. The Prometheus
endpoint runs alongside when telemetry is enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
				return svc.Listen(ctx)
			}, service.WithMQTT())
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the listen command.
func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("broker", "", "MQTT broker URL")
	cmd.Flags().Bool("telemetry", false, "Enable Prometheus telemetry endpoint")
	cmd.Flags().String("listen", "", "Listen address and port of telemetry endpoint")
	cmd.Flags().Float64("ratelimit", 0, "Marker batches accepted per second, 0 disables limiting")

	for key, flag := range map[string]string{
		"mqtt.broker":       "broker",
		"telemetry.enabled": "telemetry",
		"telemetry.listen":  "listen",
		"ingest.ratelimit":  "ratelimit",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flags: %w", err)
		}
	}

	return nil
}
