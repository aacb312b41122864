// Package mqtttest provides the mqtt-test command, a staged check of the
// broker connection.
package mqtttest

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/mqtt"
	"github.com/JimmyVaras/ros-web-app/internal/observability"
)

// Command creates the mqtt-test command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "mqtt-test",
		Short: "Check DNS, TCP, MQTT connect and publish against the configured broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := observability.NewMetrics()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg := mqtt.ConfigFromSettings(settings)
			results := make(chan mqtt.TestResult)
			go mqtt.TestConnection(ctx, cfg, m.MQTT, cfg.ClientID+"/connection-test", results)

			failed := false
			for r := range results {
				status := "OK"
				if !r.Success {
					status = "FAIL"
					failed = true
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-20s %s", status, r.Stage, r.Message)
				if r.Error != "" {
					fmt.Fprintf(cmd.OutOrStdout(), ": %s", r.Error)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}

			if failed {
				return errors.Newf("mqtt connection test failed").
					Component("cli").
					Category(errors.CategoryMQTTConnection).
					Build()
			}
			return nil
		},
	}
}
