// Package ingest provides the ingest command, which feeds a marker batch
// file through the deduplication engine.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/JimmyVaras/ros-web-app/cmd/cli"
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/mqtt"
	"github.com/JimmyVaras/ros-web-app/internal/service"
)

// Command creates the ingest command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest FILE",
		Short: "Ingest a batch of detection markers from a JSON or YAML file",
		Long: `Ingest reads a list of markers and stores every marker that is not a
duplicate of an existing tentative or confirmed detection as a new tentative
detection. Use "-" to read JSON from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markers, err := ReadMarkers(args[0])
			if err != nil {
				return err
			}
			return cli.WithService(cmd, settings, func(ctx context.Context, svc *service.Service) error {
				report, ingestErr := svc.Engine.IngestBatch(ctx, markers)
				if err := cli.Print(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				return ingestErr
			})
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the ingest command.
func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().Float64("threshold", conf.DefaultDuplicateThreshold, "Duplicate distance threshold")
	cmd.Flags().String("mode", conf.DedupModePlanar, "Distance mode (planar|spatial)")

	if err := viper.BindPFlag("dedup.threshold", cmd.Flags().Lookup("threshold")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	if err := viper.BindPFlag("dedup.mode", cmd.Flags().Lookup("mode")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// ReadMarkers loads markers from path. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func ReadMarkers(path string) ([]detection.Marker, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.New(err).
			Component("cli").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var markers []detection.Marker
		if err := yaml.Unmarshal(data, &markers); err != nil {
			return nil, errors.New(err).
				Component("cli").
				Category(errors.CategoryFileParsing).
				Context("path", path).
				Build()
		}
		return markers, nil
	default:
		return mqtt.DecodeMarkerBatch(data)
	}
}
