// Package cli holds helpers shared by the subcommands: opening the service,
// parsing ids and rendering results.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/service"
)

// Output formats accepted by --format.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// defaultOpenTimeout bounds opening the store and connecting to the broker.
const defaultOpenTimeout = 30 * time.Second

// WithService opens a Service for the duration of fn.
func WithService(cmd *cobra.Command, settings *conf.Settings, fn func(ctx context.Context, svc *service.Service) error, opts ...service.Option) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	openCtx, cancel := context.WithTimeout(ctx, defaultOpenTimeout)
	svc, err := service.Open(openCtx, settings, opts...)
	cancel()
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(ctx, svc)
}

// ParseID parses a positive record id.
func ParseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.ValidationError(fmt.Sprintf("invalid id %q: must be a positive integer", arg))
	}
	return uint(id), nil
}

// ParseFloat parses a finite coordinate argument.
func ParseFloat(name, arg string) (float64, error) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, errors.ValidationError(fmt.Sprintf("invalid %s %q: %v", name, arg, err))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.ValidationError(fmt.Sprintf("invalid %s %q: must be finite", name, arg))
	}
	return v, nil
}

// Print renders v in the format selected by --format.
func Print(w io.Writer, v any) error {
	switch format := viper.GetString("format"); format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return errors.ValidationError(fmt.Sprintf("unknown output format %q", format))
	}
}
