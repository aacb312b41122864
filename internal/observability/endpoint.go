package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/logging"
	metricspkg "github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Endpoint serves Prometheus metrics and a health check.
type Endpoint struct {
	echo          *echo.Echo
	listenAddress string
	metrics       *Metrics
	health        HealthCheck
	logger        *slog.Logger
}

// NewEndpoint creates the telemetry endpoint. It returns an error when
// telemetry is disabled in settings. health may be nil.
func NewEndpoint(settings *conf.Settings, metrics *Metrics, health HealthCheck) (*Endpoint, error) {
	if !settings.Telemetry.Enabled {
		return nil, fmt.Errorf("telemetry not enabled in settings")
	}

	e := &Endpoint{
		echo:          echo.New(),
		listenAddress: settings.Telemetry.Listen,
		metrics:       metrics,
		health:        health,
		logger:        logging.ForService("telemetry"),
	}
	e.echo.HideBanner = true
	e.echo.HidePort = true
	e.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.echo.GET("/healthz", e.healthz)
	return e, nil
}

// Handler exposes the router, mainly for tests.
func (e *Endpoint) Handler() http.Handler {
	return e.echo
}

// Run serves until ctx is cancelled, then shuts the server down.
func (e *Endpoint) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("telemetry endpoint starting", "address", e.listenAddress)
		if err := e.echo.Start(e.listenAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.logger.Info("stopping telemetry endpoint")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricspkg.ShutdownTimeout)
	defer cancel()
	if err := e.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("telemetry endpoint shutdown: %w", err)
	}
	<-errCh
	return nil
}

func (e *Endpoint) healthz(c echo.Context) error {
	if e.health != nil {
		if err := e.health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetMetrics returns the Metrics instance associated with this Endpoint.
func (e *Endpoint) GetMetrics() *Metrics {
	return e.metrics
}
