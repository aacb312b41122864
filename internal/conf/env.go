// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "ROSWEB_DEBUG", validateEnvBool},

		// Deduplication
		{"dedup.threshold", "ROSWEB_DEDUP_THRESHOLD", validateEnvThreshold},
		{"dedup.mode", "ROSWEB_DEDUP_MODE", validateEnvDedupMode},
		{"dedup.roomcachettl", "ROSWEB_DEDUP_ROOMCACHETTL", validateEnvDuration},

		{"store.timeout", "ROSWEB_STORE_TIMEOUT", validateEnvDuration},

		// Storage backends
		{"output.sqlite.enabled", "ROSWEB_SQLITE_ENABLED", validateEnvBool},
		{"output.sqlite.path", "ROSWEB_SQLITE_PATH", nil},
		{"output.mysql.enabled", "ROSWEB_MYSQL_ENABLED", validateEnvBool},
		{"output.mysql.username", "ROSWEB_MYSQL_USERNAME", nil},
		{"output.mysql.password", "ROSWEB_MYSQL_PASSWORD", nil},
		{"output.mysql.database", "ROSWEB_MYSQL_DATABASE", nil},
		{"output.mysql.host", "ROSWEB_MYSQL_HOST", nil},
		{"output.mysql.port", "ROSWEB_MYSQL_PORT", validateEnvPort},

		// MQTT
		{"mqtt.enabled", "ROSWEB_MQTT_ENABLED", validateEnvBool},
		{"mqtt.broker", "ROSWEB_MQTT_BROKER", nil},
		{"mqtt.username", "ROSWEB_MQTT_USERNAME", nil},
		{"mqtt.password", "ROSWEB_MQTT_PASSWORD", nil},

		{"sentry.dsn", "ROSWEB_SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvThreshold(value string) error {
	threshold, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid threshold: %w", err)
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return fmt.Errorf("threshold must be a positive finite number, got %g", threshold)
	}
	return nil
}

func validateEnvDedupMode(value string) error {
	if value != DedupModePlanar && value != DedupModeSpatial {
		return fmt.Errorf("mode must be %q or %q", DedupModePlanar, DedupModeSpatial)
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("ROSWEB")
	viper.AutomaticEnv()

	return bindEnvVars()
}
