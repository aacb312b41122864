// conf/validate.go
package conf

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateDedupSettings(&settings.Dedup); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateStoreSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateMQTTSettings(&settings.MQTT); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateIngestSettings(&settings.Ingest); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLogConfig(&settings.Main.Log); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Telemetry.Enabled && settings.Telemetry.Listen == "" {
		ve.Errors = append(ve.Errors, "telemetry listen address is required when telemetry is enabled")
	}

	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		ve.Errors = append(ve.Errors, "sentry DSN is required when sentry is enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}

	return nil
}

func validateDedupSettings(settings *DedupSettings) error {
	if math.IsNaN(settings.Threshold) || math.IsInf(settings.Threshold, 0) || settings.Threshold <= 0 {
		return fmt.Errorf("dedup threshold must be a positive finite number, got %v", settings.Threshold)
	}

	switch settings.Mode {
	case DedupModePlanar, DedupModeSpatial:
	case "":
		settings.Mode = DedupModePlanar
	default:
		return fmt.Errorf("dedup mode must be %q or %q, got %q", DedupModePlanar, DedupModeSpatial, settings.Mode)
	}

	if settings.RoomCacheTTL < 0 {
		return fmt.Errorf("room cache TTL must not be negative")
	}

	return nil
}

func validateStoreSettings(settings *Settings) error {
	if settings.Store.Timeout < 0 {
		return fmt.Errorf("store timeout must not be negative")
	}

	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return fmt.Errorf("either sqlite or mysql output must be enabled")
	}

	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return fmt.Errorf("sqlite path is required when sqlite output is enabled")
	}

	if settings.Output.MySQL.Enabled {
		var missing []string
		if settings.Output.MySQL.Host == "" {
			missing = append(missing, "host")
		}
		if settings.Output.MySQL.Database == "" {
			missing = append(missing, "database")
		}
		if settings.Output.MySQL.Username == "" {
			missing = append(missing, "username")
		}
		if len(missing) > 0 {
			return fmt.Errorf("mysql output is missing: %s", strings.Join(missing, ", "))
		}
		if p := ParsePort(settings.Output.MySQL.Port); p < 1 || p > 65535 {
			return fmt.Errorf("mysql port must be between 1 and 65535, got %q", settings.Output.MySQL.Port)
		}
	}

	return nil
}

func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}

	if settings.Broker == "" {
		return fmt.Errorf("MQTT is enabled but broker URL is not set")
	}

	u, err := url.Parse(settings.Broker)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid MQTT broker URL: %s", settings.Broker)
	}

	switch u.Scheme {
	case "tcp", "ssl", "tls", "ws", "wss", "mqtt", "mqtts":
	default:
		return fmt.Errorf("unsupported MQTT broker scheme %q", u.Scheme)
	}

	if settings.GoalTopic == "" {
		return fmt.Errorf("MQTT goal topic is required")
	}

	if settings.QoS < 0 || settings.QoS > 2 {
		return fmt.Errorf("MQTT QoS must be 0, 1 or 2, got %d", settings.QoS)
	}

	return nil
}

func validateIngestSettings(settings *IngestSettings) error {
	if settings.RateLimit < 0 {
		return fmt.Errorf("ingest rate limit must not be negative")
	}
	if settings.RateLimit > 0 && settings.Burst < 1 {
		return fmt.Errorf("ingest burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	if !cfg.Enabled {
		return nil
	}
	switch cfg.Rotation {
	case RotationDaily, RotationWeekly:
	case RotationSize:
		if cfg.MaxSize <= 0 {
			return fmt.Errorf("log max size must be positive for size rotation")
		}
	default:
		return fmt.Errorf("unknown log rotation %q", cfg.Rotation)
	}
	return nil
}
