// config.go: configuration for the detection service. It defines the settings struct and functions to load them.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// DedupSettings controls how incoming detections are compared with stored ones.
type DedupSettings struct {
	Threshold    float64       // distance below which two same-label detections are duplicates
	Mode         string        // "planar" compares x/y only, "spatial" compares x/y/z
	RoomCacheTTL time.Duration // how long room reference data is cached, 0 disables caching
}

// StoreSettings holds limits applied to every store call.
type StoreSettings struct {
	Timeout time.Duration // per-operation timeout for store calls
}

// MQTTSettings configures the broker connection used for navigation goals and marker intake.
type MQTTSettings struct {
	Enabled     bool   // true to enable MQTT
	Broker      string // MQTT broker URL, e.g. tcp://localhost:1883
	ClientID    string // client id, the node name is used when empty
	Username    string
	Password    string
	GoalTopic   string // topic navigation goals are published to
	MarkerTopic string // topic marker batches are received from
	FrameID     string // frame id stamped on goal messages
	QoS         int    // quality of service, 0-2
	Retain      bool   // true to retain goal messages at the broker
}

// IngestSettings limits the rate of marker batches accepted by the listener.
type IngestSettings struct {
	RateLimit float64 // batches per second, 0 disables limiting
	Burst     int     // maximum burst of batches
}

// TelemetrySettings controls the Prometheus endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to enable the metrics endpoint
	Listen  string // listen address, e.g. 0.0.0.0:8090
}

// SentrySettings controls error reporting.
type SentrySettings struct {
	Enabled bool
	DSN     string
}

// Settings contains all configuration options for the service.
type Settings struct {
	Debug bool // true to enable debug mode

	Main struct {
		Name string    // node name, used as MQTT client id and log attribute
		Log  LogConfig // logging configuration
	}

	Dedup DedupSettings

	Store StoreSettings

	Output struct {
		SQLite struct {
			Enabled bool   // true to enable sqlite output
			Path    string // path to sqlite database
		}

		MySQL struct {
			Enabled  bool   // true to enable mysql output
			Username string // username for mysql database
			Password string // password for mysql database
			Database string // database name for mysql database
			Host     string // host for mysql database
			Port     string // port for mysql database
		}
	}

	MQTT MQTTSettings

	Ingest IngestSettings

	Telemetry TelemetrySettings

	Sentry SentrySettings
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool         // true to enable this log
	Path     string       // Path to the log file
	Rotation RotationType // Type of log rotation
	MaxSize  int64        // Max size in bytes for RotationSize
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a Settings
// instance. When configFile is empty the default locations are searched and a
// default config file is created if none exists.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper(configFile string) error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		log.Printf("Warning: %v", err)
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("fatal error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to dir and reads it back
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	defaultConfig, err := getDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() (string, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return "", fmt.Errorf("error reading embedded config file: %w", err)
	}
	return string(data), nil
}

// GetSettings returns the current settings instance, nil before Load
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// NodeName returns the configured node name, falling back to the hostname.
func (s *Settings) NodeName() string {
	if s.Main.Name != "" {
		return s.Main.Name
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return DefaultNodeName
}
