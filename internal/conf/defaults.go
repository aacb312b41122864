// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", DefaultNodeName)
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/rosweb.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)

	viper.SetDefault("dedup.threshold", DefaultDuplicateThreshold)
	viper.SetDefault("dedup.mode", DedupModePlanar)
	viper.SetDefault("dedup.roomcachettl", 5*time.Minute)

	viper.SetDefault("store.timeout", 5*time.Second)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "rosweb.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "rosweb")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "rosweb")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", 3306)

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.goaltopic", "robots/move_base_simple/goal")
	viper.SetDefault("mqtt.markertopic", "robots/detected_objects_markers")
	viper.SetDefault("mqtt.frameid", "map")
	viper.SetDefault("mqtt.qos", 1)
	viper.SetDefault("mqtt.retain", false)

	viper.SetDefault("ingest.ratelimit", 5.0)
	viper.SetDefault("ingest.burst", 10)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
}
