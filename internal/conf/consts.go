// conf/consts.go hard coded constants
package conf

const (
	DefaultNodeName           = "ros-web-app"
	DefaultDuplicateThreshold = 1.0

	DedupModePlanar  = "planar"
	DedupModeSpatial = "spatial"

	appConfigDir = "ros-web-app"
)
