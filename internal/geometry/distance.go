package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultThreshold is the duplicate distance used when none is configured.
const DefaultThreshold = 1.0

// DistanceMode selects which axes take part in proximity checks.
type DistanceMode int

const (
	// DistancePlanar compares x and y only.
	DistancePlanar DistanceMode = iota
	// DistanceSpatial compares x, y and z.
	DistanceSpatial
)

func (m DistanceMode) String() string {
	switch m {
	case DistancePlanar:
		return "planar"
	case DistanceSpatial:
		return "spatial"
	default:
		return fmt.Sprintf("DistanceMode(%d)", int(m))
	}
}

// ParseDistanceMode maps a configuration value to a DistanceMode.
// The empty string yields DistancePlanar.
func ParseDistanceMode(s string) (DistanceMode, error) {
	switch s {
	case "", "planar":
		return DistancePlanar, nil
	case "spatial":
		return DistanceSpatial, nil
	default:
		return DistancePlanar, fmt.Errorf("unknown distance mode %q", s)
	}
}

// Distance returns the Euclidean distance between p1 and p2 in the given mode.
func Distance(p1, p2 Point3, mode DistanceMode) float64 {
	if mode == DistanceSpatial {
		return r3.Norm(r3.Sub(p1.vec3(), p2.vec3()))
	}
	return r2.Norm(r2.Sub(p1.vec2(), p2.vec2()))
}

// IsClose reports whether p1 and p2 are strictly closer than threshold in
// the x/y plane. The z coordinate is ignored.
func IsClose(p1, p2 Point3, threshold float64) bool {
	return IsCloseIn(DistancePlanar, p1, p2, threshold)
}

// IsCloseIn is IsClose with an explicit distance mode.
func IsCloseIn(mode DistanceMode, p1, p2 Point3, threshold float64) bool {
	return Distance(p1, p2, mode) < threshold
}
