// Package geometry holds the spatial helpers used for deduplication, room
// assignment and goal orientation. Everything here is pure.
package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

// Point3 is a position in the shared map frame.
type Point3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Quaternion is an orientation. Only rotations about the z axis are produced.
type Quaternion struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
	W float64 `json:"w" yaml:"w"`
}

// Validate rejects NaN and infinite coordinates.
func (p Point3) Validate() error {
	for _, c := range [...]struct {
		axis string
		v    float64
	}{{"x", p.X}, {"y", p.Y}, {"z", p.Z}} {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return errors.Newf("invalid coordinate %s=%v: must be finite", c.axis, c.v).
				Component("geometry").
				Category(errors.CategoryValidation).
				Context("axis", c.axis).
				Build()
		}
	}
	return nil
}

// Planar returns p with z forced to 0.
func (p Point3) Planar() Point3 {
	return Point3{X: p.X, Y: p.Y}
}

func (p Point3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

func (p Point3) vec2() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func (p Point3) vec3() r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }
