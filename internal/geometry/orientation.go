package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var zAxis = r3.Vec{Z: 1}

// YawFromPoints returns the heading in radians of the vector from -> to.
func YawFromPoints(from, to Point3) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// YawToQuaternion converts a yaw angle into a rotation about the z axis,
// i.e. {0, 0, sin(yaw/2), cos(yaw/2)}.
func YawToQuaternion(yaw float64) Quaternion {
	q := r3.NewRotation(yaw, zAxis)
	return Quaternion{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real}
}

// QuaternionYaw recovers the yaw of a rotation about the z axis.
func QuaternionYaw(q Quaternion) float64 {
	return 2 * math.Atan2(q.Z, q.W)
}
