package geometry

// NoRoom is returned by FindRoom when no zone contains the point.
const NoRoom uint = 0

// Zone is an axis-aligned rectangle on the x/y plane with an identifier.
type Zone interface {
	ZoneID() uint
	Corners() (start, end Point3)
}

// Contains reports whether p lies inside the rectangle spanned by start and
// end. Corners may be given in any order on each axis; bounds are inclusive.
func Contains(p, start, end Point3) bool {
	return within(p.X, start.X, end.X) && within(p.Y, start.Y, end.Y)
}

func within(v, a, b float64) bool {
	return min(a, b) <= v && v <= max(a, b)
}

// FindRoom returns the id of the first zone containing p, or NoRoom.
func FindRoom[Z Zone](p Point3, zones []Z) uint {
	for _, z := range zones {
		start, end := z.Corners()
		if Contains(p, start, end) {
			return z.ZoneID()
		}
	}
	return NoRoom
}
