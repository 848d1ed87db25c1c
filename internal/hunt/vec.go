package hunt

import "math"

// Vec3 is a point or direction in world space. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

// Dist is the full 3D distance between two points.
func (v Vec3) Dist(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// HorizontalDist ignores the vertical axis. Placement constraints (donut
// hole, inter-item spacing) are all defined on the ground plane.
func (v Vec3) HorizontalDist(o Vec3) float64 {
	dx, dz := v.X-o.X, v.Z-o.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Heading is the angle of the vector's horizontal component, in radians,
// measured counterclockwise from +X. Zero-length vectors report 0.
func (v Vec3) Heading() float64 {
	if v.X == 0 && v.Z == 0 {
		return 0
	}
	return math.Atan2(v.Z, v.X)
}

// headingVec returns the unit horizontal direction for an angle produced
// by Heading.
func headingVec(angle float64) Vec3 {
	return Vec3{X: math.Cos(angle), Z: math.Sin(angle)}
}

// angleDiff returns the absolute difference between two angles, wrapped
// into [0, pi].
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	return math.Abs(d)
}
