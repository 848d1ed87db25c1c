package hunt

// metersPerDegree is the flat local projection scale. Good enough for a
// play area a few tens of meters across; accuracy beyond that is a
// non-goal.
const metersPerDegree = 111320.0

// GeoOrigin anchors a flat local coordinate system at a geographic point.
// It is established once at game start from the device location.
type GeoOrigin struct {
	lat, lng float64
	set      bool
}

// SetOrigin fixes the origin at the given coordinates.
func (g *GeoOrigin) SetOrigin(lat, lng float64) {
	g.lat = lat
	g.lng = lng
	g.set = true
}

// Set reports whether an origin has been established.
func (g *GeoOrigin) Set() bool {
	return g.set
}

// ToLocal projects a lat/lng pair into local meters relative to the
// origin: +X east, +Z north. Returns the zero point until an origin is
// set.
func (g *GeoOrigin) ToLocal(lat, lng float64) Vec3 {
	if !g.set {
		return Vec3{}
	}
	return Vec3{
		X: (lng - g.lng) * metersPerDegree,
		Z: (lat - g.lat) * metersPerDegree,
	}
}

// Reset clears the origin so the next game start re-establishes it.
func (g *GeoOrigin) Reset() {
	*g = GeoOrigin{}
}
