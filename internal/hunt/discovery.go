package hunt

import "math"

// Discovery maintains the per-item fade value: an item becomes visible as
// the player closes within the discovery radius and fades back out when
// they leave. The alpha lives on the PlacedItem; rendering it is someone
// else's problem.
type Discovery struct {
	radius    float64
	fadeSpeed float64
}

func NewDiscovery() *Discovery {
	cfg := SafeDefaults()
	return &Discovery{radius: cfg.DiscoveryRadius, fadeSpeed: cfg.FadeSpeed}
}

// ApplyConfig refreshes the fade parameters from a validated room config.
func (d *Discovery) ApplyConfig(cfg RoomConfig) {
	d.radius = cfg.DiscoveryRadius
	d.fadeSpeed = cfg.FadeSpeed
}

// Tick advances every placed item's alpha toward its target for the
// elapsed frame time.
func (d *Discovery) Tick(dt float64, playerPos Vec3, placed []*PlacedItem) {
	for _, p := range placed {
		target := 0.0
		if p.Position.Dist(playerPos) <= d.radius {
			target = 1.0
		}
		p.Alpha = moveToward(p.Alpha, target, dt*d.fadeSpeed)
	}
}

func moveToward(current, target, maxDelta float64) float64 {
	if math.Abs(target-current) <= maxDelta {
		return target
	}
	if target > current {
		return current + maxDelta
	}
	return current - maxDelta
}
