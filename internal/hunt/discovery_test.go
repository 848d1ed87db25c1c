package hunt

import (
	"math"
	"testing"
)

func TestDiscoveryFadesTowardTarget(t *testing.T) {
	d := NewDiscovery()
	cfg := SafeDefaults() // discovery 1.2, fade 2
	d.ApplyConfig(cfg)

	near := &PlacedItem{Position: Vec3{X: 0.5}}
	far := &PlacedItem{Position: Vec3{X: 10}, Alpha: 1}
	placed := []*PlacedItem{near, far}
	player := Vec3{}

	d.Tick(0.25, player, placed) // 0.25s * fade 2 = 0.5 alpha step

	if math.Abs(near.Alpha-0.5) > 1e-9 {
		t.Errorf("near alpha = %v, want 0.5", near.Alpha)
	}
	if math.Abs(far.Alpha-0.5) > 1e-9 {
		t.Errorf("far alpha = %v, want 0.5", far.Alpha)
	}

	// A long tick clamps at the target instead of overshooting.
	d.Tick(10, player, placed)
	if near.Alpha != 1 {
		t.Errorf("near alpha = %v, want 1", near.Alpha)
	}
	if far.Alpha != 0 {
		t.Errorf("far alpha = %v, want 0", far.Alpha)
	}
}

func TestDiscoveryBoundaryUsesFullDistance(t *testing.T) {
	d := NewDiscovery()
	d.ApplyConfig(SafeDefaults())

	// Just inside the radius counts; just outside does not. The check is
	// 3D: standing under a high item does not discover it.
	inside := &PlacedItem{Position: Vec3{X: 1.19}}
	above := &PlacedItem{Position: Vec3{Y: 5}}
	d.Tick(10, Vec3{}, []*PlacedItem{inside, above})

	if inside.Alpha != 1 {
		t.Errorf("inside alpha = %v, want 1", inside.Alpha)
	}
	if above.Alpha != 0 {
		t.Errorf("above alpha = %v, want 0", above.Alpha)
	}
}
