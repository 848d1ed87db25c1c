package hunt

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// Placement tuning. The attempt budget and relaxation threshold bound how
// long a single item may search for a valid spot; the safety floor keeps
// items out of arm's reach no matter what the room document says.
const (
	placeAttemptBudget = 200
	relaxAfterAttempts = 50
	spacingDecay       = 0.95
	radiusGrowth       = 1.05
	safetyFloor        = 1.5
	verticalJitter     = 0.3
)

// Envelope is the radial search space for one spawn batch.
type Envelope struct {
	HalfWidth float64
	HalfDepth float64
	MinRadius float64
	MaxRadius float64
}

// EnvelopeFor derives the search space from a validated room config. The
// outer radius is the largest circle that fits the play area minus the
// safe margin; the inner radius is the donut hole.
func EnvelopeFor(cfg RoomConfig) Envelope {
	halfW := cfg.Width / 2
	halfD := cfg.Depth / 2
	minR := math.Max(cfg.MinSpawnRadius, 1.0)
	maxR := math.Min(halfW, halfD) - cfg.SafeMargin
	if maxR < minR+0.5 {
		maxR = minR + 0.5
	}
	return Envelope{HalfWidth: halfW, HalfDepth: halfD, MinRadius: minR, MaxRadius: maxR}
}

// Spawner places catalog items around an anchor and owns the resulting
// placed-item records until they are collected or the spawner is reset.
// A spawn batch runs at most once per game start; Reset rearms it.
type Spawner struct {
	log *slog.Logger
	rng *rand.Rand

	cfg        RoomConfig
	configured bool

	placed     []*PlacedItem
	hasSpawned bool
}

func NewSpawner(log *slog.Logger, rng *rand.Rand) *Spawner {
	return &Spawner{log: log, rng: rng}
}

// ApplyConfig locks in the room parameters for subsequent spawn batches.
func (sp *Spawner) ApplyConfig(cfg RoomConfig) {
	sp.cfg = cfg
	sp.configured = true
}

func (sp *Spawner) random() float64 {
	if sp.rng != nil {
		return sp.rng.Float64()
	}
	return rand.Float64()
}

// Spawn places items around origin. The batch is latched: a second call
// before Reset is a no-op returning nil. Items that exhaust the attempt
// budget are skipped; the rest of the batch still spawns.
func (sp *Spawner) Spawn(items []*Item, origin, forward Vec3) []*PlacedItem {
	if sp.hasSpawned {
		return nil
	}
	sp.hasSpawned = true
	sp.placed = sp.placed[:0]

	cfg := sp.cfg
	if !sp.configured {
		cfg = SafeDefaults()
	}

	env := EnvelopeFor(cfg)
	slices := sp.assignSlices(len(items), forward.Heading(), cfg.ForwardBias)

	for i, item := range items {
		p, attempts, ok := sp.placeOne(item, origin, slices[i], 2*math.Pi/float64(len(items)), env, cfg)
		if !ok {
			sp.log.Error("item placement failed, skipping",
				"item", item.ID, "name", item.Name, "attempts", placeAttemptBudget)
			continue
		}
		sp.placed = append(sp.placed, p)
		sp.log.Debug("item placed",
			"item", item.ID, "attempts", attempts, "spacing", p.SpacingUsed,
			"x", p.Position.X, "z", p.Position.Z)
	}
	return sp.placed
}

// assignSlices divides the full circle into one equal angular slice per
// item and returns each item's slice start angle. Slice order is biased:
// with probability = forwardBias an item takes the unassigned slice
// closest to the forward heading, otherwise a uniformly random one. Even
// angular coverage is guaranteed either way because every slice is used
// exactly once.
func (sp *Spawner) assignSlices(n int, forward, forwardBias float64) []float64 {
	if n <= 0 {
		return nil
	}
	width := 2 * math.Pi / float64(n)

	// Slices ordered by angular distance of their center from forward.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	center := func(i int) float64 { return float64(i)*width + width/2 }
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if angleDiff(center(order[j]), forward) < angleDiff(center(order[i]), forward) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	starts := make([]float64, 0, n)
	for len(order) > 0 {
		idx := 0
		if sp.random() >= forwardBias {
			idx = int(sp.random() * float64(len(order)))
			if idx >= len(order) {
				idx = len(order) - 1
			}
		}
		starts = append(starts, float64(order[idx])*width)
		order = append(order[:idx], order[idx+1:]...)
	}
	return starts
}

// placeOne searches for a valid position inside the item's angular slice.
// After relaxAfterAttempts failures the spacing requirement decays and the
// outer radius expands each attempt; the search space only ever grows
// outward so candidates never converge on the origin, and the donut hole
// never shrinks.
func (sp *Spawner) placeOne(item *Item, origin Vec3, sliceStart, sliceWidth float64, env Envelope, cfg RoomConfig) (*PlacedItem, int, bool) {
	spacing := cfg.MinItemSpacing
	maxR := env.MaxRadius

	for attempt := 1; attempt <= placeAttemptBudget; attempt++ {
		if attempt > relaxAfterAttempts {
			spacing *= spacingDecay
			maxR *= radiusGrowth
		}

		angle := sliceStart + sp.random()*sliceWidth
		dist := env.MinRadius + sp.random()*(maxR-env.MinRadius)
		if dist < safetyFloor {
			dist = safetyFloor
		}
		dist *= cfg.DistanceMultiplier

		pos := origin.Add(headingVec(angle).Scale(dist))
		pos.Y = origin.Y + (sp.random()*2-1)*verticalJitter

		if pos.HorizontalDist(origin) < env.MinRadius {
			continue
		}

		tooClose := false
		for _, other := range sp.placed {
			if pos.HorizontalDist(other.Position) < spacing {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		yaw := origin.Sub(pos).Heading()
		return &PlacedItem{
			ID:          uuid.NewString(),
			Item:        item,
			Position:    pos,
			Yaw:         yaw,
			SpacingUsed: spacing,
		}, attempt, true
	}
	return nil, placeAttemptBudget, false
}

// Placed returns the live placement for a catalog item, if any.
func (sp *Spawner) Placed(itemID string) *PlacedItem {
	for _, p := range sp.placed {
		if p.Item.ID == itemID {
			return p
		}
	}
	return nil
}

// PlacedItems returns the current batch.
func (sp *Spawner) PlacedItems() []*PlacedItem {
	return sp.placed
}

// HasSpawned reports whether the current batch latch is set.
func (sp *Spawner) HasSpawned() bool {
	return sp.hasSpawned
}

// Remove destroys the placement for a collected item.
func (sp *Spawner) Remove(itemID string) {
	for i, p := range sp.placed {
		if p.Item.ID == itemID {
			sp.placed = append(sp.placed[:i], sp.placed[i+1:]...)
			return
		}
	}
}

// Reset destroys all placements and rearms the spawn latch.
func (sp *Spawner) Reset() {
	sp.placed = nil
	sp.hasSpawned = false
}
