package hunt

import (
	"encoding/json"
	"fmt"
	"math"
)

// Schema defaults for fields added after the first config documents were
// written. Old documents simply lack them.
const (
	defaultMinSpawnRadius     = 1.5
	defaultDistanceMultiplier = 1.0
)

// RoomConfig is the immutable-after-load set of spawn and discovery
// parameters for one room. A fetched document is parsed, defaulted and
// clamped exactly once; after that the values are treated as read-only for
// the rest of the session.
type RoomConfig struct {
	// Play area extents in meters.
	Width float64 `json:"playAreaWidth"`
	Depth float64 `json:"playAreaDepth"`
	// SafeMargin keeps spawns away from the play area edge.
	SafeMargin float64 `json:"safeMargin"`

	ItemCount      int     `json:"itemCount"`
	MinItemSpacing float64 `json:"minItemSpacing"`
	// MinSpawnRadius is the inner exclusion radius: no item may spawn
	// closer than this to the anchor.
	MinSpawnRadius float64 `json:"minSpawnRadius"`
	// ForwardBias in [0,1] shifts angular coverage toward the player's
	// forward half-circle.
	ForwardBias        float64 `json:"forwardBias"`
	DistanceMultiplier float64 `json:"distanceMultiplier"`

	DiscoveryRadius   float64 `json:"discoveryRadius"`
	FadeSpeed         float64 `json:"fadeSpeed"`
	InteractionRadius float64 `json:"interactionRadius"`
}

// SafeDefaults is the fixed fallback configuration applied when the remote
// document cannot be fetched. The game must stay playable offline, so a
// fetch failure never blocks progression.
func SafeDefaults() RoomConfig {
	return RoomConfig{
		Width:              6,
		Depth:              6,
		SafeMargin:         0.5,
		ItemCount:          6,
		MinItemSpacing:     1.0,
		MinSpawnRadius:     1.5,
		ForwardBias:        0.5,
		DistanceMultiplier: 1.0,
		DiscoveryRadius:    1.2,
		FadeSpeed:          2,
		InteractionRadius:  0.8,
	}
}

// Validate clamps every field into its documented range. It never rejects:
// whatever garbage a document carries, the result is a usable
// configuration.
func (c *RoomConfig) Validate() {
	c.Width = math.Max(1, c.Width)
	c.Depth = math.Max(1, c.Depth)
	shorter := math.Min(c.Width, c.Depth)
	c.SafeMargin = clamp(c.SafeMargin, 0, shorter*0.4)

	c.ItemCount = max(1, c.ItemCount)
	c.MinItemSpacing = math.Max(0.2, c.MinItemSpacing)
	// The hole must never swallow the room.
	c.MinSpawnRadius = clamp(c.MinSpawnRadius, 0, shorter*0.45)
	c.ForwardBias = clamp(c.ForwardBias, 0, 1)
	c.DistanceMultiplier = clamp(c.DistanceMultiplier, 0.1, 10)

	// Interaction first: discovery must end up strictly wider than the
	// clamped interaction radius regardless of input ordering.
	c.InteractionRadius = math.Max(0.2, c.InteractionRadius)
	c.DiscoveryRadius = math.Max(c.InteractionRadius+0.1, c.DiscoveryRadius)

	if c.FadeSpeed <= 0 {
		c.FadeSpeed = SafeDefaults().FadeSpeed
	}
}

// ParseRoomConfig decodes a remote room document, fills in defaults for
// fields missing from older schema revisions, and validates the result.
func ParseRoomConfig(data []byte) (RoomConfig, error) {
	var doc struct {
		RoomConfig
		MinSpawnRadius     *float64 `json:"minSpawnRadius"`
		DistanceMultiplier *float64 `json:"distanceMultiplier"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return RoomConfig{}, fmt.Errorf("decoding room config: %w", err)
	}

	cfg := doc.RoomConfig
	cfg.MinSpawnRadius = defaultMinSpawnRadius
	if doc.MinSpawnRadius != nil {
		cfg.MinSpawnRadius = *doc.MinSpawnRadius
	}
	cfg.DistanceMultiplier = defaultDistanceMultiplier
	if doc.DistanceMultiplier != nil {
		cfg.DistanceMultiplier = *doc.DistanceMultiplier
	}

	cfg.Validate()
	return cfg, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
