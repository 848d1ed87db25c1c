package store

import (
	"context"

	"github.com/orevan/arhunt/internal/hunt"
)

// DemoRoomID is the room seeded by SeedDemo.
const DemoRoomID = "demo-room"

// SeedDemo populates an empty store with a demo room configuration and a
// six-item catalog. Idempotent: does nothing once any room exists.
func (s *Store) SeedDemo(ctx context.Context) error {
	exists, err := s.RoomExists(ctx, DemoRoomID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	cfg := hunt.RoomConfig{
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
	if err := s.PutRoomConfig(ctx, DemoRoomID, cfg); err != nil {
		return err
	}

	items := []hunt.ItemDef{
		{
			ID: "compass", Name: "Brass Compass", PrefabID: "prefab-compass",
			Questions: []hunt.Question{
				{Text: "A compass needle points to the geographic north pole.", CorrectAnswer: false},
				{Text: "A compass works because Earth has a magnetic field.", CorrectAnswer: true},
				{Text: "Compasses stop working south of the equator.", CorrectAnswer: false},
			},
		},
		{
			ID: "lantern", Name: "Storm Lantern", PrefabID: "prefab-lantern",
			Questions: []hunt.Question{
				{Text: "Storm lanterns were designed to stay lit in strong wind.", CorrectAnswer: true},
				{Text: "A storm lantern burns brighter the colder it gets.", CorrectAnswer: false},
				{Text: "Kerosene is a common storm lantern fuel.", CorrectAnswer: true},
			},
		},
		{
			ID: "map", Name: "Torn Map", PrefabID: "prefab-map",
			Questions: []hunt.Question{
				{Text: "Contour lines on a map connect points of equal elevation.", CorrectAnswer: true},
				{Text: "On most maps, north is at the bottom.", CorrectAnswer: false},
				{Text: "A map legend explains the symbols used on the map.", CorrectAnswer: true},
			},
		},
		{
			ID: "spyglass", Name: "Spyglass", PrefabID: "prefab-spyglass",
			Questions: []hunt.Question{
				{Text: "A spyglass uses lenses to magnify distant objects.", CorrectAnswer: true},
				{Text: "Spyglasses were first built in the 20th century.", CorrectAnswer: false},
				{Text: "Looking through a spyglass makes objects appear closer.", CorrectAnswer: true},
			},
		},
		{
			ID: "hourglass", Name: "Hourglass", PrefabID: "prefab-hourglass",
			Questions: []hunt.Question{
				{Text: "An hourglass measures time with flowing sand.", CorrectAnswer: true},
				{Text: "Turning an hourglass upside down breaks it.", CorrectAnswer: false},
				{Text: "Hourglasses were used on ships to time watches.", CorrectAnswer: true},
			},
		},
		{
			ID: "key", Name: "Iron Key", PrefabID: "prefab-key",
			Questions: []hunt.Question{
				{Text: "Iron rusts when exposed to water and air.", CorrectAnswer: true},
				{Text: "Iron is lighter than aluminium.", CorrectAnswer: false},
				{Text: "Skeleton keys were made to open many different locks.", CorrectAnswer: true},
			},
		},
	}
	for i, def := range items {
		if err := s.PutItem(ctx, def, i); err != nil {
			return err
		}
	}

	s.log.Info("demo room seeded", "room", DemoRoomID, "items", len(items))
	return nil
}
