// Package hunt implements the core of the AR scavenger hunt: the session
// state machine, the spatial item placement engine, the item catalog, and
// the per-item quiz interaction cycle. Everything here is pure Go; remote
// collaborators (config documents, item documents, the team ledger) and
// platform collaborators (marker tracking, geolocation) are reached only
// through the interfaces declared in this file.
package hunt

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInteractionActive is returned when a quiz session is started while
	// another one is still running.
	ErrInteractionActive = errors.New("interaction already active")
	// ErrAlreadyCollected is returned when a quiz session is started for an
	// item that has already been collected.
	ErrAlreadyCollected = errors.New("item already collected")
	// ErrGameOver is returned by ledger implementations when a team is
	// created after a global winner has been declared.
	ErrGameOver = errors.New("game is already over")
)

// Question is a yes/no quiz question attached to a collectible item.
type Question struct {
	Text          string `json:"text"`
	CorrectAnswer bool   `json:"correctAnswer"`
}

// ItemDef is a raw item document as delivered by the item source, before
// catalog validation. Definitions with a question count other than three
// are rejected at load time.
type ItemDef struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	PrefabID  string     `json:"prefabId"`
	Questions []Question `json:"questions"`
}

// Item is a validated collectible item owned by the catalog. The collected
// flag is mutated only by the interaction cycle and reset on session reset;
// items are never removed from the catalog mid-session.
type Item struct {
	ID        string
	Name      string
	PrefabID  string
	Questions []Question
	Collected bool
}

// PlacedItem binds a catalog item to a world position chosen by the
// placement engine. Yaw orients the item back toward the spawn origin.
// Alpha is the discovery fade value maintained by the discovery tracker.
type PlacedItem struct {
	ID       string
	Item     *Item
	Position Vec3
	Yaw      float64

	// SpacingUsed is the inter-item spacing that was in force when this
	// item was accepted; relaxation may have reduced it below the
	// configured value.
	SpacingUsed float64

	Alpha float64
}

// TeamRecord mirrors the remote team ledger document.
type TeamRecord struct {
	ID        string
	Name      string
	Collected int
	IsWinner  bool
	CreatedAt time.Time
}

// WinnerEvent is delivered by the ledger's winner subscription. Found is
// true when any team has the win flag set, and false when the match set
// becomes empty again (a reset performed elsewhere).
type WinnerEvent struct {
	Found    bool
	TeamID   string
	TeamName string
}

// ConfigSource fetches the tunable room configuration document for a room.
type ConfigSource interface {
	RoomConfig(ctx context.Context, roomID string) (RoomConfig, error)
}

// ItemSource fetches the collectible item documents.
type ItemSource interface {
	Items(ctx context.Context) ([]ItemDef, error)
}

// TeamLedger is the remote-synced team record store. IncrementCollected is
// an atomic read-modify-write that sets the win flag once the collected
// count reaches the deployment's target. WatchWinner fires on the first
// team with the win flag set and again when the match set becomes empty.
type TeamLedger interface {
	CreateTeam(ctx context.Context, name string) (TeamRecord, error)
	IncrementCollected(ctx context.Context, teamID string) (TeamRecord, error)
	WatchWinner(ctx context.Context, fn func(WinnerEvent)) (stop func(), err error)
}

// Tracker exposes the marker tracking collaborator's queryable state. It
// is consulted after a session reset: edge-triggered trackers will not
// re-fire a found event when the marker never left view, so the session
// re-raises the signal itself.
type Tracker interface {
	CurrentlyTracked() (target string, pos Vec3, ok bool)
}

// Locator exposes the device's geolocation, consumed once at game start to
// establish the geographic origin.
type Locator interface {
	Location() (lat, lng float64, ok bool)
}
