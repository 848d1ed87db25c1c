package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/orevan/arhunt/internal/database"
	"github.com/orevan/arhunt/internal/hunt"
	"github.com/orevan/arhunt/internal/migrations"
)

func setupStore(t *testing.T, winTarget int) *Store {
	t.Helper()

	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	s := New(slog.New(slog.DiscardHandler), db, winTarget)
	if err := s.SeedDemo(context.Background()); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never reached")
}

func TestRoomConfig(t *testing.T) {
	s := setupStore(t, 0)
	ctx := context.Background()

	cfg, err := s.RoomConfig(ctx, DemoRoomID)
	if err != nil {
		t.Fatalf("room config: %v", err)
	}
	if cfg.Width != 6 || cfg.Depth != 6 || cfg.ItemCount != 6 {
		t.Errorf("unexpected seeded config: %+v", cfg)
	}
	if cfg.MinSpawnRadius != 1.5 {
		t.Errorf("minSpawnRadius = %v, want 1.5", cfg.MinSpawnRadius)
	}

	if _, err := s.RoomConfig(ctx, "no-such-room"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown room err = %v, want ErrNotFound", err)
	}
}

func TestItemsSeedShape(t *testing.T) {
	s := setupStore(t, 0)

	defs, err := s.Items(context.Background())
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(defs) != 6 {
		t.Fatalf("got %d items, want 6", len(defs))
	}
	for _, def := range defs {
		if len(def.Questions) != 3 {
			t.Errorf("item %s has %d questions, want 3", def.ID, len(def.Questions))
		}
	}
}

func TestIncrementSetsWinnerAtTarget(t *testing.T) {
	s := setupStore(t, 3)
	ctx := context.Background()

	team, err := s.CreateTeam(ctx, "Rocket")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	for i := 1; i <= 2; i++ {
		rec, err := s.IncrementCollected(ctx, team.ID)
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		if rec.Collected != i || rec.IsWinner {
			t.Fatalf("after increment %d: collected=%d winner=%v", i, rec.Collected, rec.IsWinner)
		}
	}

	rec, err := s.IncrementCollected(ctx, team.ID)
	if err != nil {
		t.Fatalf("final increment: %v", err)
	}
	if rec.Collected != 3 || !rec.IsWinner {
		t.Fatalf("at target: collected=%d winner=%v, want 3/true", rec.Collected, rec.IsWinner)
	}

	// The flag is persisted, and there is exactly one winner.
	winner, ok, err := s.Winner(ctx)
	if err != nil || !ok {
		t.Fatalf("winner: ok=%v err=%v", ok, err)
	}
	if winner.ID != team.ID {
		t.Errorf("winner = %s, want %s", winner.ID, team.ID)
	}
}

func TestSecondTeamCannotAlsoWin(t *testing.T) {
	s := setupStore(t, 2)
	ctx := context.Background()

	first, _ := s.CreateTeam(ctx, "First")
	second, _ := s.CreateTeam(ctx, "Second")

	s.IncrementCollected(ctx, first.ID)
	s.IncrementCollected(ctx, second.ID)
	rec, err := s.IncrementCollected(ctx, first.ID)
	if err != nil || !rec.IsWinner {
		t.Fatalf("first team should win: winner=%v err=%v", rec.IsWinner, err)
	}

	// Second team reaching the target still counts but gets no flag.
	rec, err = s.IncrementCollected(ctx, second.ID)
	if err != nil {
		t.Fatalf("second team increment: %v", err)
	}
	if rec.Collected != 2 || rec.IsWinner {
		t.Fatalf("second team: collected=%d winner=%v, want 2/false", rec.Collected, rec.IsWinner)
	}
}

func TestWinTargetDefaultsToCatalogSize(t *testing.T) {
	s := setupStore(t, 0)
	ctx := context.Background()

	team, _ := s.CreateTeam(ctx, "Rocket")
	var rec hunt.TeamRecord
	var err error
	for i := 0; i < 6; i++ {
		rec, err = s.IncrementCollected(ctx, team.ID)
		if err != nil {
			t.Fatalf("increment %d: %v", i+1, err)
		}
	}
	if !rec.IsWinner {
		t.Fatal("collecting all seeded items should win")
	}
}

func TestCreateTeamAfterWinnerRefused(t *testing.T) {
	s := setupStore(t, 1)
	ctx := context.Background()

	team, _ := s.CreateTeam(ctx, "Rocket")
	if _, err := s.IncrementCollected(ctx, team.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}

	if _, err := s.CreateTeam(ctx, "Latecomer"); !errors.Is(err, hunt.ErrGameOver) {
		t.Fatalf("err = %v, want ErrGameOver", err)
	}

	// ResetTeams clears the winner and re-opens creation.
	if err := s.ResetTeams(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := s.CreateTeam(ctx, "Latecomer"); err != nil {
		t.Fatalf("create after reset: %v", err)
	}
}

func TestWatchWinnerFiresOncePerTransition(t *testing.T) {
	s := setupStore(t, 1)
	ctx := context.Background()

	var mu sync.Mutex
	var events []hunt.WinnerEvent
	stop, err := s.WatchWinner(ctx, func(ev hunt.WinnerEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(events)
	}

	team, _ := s.CreateTeam(ctx, "Rocket")
	s.IncrementCollected(ctx, team.ID)

	waitFor(t, func() bool { return count() == 1 })
	mu.Lock()
	first := events[0]
	mu.Unlock()
	if !first.Found || first.TeamID != team.ID {
		t.Fatalf("winner event = %+v", first)
	}

	// Further increments do not re-fire the winner.
	s.IncrementCollected(ctx, team.ID)
	time.Sleep(20 * time.Millisecond)
	if count() != 1 {
		t.Fatalf("got %d events after extra increment, want 1", count())
	}

	// Clearing the ledger fires the not-found transition.
	if err := s.ResetTeams(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	waitFor(t, func() bool { return count() == 2 })
	mu.Lock()
	second := events[1]
	mu.Unlock()
	if second.Found {
		t.Fatalf("cleared event = %+v, want Found=false", second)
	}
}

func TestWatchWinnerReportsExistingWinner(t *testing.T) {
	s := setupStore(t, 1)
	ctx := context.Background()

	team, _ := s.CreateTeam(ctx, "Rocket")
	s.IncrementCollected(ctx, team.ID)

	var got hunt.WinnerEvent
	fired := 0
	stop, err := s.WatchWinner(ctx, func(ev hunt.WinnerEvent) {
		got = ev
		fired++
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	// The snapshot is delivered synchronously before WatchWinner returns.
	if fired != 1 || !got.Found || got.TeamID != team.ID {
		t.Fatalf("snapshot: fired=%d event=%+v", fired, got)
	}
}

func TestRankedTeamsOrder(t *testing.T) {
	s := setupStore(t, 0)
	ctx := context.Background()

	a, _ := s.CreateTeam(ctx, "Alpha")
	b, _ := s.CreateTeam(ctx, "Beta")
	c, _ := s.CreateTeam(ctx, "Gamma")

	s.IncrementCollected(ctx, b.ID)
	s.IncrementCollected(ctx, b.ID)
	s.IncrementCollected(ctx, c.ID)

	ranked, err := s.RankedTeams(ctx)
	if err != nil {
		t.Fatalf("ranked: %v", err)
	}
	wantOrder := []string{b.ID, c.ID, a.ID}
	if len(ranked) != 3 {
		t.Fatalf("got %d teams, want 3", len(ranked))
	}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Errorf("rank %d = %s, want %s", i+1, ranked[i].ID, id)
		}
	}
}

func TestIncrementUnknownTeam(t *testing.T) {
	s := setupStore(t, 0)

	if _, err := s.IncrementCollected(context.Background(), "no-such-team"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
