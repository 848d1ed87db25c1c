// Command simulate drives one full hunt session headlessly: scan, config
// fetch, team creation, item spawn, quiz answers, win. It wires the engine
// to a seeded in-memory store and prints the session transcript.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orevan/arhunt/internal/database"
	"github.com/orevan/arhunt/internal/hunt"
	"github.com/orevan/arhunt/internal/migrations"
	"github.com/orevan/arhunt/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	logger := slog.New(slog.NewTextHandler(stdout, nil))

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	st := store.New(logger, db, 0)
	if err := st.SeedDemo(ctx); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}

	loop := hunt.NewLoop()
	script := &script{log: logger, loop: loop, done: make(chan struct{})}

	sess := hunt.NewSession(hunt.Deps{
		Log:     logger,
		Loop:    loop,
		Config:  st,
		Items:   st,
		Ledger:  st,
		Tracker: fixedTracker{target: store.DemoRoomID},
		Locator: fixedLocator{lat: 52.5200, lng: 13.4050},
		Events:  script,
		Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	})
	script.sess = sess
	loop.Register(sess)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sess.Start(runCtx); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer sess.Shutdown()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		err := loop.Run(gctx, 16*time.Millisecond)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// Kick off the session: the player looks at the marker.
	loop.Post(func() {
		sess.UpdatePose(hunt.Vec3{X: 0, Y: 1.6, Z: 0}, hunt.Vec3{Z: 1})
		sess.HandleTrackingFound(store.DemoRoomID, hunt.Vec3{Y: 0.05})
		sess.RequestPlay()
	})

	select {
	case <-script.done:
		logger.Info("simulation finished")
	case <-gctx.Done():
	}
	cancel()
	return g.Wait()
}

// script reacts to session events and feeds the next scripted input back
// through the loop, the way a player and their device would.
type script struct {
	log  *slog.Logger
	loop *hunt.Loop
	sess *hunt.Session
	done chan struct{}

	answeredWrong map[string]bool
}

func (s *script) StateChanged(from, to hunt.State) {
	s.log.Info("state", "from", from.String(), "to", to.String())

	switch to {
	case hunt.StateReadyToPlay:
		s.loop.Post(func() { s.sess.SubmitTeamName("Simulated Crew") })
	case hunt.StatePlaying:
		s.answeredWrong = make(map[string]bool)
		s.loop.Post(s.clickNext)
	}
}

// clickNext taps the first placed item that is still collectible. Items
// spawn only after the catalog finishes loading, so retry until one shows.
func (s *script) clickNext() {
	if s.sess.State() != hunt.StatePlaying {
		return
	}
	for _, p := range s.sess.Spawner().PlacedItems() {
		if !p.Item.Collected {
			s.log.Info("clicking item", "item", p.Item.ID, "x", p.Position.X, "z", p.Position.Z)
			s.sess.HandleItemClicked(p.Item.ID)
			return
		}
	}
	s.loop.After(50*time.Millisecond, s.clickNext)
}

func (s *script) QuestionPresented(item *hunt.Item, q hunt.Question) {
	s.log.Info("question", "item", item.ID, "text", q.Text)

	// Answer wrong once per item to exercise the cycle, then correctly.
	answer := q.CorrectAnswer
	if !s.answeredWrong[item.ID] {
		s.answeredWrong[item.ID] = true
		answer = !q.CorrectAnswer
	}
	s.loop.Post(func() { s.sess.SubmitAnswer(answer) })
}

func (s *script) ItemCollected(collected, total int) {
	s.log.Info("collected", "count", collected, "total", total)
	s.loop.Post(s.clickNext)
}

func (s *script) AllItemsCollected() {
	s.log.Info("all items collected, waiting for the ledger verdict")
}

func (s *script) TeamCreateFailed(reason string) {
	s.log.Error("team creation failed", "reason", reason)
	close(s.done)
}

func (s *script) CatalogLoadFailed(reason string) {
	s.log.Error("catalog load failed", "reason", reason)
	close(s.done)
}

func (s *script) GameEnded(winnerTeamID string, won bool) {
	s.log.Info("game ended", "winner", winnerTeamID, "won", won)
	close(s.done)
}

type fixedTracker struct {
	target string
}

func (t fixedTracker) CurrentlyTracked() (string, hunt.Vec3, bool) {
	return t.target, hunt.Vec3{Y: 0.05}, true
}

type fixedLocator struct {
	lat, lng float64
}

func (l fixedLocator) Location() (float64, float64, bool) {
	return l.lat, l.lng, true
}
