// Package store backs the hunt engine's remote collaborators with a
// SQLite document store: room configuration documents, the item catalog,
// and the shared team ledger with its winner subscription. Live events go
// out through an in-process broker; an optional leaderboard mirror keeps
// ranked standings in Redis.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orevan/arhunt/internal/hunt"
)

var ErrNotFound = errors.New("not found")

// Store is the sqlite-backed document store. It implements the engine's
// ConfigSource, ItemSource and TeamLedger interfaces.
type Store struct {
	log    *slog.Logger
	db     *sql.DB
	broker *Broker

	// winTarget is the collected count that flips a team's win flag.
	// Zero means "every item in the catalog".
	winTarget int

	lb Leaderboard
}

func New(log *slog.Logger, db *sql.DB, winTarget int) *Store {
	return &Store{
		log:       log,
		db:        db,
		broker:    NewBroker(),
		winTarget: winTarget,
	}
}

// SetLeaderboard attaches a ranked-standings mirror. Mirror failures are
// logged and never fail the write; sqlite stays the source of truth.
func (s *Store) SetLeaderboard(lb Leaderboard) { s.lb = lb }

// Events exposes the live event broker for streaming handlers.
func (s *Store) Events() *Broker { return s.broker }

// Leaderboard returns the attached mirror, or nil.
func (s *Store) Leaderboard() Leaderboard { return s.lb }

// RoomConfig fetches and parses the configuration document for a room.
func (s *Store) RoomConfig(ctx context.Context, roomID string) (hunt.RoomConfig, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(config) FROM rooms WHERE id = ?`, roomID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.RoomConfig{}, ErrNotFound
	}
	if err != nil {
		return hunt.RoomConfig{}, err
	}
	return hunt.ParseRoomConfig([]byte(data))
}

// PutRoomConfig stores a room's configuration document.
func (s *Store) PutRoomConfig(ctx context.Context, roomID string, cfg hunt.RoomConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, config) VALUES (?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET config = excluded.config`,
		roomID, string(data),
	)
	return err
}

// RoomExists reports whether a configuration document exists for roomID.
func (s *Store) RoomExists(ctx context.Context, roomID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM rooms WHERE id = ?`, roomID,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Items returns the item catalog documents in display order.
func (s *Store) Items(ctx context.Context) ([]hunt.ItemDef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM items ORDER BY sort_order, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []hunt.ItemDef
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var def hunt.ItemDef
		if err := json.Unmarshal([]byte(data), &def); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// PutItem stores an item document.
func (s *Store) PutItem(ctx context.Context, def hunt.ItemDef, order int) error {
	data, err := json.Marshal(def)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO items (id, sort_order, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET sort_order = excluded.sort_order, data = excluded.data`,
		def.ID, order, string(data),
	)
	return err
}

// CreateTeam inserts a new team record. Refused once a winner stands: a
// finished deployment takes no new teams until the ledger is reset.
func (s *Store) CreateTeam(ctx context.Context, name string) (hunt.TeamRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hunt.TeamRecord{}, err
	}
	defer tx.Rollback()

	var winners int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM teams WHERE is_winner = 1`,
	).Scan(&winners); err != nil {
		return hunt.TeamRecord{}, err
	}
	if winners > 0 {
		return hunt.TeamRecord{}, hunt.ErrGameOver
	}

	rec := hunt.TeamRecord{ID: uuid.NewString(), Name: name}
	var createdAt string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO teams (id, name) VALUES (?, ?) RETURNING created_at`,
		rec.ID, rec.Name,
	).Scan(&createdAt)
	if err != nil {
		return hunt.TeamRecord{}, err
	}
	rec.CreatedAt = parseStoredTime(createdAt)

	if err := tx.Commit(); err != nil {
		return hunt.TeamRecord{}, err
	}

	s.broker.Publish(Event{Type: EventTeamCreated, TeamID: rec.ID, TeamName: rec.Name})
	return rec, nil
}

// IncrementCollected is the atomic read-modify-write on a team's collected
// count. The first team to reach the win target gets the win flag; a
// standing winner blocks further flags but not counting.
func (s *Store) IncrementCollected(ctx context.Context, teamID string) (hunt.TeamRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hunt.TeamRecord{}, err
	}
	defer tx.Rollback()

	var rec hunt.TeamRecord
	var createdAt string
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, collected_count, created_at FROM teams WHERE id = ?`, teamID,
	).Scan(&rec.ID, &rec.Name, &rec.Collected, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.TeamRecord{}, ErrNotFound
	}
	if err != nil {
		return hunt.TeamRecord{}, err
	}
	rec.CreatedAt = parseStoredTime(createdAt)
	rec.Collected++

	target := s.winTarget
	if target <= 0 {
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM items`,
		).Scan(&target); err != nil {
			return hunt.TeamRecord{}, err
		}
	}

	won := false
	if target > 0 && rec.Collected >= target {
		var winners int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM teams WHERE is_winner = 1 AND id != ?`, teamID,
		).Scan(&winners); err != nil {
			return hunt.TeamRecord{}, err
		}
		won = winners == 0
	}
	rec.IsWinner = won

	flag := 0
	if won {
		flag = 1
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE teams SET collected_count = ?, is_winner = ? WHERE id = ?`,
		rec.Collected, flag, teamID,
	); err != nil {
		return hunt.TeamRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return hunt.TeamRecord{}, err
	}

	s.broker.Publish(Event{
		Type:      EventCollected,
		TeamID:    rec.ID,
		TeamName:  rec.Name,
		Collected: rec.Collected,
	})
	if won {
		s.broker.Publish(Event{Type: EventWinner, TeamID: rec.ID, TeamName: rec.Name})
	}

	if s.lb != nil {
		if err := s.lb.Record(ctx, rec.ID, rec.Name, rec.Collected); err != nil {
			s.log.Error("leaderboard mirror update failed", "team", rec.ID, "error", err)
		}
	}
	return rec, nil
}

// Team returns a single team record.
func (s *Store) Team(ctx context.Context, teamID string) (hunt.TeamRecord, error) {
	rec, err := scanTeam(s.db.QueryRowContext(ctx,
		`SELECT id, name, collected_count, is_winner, created_at FROM teams WHERE id = ?`,
		teamID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.TeamRecord{}, ErrNotFound
	}
	return rec, err
}

// RankedTeams lists all teams, best first. Ties rank the older team higher.
func (s *Store) RankedTeams(ctx context.Context) ([]hunt.TeamRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, collected_count, is_winner, created_at
		 FROM teams
		 ORDER BY collected_count DESC, created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []hunt.TeamRecord
	for rows.Next() {
		rec, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, rec)
	}
	return teams, rows.Err()
}

// Winner returns the winning team, if one has been flagged.
func (s *Store) Winner(ctx context.Context) (hunt.TeamRecord, bool, error) {
	rec, err := scanTeam(s.db.QueryRowContext(ctx,
		`SELECT id, name, collected_count, is_winner, created_at
		 FROM teams WHERE is_winner = 1 LIMIT 1`,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.TeamRecord{}, false, nil
	}
	if err != nil {
		return hunt.TeamRecord{}, false, err
	}
	return rec, true, nil
}

// ResetTeams wipes the ledger for a fresh deployment run. Clearing a
// standing winner notifies watchers so sessions re-enable team creation.
func (s *Store) ResetTeams(ctx context.Context) error {
	_, hadWinner, err := s.Winner(ctx)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM teams`); err != nil {
		return err
	}
	if hadWinner {
		s.broker.Publish(Event{Type: EventWinnerCleared})
	}
	return nil
}

// WatchWinner implements the ledger subscription contract: the current
// winner (if any) is reported immediately, then every winner-found and
// winner-cleared transition until stop is called or ctx ends.
func (s *Store) WatchWinner(ctx context.Context, fn func(hunt.WinnerEvent)) (func(), error) {
	if rec, ok, err := s.Winner(ctx); err != nil {
		return nil, fmt.Errorf("reading winner snapshot: %w", err)
	} else if ok {
		fn(hunt.WinnerEvent{Found: true, TeamID: rec.ID, TeamName: rec.Name})
	}

	ch := s.broker.Subscribe()
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case ev := <-ch:
				switch ev.Type {
				case EventWinner:
					fn(hunt.WinnerEvent{Found: true, TeamID: ev.TeamID, TeamName: ev.TeamName})
				case EventWinnerCleared:
					fn(hunt.WinnerEvent{Found: false})
				}
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			s.broker.Unsubscribe(ch)
		})
	}
	return stop, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// parseStoredTime decodes the strftime format the schema defaults use. A
// malformed value yields the zero time rather than an error.
func parseStoredTime(s string) time.Time {
	t, _ := time.Parse("2006-01-02T15:04:05.000Z", s)
	return t
}

func scanTeam(row rowScanner) (hunt.TeamRecord, error) {
	var rec hunt.TeamRecord
	var flag int
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Collected, &flag, &createdAt); err != nil {
		return hunt.TeamRecord{}, err
	}
	rec.IsWinner = flag == 1
	rec.CreatedAt = parseStoredTime(createdAt)
	return rec, nil
}

// Interface checks: the store backs the engine's remote collaborators.
var (
	_ hunt.ConfigSource = (*Store)(nil)
	_ hunt.ItemSource   = (*Store)(nil)
	_ hunt.TeamLedger   = (*Store)(nil)
)
