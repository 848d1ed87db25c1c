package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/orevan/arhunt/internal/store"
)

const leaderboardDefaultLimit = 20

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	TeamID    string `json:"teamId"`
	Name      string `json:"name"`
	Collected int    `json:"collected"`
	IsWinner  bool   `json:"isWinner"`
}

// handleLeaderboard serves ranked standings. The Redis mirror is preferred
// when attached and healthy; the sqlite ledger answers otherwise, so the
// endpoint works the same without Redis.
func handleLeaderboard(logger *slog.Logger, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := leaderboardDefaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		if lb := st.Leaderboard(); lb != nil {
			standings, err := lb.Top(r.Context(), limit)
			if err == nil {
				writeJSON(w, http.StatusOK, fromStandings(standings))
				return
			}
			logger.Error("leaderboard mirror read failed, falling back to sqlite", "error", err)
		}

		teams, err := st.RankedTeams(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if len(teams) > limit {
			teams = teams[:limit]
		}

		entries := make([]LeaderboardEntry, len(teams))
		for i, t := range teams {
			entries[i] = LeaderboardEntry{
				Rank:      i + 1,
				TeamID:    t.ID,
				Name:      t.Name,
				Collected: t.Collected,
				IsWinner:  t.IsWinner,
			}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func fromStandings(standings []store.Standing) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, len(standings))
	for i, s := range standings {
		entries[i] = LeaderboardEntry{
			Rank:      i + 1,
			TeamID:    s.TeamID,
			Name:      s.Name,
			Collected: s.Collected,
		}
	}
	return entries
}
