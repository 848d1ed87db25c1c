package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orevan/arhunt/internal/store"
)

type CollectResponse struct {
	Team TeamResponse `json:"team"`
	// Won is set on the collect that earned the team the win flag.
	Won bool `json:"won"`
}

// handleCollect is the ledger increment operation: one collected item for
// the team, atomically counted server-side.
func handleCollect(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")

		rec, err := st.IncrementCollected(r.Context(), teamID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, CollectResponse{
			Team: teamResponse(rec),
			Won:  rec.IsWinner,
		})
	}
}
