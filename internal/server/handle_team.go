package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/orevan/arhunt/internal/hunt"
	"github.com/orevan/arhunt/internal/store"
)

type CreateTeamRequest struct {
	Name string `json:"name"`
}

type TeamResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Collected int    `json:"collected"`
	IsWinner  bool   `json:"isWinner"`
	CreatedAt string `json:"createdAt"`
}

func teamResponse(rec hunt.TeamRecord) TeamResponse {
	return TeamResponse{
		ID:        rec.ID,
		Name:      rec.Name,
		Collected: rec.Collected,
		IsWinner:  rec.IsWinner,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func handleCreateTeam(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		rec, err := st.CreateTeam(r.Context(), req.Name)
		if errors.Is(err, hunt.ErrGameOver) {
			writeError(w, http.StatusConflict, "game is already over")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, teamResponse(rec))
	}
}

func handleGetTeam(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")

		rec, err := st.Team(r.Context(), teamID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, teamResponse(rec))
	}
}
