package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orevan/arhunt/internal/hunt"
	"github.com/orevan/arhunt/internal/store"
)

// handleRoomConfig serves the parsed, validated configuration document for
// a room. Clients apply their own safe defaults on failure, so a missing
// room is a plain 404 rather than a fallback document.
func handleRoomConfig(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")

		cfg, err := st.RoomConfig(r.Context(), roomID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, cfg)
	}
}

func handleRoomItems(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")

		exists, err := st.RoomExists(r.Context(), roomID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !exists {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}

		defs, err := st.Items(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if defs == nil {
			defs = []hunt.ItemDef{}
		}

		writeJSON(w, http.StatusOK, defs)
	}
}
