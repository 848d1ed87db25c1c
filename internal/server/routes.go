package server

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"

	"github.com/orevan/arhunt/internal/store"
)

func addRoutes(r chi.Router, logger *slog.Logger, st *store.Store, db *sql.DB, rdb *redis.Client) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("AR Hunt API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms/{roomID}/config", handleRoomConfig(st))
		r.Get("/rooms/{roomID}/items", handleRoomItems(st))

		r.Post("/teams", handleCreateTeam(st))
		r.Get("/teams/{teamID}", handleGetTeam(st))
		r.Post("/teams/{teamID}/collect", handleCollect(st))

		r.Get("/leaderboard", handleLeaderboard(logger, st))
		r.Get("/events", handleEvents(st.Events()))
	})

	r.Get("/ws/events", handleWSEvents(logger, st.Events()))
}
