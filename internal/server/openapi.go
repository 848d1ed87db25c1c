package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/orevan/arhunt/internal/hunt"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "AR Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the AR scavenger hunt: room configuration, item catalog, team ledger, live events.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(map[string]struct {
		Status string `json:"status"`
	}{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getHealthz)

	// GET /api/rooms/{roomID}/config
	getConfig, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{roomID}/config")
	getConfig.SetSummary("Room configuration")
	getConfig.SetDescription("Returns the validated spawn and discovery configuration for a room.")
	getConfig.AddRespStructure(hunt.RoomConfig{}, openapi.WithHTTPStatus(http.StatusOK))
	getConfig.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getConfig)

	// GET /api/rooms/{roomID}/items
	getItems, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{roomID}/items")
	getItems.SetSummary("Item catalog")
	getItems.SetDescription("Returns the collectible item documents with their quiz questions.")
	getItems.AddRespStructure([]hunt.ItemDef{}, openapi.WithHTTPStatus(http.StatusOK))
	getItems.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getItems)

	// POST /api/teams
	postTeam, _ := r.NewOperationContext(http.MethodPost, "/api/teams")
	postTeam.SetSummary("Create team")
	postTeam.SetDescription("Registers a new team. Refused once a winner stands.")
	postTeam.AddReqStructure(CreateTeamRequest{})
	postTeam.AddRespStructure(TeamResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postTeam)

	// GET /api/teams/{teamID}
	getTeam, _ := r.NewOperationContext(http.MethodGet, "/api/teams/{teamID}")
	getTeam.SetSummary("Get team")
	getTeam.SetDescription("Returns a team record with its collected count and win flag.")
	getTeam.AddRespStructure(TeamResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTeam)

	// POST /api/teams/{teamID}/collect
	postCollect, _ := r.NewOperationContext(http.MethodPost, "/api/teams/{teamID}/collect")
	postCollect.SetSummary("Record a collected item")
	postCollect.SetDescription("Atomically increments the team's collected count. The first team to reach the win target gets the win flag.")
	postCollect.AddRespStructure(CollectResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postCollect.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postCollect)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Returns ranked team standings, best first.")
	getBoard.AddRespStructure([]LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getBoard)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of team, collect and winner events.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/events
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws/events")
	getWS.SetSummary("WebSocket event stream")
	getWS.SetDescription("Upgrades to a WebSocket connection streaming the same events as /api/events.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
