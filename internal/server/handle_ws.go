package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/orevan/arhunt/internal/store"
)

// handleWSEvents is the websocket variant of the event stream, for clients
// that cannot consume SSE.
func handleWSEvents(logger *slog.Logger, broker *store.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
		defer cancel()

		// Reads only surface client disconnects; inbound data is ignored.
		go func() {
			for {
				if _, _, err := conn.Read(ctx); err != nil {
					cancel()
					return
				}
			}
		}()

		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				data, _ := json.Marshal(ev)
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			case <-ping.C:
				if err := conn.Ping(ctx); err != nil {
					logger.Debug("websocket ping failed", "error", err)
					return
				}
			}
		}
	}
}
