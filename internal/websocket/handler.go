package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// Handler upgrades requests and subscribes them to hub. With no origins every
// origin is accepted.
func Handler(hub *Hub, origins []string, logger *slog.Logger) http.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: origins}
	if len(origins) == 0 {
		opts = &ws.AcceptOptions{InsecureSkipVerify: true}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			logger.Warn("websocket accept", "error", err, "origin", r.Header.Get("Origin"))
			return
		}
		defer conn.CloseNow()

		newClient(hub, conn).run(r.Context())
		conn.Close(ws.StatusNormalClosure, "")
	}
}
