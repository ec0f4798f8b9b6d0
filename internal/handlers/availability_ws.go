package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/services"
)

var availabilityUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// AvailabilityWebSocket streams gift availability events to catalog viewers.
// Authentication uses the existing session token (Authorization header or
// `token` query parameter for browser WebSocket clients).
func AvailabilityWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
	}

	if _, valid, err := validateSession(r.Context(), token); err != nil || !valid {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := availabilityUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	unregister := services.RegisterAvailabilityConn(conn)
	defer unregister()

	// The feed is one-way; the read loop only services pings and detects
	// disconnects.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
}
