package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/services"
)

// validateSession is a seam over the session service so handler tests can
// stub authentication.
var validateSession = services.ValidateSession

func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// requireAuth validates the session and returns the authenticated user's ID
// and token. Returns ok=false if not authenticated.
func requireAuth(r *http.Request) (userID, token string, ok bool) {
	token = extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return "", "", false
	}
	userID, valid, err := validateSession(r.Context(), token)
	if err != nil || !valid {
		return "", "", false
	}
	return userID, token, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
