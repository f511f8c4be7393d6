package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"household/internal/realtime"
	"household/internal/shared/middleware"
)

// SyncClientHeader carries the writer's sync clientId so the broadcast that
// follows a write is dropped by the writer's own Sync Client.
const SyncClientHeader = "X-Sync-Client-Id"

// Broadcaster fans a scope-tagged update out to a user's live sessions.
type Broadcaster interface {
	BroadcastUpdate(userID, clientID string, u realtime.Update)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastUpdate(string, string, realtime.Update) {}

func orNop(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}

func orNopLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func notify(b Broadcaster, r *http.Request, userID string, u realtime.Update) {
	b.BroadcastUpdate(userID, r.Header.Get(SyncClientHeader), u)
}

// authenticatedUser writes 401 and returns false when the request carries no
// user.
func authenticatedUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// pathUser checks the {userId} path segment against the authenticated user.
func pathUser(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return "", false
	}
	if r.PathValue(name) != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return "", false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type successResponse struct {
	Success bool `json:"success"`
}

var success = successResponse{Success: true}
