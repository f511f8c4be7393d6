package http

import (
	"net/http"

	"household/internal/realtime"
)

// HandleHealth returns service health status.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// StatsSource reports the live session counts of the realtime hub.
type StatsSource interface {
	Stats() realtime.Stats
}

// HandleHubStats serves GET /api/ws/stats
func HandleHubStats(src StatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if _, ok := authenticatedUser(w, r); !ok {
			return
		}
		writeJSON(w, http.StatusOK, src.Stats())
	}
}
