package realtime

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type HandlerConfig struct {
	// AllowedOrigins lists extra hosts permitted to open a socket besides
	// the request's own host.
	AllowedOrigins []string

	// Authenticate optionally resolves a user from the upgrade request.
	// When it reports ok, hello frames for any other user are ignored.
	Authenticate func(r *http.Request) (userID string, ok bool)
}

// Handler upgrades HTTP to WebSocket and hands the socket to hub.
func Handler(hub *Hub, cfg HandlerConfig) http.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			allowed[o] = struct{}{}
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r, allowed)
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var authUserID string
		if cfg.Authenticate != nil {
			if userID, ok := cfg.Authenticate(r); ok {
				authUserID = userID
			}
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn("ws upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
			return
		}

		c := hub.attach(ws, authUserID)
		go c.serve()
	}
}

func originAllowed(r *http.Request, allowed map[string]struct{}) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	if _, ok := allowed["*"]; ok {
		return true
	}
	_, ok := allowed[strings.ToLower(u.Hostname())]
	if !ok {
		_, ok = allowed[strings.ToLower(u.Host)]
	}
	return ok
}
