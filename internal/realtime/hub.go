// Package realtime fans change notifications out to every live socket
// session of a user so that other devices can refresh their views.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var (
	hubMeter          = otel.Meter("household/realtime")
	hubConnections, _ = hubMeter.Int64UpDownCounter("realtime.connections",
		metric.WithDescription("Open realtime sessions"),
	)
	hubBroadcasts, _ = hubMeter.Int64Counter("realtime.broadcasts",
		metric.WithDescription("Broadcast requests by scope"),
	)
	hubDeliveries, _ = hubMeter.Int64Counter("realtime.deliveries",
		metric.WithDescription("Per-session delivery outcomes"),
	)
	hubEvictions, _ = hubMeter.Int64Counter("realtime.evictions",
		metric.WithDescription("Sessions closed by the heartbeat sweep"),
	)
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultSendQueueSize     = 16
)

type HubConfig struct {
	HeartbeatInterval time.Duration
	SendQueueSize     int
}

// Stats is a point-in-time view of the registry.
type Stats struct {
	Users       int `json:"users"`
	Connections int `json:"connections"`
}

// Hub maps user IDs to their live sessions.
//
// conns holds every attached session, registered or not, so the heartbeat
// sweep also reaps sockets that never sent hello. buckets only ever holds
// non-empty sets.
type Hub struct {
	cfg    HubConfig
	logger *zap.Logger

	mu      sync.RWMutex
	conns   map[*Conn]struct{}
	buckets map[string]map[*Conn]struct{}
}

func NewHub(cfg HubConfig, logger *zap.Logger) *Hub {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = DefaultSendQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Hub{
		cfg:     cfg,
		logger:  logger.Named("hub"),
		conns:   make(map[*Conn]struct{}),
		buckets: make(map[string]map[*Conn]struct{}),
	}
}

// attach starts tracking a freshly upgraded transport.
func (h *Hub) attach(ws transport, authUserID string) *Conn {
	c := newConn(ws, h, authUserID)

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	hubConnections.Add(context.Background(), 1)
	c.logger.Debug("session attached")
	return c
}

// Register binds c to userID. An empty userID is ignored. Calling it again
// moves the session to the new bucket and replaces its client ID.
func (h *Hub) Register(c *Conn, userID, clientID string) {
	if c == nil || userID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !c.isOpen() {
		return
	}
	if _, ok := h.conns[c]; !ok {
		h.conns[c] = struct{}{}
		hubConnections.Add(context.Background(), 1)
	}

	previous := c.setIdentity(userID, clientID)
	if previous != "" && previous != userID {
		h.removeFromBucketLocked(previous, c)
	}

	set := h.buckets[userID]
	if set == nil {
		set = make(map[*Conn]struct{})
		h.buckets[userID] = set
	}
	set[c] = struct{}{}

	c.logger.Debug("session registered", zap.String("user_id", userID), zap.String("client_id", clientID))
}

// Unregister forgets c. It is a no-op when c is already gone.
func (h *Hub) Unregister(c *Conn) {
	if c == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	if userID := c.UserID(); userID != "" {
		h.removeFromBucketLocked(userID, c)
	}

	hubConnections.Add(context.Background(), -1)
	c.logger.Debug("session unregistered")
}

func (h *Hub) removeFromBucketLocked(userID string, c *Conn) {
	set, ok := h.buckets[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.buckets, userID)
	}
}

// Broadcast encodes msg once and queues it on every open session of
// userID except exclude. Per-session failures are logged and skipped.
func (h *Hub) Broadcast(userID string, msg Message, exclude *Conn) {
	if userID == "" {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode broadcast", zap.String("user_id", userID), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.buckets[userID]))
	for c := range h.buckets[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	ctx := context.Background()
	hubBroadcasts.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", string(msg.Scope))))

	for _, c := range targets {
		if c == exclude {
			continue
		}
		if !c.isOpen() {
			hubDeliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "skipped")))
			continue
		}
		if err := c.Send(data); err != nil {
			hubDeliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "dropped")))
			c.logger.Warn("delivery failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		hubDeliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "sent")))
	}
}

// BroadcastUpdate notifies every session of userID about u. clientID is
// stamped on the frame so the originating client drops its own echo.
func (h *Hub) BroadcastUpdate(userID, clientID string, u Update) {
	msg, err := NewUpdateMessage(userID, clientID, u)
	if err != nil {
		h.logger.Error("failed to build update", zap.String("user_id", userID), zap.Error(err))
		return
	}
	h.Broadcast(userID, msg, nil)
}

// Run drives the heartbeat sweep until ctx is cancelled, then closes every
// session.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.HeartbeatInterval)
	defer ticker.Stop()

	h.logger.Info("heartbeat started", zap.Duration("interval", h.cfg.HeartbeatInterval))

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("hub stopped")
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

// sweep closes sessions that did not answer the previous ping and pings
// the rest.
func (h *Hub) sweep() {
	for _, c := range h.snapshot() {
		if !c.alive.Swap(false) {
			c.logger.Info("evicting unresponsive session", zap.String("user_id", c.UserID()))
			c.terminate()
			h.Unregister(c)
			hubEvictions.Add(context.Background(), 1)
			continue
		}
		if err := c.ping(); err != nil {
			c.logger.Debug("ping failed", zap.Error(err))
		}
	}
}

func (h *Hub) closeAll() {
	for _, c := range h.snapshot() {
		c.terminate()
		h.Unregister(c)
	}
}

func (h *Hub) snapshot() []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	all := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		all = append(all, c)
	}
	return all
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return Stats{Users: len(h.buckets), Connections: len(h.conns)}
}

// SessionCount returns the number of registered sessions for userID.
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.buckets[userID])
}
