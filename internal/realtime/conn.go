package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
)

var (
	ErrConnClosed    = errors.New("connection closed")
	ErrSendQueueFull = errors.New("send queue full")
)

// transport is the subset of *websocket.Conn the hub relies on.
type transport interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Conn is one live socket session (one browser tab or device).
type Conn struct {
	id     string
	ws     transport
	hub    *Hub
	logger *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	open      atomic.Bool
	alive     atomic.Bool

	// authUserID is set when the upgrade request carried a valid token.
	authUserID string

	mu       sync.RWMutex
	userID   string
	clientID string
}

func newConn(ws transport, hub *Hub, authUserID string) *Conn {
	c := &Conn{
		id:         uuid.NewString(),
		ws:         ws,
		hub:        hub,
		authUserID: authUserID,
		send:       make(chan []byte, hub.cfg.SendQueueSize),
		done:       make(chan struct{}),
	}
	c.logger = hub.logger.With(zap.String("conn_id", c.id))
	c.open.Store(true)
	c.alive.Store(true)

	ws.SetReadLimit(maxMessageSize)
	ws.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	go c.writePump()
	return c
}

// ID returns the opaque session handle.
func (c *Conn) ID() string { return c.id }

// UserID returns the identity bound by the last hello, or "".
func (c *Conn) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// ClientID returns the client-supplied echo-suppression id, or "".
func (c *Conn) ClientID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clientID
}

func (c *Conn) setIdentity(userID, clientID string) (previous string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous = c.userID
	c.userID = userID
	c.clientID = clientID
	return previous
}

func (c *Conn) isOpen() bool { return c.open.Load() }

// Send queues an already-encoded frame without blocking.
func (c *Conn) Send(data []byte) error {
	if !c.isOpen() {
		return ErrConnClosed
	}
	select {
	case <-c.done:
		return ErrConnClosed
	case c.send <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Conn) ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// terminate closes the transport. Safe to call any number of times.
func (c *Conn) terminate() {
	c.closeOnce.Do(func() {
		c.open.Store(false)
		close(c.done)
		_ = c.ws.Close()
	})
}

// serve runs the read loop until the transport fails, then unregisters.
func (c *Conn) serve() {
	defer c.hub.Unregister(c)
	defer c.terminate()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("socket closed unexpectedly", zap.Error(err))
			}
			return
		}
		c.handleFrame(data)
	}
}

func (c *Conn) handleFrame(data []byte) {
	msg, err := ParseMessage(data)
	if err != nil {
		c.logger.Debug("dropping malformed frame", zap.Error(err))
		return
	}

	switch msg.Type {
	case TypeHello:
		if c.authUserID != "" && msg.UserID != c.authUserID {
			c.logger.Warn("hello identity does not match token",
				zap.String("hello_user_id", msg.UserID),
				zap.String("token_user_id", c.authUserID),
			)
			return
		}
		c.hub.Register(c, msg.UserID, msg.ClientID)

	case TypeUpdate:
		userID := c.UserID()
		if userID == "" {
			c.logger.Debug("update before hello ignored")
			return
		}
		if msg.UserID != "" && msg.UserID != userID {
			c.logger.Warn("update for foreign user ignored", zap.String("target_user_id", msg.UserID))
			return
		}
		msg.UserID = userID
		if msg.ClientID == "" {
			msg.ClientID = c.ClientID()
		}
		c.hub.Broadcast(userID, msg, c)

	default:
		c.logger.Debug("unknown frame type", zap.String("type", msg.Type))
	}
}

func (c *Conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				c.terminate()
				return
			}
		}
	}
}
