// Package syncclient keeps one application instance attached to the
// realtime hub and exposes the updates other devices publish.
package syncclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"household/internal/realtime"
)

const (
	DefaultReconnectDelay = 3 * time.Second
	writeWait             = 10 * time.Second
)

var ErrNotConnected = errors.New("sync client not connected")

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Config struct {
	// URL is the ws:// or wss:// endpoint of the hub.
	URL            string
	ReconnectDelay time.Duration
	// Header is sent with every upgrade request, e.g. Authorization.
	Header http.Header
	Dialer *websocket.Dialer
	Logger *zap.Logger
}

// Client is safe for concurrent use.
type Client struct {
	cfg      Config
	clientID string
	logger   *zap.Logger

	mu         sync.Mutex
	state      State
	userID     string
	conn       *websocket.Conn
	gen        uint64
	closing    bool
	reconnect  *time.Timer
	dialCancel context.CancelFunc

	// gorilla allows one concurrent writer per connection.
	writeMu sync.Mutex

	subsMu  sync.RWMutex
	subs    map[int]chan realtime.Message
	nextSub int

	wg sync.WaitGroup
}

func New(cfg Config) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	clientID := uuid.NewString()
	return &Client{
		cfg:      cfg,
		clientID: clientID,
		logger:   cfg.Logger.Named("syncclient").With(zap.String("client_id", clientID)),
		subs:     make(map[int]chan realtime.Message),
	}
}

// ClientID is generated once per Client and kept across reconnects.
func (c *Client) ClientID() string { return c.clientID }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Connect starts dialing the hub as userID and returns immediately. While a
// connection is being opened or is open it only switches identity: an open
// session re-sends hello so the hub moves it to the new user.
func (c *Client) Connect(userID string) {
	if userID == "" {
		return
	}

	c.mu.Lock()
	c.closing = false
	if c.state == StateOpen && c.userID != userID {
		c.userID = userID
		conn := c.conn
		c.mu.Unlock()

		c.logger.Info("switching identity", zap.String("user_id", userID))
		if err := c.sendHello(conn, userID); err != nil {
			c.logger.Debug("hello failed", zap.Error(err))
			conn.Close()
		}
		return
	}
	if c.state == StateConnecting {
		c.userID = userID
	}
	c.connectLocked(userID)
	c.mu.Unlock()
}

func (c *Client) connectLocked(userID string) {
	if c.state == StateConnecting || c.state == StateOpen {
		return
	}
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}

	c.userID = userID
	c.state = StateConnecting
	c.gen++

	ctx, cancel := context.WithCancel(context.Background())
	c.dialCancel = cancel

	c.wg.Add(1)
	go c.run(ctx, c.gen)
}

func (c *Client) run(ctx context.Context, gen uint64) {
	defer c.wg.Done()

	conn, resp, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, c.cfg.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.logger.Debug("dial failed", zap.String("url", c.cfg.URL), zap.Error(err))
		c.dropLocked()
		c.mu.Unlock()
		return
	}
	// Identity may have changed while dialing.
	userID := c.userID
	c.conn = conn
	c.mu.Unlock()

	// Open is published only after hello so no update can reach the hub
	// before the session is registered.
	if err := c.sendHello(conn, userID); err != nil {
		c.logger.Debug("hello failed", zap.Error(err))
		conn.Close()
	} else {
		c.mu.Lock()
		current, live := c.userID, gen == c.gen
		if live {
			c.state = StateOpen
		}
		c.mu.Unlock()
		c.logger.Info("connected", zap.String("user_id", userID))

		// Connect switched identity between hello and Open.
		if live && current != userID && current != "" {
			if err := c.sendHello(conn, current); err != nil {
				conn.Close()
			}
		}
	}

	c.readLoop(conn, gen)
}

func (c *Client) sendHello(conn *websocket.Conn, userID string) error {
	return c.write(conn, realtime.Message{Type: realtime.TypeHello, UserID: userID, ClientID: c.clientID})
}

func (c *Client) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()

			c.mu.Lock()
			if gen == c.gen && !c.closing {
				c.logger.Info("connection lost", zap.Error(err))
				c.dropLocked()
			}
			c.mu.Unlock()
			return
		}
		c.dispatch(data)
	}
}

// dropLocked moves to Closed and arms the reconnect timer.
func (c *Client) dropLocked() {
	c.conn = nil
	c.state = StateClosed
	if c.closing || c.reconnect != nil {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(c.cfg.ReconnectDelay, func() { c.reconnectFired(t) })
	c.reconnect = t
}

// reconnectFired runs when timer t expires. A timer that was replaced or
// stopped after it fired must not touch the current one.
func (c *Client) reconnectFired(t *time.Timer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reconnect != t {
		return
	}
	c.reconnect = nil
	if c.closing || c.userID == "" {
		return
	}
	c.logger.Debug("reconnecting", zap.String("user_id", c.userID))
	c.connectLocked(c.userID)
}

func (c *Client) dispatch(data []byte) {
	msg, err := realtime.ParseMessage(data)
	if err != nil {
		c.logger.Debug("dropping malformed frame", zap.Error(err))
		return
	}
	if msg.Type != realtime.TypeUpdate {
		return
	}
	if msg.ClientID == c.clientID {
		return
	}

	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, ch := range c.subs {
		select {
		case ch <- msg:
		default:
			c.logger.Warn("subscriber lagging, update dropped", zap.String("scope", string(msg.Scope)))
		}
	}
}

// Disconnect closes the connection, cancels any pending reconnect and
// forgets the identity.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.closing = true
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	if c.dialCancel != nil {
		c.dialCancel()
		c.dialCancel = nil
	}
	c.gen++
	conn := c.conn
	c.conn = nil
	c.userID = ""
	c.state = StateIdle
	c.mu.Unlock()

	if conn == nil {
		return
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	conn.Close()
}

// Close disconnects and waits for background goroutines to finish.
func (c *Client) Close() {
	c.Disconnect()
	c.wg.Wait()
}

// SendUpdate publishes u to the user's other sessions. Without an identity
// it does nothing. ErrNotConnected is returned while the transport is down;
// callers treat sync as best effort and may ignore it.
func (c *Client) SendUpdate(u realtime.Update) error {
	c.mu.Lock()
	userID, conn, state := c.userID, c.conn, c.state
	c.mu.Unlock()

	if userID == "" {
		return nil
	}
	if conn == nil || state != StateOpen {
		return ErrNotConnected
	}

	msg, err := realtime.NewUpdateMessage(userID, c.clientID, u)
	if err != nil {
		return err
	}
	if err := c.write(conn, msg); err != nil {
		return fmt.Errorf("failed to send update: %w", err)
	}
	return nil
}

func (c *Client) write(conn *websocket.Conn, msg realtime.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// Subscribe returns a stream of updates from other sessions. Updates are
// dropped for a subscriber whose buffer is full. cancel closes the channel.
func (c *Client) Subscribe(buffer int) (<-chan realtime.Message, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan realtime.Message, buffer)

	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// EndpointURL turns an http(s) base URL into the ws(s) URL of path on the
// same host.
func EndpointURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("base url has no host")
	}

	u.Path = "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
