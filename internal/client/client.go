package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/roulette/internal/server" // Reuse message types
)

// ErrRejected is returned when the server answers a request with
// success=false.
var ErrRejected = errors.New("request rejected")

// Client represents a WebSocket client for a roulette server
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	receive   chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once

	pendingMu sync.Mutex
	pending   map[string]chan *server.Message

	// Event handlers
	eventHandlers map[server.MessageType][]handlerEntry
	nextHandlerID uint64
}

type handlerEntry struct {
	id uint64
	fn EventHandler
}

// EventHandler is a function that handles incoming events. Handlers run one
// at a time in arrival order.
type EventHandler func(*server.Message)

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL:     serverURL,
		send:          make(chan *server.Message, 256),
		receive:       make(chan *server.Message, 256),
		logger:        logger.WithPrefix("client"),
		ctx:           ctx,
		cancel:        cancel,
		pending:       make(map[string]chan *server.Message),
		eventHandlers: make(map[server.MessageType][]handlerEntry),
	}
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Debug("Connecting to server", "url", c.serverURL)

	wsURL, err := websocketURL(c.serverURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	c.logger.Debug("Connected to server")
	return nil
}

// websocketURL converts an http(s) or ws(s) base URL into the /ws endpoint.
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}

	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	}
	return u.String(), nil
}

// Close closes the WebSocket connection
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.logger.Debug("Disconnected from server")
	})
	return nil
}

// Done is closed when the client shuts down or loses its connection.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SendMessage sends a message to the server
func (c *Client) SendMessage(msg *server.Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer c.cancel()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)

		if c.deliverReply(&msg) {
			continue
		}

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// deliverReply routes a response to the call waiting for it.
func (c *Client) deliverReply(msg *server.Message) bool {
	if msg.RequestID == "" {
		return false
	}

	c.pendingMu.Lock()
	ch, ok := c.pending[msg.RequestID]
	delete(c.pending, msg.RequestID)
	c.pendingMu.Unlock()

	if ok {
		ch <- msg
	}
	return ok
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// eventProcessor processes incoming messages and dispatches to handlers
func (c *Client) eventProcessor() {
	for {
		select {
		case msg := <-c.receive:
			c.handleMessage(msg)
		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches messages to registered handlers
func (c *Client) handleMessage(msg *server.Message) {
	c.mu.RLock()
	handlers := c.eventHandlers[msg.Type]
	c.mu.RUnlock()

	if len(handlers) == 0 {
		c.logger.Debug("No handler for message type", "type", msg.Type)
		return
	}
	for _, h := range handlers {
		h.fn(msg)
	}
}

// On adds an event handler for a specific message type. The returned func
// removes it again.
func (c *Client) On(messageType server.MessageType, handler EventHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextHandlerID++
	id := c.nextHandlerID
	c.eventHandlers[messageType] = append(c.eventHandlers[messageType], handlerEntry{id: id, fn: handler})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.eventHandlers[messageType] = slices.DeleteFunc(slices.Clone(c.eventHandlers[messageType]), func(h handlerEntry) bool {
			return h.id == id
		})
	}
}

// call sends a request and waits for the reply carrying the same request id.
func (c *Client) call(ctx context.Context, msgType server.MessageType, data any) (*server.Message, error) {
	msg, err := server.NewMessage(msgType, data)
	if err != nil {
		return nil, err
	}
	msg.RequestID = uuid.NewString()

	ch := make(chan *server.Message, 1)
	c.pendingMu.Lock()
	c.pending[msg.RequestID] = ch
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, msg.RequestID)
		c.pendingMu.Unlock()
	}()

	if err := c.SendMessage(msg); err != nil {
		return nil, err
	}

	select {
	case reply := <-ch:
		if reply.Type == server.MessageTypeError {
			var data server.ErrorData
			_ = json.Unmarshal(reply.Data, &data)
			return nil, fmt.Errorf("%w: %s", ErrRejected, data.Message)
		}
		return reply, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s reply: %w", msgType, ctx.Err())
	case <-c.ctx.Done():
		return nil, fmt.Errorf("waiting for %s reply: connection closed", msgType)
	}
}

// CreateRoom creates a room hosted by this client and returns its code.
func (c *Client) CreateRoom(ctx context.Context, username string) (string, error) {
	reply, err := c.call(ctx, server.MessageTypeCreateRoom, server.CreateRoomData{Username: username})
	if err != nil {
		return "", err
	}

	var data server.CreateRoomResponseData
	if err := json.Unmarshal(reply.Data, &data); err != nil {
		return "", fmt.Errorf("decode create room response: %w", err)
	}
	if !data.Success {
		return "", fmt.Errorf("%w: %s", ErrRejected, data.Message)
	}
	return data.Code, nil
}

// JoinRoom joins an existing room.
func (c *Client) JoinRoom(ctx context.Context, username, code string) error {
	reply, err := c.call(ctx, server.MessageTypeJoinRoom, server.JoinRoomData{Username: username, Code: code})
	if err != nil {
		return err
	}

	var data server.JoinRoomResponseData
	if err := json.Unmarshal(reply.Data, &data); err != nil {
		return fmt.Errorf("decode join room response: %w", err)
	}
	if !data.Success {
		return fmt.Errorf("%w: %s", ErrRejected, data.Message)
	}
	return nil
}

// StartGame asks the server to open a round. The server does not reply;
// watch for round_start.
func (c *Client) StartGame(code string) error {
	msg, err := server.NewMessage(server.MessageTypeStartGame, server.StartGameData{Code: code})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// PlaceBet submits a bet for the room's open round.
func (c *Client) PlaceBet(ctx context.Context, code string, bet server.BetData) error {
	reply, err := c.call(ctx, server.MessageTypePlaceBet, server.PlaceBetData{Code: code, Bet: bet})
	if err != nil {
		return err
	}

	var data server.PlaceBetResponseData
	if err := json.Unmarshal(reply.Data, &data); err != nil {
		return fmt.Errorf("decode place bet response: %w", err)
	}
	if !data.Success {
		return fmt.Errorf("%w: %s", ErrRejected, data.Message)
	}
	return nil
}

// WaitForMessage waits for the next message of a type arriving after the
// call. Its handler is removed before it returns.
func (c *Client) WaitForMessage(ctx context.Context, messageType server.MessageType) (*server.Message, error) {
	responseChan := make(chan *server.Message, 1)

	remove := c.On(messageType, func(msg *server.Message) {
		select {
		case responseChan <- msg:
		default:
		}
	})
	defer remove()

	select {
	case msg := <-responseChan:
		return msg, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", messageType, ctx.Err())
	case <-c.ctx.Done():
		return nil, fmt.Errorf("waiting for %s: connection closed", messageType)
	}
}
