package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/roulette/internal/room"
	"github.com/lox/roulette/internal/roomcode"
)

// Connection represents a WebSocket connection to a client. Each connection
// is one participant, identified by an opaque id.
type Connection struct {
	conn          *websocket.Conn
	send          chan *Message
	participantID string
	roomCode      string
	logger        *log.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex
	closeOnce     sync.Once
	coordinator   Coordinator
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, coordinator Coordinator) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Connection{
		conn:          conn,
		send:          make(chan *Message, 256),
		participantID: id,
		logger:        logger.WithPrefix("conn").With("participant", id),
		ctx:           ctx,
		cancel:        cancel,
		coordinator:   coordinator,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SendMessage queues a message for the client without blocking. A client
// that stops draining its buffer is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// ParticipantID returns the id this connection acts as.
func (c *Connection) ParticipantID() string {
	return c.participantID
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// GetRoom returns the associated room code
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage decodes a request and hands it to the coordinator. Malformed
// requests are answered with an error message and never reach a room.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "room", c.GetRoom())

	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(msg.RequestID, data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(msg.RequestID, data)

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse start game data")
			return
		}
		c.handleStartGame(data)

	case MessageTypePlaceBet:
		var data PlaceBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.reply(msg.RequestID, MessageTypePlaceBetResponse, PlaceBetResponseData{
				Message: "Invalid bet: " + err.Error(),
			})
			return
		}
		c.handlePlaceBet(msg.RequestID, data)

	default:
		c.sendError(msg.RequestID, "unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// reply sends a response correlated with the request that caused it.
func (c *Connection) reply(requestID string, msgType MessageType, data any) {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", msgType, "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}

// sendError sends an error message to the client
func (c *Connection) sendError(requestID, code, message string) {
	c.reply(requestID, MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
}

func (c *Connection) handleCreateRoom(requestID string, data CreateRoomData) {
	res := c.coordinator.Dispatch(c.participantID, room.CreateRoom{Username: data.Username})
	if res.Success {
		c.SetRoom(res.Code)
		c.logger.Info("Created room", "room", res.Code, "name", data.Username)
	}

	c.reply(requestID, MessageTypeCreateRoomResponse, CreateRoomResponseData{
		Success: res.Success,
		Code:    res.Code,
		Message: res.Message,
	})
}

func (c *Connection) handleJoinRoom(requestID string, data JoinRoomData) {
	// switch rooms first so the joiner sees its own join notification
	prev := c.GetRoom()
	c.SetRoom(roomcode.Normalize(data.Code))

	res := c.coordinator.Dispatch(c.participantID, room.JoinRoom{Username: data.Username, Code: data.Code})
	if res.Success {
		c.logger.Info("Joined room", "room", res.Code, "name", data.Username)
	} else {
		c.SetRoom(prev)
	}

	c.reply(requestID, MessageTypeJoinRoomResponse, JoinRoomResponseData{
		Success: res.Success,
		Code:    res.Code,
		Message: res.Message,
	})
}

func (c *Connection) handleStartGame(data StartGameData) {
	res := c.coordinator.Dispatch(c.participantID, room.StartGame{Code: data.Code})
	if !res.Success {
		c.logger.Info("Start game ignored", "room", data.Code, "reason", res.Err)
	}
	// no reply; round_start is broadcast to the room
}

func (c *Connection) handlePlaceBet(requestID string, data PlaceBetData) {
	res := c.coordinator.Dispatch(c.participantID, room.PlaceBet{
		Code:   data.Code,
		Type:   data.Bet.Type,
		Choice: string(data.Bet.Choice),
		Amount: data.Bet.Amount,
	})

	c.reply(requestID, MessageTypePlaceBetResponse, PlaceBetResponseData{
		Success: res.Success,
		Message: res.Message,
	})
}
