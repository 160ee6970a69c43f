package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/roulette/internal/room"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Coordinator executes room commands. *room.Registry implements it.
type Coordinator interface {
	Dispatch(senderID string, cmd room.Command) room.Result
	Rooms() []room.Summary
}

// Server represents the WebSocket server. It also implements room.Publisher,
// fanning room events out to the connections in each room.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	coordinator Coordinator
	httpServer  *http.Server
	runOnce     sync.Once
}

// NewServer creates a new WebSocket server
func NewServer(addr string, coordinator Coordinator, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		coordinator: coordinator,
	}
}

// Handler returns the HTTP handler serving /ws, /health, /rooms and /metrics.
func (s *Server) Handler() http.Handler {
	s.runOnce.Do(func() { go s.run() })

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes the open ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "participant", conn.ParticipantID(), "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "participant", conn.ParticipantID(), "room", conn.GetRoom(), "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.coordinator)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleRooms lists every room as JSON.
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.coordinator.Rooms()); err != nil {
		s.logger.Error("Failed to encode rooms", "error", err)
	}
}

// Publish implements room.Publisher. It is called with the room's lock held
// and must not block.
func (s *Server) Publish(code string, event room.Event) {
	msg, err := EventToMessage(event)
	if err != nil {
		s.logger.Error("Failed to convert event", "room", code, "event", event.EventType(), "error", err)
		return
	}
	s.BroadcastToRoom(code, msg)
}

// BroadcastToRoom sends a message to all connections in a specific room
func (s *Server) BroadcastToRoom(code string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.GetRoom() != code {
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Warn("Failed to send message to client", "error", err, "participant", conn.ParticipantID())
		} else {
			count++
		}
	}

	s.logger.Debug("Broadcasted message to room", "room", code, "type", msg.Type, "recipients", count)
}

// RoomConnections returns the participant ids connected to a room.
func (s *Server) RoomConnections(code string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for conn := range s.connections {
		if conn.GetRoom() == code {
			ids = append(ids, conn.ParticipantID())
		}
	}
	return ids
}
