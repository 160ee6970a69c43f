package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeCreateRoom MessageType = "create_room"
	MessageTypeJoinRoom   MessageType = "join_room"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypePlaceBet   MessageType = "place_bet"

	// Server to client replies
	MessageTypeCreateRoomResponse MessageType = "create_room_response"
	MessageTypeJoinRoomResponse   MessageType = "join_room_response"
	MessageTypePlaceBetResponse   MessageType = "place_bet_response"
	MessageTypeError              MessageType = "error"

	// Room events, broadcast to every connection in the room
	MessageTypeRoundStart   MessageType = "round_start"
	MessageTypeBetsClosed   MessageType = "bets_closed"
	MessageTypeSpinResult   MessageType = "spin_result"
	MessageTypeNotification MessageType = "notification"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
