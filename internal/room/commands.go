package room

import (
	"errors"
	"strings"

	"github.com/lox/roulette/internal/roulette"
)

// Command is a request addressed to the registry. The set is closed: only
// the types in this file implement it.
type Command interface {
	commandName() string
}

// CreateRoom asks for a new room hosted by the sender.
type CreateRoom struct {
	Username string
}

// JoinRoom adds the sender to an existing room.
type JoinRoom struct {
	Username string
	Code     string
}

// StartGame opens a round; only the host's request has any effect.
type StartGame struct {
	Code string
}

// PlaceBet submits the sender's bet in loosely typed form.
type PlaceBet struct {
	Code   string
	Type   string
	Choice string
	Amount int
}

func (CreateRoom) commandName() string { return "create_room" }
func (JoinRoom) commandName() string   { return "join_room" }
func (StartGame) commandName() string  { return "start_game" }
func (PlaceBet) commandName() string   { return "place_bet" }

// Result is the structured outcome of a dispatched command.
type Result struct {
	Success bool
	// Code is the room code for create_room and join_room.
	Code    string
	Message string
	Err     error
}

// Dispatch runs cmd on behalf of senderID. Failures come back as results;
// nothing a caller sends can take the registry down.
func (r *Registry) Dispatch(senderID string, cmd Command) Result {
	var (
		code string
		err  error
	)

	switch c := cmd.(type) {
	case CreateRoom:
		name := strings.TrimSpace(c.Username)
		if name == "" {
			err = ErrUsernameRequired
			break
		}
		code, err = r.CreateRoom(senderID, name)

	case JoinRoom:
		name := strings.TrimSpace(c.Username)
		if name == "" {
			err = ErrUsernameRequired
			break
		}
		var room *Room
		if room, err = r.Lookup(c.Code); err == nil {
			code = room.Code()
			err = room.Join(senderID, name)
		}

	case StartGame:
		err = r.StartGame(c.Code, senderID)

	case PlaceBet:
		var bet roulette.Bet
		if bet, err = roulette.ParseBet(c.Type, c.Choice, c.Amount); err != nil {
			// closure takes precedence over shape errors
			if room, lookupErr := r.Lookup(c.Code); lookupErr != nil {
				err = lookupErr
			} else if room.Status() != StatusBetting {
				err = ErrBettingClosed
			}
			break
		}
		err = r.PlaceBet(c.Code, senderID, bet)

	default:
		r.logger.Warn("Unknown command", "type", cmd)
		return Result{Message: "unknown command"}
	}

	if err != nil {
		r.logger.Debug("Command rejected", "command", cmd.commandName(), "sender", senderID, "error", err)
		return Result{Code: code, Message: Message(err), Err: err}
	}
	return Result{Success: true, Code: code}
}

// Message turns a coordinator error into text suitable for a client.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, ErrBettingClosed):
		return "Betting closed"
	case errors.Is(err, ErrNotHost):
		return "Only the host can start the game"
	case errors.Is(err, ErrRoundAlreadyActive):
		return "Round already in progress"
	case errors.Is(err, ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, ErrNotParticipant):
		return "Join the room before betting"
	case errors.Is(err, ErrUsernameRequired):
		return "Username required"
	case errors.Is(err, ErrInvalidBet):
		return "Invalid bet: " + strings.TrimPrefix(err.Error(), ErrInvalidBet.Error()+": ")
	default:
		return "Internal error"
	}
}
