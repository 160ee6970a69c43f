package room

import (
	"errors"

	"github.com/lox/roulette/internal/roulette"
)

var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrNotHost               = errors.New("only the host can start a round")
	ErrRoundAlreadyActive    = errors.New("round already in progress")
	ErrBettingClosed         = errors.New("betting closed")
	ErrInvalidBet            = roulette.ErrInvalidBet
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrNotParticipant        = errors.New("not a participant in this room")
	ErrUsernameRequired      = errors.New("username required")
	ErrInternalEngineFailure = errors.New("internal engine failure")
	ErrCodeSpaceExhausted    = errors.New("no free room codes")
)
