package lobby

import (
	"errors"
	"fmt"
)

// ErrorCode classifies why an action was rejected
type ErrorCode int

// error codes
const (
	NotEnoughMoney ErrorCode = iota + 1
	MustCallCurrentBet
	MustRaiseToCurrentBet
	InvalidAmount
)

func (c ErrorCode) String() string {
	switch c {
	case NotEnoughMoney:
		return "NotEnoughMoney"
	case MustCallCurrentBet:
		return "MustCallCurrentBet"
	case MustRaiseToCurrentBet:
		return "MustRaiseToCurrentBet"
	case InvalidAmount:
		return "InvalidAmount"
	}

	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// ActionError is returned when an action breaks a betting rule
// The lobby is never mutated when an ActionError is returned. The message is safe to show to the player.
type ActionError struct {
	Message string
	Code    ErrorCode
}

func (e *ActionError) Error() string {
	return e.Message
}

func newActionError(code ErrorCode, format string, a ...interface{}) *ActionError {
	return &ActionError{
		Message: fmt.Sprintf(format, a...),
		Code:    code,
	}
}

// CodeOf returns the ErrorCode of err if it is an ActionError
func CodeOf(err error) (ErrorCode, bool) {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code, true
	}

	return 0, false
}

// ErrNotYourTurn is returned when an actor other than the seat at the turn index tries to play
var ErrNotYourTurn = errors.New("it is not your turn")

// ErrHandNotInProgress is returned when an action is played outside of a hand
var ErrHandNotInProgress = errors.New("no hand is in progress")

// ErrHandInProgress is returned when an operation requires the hand to be over
var ErrHandInProgress = errors.New("a hand is in progress")

// ErrPlayerNotFound is returned when no seat matches the client ID
var ErrPlayerNotFound = errors.New("player not found")

// ErrAlreadySeated is returned when a client ID is already seated
var ErrAlreadySeated = errors.New("player is already seated")

// ErrRoomFull is returned when every seat is taken
var ErrRoomFull = errors.New("the room is full")

// ErrNotEnoughPlayers is returned when a hand cannot start
var ErrNotEnoughPlayers = errors.New("need at least two players with money to start")

// ErrInvalidClientID is returned for the zero client ID
var ErrInvalidClientID = errors.New("client ID must be non-zero")

// ErrInvalidSnapshot is returned when a snapshot breaks a lobby invariant
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ErrInvalidWinner is returned when a pot is awarded to a folded seat or to the same seat twice
var ErrInvalidWinner = errors.New("winners must still be in the hand and named once")
