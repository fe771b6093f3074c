package message

import (
	"fmt"

	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/lobby"
)

// Type is the tag of a ServerMessage
type Type string

// message types
const (
	TypePlayer     Type = "player"
	TypeAction     Type = "action"
	TypeStartGame  Type = "startGame"
	TypeHand       Type = "hand"
	TypePlayerLeft Type = "playerLeft"
	TypeSnapshot   Type = "snapshot"
	TypeAwardPot   Type = "awardPot"
)

// maxPosition is the largest seat position or round that fits the wire format
const maxPosition = 255

// ServerMessage is the envelope exchanged between clients and the server
// Only the fields that belong to Type are set.
type ServerMessage struct {
	Type Type

	// Player is set for TypePlayer
	Player *lobby.Player

	// Action and ActorClientID are set for TypeAction
	Action        lobby.Action
	ActorClientID uint64

	// ClientID is set for TypeHand and TypePlayerLeft
	ClientID uint64
	// Cards is set for TypeHand
	Cards deck.Hand

	// Snapshot is set for TypeSnapshot
	Snapshot *lobby.Snapshot

	// Winners is set for TypeAwardPot
	Winners []uint64
}

// NewPlayer returns a message announcing a seated player
func NewPlayer(p lobby.Player) ServerMessage {
	p.Hand = nil
	return ServerMessage{Type: TypePlayer, Player: &p}
}

// NewAction returns a message carrying an action and the client who played it
func NewAction(a lobby.Action, actorClientID uint64) ServerMessage {
	return ServerMessage{Type: TypeAction, Action: a, ActorClientID: actorClientID}
}

// NewStartGame returns a message that starts a hand
func NewStartGame() ServerMessage {
	return ServerMessage{Type: TypeStartGame}
}

// NewHand returns a private message with the cards dealt to a client
func NewHand(clientID uint64, cards deck.Hand) ServerMessage {
	return ServerMessage{Type: TypeHand, ClientID: clientID, Cards: cards.Clone()}
}

// NewPlayerLeft returns a message announcing a lost connection
func NewPlayerLeft(clientID uint64) ServerMessage {
	return ServerMessage{Type: TypePlayerLeft, ClientID: clientID}
}

// NewSnapshot returns an authoritative copy of the lobby
// Hands are stripped; they are only sent with NewHand.
func NewSnapshot(s lobby.Snapshot) ServerMessage {
	players := make([]lobby.Player, len(s.Players))
	for i, p := range s.Players {
		p.Hand = nil
		players[i] = p
	}
	s.Players = players

	return ServerMessage{Type: TypeSnapshot, Snapshot: &s}
}

// NewAwardPot returns a message that splits the pot between the winners of a showdown
func NewAwardPot(winners ...uint64) ServerMessage {
	return ServerMessage{Type: TypeAwardPot, Winners: append([]uint64(nil), winners...)}
}

func (m ServerMessage) String() string {
	switch m.Type {
	case TypePlayer:
		return fmt.Sprintf("Player(%s, %d)", m.Player.Name, m.Player.ClientID)
	case TypeAction:
		return fmt.Sprintf("Action(%s, %d)", m.Action, m.ActorClientID)
	case TypeStartGame:
		return "StartGame"
	case TypeHand:
		return fmt.Sprintf("Hand(%d)", m.ClientID)
	case TypePlayerLeft:
		return fmt.Sprintf("PlayerLeft(%d)", m.ClientID)
	case TypeSnapshot:
		return fmt.Sprintf("Snapshot(%d players)", len(m.Snapshot.Players))
	case TypeAwardPot:
		return fmt.Sprintf("AwardPot(%v)", m.Winners)
	}

	return fmt.Sprintf("Unknown(%s)", m.Type)
}

// ProtocolError is returned when bytes cannot be decoded into a well-formed ServerMessage
type ProtocolError struct {
	Codec  string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s protocol error: %s: %v", e.Codec, e.Reason, e.Err)
	}

	return fmt.Sprintf("%s protocol error: %s", e.Codec, e.Reason)
}

// Unwrap returns the underlying error
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

func protocolError(codec string, format string, a ...interface{}) *ProtocolError {
	return &ProtocolError{Codec: codec, Reason: fmt.Sprintf(format, a...)}
}

// validate checks a decoded message
// hasAmount reports whether the wire form carried an action amount.
func validate(codec string, m ServerMessage, hasAmount bool) error {
	switch m.Type {
	case TypePlayer:
		if m.Player == nil {
			return protocolError(codec, "player message without a player")
		}

		return validatePlayer(codec, *m.Player)
	case TypeAction:
		if !m.Action.Kind.IsValid() {
			return protocolError(codec, "unknown action tag %q", m.Action.Kind)
		}

		if m.Action.Kind == lobby.Raise && !hasAmount {
			return protocolError(codec, "raise without an amount")
		}

		if m.Action.Kind != lobby.Raise && hasAmount {
			return protocolError(codec, "%s must not carry an amount", m.Action.Kind)
		}

		if m.Action.Amount < 0 {
			return protocolError(codec, "negative raise amount %d", m.Action.Amount)
		}
	case TypeStartGame, TypePlayerLeft:
	case TypeHand:
		if err := m.Cards.Validate(); err != nil {
			return &ProtocolError{Codec: codec, Reason: "bad card", Err: err}
		}
	case TypeSnapshot:
		if m.Snapshot == nil {
			return protocolError(codec, "snapshot message without a snapshot")
		}

		s := m.Snapshot
		for _, p := range s.Players {
			if err := validatePlayer(codec, p); err != nil {
				return err
			}
		}

		if s.Turn < 0 || s.Turn > maxPosition || s.Round < 0 || s.Round > maxPosition {
			return protocolError(codec, "turn or round out of range")
		}

		if s.Pot < 0 || s.CurrentBet < 0 {
			return protocolError(codec, "negative pot or bet")
		}

		if s.MaxPlayers < 0 || s.MaxPlayers > maxPosition+1 || s.BettingRounds < 0 || s.BettingRounds > maxPosition {
			return protocolError(codec, "table rules out of range")
		}
	case TypeAwardPot:
		if len(m.Winners) == 0 || len(m.Winners) > maxPosition+1 {
			return protocolError(codec, "award for %d winners", len(m.Winners))
		}

		for _, id := range m.Winners {
			if id == 0 {
				return protocolError(codec, "award to client 0")
			}
		}
	default:
		return protocolError(codec, "unknown message tag %q", m.Type)
	}

	return nil
}

func validatePlayer(codec string, p lobby.Player) error {
	if p.Position < 0 || p.Position > maxPosition {
		return protocolError(codec, "position %d out of range", p.Position)
	}

	if p.Money < 0 || p.BetThisTurn < 0 {
		return protocolError(codec, "negative chips for client %d", p.ClientID)
	}

	return nil
}
