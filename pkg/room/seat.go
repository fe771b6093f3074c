package room

import (
	"errors"

	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"
	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/lobby"
	"pokerroom-server/pkg/message"
)

// ErrNotConnected is returned when a message could not be queued for the server
var ErrNotConnected = errors.New("not connected to the server")

// ErrNotOwner is returned when someone other than the room owner tries to run the table
var ErrNotOwner = errors.New("only the room owner can do that")

// Connection is the client side of a transport
type Connection interface {
	Send(data []byte) bool
	TryReceive() ([]byte, bool)
}

// Seat is a client's replica of a room
// Local actions are applied optimistically; the server's messages keep the replica in step.
type Seat struct {
	clientID uint64
	name     string
	conn     Connection
	codec    message.Codec
	lobby    *lobby.Lobby
	maxBatch int
	log      logrus.FieldLogger
}

// NewSeat returns a seat for clientID that talks to the server over conn
func NewSeat(clientID uint64, name string, conn Connection, codec message.Codec, opts Options, logger logrus.FieldLogger) *Seat {
	return &Seat{
		clientID: clientID,
		name:     name,
		conn:     conn,
		codec:    codec,
		lobby:    lobby.New(opts.Lobby),
		maxBatch: opts.maxBatch(),
		log:      logger.WithField("client", clientID),
	}
}

// ClientID returns the identifier of this seat
func (s *Seat) ClientID() uint64 {
	return s.clientID
}

// Snapshot returns the replica's view of the room
func (s *Seat) Snapshot() lobby.Snapshot {
	return s.lobby.Snapshot()
}

// Hand returns the cards dealt to this seat
func (s *Seat) Hand() deck.Hand {
	p, ok := s.lobby.Player(s.clientID)
	if !ok {
		return nil
	}

	return p.Hand
}

// IsMyTurn returns true if this seat is on the clock
func (s *Seat) IsMyTurn() bool {
	return s.lobby.IsClientTurn(s.clientID)
}

// Join asks the server for a seat
func (s *Seat) Join() error {
	return s.send(message.NewPlayer(lobby.NewPlayer(s.clientID, s.name, 0)))
}

// StartGame asks the server to start a hand
func (s *Seat) StartGame() error {
	if s.lobby.Owner() != s.clientID {
		return ErrNotOwner
	}

	return s.send(message.NewStartGame())
}

// AwardPot asks the server to split the pot between the winners of a showdown
// Like StartGame, the replica changes when the server's answer arrives.
func (s *Seat) AwardPot(winners ...uint64) error {
	if s.lobby.Owner() != s.clientID {
		return ErrNotOwner
	}

	return s.send(message.NewAwardPot(winners...))
}

// SubmitAction plays an action for this seat
// The action is checked and applied locally first and only sent if it succeeded.
func (s *Seat) SubmitAction(a lobby.Action) (lobby.Outcome, error) {
	outcome, err := s.lobby.PlayTurnAs(s.clientID, a)
	if err != nil {
		return lobby.OutcomeNone, err
	}

	if err := s.send(message.NewAction(a, s.clientID)); err != nil {
		return outcome, err
	}

	return outcome, nil
}

func (s *Seat) send(m message.ServerMessage) error {
	data, err := s.codec.Encode(m)
	if err != nil {
		return err
	}

	if !s.conn.Send(data) {
		return ErrNotConnected
	}

	return nil
}

// Tick applies the messages waiting from the server, up to the batch size
// Returns the number of messages applied.
func (s *Seat) Tick() int {
	applied := 0
	for i := 0; i < s.maxBatch; i++ {
		data, ok := s.conn.TryReceive()
		if !ok {
			break
		}

		m, err := s.codec.Decode(data)
		if err != nil {
			s.log.WithError(err).Warn("dropping message")
			continue
		}

		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			s.log.WithField("message", litter.Sdump(m)).Trace("received message")
		}

		if s.apply(m) {
			applied++
		}
	}

	return applied
}

// apply returns true if the message changed the replica
func (s *Seat) apply(m message.ServerMessage) bool {
	log := s.log.WithField("type", m.Type)

	var err error
	switch m.Type {
	case message.TypePlayer:
		err = s.lobby.UpsertPlayer(*m.Player)
	case message.TypeAction:
		// our own actions were applied when they were submitted
		if m.ActorClientID == s.clientID {
			return false
		}

		_, err = s.lobby.PlayTurnAs(m.ActorClientID, m.Action)
	case message.TypeStartGame:
		err = s.lobby.StartHand()
	case message.TypeHand:
		if m.ClientID != s.clientID {
			return false
		}

		err = s.lobby.SetHand(s.clientID, m.Cards)
	case message.TypePlayerLeft:
		_, err = s.lobby.Disconnect(m.ClientID)
	case message.TypeSnapshot:
		err = s.lobby.Restore(*m.Snapshot)
	case message.TypeAwardPot:
		err = s.lobby.AwardPot(m.Winners...)
	default:
		log.Warn("unexpected message from server")
		return false
	}

	if err != nil {
		// the server follows up with a snapshot whenever it rejects something of ours
		log.WithError(err).Warn("could not apply message")
		return false
	}

	return true
}
