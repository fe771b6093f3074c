package room

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"
	"pokerroom-server/pkg/lobby"
	"pokerroom-server/pkg/message"
	"pokerroom-server/pkg/transport"
)

// ErrShiftEnded is returned when a closed room is asked to do something
var ErrShiftEnded = errors.New("the room is closed")

// Dealer owns the authoritative lobby of a room and runs its server loop
// The lobby is only touched from the run loop (or by a caller driving Tick directly).
type Dealer struct {
	uuid    string
	options Options
	lobby   *lobby.Lobby
	hub     *transport.Hub
	log     logrus.FieldLogger

	clients     map[uint64]*client
	clientsLock sync.RWMutex

	logMessages []*LogMessage
	turnStarted time.Time
	// idleSince is when the room was last seen without clients
	idleSince time.Time
	now       func() time.Time

	// onEmpty is called from the run loop when the last client leaves or the room sat empty for IdleTimeout
	onEmpty func()

	execInRunLoop chan func()
	close         chan struct{}
	closeOnce     sync.Once
}

// NewDealer creates a new dealer object
// This is called from a blocking state, so it needs to return quickly
func NewDealer(uuid string, opts Options, logger logrus.FieldLogger) *Dealer {
	log := logger.WithField("room", uuid)

	return &Dealer{
		uuid:          uuid,
		options:       opts,
		lobby:         lobby.New(opts.Lobby),
		hub:           transport.NewHub(log),
		log:           log,
		clients:       make(map[uint64]*client),
		now:           time.Now,
		execInRunLoop: make(chan func(), 256),
		close:         make(chan struct{}),
	}
}

// UUID returns the room identifier
func (d *Dealer) UUID() string {
	return d.uuid
}

// Interval returns how often the run loop ticks
func (d *Dealer) Interval() time.Duration {
	return d.options.Interval()
}

// Connect attaches a client connection to the room
// Nothing is seated until the client sends its Player message.
func (d *Dealer) Connect(clientID uint64, link transport.Link, codec message.Codec) error {
	if clientID == 0 {
		return lobby.ErrInvalidClientID
	}

	d.clientsLock.Lock()
	if _, found := d.clients[clientID]; found {
		d.clientsLock.Unlock()
		return transport.ErrDuplicateClient
	}

	d.clients[clientID] = &client{id: clientID, codec: codec, connectedAt: d.now()}
	d.clientsLock.Unlock()

	if err := d.hub.Attach(clientID, link); err != nil {
		d.removeClient(clientID)
		if errors.Is(err, transport.ErrHubClosed) {
			return ErrShiftEnded
		}

		return err
	}

	return nil
}

// removeClient returns the removed client, if any, and the number of clients left
func (d *Dealer) removeClient(clientID uint64) (*client, int) {
	d.clientsLock.Lock()
	defer d.clientsLock.Unlock()

	c := d.clients[clientID]
	delete(d.clients, clientID)
	return c, len(d.clients)
}

// ClientCount returns the number of connected clients
func (d *Dealer) ClientCount() int {
	d.clientsLock.RLock()
	defer d.clientsLock.RUnlock()

	return len(d.clients)
}

// StartShift starts the run loop
func (d *Dealer) StartShift(ctx context.Context) {
	go d.runLoop(ctx)
}

func (d *Dealer) runLoop(ctx context.Context) {
	d.log.Debug("creating dealer run loop")

	ticker := time.NewTicker(d.Interval())
	defer func() {
		ticker.Stop()
		d.hub.Close()
	}()

	for {
		select {
		case <-ticker.C:
			d.Tick()
		case fn := <-d.execInRunLoop:
			fn()
		case <-ctx.Done():
			d.log.Debug("terminating dealer run loop")
			d.EndShift()
			return
		case <-d.close:
			d.log.Debug("terminating dealer run loop")
			return
		}
	}
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	d.closeOnce.Do(func() {
		close(d.close)
		d.hub.Close()
	})
}

// exec runs fn in the run loop and waits for it to finish
func (d *Dealer) exec(fn func()) error {
	done := make(chan struct{})
	select {
	case d.execInRunLoop <- func() {
		fn()
		close(done)
	}:
	case <-d.close:
		return ErrShiftEnded
	}

	select {
	case <-done:
		return nil
	case <-d.close:
		return ErrShiftEnded
	}
}

// Response returns the public state of the room
func (d *Dealer) Response() (*Response, error) {
	var res *Response
	err := d.exec(func() {
		res = d.response()
	})

	return res, err
}

// Tick handles the packets waiting in the inbox, up to the configured batch size
// Returns the number of packets handled.
func (d *Dealer) Tick() int {
	handled := 0
	for ; handled < d.options.maxBatch(); handled++ {
		p, ok := d.hub.TryReceive()
		if !ok {
			break
		}

		d.handlePacket(p)
	}

	d.checkTurnTimeout()
	d.checkIdle()
	return handled
}

func (d *Dealer) handlePacket(p transport.Packet) {
	log := d.log.WithField("client", p.ClientID)

	switch p.Kind {
	case transport.Connected:
		log.Info("client connected")
	case transport.Disconnected:
		d.handleLeave(p.ClientID)
	case transport.Data:
		c := d.client(p.ClientID)
		if c == nil {
			log.Warn("received data from an unknown client")
			return
		}

		m, err := c.codec.Decode(p.Data)
		if err != nil {
			log.WithError(err).Warn("dropping message")
			return
		}

		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			log.WithField("message", litter.Sdump(m)).Trace("received message")
		}

		d.ReceivedMessage(p.ClientID, m)
	}
}

func (d *Dealer) client(clientID uint64) *client {
	d.clientsLock.RLock()
	defer d.clientsLock.RUnlock()

	return d.clients[clientID]
}

// ReceivedMessage applies a decoded message from a client
// NOTE: must only be called from the run loop
func (d *Dealer) ReceivedMessage(clientID uint64, m message.ServerMessage) {
	switch m.Type {
	case message.TypePlayer:
		d.handleJoin(clientID, m.Player)
	case message.TypeAction:
		d.handleAction(clientID, m)
	case message.TypeStartGame:
		d.handleStartGame(clientID)
	case message.TypeAwardPot:
		d.handleAwardPot(clientID, m.Winners)
	default:
		d.log.WithField("client", clientID).WithField("type", m.Type).Warn("unexpected message from client")
	}
}

func (d *Dealer) handleJoin(clientID uint64, p *lobby.Player) {
	log := d.log.WithField("client", clientID)

	seated, err := d.lobby.AddPlayer(lobby.NewPlayer(clientID, p.Name, d.options.StartingStack))
	if err != nil {
		log.WithError(err).Info("could not seat player")
		d.sendSnapshot(clientID)
		if errors.Is(err, lobby.ErrRoomFull) {
			d.hub.Kick(clientID)
		}

		return
	}

	log.WithField("position", seated.Position).Info("player seated")
	d.addLogMessage(clientID, "%s sat down with ${%d}", seated.Name, seated.Money)

	d.sendSnapshot(clientID)
	d.broadcast(message.NewPlayer(seated), clientID)
}

func (d *Dealer) handleAction(clientID uint64, m message.ServerMessage) {
	log := d.log.WithField("client", clientID).WithField("action", m.Action.String())

	if m.ActorClientID != clientID {
		log.WithField("actor", m.ActorClientID).Warn("client tried to act for someone else")
		d.sendSnapshot(clientID)
		return
	}

	cost := d.lobby.Cost(m.Action)
	outcome, err := d.lobby.PlayTurnAs(clientID, m.Action)
	if err != nil {
		log.WithError(err).Info("rejected action")
		d.sendSnapshot(clientID)
		return
	}

	d.broadcast(message.NewAction(m.Action, clientID))
	d.afterTurn(clientID, m.Action, cost, outcome)
}

// afterTurn records a successful action
func (d *Dealer) afterTurn(clientID uint64, a lobby.Action, cost int, outcome lobby.Outcome) {
	d.turnStarted = d.now()

	if p, ok := d.lobby.Player(clientID); ok {
		d.addLogMessage(clientID, "%s %s", p.Name, a.LogMessage(cost))
	}

	d.logOutcome(outcome)
	d.log.WithField("outcome", outcome.String()).Debug("turn played")
}

func (d *Dealer) logOutcome(outcome lobby.Outcome) {
	switch outcome {
	case lobby.OutcomeRoundComplete:
		d.addLogMessage(0, "betting round %d begins", d.lobby.Round()+1)
	case lobby.OutcomeHandWon:
		if p, ok := d.lobby.PlayerAt(d.lobby.Turn()); ok {
			d.addLogMessage(p.ClientID, "%s won the hand", p.Name)
		}
	case lobby.OutcomeShowdown:
		d.addLogMessage(0, "showdown for a pot of ${%d}", d.lobby.Pot())
	}
}

func (d *Dealer) handleStartGame(clientID uint64) {
	log := d.log.WithField("client", clientID)

	if d.lobby.Owner() != clientID {
		log.Warn("only the owner can start the game")
		d.sendSnapshot(clientID)
		return
	}

	if err := d.lobby.StartHand(); err != nil {
		log.WithError(err).Info("could not start the hand")
		d.sendSnapshot(clientID)
		return
	}

	hands, err := d.lobby.Deal(d.options.HandSize)
	if err != nil {
		log.WithError(err).Error("could not deal")
	}

	d.broadcast(message.NewStartGame())
	for id, hand := range hands {
		d.send(id, message.NewHand(id, hand))
	}

	d.turnStarted = d.now()
	d.addLogMessage(0, "a new hand has started")
}

func (d *Dealer) handleAwardPot(clientID uint64, winners []uint64) {
	log := d.log.WithField("client", clientID)

	if d.lobby.Owner() != clientID {
		log.Warn("only the owner can award the pot")
		d.sendSnapshot(clientID)
		return
	}

	pot := d.lobby.Pot()
	if err := d.lobby.AwardPot(winners...); err != nil {
		log.WithError(err).Info("could not award the pot")
		d.sendSnapshot(clientID)
		return
	}

	d.broadcast(message.NewAwardPot(winners...))

	names := make([]string, 0, len(winners))
	for _, id := range winners {
		if p, ok := d.lobby.Player(id); ok {
			names = append(names, p.Name)
		}
	}
	d.addLogMessage(0, "%s won the pot of ${%d}", strings.Join(names, " and "), pot)
}

func (d *Dealer) handleLeave(clientID uint64) {
	c, remaining := d.removeClient(clientID)
	if c != nil {
		d.log.WithField("connection", c.String(d.uuid)).
			WithField("duration", d.now().Sub(c.connectedAt).String()).
			Info("client disconnected")
	}

	if _, seated := d.lobby.Player(clientID); seated {
		outcome, err := d.lobby.Disconnect(clientID)
		if err != nil {
			d.log.WithError(err).WithField("client", clientID).Error("could not disconnect player")
		} else {
			d.addLogMessage(clientID, "player left the table")
			d.broadcast(message.NewPlayerLeft(clientID))

			switch outcome {
			case lobby.OutcomeNone, lobby.OutcomeSeatRemoved, lobby.OutcomeSeatFolded:
			default:
				// the seat on the clock left, so whoever acts next gets a full turn
				d.turnStarted = d.now()
				d.logOutcome(outcome)
			}
		}
	}

	if remaining == 0 && d.onEmpty != nil {
		d.onEmpty()
	}
}

// checkTurnTimeout folds the player on the clock if they took too long
// The fold reaches the others as an ordinary action; the folded player gets a snapshot since it never applied the fold itself.
func (d *Dealer) checkTurnTimeout() {
	if d.options.TurnTimeout <= 0 || !d.lobby.InProgress() {
		return
	}

	if d.now().Sub(d.turnStarted) < d.options.TurnTimeout {
		return
	}

	p, ok := d.lobby.CurrentPlayer()
	if !ok {
		return
	}

	outcome, err := d.lobby.PlayTurn(lobby.ActionFold)
	if err != nil {
		d.log.WithError(err).Error("could not fold on timeout")
		return
	}

	d.log.WithField("client", p.ClientID).Info("turn timed out")
	d.broadcast(message.NewAction(lobby.ActionFold, p.ClientID), p.ClientID)
	d.sendSnapshot(p.ClientID)
	d.afterTurn(p.ClientID, lobby.ActionFold, 0, outcome)
}

// checkIdle closes a room that has had no clients for IdleTimeout
// This catches rooms that were created but never joined.
func (d *Dealer) checkIdle() {
	if d.options.IdleTimeout <= 0 || d.onEmpty == nil {
		return
	}

	if d.ClientCount() > 0 {
		d.idleSince = time.Time{}
		return
	}

	if d.idleSince.IsZero() {
		d.idleSince = d.now()
		return
	}

	if idle := d.now().Sub(d.idleSince); idle >= d.options.IdleTimeout {
		d.log.WithField("idle", idle.String()).Info("closing idle room")
		d.onEmpty()
	}
}

func (d *Dealer) sendSnapshot(clientID uint64) {
	d.send(clientID, message.NewSnapshot(d.lobby.Snapshot()))
}

func (d *Dealer) send(clientID uint64, m message.ServerMessage) {
	c := d.client(clientID)
	if c == nil {
		return
	}

	data, err := c.codec.Encode(m)
	if err != nil {
		d.log.WithError(err).WithField("client", clientID).Error("could not encode message")
		return
	}

	d.hub.Send(clientID, data)
}

// broadcast sends the message to every client except the listed ones
// The message is encoded once per codec in use.
func (d *Dealer) broadcast(m message.ServerMessage, except ...uint64) {
	skip := make(map[uint64]bool, len(except))
	for _, id := range except {
		skip[id] = true
	}

	d.clientsLock.RLock()
	codecOf := make(map[uint64]message.Codec, len(d.clients))
	codecs := make(map[string]message.Codec)
	for id, c := range d.clients {
		if !skip[id] {
			codecOf[id] = c.codec
			codecs[c.codec.Name()] = c.codec
		}
	}
	d.clientsLock.RUnlock()

	for name, codec := range codecs {
		data, err := codec.Encode(m)
		if err != nil {
			d.log.WithError(err).WithField("codec", name).Error("could not encode message")
			continue
		}

		d.hub.Broadcast(data, func(clientID uint64) bool {
			c, ok := codecOf[clientID]
			return ok && c.Name() == name
		})
	}
}
