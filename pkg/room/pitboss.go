package room

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"pokerroom-server/internal/util"
	"pokerroom-server/pkg/message"
	"pokerroom-server/pkg/transport"
)

// ErrRoomNotFound is returned when no dealer runs the room
var ErrRoomNotFound = errors.New("room not found")

// PitBoss is responsible for dispatching players to rooms
type PitBoss struct {
	ctx     context.Context
	options Options
	log     logrus.FieldLogger

	dealers map[string]*Dealer
	lock    sync.RWMutex
}

// NewPitBoss returns a new dispatch object
// Every dealer it starts ends its shift when ctx is done.
func NewPitBoss(ctx context.Context, opts Options, logger logrus.FieldLogger) *PitBoss {
	return &PitBoss{
		ctx:     ctx,
		options: opts,
		log:     logger,
		dealers: make(map[string]*Dealer),
	}
}

// CreateRoom starts a dealer for a new room
// The room closes when the last client that connected to it leaves.
func (p *PitBoss) CreateRoom() *Dealer {
	uuid := util.NewRoomID()
	dealer := NewDealer(uuid, p.options, p.log)
	dealer.onEmpty = func() {
		p.closeRoom(uuid)
	}

	p.lock.Lock()
	p.dealers[uuid] = dealer
	p.lock.Unlock()

	dealer.StartShift(p.ctx)
	p.log.WithField("room", uuid).Info("room created")

	return dealer
}

// Dealer returns the dealer running the room
func (p *PitBoss) Dealer(uuid string) (*Dealer, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	dealer, found := p.dealers[uuid]
	return dealer, found
}

// Connect attaches a client to the room
func (p *PitBoss) Connect(uuid string, clientID uint64, link transport.Link, codec message.Codec) error {
	dealer, found := p.Dealer(uuid)
	if !found {
		return ErrRoomNotFound
	}

	return dealer.Connect(clientID, link, codec)
}

// RoomCount returns the number of open rooms
func (p *PitBoss) RoomCount() int {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return len(p.dealers)
}

func (p *PitBoss) closeRoom(uuid string) {
	p.lock.Lock()
	dealer, found := p.dealers[uuid]
	delete(p.dealers, uuid)
	p.lock.Unlock()

	if found {
		p.log.WithField("room", uuid).Info("room closed")
		dealer.EndShift()
	}
}
