package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PacketKind describes a Packet
type PacketKind int

// packet kinds
const (
	Connected PacketKind = iota
	Data
	Disconnected
)

func (k PacketKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Data:
		return "data"
	case Disconnected:
		return "disconnected"
	}

	return "unknown"
}

// Packet is an event received by the server
type Packet struct {
	ClientID uint64
	Kind     PacketKind
	// Data is only set for Data packets
	Data []byte
}

// ErrDuplicateClient is returned when a client ID is already attached
var ErrDuplicateClient = errors.New("client is already connected")

// ErrHubClosed is returned when attaching to a closed hub
var ErrHubClosed = errors.New("hub is closed")

const sendBuffer = 256
const inboxBuffer = 1024

type hubClient struct {
	id   uint64
	link Link
	send chan []byte
	done chan struct{}
	once sync.Once
}

// close stops the write loop and the link, which ends the read loop
// The link is closed in the background since a websocket close can wait on a stalled write.
func (c *hubClient) close() {
	c.once.Do(func() {
		close(c.done)
		go func() {
			_ = c.link.Close()
		}()
	})
}

// Hub multiplexes many client links for a server loop
// Every attached client produces exactly one Connected packet and one Disconnected packet.
type Hub struct {
	clients map[uint64]*hubClient
	lock    sync.RWMutex
	inbox   chan Packet
	done    chan struct{}
	closed  bool
	log     logrus.FieldLogger

	// PingPeriod is how often idle links are pinged
	PingPeriod time.Duration
}

// NewHub returns a hub without clients
func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[uint64]*hubClient),
		inbox:      make(chan Packet, inboxBuffer),
		done:       make(chan struct{}),
		log:        logger,
		PingPeriod: pingPeriod,
	}
}

// Attach starts serving the link for the client
// The Connected packet is queued before Attach returns.
func (h *Hub) Attach(clientID uint64, link Link) error {
	c := &hubClient{
		id:   clientID,
		link: link,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		return ErrHubClosed
	}

	if _, found := h.clients[clientID]; found {
		h.lock.Unlock()
		return ErrDuplicateClient
	}

	h.clients[clientID] = c
	h.lock.Unlock()

	h.log.WithField("client", clientID).Debug("client attached")
	h.push(Packet{ClientID: clientID, Kind: Connected})

	go h.writeLoop(c)
	go h.readLoop(c)

	return nil
}

func (h *Hub) push(p Packet) {
	select {
	case h.inbox <- p:
	case <-h.done:
	}
}

func (h *Hub) readLoop(c *hubClient) {
	defer func() {
		c.close()

		h.lock.Lock()
		if h.clients[c.id] == c {
			delete(h.clients, c.id)
		}
		h.lock.Unlock()

		h.log.WithField("client", c.id).Debug("client detached")
		h.push(Packet{ClientID: c.id, Kind: Disconnected})
	}()

	for {
		data, err := c.link.ReadMessage()
		if err != nil {
			if !errors.Is(err, ErrClosed) {
				h.log.WithError(err).WithField("client", c.id).Debug("could not read message")
			}

			return
		}

		h.push(Packet{ClientID: c.id, Kind: Data, Data: data})
	}
}

func (h *Hub) writeLoop(c *hubClient) {
	ticker := time.NewTicker(h.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.link.Ping(); err != nil {
				c.close()
				return
			}
		case data := <-c.send:
			if data == nil {
				c.close()
				return
			}

			if err := c.link.WriteMessage(data); err != nil {
				h.log.WithError(err).WithField("client", c.id).Error("could not write message")
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Send queues data for a client without blocking
// A client whose buffer is full is dropped. Returns false if the data was not queued.
func (h *Hub) Send(clientID uint64, data []byte) bool {
	if data == nil {
		data = []byte{}
	}

	h.lock.RLock()
	c, found := h.clients[clientID]
	h.lock.RUnlock()

	if !found {
		return false
	}

	return h.sendTo(c, data)
}

func (h *Hub) sendTo(c *hubClient, data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		h.log.WithField("client", c.id).Warn("send buffer is full, dropping client")
		c.close()
		return false
	}
}

// Broadcast queues data for every client accepted by filter
// A nil filter accepts everyone.
func (h *Hub) Broadcast(data []byte, filter func(clientID uint64) bool) {
	for _, c := range h.snapshot() {
		if filter == nil || filter(c.id) {
			h.sendTo(c, data)
		}
	}
}

func (h *Hub) snapshot() []*hubClient {
	h.lock.RLock()
	defer h.lock.RUnlock()

	clients := make([]*hubClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}

	return clients
}

// TryReceive returns the next packet if one is waiting
func (h *Hub) TryReceive() (Packet, bool) {
	select {
	case p := <-h.inbox:
		return p, true
	default:
		return Packet{}, false
	}
}

// Kick closes the link of a client once the data already queued for it is written
// Its Disconnected packet follows as with any lost connection.
func (h *Hub) Kick(clientID uint64) {
	h.lock.RLock()
	c, found := h.clients[clientID]
	h.lock.RUnlock()

	if !found {
		return
	}

	select {
	case c.send <- nil:
	default:
		c.close()
	}
}

// ClientCount returns the number of attached clients
func (h *Hub) ClientCount() int {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return len(h.clients)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		return
	}

	h.closed = true
	close(h.done)
	h.lock.Unlock()

	for _, c := range h.snapshot() {
		c.close()
	}
}
