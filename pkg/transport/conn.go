package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is the client side of a link
// Inbound messages are buffered so a game loop can poll them with TryReceive.
type Conn struct {
	link  Link
	inbox chan []byte
	send  chan []byte
	done  chan struct{}
	once  sync.Once

	errLock sync.Mutex
	err     error
}

// Dial connects to a websocket endpoint
func Dial(ctx context.Context, url string, binary bool) (*Conn, error) {
	ws, res, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if res != nil {
			return nil, fmt.Errorf("could not dial %s (status %d): %w", url, res.StatusCode, err)
		}

		return nil, fmt.Errorf("could not dial %s: %w", url, err)
	}

	return NewConn(NewClientLink(ws, binary)), nil
}

// NewConn starts serving an existing link
func NewConn(link Link) *Conn {
	c := &Conn{
		link:  link,
		inbox: make(chan []byte, inboxBuffer),
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
	}

	go c.readLoop()
	go c.writeLoop()

	return c
}

func (c *Conn) readLoop() {
	for {
		data, err := c.link.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}

		select {
		case c.inbox <- data:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case data := <-c.send:
			if err := c.link.WriteMessage(data); err != nil {
				c.fail(err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) fail(err error) {
	c.errLock.Lock()
	if c.err == nil {
		c.err = err
	}
	c.errLock.Unlock()

	c.shutdown()
}

func (c *Conn) shutdown() {
	c.once.Do(func() {
		close(c.done)
		_ = c.link.Close()
	})
}

// Send queues data for the server without blocking
// Returns false if the connection is closed or the buffer is full.
func (c *Conn) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// TryReceive returns the next message if one is waiting
func (c *Conn) TryReceive() ([]byte, bool) {
	select {
	case data := <-c.inbox:
		return data, true
	default:
		return nil, false
	}
}

// Done is closed when the connection is lost or closed
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that ended the connection, if any
func (c *Conn) Err() error {
	c.errLock.Lock()
	defer c.errLock.Unlock()

	return c.err
}

// Close closes the connection
func (c *Conn) Close() error {
	c.shutdown()
	return nil
}
