package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// ErrClosed is returned when reading from or writing to a closed link
var ErrClosed = errors.New("link closed")

// Link is a bidirectional, message-oriented connection
// ReadMessage is called from a single goroutine; WriteMessage and Ping may be called concurrently with it.
type Link interface {
	// ReadMessage blocks until a message arrives or the link fails
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	// Ping keeps an idle link alive
	Ping() error
	Close() error
}

type webSocketLink struct {
	conn        *websocket.Conn
	messageType int

	writeLock sync.Mutex
	closeOnce sync.Once
}

func newWebSocketLink(conn *websocket.Conn, binary bool) *webSocketLink {
	messageType := websocket.TextMessage
	if binary {
		messageType = websocket.BinaryMessage
	}

	return &webSocketLink{
		conn:        conn,
		messageType: messageType,
	}
}

// NewServerLink wraps an upgraded connection
// The read deadline is extended every time the peer answers a ping.
func NewServerLink(conn *websocket.Conn, binary bool) Link {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	return newWebSocketLink(conn, binary)
}

// NewClientLink wraps a dialed connection
// The read deadline is extended every time the server pings.
func NewClientLink(conn *websocket.Conn, binary bool) Link {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}

		return err
	})

	return newWebSocketLink(conn, binary)
}

func (w *webSocketLink) ReadMessage() ([]byte, error) {
	for {
		mt, data, err := w.conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		if mt == websocket.TextMessage || mt == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (w *webSocketLink) WriteMessage(data []byte) error {
	return w.write(w.messageType, data)
}

func (w *webSocketLink) Ping() error {
	return w.write(websocket.PingMessage, nil)
}

func (w *webSocketLink) write(messageType int, data []byte) error {
	w.writeLock.Lock()
	defer w.writeLock.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(messageType, data)
}

// Close sends a close frame and closes the underlying connection
func (w *webSocketLink) Close() error {
	err := ErrClosed
	w.closeOnce.Do(func() {
		_ = w.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = w.conn.Close()
	})

	return err
}
