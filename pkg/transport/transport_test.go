package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = time.Second * 2
const tick = time.Millisecond * 5

func testLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

// receive polls the hub until a packet arrives
func receive(t *testing.T, h *Hub) Packet {
	t.Helper()

	var p Packet
	require.Eventually(t, func() bool {
		var ok bool
		p, ok = h.TryReceive()
		return ok
	}, waitFor, tick)

	return p
}

func receiveConn(t *testing.T, c *Conn) []byte {
	t.Helper()

	var data []byte
	require.Eventually(t, func() bool {
		var ok bool
		data, ok = c.TryReceive()
		return ok
	}, waitFor, tick)

	return data
}

func readLink(t *testing.T, l Link) []byte {
	t.Helper()

	result := make(chan []byte, 1)
	go func() {
		data, _ := l.ReadMessage()
		result <- data
	}()

	select {
	case data := <-result:
		return data
	case <-time.After(waitFor):
		t.Fatal("timed out reading from link")
		return nil
	}
}

func TestPipe(t *testing.T) {
	a := assert.New(t)
	left, right := Pipe()

	buf := []byte("hello")
	a.NoError(left.WriteMessage(buf))
	buf[0] = 'j'
	a.Equal([]byte("hello"), readLink(t, right), "writes are copied")

	a.NoError(right.WriteMessage([]byte("back")))
	a.Equal([]byte("back"), readLink(t, left))
	a.NoError(left.Ping())

	a.NoError(right.Close())
	a.Equal(ErrClosed, left.Close())
	a.Equal(ErrClosed, left.WriteMessage([]byte("x")))
	a.Equal(ErrClosed, left.Ping())

	_, err := left.ReadMessage()
	a.Equal(ErrClosed, err)
}

func TestHub_Lifecycle(t *testing.T) {
	a := assert.New(t)
	h := NewHub(testLogger())
	defer h.Close()

	server, client := Pipe()
	a.NoError(h.Attach(7, server))
	a.Equal(ErrDuplicateClient, h.Attach(7, server))

	p := receive(t, h)
	a.Equal(Packet{ClientID: 7, Kind: Connected}, p)
	a.Equal(1, h.ClientCount())

	a.NoError(client.WriteMessage([]byte("ping")))
	p = receive(t, h)
	a.Equal(Data, p.Kind)
	a.Equal([]byte("ping"), p.Data)

	a.True(h.Send(7, []byte("pong")))
	a.Equal([]byte("pong"), readLink(t, client))
	a.False(h.Send(8, []byte("nobody")))

	_ = client.Close()
	p = receive(t, h)
	a.Equal(Packet{ClientID: 7, Kind: Disconnected}, p)
	a.Eventually(func() bool { return h.ClientCount() == 0 }, waitFor, tick)

	_, ok := h.TryReceive()
	a.False(ok)
}

func TestHub_Broadcast(t *testing.T) {
	a := assert.New(t)
	h := NewHub(testLogger())
	defer h.Close()

	links := make(map[uint64]Link)
	for id := uint64(1); id <= 3; id++ {
		server, client := Pipe()
		a.NoError(h.Attach(id, server))
		links[id] = client
		a.Equal(Connected, receive(t, h).Kind)
	}

	h.Broadcast([]byte("all but two"), func(id uint64) bool { return id != 2 })
	a.Equal([]byte("all but two"), readLink(t, links[1]))
	a.Equal([]byte("all but two"), readLink(t, links[3]))

	h.Broadcast([]byte("everyone"), nil)
	a.Equal([]byte("everyone"), readLink(t, links[2]), "2 never saw the first broadcast")
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := NewHub(testLogger())
	defer h.Close()

	server, _ := Pipe()
	require.NoError(t, h.Attach(1, server))
	assert.Equal(t, Connected, receive(t, h).Kind)

	// nobody reads the other end, so the pipe and then the send buffer fill up
	dropped := false
	for i := 0; i < pipeBuffer+sendBuffer+10 && !dropped; i++ {
		dropped = !h.Send(1, []byte("spam"))
	}

	assert.True(t, dropped)
	assert.Equal(t, Packet{ClientID: 1, Kind: Disconnected}, receive(t, h))
}

func TestHub_Kick(t *testing.T) {
	h := NewHub(testLogger())
	defer h.Close()

	server, client := Pipe()
	require.NoError(t, h.Attach(1, server))
	assert.Equal(t, Connected, receive(t, h).Kind)

	h.Kick(1)
	assert.Equal(t, Disconnected, receive(t, h).Kind)

	_, err := client.ReadMessage()
	assert.Equal(t, ErrClosed, err)
}

func TestHub_Close(t *testing.T) {
	h := NewHub(testLogger())
	server, client := Pipe()
	require.NoError(t, h.Attach(1, server))

	h.Close()
	h.Close()

	_, err := client.ReadMessage()
	assert.Equal(t, ErrClosed, err)

	s2, _ := Pipe()
	assert.Equal(t, ErrHubClosed, h.Attach(2, s2))
}

func TestHub_Pings(t *testing.T) {
	h := NewHub(testLogger())
	h.PingPeriod = time.Millisecond
	defer h.Close()

	server, client := Pipe()
	require.NoError(t, h.Attach(1, server))
	assert.Equal(t, Connected, receive(t, h).Kind)

	_ = client.Close()
	assert.Equal(t, Disconnected, receive(t, h).Kind)
}

func TestConn(t *testing.T) {
	a := assert.New(t)
	server, client := Pipe()
	c := NewConn(client)

	a.True(c.Send([]byte("hi")))
	a.Equal([]byte("hi"), readLink(t, server))

	a.NoError(server.WriteMessage([]byte("welcome")))
	a.Equal([]byte("welcome"), receiveConn(t, c))

	_, ok := c.TryReceive()
	a.False(ok)

	_ = server.Close()
	select {
	case <-c.Done():
	case <-time.After(waitFor):
		t.Fatal("connection did not notice the close")
	}

	a.Equal(ErrClosed, c.Err())
	a.False(c.Send([]byte("late")))
	a.NoError(c.Close())
}

func TestWebSocket_EndToEnd(t *testing.T) {
	a := assert.New(t)
	h := NewHub(testLogger())
	defer h.Close()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		_ = h.Attach(99, NewServerLink(conn, true))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := Dial(context.Background(), url, true)
	require.NoError(t, err)

	a.Equal(Packet{ClientID: 99, Kind: Connected}, receive(t, h))

	a.True(c.Send([]byte{0x1a, 0x00}))
	p := receive(t, h)
	a.Equal(Data, p.Kind)
	a.Equal([]byte{0x1a, 0x00}, p.Data)

	a.True(h.Send(99, []byte{0x08, 0x01}))
	a.Equal([]byte{0x08, 0x01}, receiveConn(t, c))

	a.NoError(c.Close())
	a.Equal(Packet{ClientID: 99, Kind: Disconnected}, receive(t, h))
}

func TestDial_Refused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHub_KickFlushes(t *testing.T) {
	h := NewHub(testLogger())
	defer h.Close()

	server, client := Pipe()
	require.NoError(t, h.Attach(1, server))
	assert.Equal(t, Connected, receive(t, h).Kind)

	assert.True(t, h.Send(1, []byte("goodbye")))
	h.Kick(1)

	assert.Equal(t, []byte("goodbye"), readLink(t, client))
	assert.Equal(t, Disconnected, receive(t, h).Kind)
}
