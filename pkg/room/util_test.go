package room

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"pokerroom-server/pkg/lobby"
	"pokerroom-server/pkg/message"
	"pokerroom-server/pkg/transport"
)

const waitFor = time.Second * 2
const tick = time.Millisecond * 5

func testLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

// clock is a settable time source for the dealer
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.StartingStack = 100
	return opts
}

// newTestDealer returns a dealer without a run loop; tests drive it with Tick
func newTestDealer(t *testing.T, opts Options) (*Dealer, *clock) {
	t.Helper()

	c := &clock{t: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := NewDealer("test-room", opts, testLogger())
	d.now = c.now
	t.Cleanup(d.EndShift)

	return d, c
}

// testClient is the far end of a piped connection to a dealer
type testClient struct {
	id    uint64
	codec message.Codec
	conn  *transport.Conn
}

func connect(t *testing.T, d *Dealer, id uint64, codec message.Codec) *testClient {
	t.Helper()

	server, client := transport.Pipe()
	require.NoError(t, d.Connect(id, server, codec))

	return &testClient{id: id, codec: codec, conn: transport.NewConn(client)}
}

func (c *testClient) send(t *testing.T, m message.ServerMessage) {
	t.Helper()

	data, err := c.codec.Encode(m)
	require.NoError(t, err)
	require.True(t, c.conn.Send(data))
}

func (c *testClient) join(t *testing.T, name string) {
	t.Helper()
	c.send(t, message.NewPlayer(lobby.NewPlayer(c.id, name, 0)))
}

func (c *testClient) act(t *testing.T, a lobby.Action) {
	t.Helper()
	c.send(t, message.NewAction(a, c.id))
}

// receive ticks the dealer until the client has a message
func (c *testClient) receive(t *testing.T, d *Dealer) message.ServerMessage {
	t.Helper()

	var data []byte
	require.Eventually(t, func() bool {
		d.Tick()

		var ok bool
		data, ok = c.conn.TryReceive()
		return ok
	}, waitFor, tick)

	m, err := c.codec.Decode(data)
	require.NoError(t, err)

	return m
}

// assertQuiet ticks the dealer for a while and fails if the client hears anything
func (c *testClient) assertQuiet(t *testing.T, d *Dealer) {
	t.Helper()

	for i := 0; i < 10; i++ {
		d.Tick()
		time.Sleep(tick)
		if data, ok := c.conn.TryReceive(); ok {
			m, _ := c.codec.Decode(data)
			t.Fatalf("expected no message, got %s", m.String())
		}
	}
}

// seatAll connects and seats clients 1..n, draining the join traffic
func seatAll(t *testing.T, d *Dealer, names ...string) []*testClient {
	t.Helper()

	clients := make([]*testClient, 0, len(names))
	for i, name := range names {
		c := connect(t, d, uint64(i+1), message.JSON)
		c.join(t, name)
		require.Equal(t, message.TypeSnapshot, c.receive(t, d).Type)

		for _, other := range clients {
			require.Equal(t, message.TypePlayer, other.receive(t, d).Type)
		}

		clients = append(clients, c)
	}

	return clients
}

// startGame has the owner start a hand and drains the start and hand messages
func startGame(t *testing.T, d *Dealer, clients []*testClient) {
	t.Helper()

	clients[0].send(t, message.NewStartGame())
	for _, c := range clients {
		require.Equal(t, message.TypeStartGame, c.receive(t, d).Type)
		require.Equal(t, message.TypeHand, c.receive(t, d).Type)
	}
}

// public strips the private hands from a snapshot
func public(s lobby.Snapshot) lobby.Snapshot {
	players := make([]lobby.Player, len(s.Players))
	copy(players, s.Players)
	for i := range players {
		players[i].Hand = nil
	}

	s.Players = players
	return s
}
