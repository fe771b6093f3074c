package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pokerroom-server/internal/rng"
	"pokerroom-server/pkg/deck"
)

var playerNames = []string{"A", "B", "C", "D", "E", "F"}

// setupLobby seats one player per stack. Player i has client ID i+1 and name A, B, C...
func setupLobby(stacks ...int) *Lobby {
	d := deck.New()
	d.SetGenerator(rng.Seeded(1))

	l := NewFromDeck(DefaultOptions(), d)
	for i, money := range stacks {
		if _, err := l.AddPlayer(NewPlayer(uint64(i+1), playerNames[i], money)); err != nil {
			panic(err)
		}
	}

	return l
}

// setupHand seats the players and starts a hand
func setupHand(stacks ...int) *Lobby {
	l := setupLobby(stacks...)
	if err := l.StartHand(); err != nil {
		panic(err)
	}

	return l
}

func player(t *testing.T, l *Lobby, clientID uint64) Player {
	t.Helper()
	p, ok := l.Player(clientID)
	if !ok {
		t.Fatalf("player %d not found", clientID)
	}

	return p
}

func assertPlay(t *testing.T, l *Lobby, a Action, expected Outcome, msgAndArgs ...interface{}) {
	t.Helper()
	outcome, err := l.PlayTurn(a)
	assert.NoError(t, err, msgAndArgs...)
	assert.Equal(t, expected, outcome, msgAndArgs...)
}

func assertRejected(t *testing.T, l *Lobby, a Action, code ErrorCode, msgAndArgs ...interface{}) {
	t.Helper()
	before := l.Snapshot()
	outcome, err := l.PlayTurn(a)
	assert.Equal(t, OutcomeNone, outcome, msgAndArgs...)

	actual, ok := CodeOf(err)
	if assert.True(t, ok, "expected an ActionError, got %v", err) {
		assert.Equal(t, code, actual, msgAndArgs...)
	}

	assert.Equal(t, before, l.Snapshot(), "state must not change on error")
}
