package lobby

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/snapshot"
)

func TestLobby_AddPlayer(t *testing.T) {
	a := assert.New(t)
	l := New(Options{MaxPlayers: 2})

	p, err := l.AddPlayer(NewPlayer(10, "A", DefaultMoney))
	a.NoError(err)
	a.Equal(0, p.Position)
	a.Equal(5000, p.Money)
	a.Equal(uint64(10), l.Owner())

	p, err = l.AddPlayer(NewPlayer(20, "B", 300))
	a.NoError(err)
	a.Equal(1, p.Position)
	a.Equal(uint64(10), l.Owner(), "the first player keeps ownership")

	_, err = l.AddPlayer(NewPlayer(20, "B", 300))
	a.Equal(ErrAlreadySeated, err)

	_, err = l.AddPlayer(NewPlayer(30, "C", 300))
	a.Equal(ErrRoomFull, err)

	_, err = l.AddPlayer(NewPlayer(0, "Z", 300))
	a.Equal(ErrInvalidClientID, err)

	a.Equal(2, l.PlayerCount())
}

func TestLobby_AddPlayerDuringHand(t *testing.T) {
	l := setupHand(100, 100)
	_, err := l.AddPlayer(NewPlayer(9, "Late", 100))
	assert.Equal(t, ErrHandInProgress, err)
}

func TestLobby_UpsertPlayer(t *testing.T) {
	a := assert.New(t)
	l := New(DefaultOptions())

	b := NewPlayer(2, "B", 100)
	b.Position = 1
	a.NoError(l.UpsertPlayer(b))

	c := NewPlayer(1, "A", 100)
	a.NoError(l.UpsertPlayer(c))

	snap := l.Snapshot()
	a.Equal("A", snap.Players[0].Name)
	a.Equal("B", snap.Players[1].Name)

	hand := deck.MustCardsFromString("1s,13h")
	a.NoError(l.SetHand(2, hand))

	b.Money = 40
	a.NoError(l.UpsertPlayer(b))
	p := player(t, l, 2)
	a.Equal(40, p.Money)
	a.Equal(hand, p.Hand, "upsert keeps the private hand")

	a.Equal(ErrInvalidClientID, l.UpsertPlayer(Player{}))
	a.Equal(ErrPlayerNotFound, l.SetHand(7, hand))
}

func TestLobby_StartHand(t *testing.T) {
	a := assert.New(t)

	l := setupLobby(100)
	a.Equal(ErrNotEnoughPlayers, l.StartHand())

	l = setupLobby(0, 100, 100)
	a.NoError(l.StartHand())
	a.True(player(t, l, 1).IsFolded, "broke players sit out")
	a.Equal(1, l.Turn())
	a.Equal(ErrHandInProgress, l.StartHand())

	l = setupLobby(0, 0, 100)
	a.Equal(ErrNotEnoughPlayers, l.StartHand())
}

func TestLobby_StartHandCarriesPot(t *testing.T) {
	a := assert.New(t)
	l := setupHand(100, 100)

	assertPlay(t, l, ActionAllIn, OutcomeTurnAdvanced)
	assertPlay(t, l, ActionAllIn, OutcomeShowdown)

	// nobody was awarded the pot, and nobody can play another hand
	a.Equal(ErrNotEnoughPlayers, l.StartHand())
	a.Equal(200, l.TotalChips())
}

func TestLobby_Deal(t *testing.T) {
	a := assert.New(t)
	l := setupLobby(100, 100, 0)
	a.NoError(l.StartHand())

	hands, err := l.Deal(2)
	a.NoError(err)
	a.Len(hands, 2, "the seat without money is not dealt in")
	a.Len(hands[1], 2)
	a.Len(hands[2], 2)
	a.Equal(48, l.Deck().Remaining())

	seen := make(map[deck.Card]bool)
	for _, hand := range hands {
		for _, card := range hand {
			a.False(seen[card], "card %s dealt twice", card)
			seen[card] = true
		}
	}

	a.Equal(hands[1], player(t, l, 1).Hand)

	_, err = setupLobby(100, 100).Deal(2)
	a.Equal(ErrHandNotInProgress, err)
}

func TestLobby_DealEmptiesDeck(t *testing.T) {
	l := setupHand(100, 100, 100, 100, 100, 100)
	_, err := l.Deal(9)
	assert.True(t, errors.Is(err, deck.ErrEmptyDeck))
}

func TestLobby_FoldMucksHand(t *testing.T) {
	a := assert.New(t)
	l := setupHand(100, 100, 100)
	hands, err := l.Deal(2)
	a.NoError(err)

	assertPlay(t, l, ActionFold, OutcomeTurnAdvanced)
	a.Empty(player(t, l, 1).Hand)
	a.Equal(2, l.discards.Remaining())
	a.True(deck.Hand(l.discards.Cards).HasCard(hands[1][0]))

	assertPlay(t, l, ActionFold, OutcomeHandWon)
	a.Equal(4, l.discards.Remaining())

	a.NoError(l.StartHand())
	a.Equal(52, l.Deck().Remaining(), "a new hand starts from a full deck")
	a.Equal(0, l.discards.Remaining())
}

func TestLobby_DisconnectBeforeHand(t *testing.T) {
	a := assert.New(t)
	l := setupLobby(100, 100, 100)

	outcome, err := l.Disconnect(1)
	a.NoError(err)
	a.Equal(OutcomeSeatRemoved, outcome)
	a.Equal(2, l.PlayerCount())
	a.Equal(uint64(2), l.Owner(), "ownership moves to the lowest seat")

	b := player(t, l, 2)
	c := player(t, l, 3)
	a.Equal(0, b.Position)
	a.Equal(1, c.Position)

	_, err = l.Disconnect(1)
	a.Equal(ErrPlayerNotFound, err)
}

func TestLobby_DisconnectOnTurn(t *testing.T) {
	a := assert.New(t)
	l := setupHand(100, 100, 100)

	outcome, err := l.Disconnect(1)
	a.NoError(err)
	a.Equal(OutcomeTurnAdvanced, outcome)
	a.Equal(1, l.Turn())

	p := player(t, l, 1)
	a.True(p.IsFolded)
	a.True(p.Disconnected)
	a.Equal(3, l.PlayerCount(), "the seat stays until the hand is over")
}

func TestLobby_DisconnectOutOfTurn(t *testing.T) {
	a := assert.New(t)
	l := setupHand(100, 100, 100)
	assertPlay(t, l, RaiseBy(10), OutcomeTurnAdvanced)

	outcome, err := l.Disconnect(3)
	a.NoError(err)
	a.Equal(OutcomeSeatFolded, outcome)
	a.Equal(1, l.Turn(), "the turn does not move")

	outcome, err = l.Disconnect(3)
	a.NoError(err)
	a.Equal(OutcomeSeatFolded, outcome)

	outcome, err = l.Disconnect(2)
	a.NoError(err)
	a.Equal(OutcomeHandWon, outcome)
	a.Equal(100, player(t, l, 1).Money)

	a.Equal(ErrNotEnoughPlayers, l.StartHand(), "both disconnected seats are removed")
	a.Equal(1, l.PlayerCount())
}

func TestLobby_DisconnectedSeatsRemovedOnStart(t *testing.T) {
	a := assert.New(t)
	l := setupHand(100, 100, 100)

	_, err := l.Disconnect(2)
	a.NoError(err)
	assertPlay(t, l, ActionFold, OutcomeHandWon)
	a.Equal(300, l.TotalChips())

	a.NoError(l.StartHand())
	a.Equal(2, l.PlayerCount())
	_, ok := l.Player(2)
	a.False(ok)
}

func TestLobby_SnapshotRestore(t *testing.T) {
	a := assert.New(t)
	server := setupHand(100, 100, 100)
	_, err := server.Deal(2)
	a.NoError(err)
	assertPlay(t, server, RaiseBy(20), OutcomeTurnAdvanced)

	replica := setupLobby(100, 100, 100)
	mine := deck.MustCardsFromString("1c,2c")
	a.NoError(replica.SetHand(2, mine))

	a.NoError(replica.Restore(server.Snapshot()))
	a.Equal(server.Turn(), replica.Turn())
	a.Equal(server.Pot(), replica.Pot())
	a.Equal(server.CurrentBet(), replica.CurrentBet())
	a.True(replica.InProgress())

	// snapshot hands came from the server here, so they win
	a.Equal(player(t, server, 2).Hand, player(t, replica, 2).Hand)

	snap := server.Snapshot()
	for i := range snap.Players {
		snap.Players[i].Hand = nil
	}

	replica = setupLobby(100, 100, 100)
	a.NoError(replica.SetHand(2, mine))
	a.NoError(replica.Restore(snap))
	a.Equal(mine, player(t, replica, 2).Hand, "a wire snapshot keeps the known hand")
}

func TestLobby_RestoreTableRules(t *testing.T) {
	a := assert.New(t)
	server := setupHand(100, 100)

	replica := NewFromDeck(Options{MaxPlayers: 2, BettingRounds: 1}, deck.New())
	a.NoError(replica.Restore(server.Snapshot()))
	a.Equal(DefaultOptions(), replica.options)

	// the replica ends rounds where the server does
	assertPlay(t, replica, ActionCheck, OutcomeTurnAdvanced)
	assertPlay(t, replica, ActionCheck, OutcomeRoundComplete)

	// a peer that does not send the rules leaves them alone
	snap := server.Snapshot()
	snap.MaxPlayers = 0
	snap.BettingRounds = 0
	replica = NewFromDeck(Options{MaxPlayers: 3, BettingRounds: 2}, deck.New())
	a.NoError(replica.Restore(snap))
	a.Equal(Options{MaxPlayers: 3, BettingRounds: 2}, replica.options)
}

func TestSnapshot_JSON(t *testing.T) {
	l := setupHand(100, 100, 100)
	assertPlay(t, l, RaiseBy(20), OutcomeTurnAdvanced)
	assertPlay(t, l, ActionFold, OutcomeTurnAdvanced)

	// hands never leave the server in JSON
	_, err := l.Deal(2)
	assert.NoError(t, err)
	snapshot.ValidateSnapshot(t, l.Snapshot(), 0)
}

func TestSnapshot_Validate(t *testing.T) {
	base := func() Snapshot {
		return setupHand(100, 100).Snapshot()
	}

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"position gap", func(s *Snapshot) { s.Players[1].Position = 2 }},
		{"duplicate client", func(s *Snapshot) { s.Players[1].ClientID = 1 }},
		{"zero client", func(s *Snapshot) { s.Players[0].ClientID = 0 }},
		{"negative money", func(s *Snapshot) { s.Players[0].Money = -1 }},
		{"negative pot", func(s *Snapshot) { s.Pot = -5 }},
		{"turn out of range", func(s *Snapshot) { s.Turn = 2 }},
		{"lonely hand", func(s *Snapshot) { s.Players = s.Players[:1] }},
		{"negative rounds", func(s *Snapshot) { s.BettingRounds = -1 }},
		{"overfull table", func(s *Snapshot) { s.MaxPlayers = 1 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := base()
			test.mutate(&s)
			err := s.Validate()
			assert.True(t, errors.Is(err, ErrInvalidSnapshot), "got %v", err)

			l := setupLobby(100, 100)
			before := l.Snapshot()
			assert.Error(t, l.Restore(s))
			assert.Equal(t, before, l.Snapshot())
		})
	}

	assert.NoError(t, base().Validate())
}
