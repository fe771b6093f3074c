package lobby

import (
	"fmt"
	"sort"
)

// Snapshot is a read-only copy of the lobby for display and for resynchronizing replicas
type Snapshot struct {
	Players    []Player `json:"players"`
	Turn       int      `json:"turn"`
	Pot        int      `json:"pot"`
	CurrentBet int      `json:"currentBet"`
	Round      int      `json:"round"`
	InProgress bool     `json:"inProgress"`
	Owner      uint64   `json:"owner,string"`

	// the table rules travel with the state so replicas advance rounds the way the server does
	MaxPlayers    int `json:"maxPlayers,omitempty"`
	BettingRounds int `json:"bettingRounds,omitempty"`
}

// Snapshot returns a deep copy of the lobby state
func (l *Lobby) Snapshot() Snapshot {
	players := make([]Player, len(l.players))
	for i, p := range l.players {
		players[i] = p.clone()
	}

	return Snapshot{
		Players:    players,
		Turn:       l.turn,
		Pot:        l.pot,
		CurrentBet: l.currentBet,
		Round:      l.round,
		InProgress: l.inProgress,
		Owner:      l.owner,

		MaxPlayers:    l.options.MaxPlayers,
		BettingRounds: l.options.BettingRounds,
	}
}

// Player returns the player with the client ID from the snapshot
func (s Snapshot) Player(clientID uint64) (Player, bool) {
	for _, p := range s.Players {
		if p.ClientID == clientID {
			return p, true
		}
	}

	return Player{}, false
}

// Validate checks the snapshot against the lobby invariants
func (s Snapshot) Validate() error {
	seen := make(map[uint64]bool)
	for i, p := range s.Players {
		if p.Position != i {
			return fmt.Errorf("%w: player %d is at position %d", ErrInvalidSnapshot, i, p.Position)
		}

		if p.ClientID == 0 || seen[p.ClientID] {
			return fmt.Errorf("%w: bad client ID at position %d", ErrInvalidSnapshot, i)
		}
		seen[p.ClientID] = true

		if p.Money < 0 || p.BetThisTurn < 0 {
			return fmt.Errorf("%w: negative chips at position %d", ErrInvalidSnapshot, i)
		}
	}

	if s.Pot < 0 || s.CurrentBet < 0 {
		return fmt.Errorf("%w: negative pot or bet", ErrInvalidSnapshot)
	}

	if len(s.Players) > 0 && (s.Turn < 0 || s.Turn >= len(s.Players)) {
		return fmt.Errorf("%w: turn %d out of range", ErrInvalidSnapshot, s.Turn)
	}

	if s.MaxPlayers < 0 || s.BettingRounds < 0 {
		return fmt.Errorf("%w: negative table rules", ErrInvalidSnapshot)
	}

	if s.MaxPlayers > 0 && len(s.Players) > s.MaxPlayers {
		return fmt.Errorf("%w: %d players at a table for %d", ErrInvalidSnapshot, len(s.Players), s.MaxPlayers)
	}

	if s.InProgress && len(s.Players) < 2 {
		return fmt.Errorf("%w: hand in progress with %d players", ErrInvalidSnapshot, len(s.Players))
	}

	return nil
}

// Restore replaces the lobby state with an authoritative snapshot
// Hands are not part of the wire format, so a player's known hand is kept when the snapshot has none.
// Table rules missing from the snapshot keep their current values.
func (l *Lobby) Restore(s Snapshot) error {
	players := make([]Player, len(s.Players))
	copy(players, s.Players)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Position < players[j].Position
	})
	s.Players = players

	if err := s.Validate(); err != nil {
		return err
	}

	restored := make([]*Player, len(players))
	for i := range players {
		p := players[i].clone()
		if existing := l.findPlayer(p.ClientID); existing != nil && len(p.Hand) == 0 {
			p.Hand = existing.Hand.Clone()
		}

		restored[i] = &p
	}

	l.players = restored
	l.turn = s.Turn
	l.pot = s.Pot
	l.currentBet = s.CurrentBet
	l.round = s.Round
	l.inProgress = s.InProgress
	l.owner = s.Owner

	if s.MaxPlayers > 0 {
		l.options.MaxPlayers = s.MaxPlayers
	}

	if s.BettingRounds > 0 {
		l.options.BettingRounds = s.BettingRounds
	}

	return nil
}
