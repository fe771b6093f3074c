package lobby

import (
	"sort"

	"pokerroom-server/pkg/deck"
)

// Options configures a lobby
type Options struct {
	// MaxPlayers is the number of seats at the table
	MaxPlayers int `yaml:"maxPlayers"`

	// BettingRounds is how many betting rounds a hand has before the showdown
	BettingRounds int `yaml:"bettingRounds"`
}

// DefaultOptions returns the default lobby options
func DefaultOptions() Options {
	return Options{
		MaxPlayers:    6,
		BettingRounds: 4,
	}
}

// Lobby is a poker table: the seats, the deck, the pot and whose turn it is
// A Lobby is owned by a single loop and must not be shared between goroutines.
type Lobby struct {
	options  Options
	players  []*Player
	turn     int
	deck     *deck.Deck
	discards *deck.Deck
	pot      int
	// currentBet is the highest total committed by any player in the betting round
	currentBet int
	round      int
	inProgress bool
	owner      uint64
}

// New returns an empty lobby with a fresh deck
func New(opts Options) *Lobby {
	return NewFromDeck(opts, deck.New())
}

// NewFromDeck returns an empty lobby that deals from d
func NewFromDeck(opts Options, d *deck.Deck) *Lobby {
	defaults := DefaultOptions()
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = defaults.MaxPlayers
	}

	if opts.BettingRounds <= 0 {
		opts.BettingRounds = defaults.BettingRounds
	}

	return &Lobby{
		options:  opts,
		players:  make([]*Player, 0, opts.MaxPlayers),
		deck:     d,
		discards: deck.NewEmpty(),
	}
}

// Turn returns the position of the player who acts next
func (l *Lobby) Turn() int {
	return l.turn
}

// Pot returns the chips committed this hand, plus any pot carried from a previous hand
func (l *Lobby) Pot() int {
	return l.pot
}

// CurrentBet returns the highest total committed by a player in the betting round
func (l *Lobby) CurrentBet() int {
	return l.currentBet
}

// Round returns the zero-based betting round of the hand
func (l *Lobby) Round() int {
	return l.round
}

// InProgress returns true while a hand is being played
func (l *Lobby) InProgress() bool {
	return l.inProgress
}

// Owner returns the client ID allowed to start the game
func (l *Lobby) Owner() uint64 {
	return l.owner
}

// PlayerCount returns the number of seated players
func (l *Lobby) PlayerCount() int {
	return len(l.players)
}

// Deck returns the deck the lobby deals from
func (l *Lobby) Deck() *deck.Deck {
	return l.deck
}

// Player returns a copy of the player with the client ID
func (l *Lobby) Player(clientID uint64) (Player, bool) {
	p := l.findPlayer(clientID)
	if p == nil {
		return Player{}, false
	}

	return p.clone(), true
}

// PlayerAt returns a copy of the player seated at position
func (l *Lobby) PlayerAt(position int) (Player, bool) {
	if position < 0 || position >= len(l.players) {
		return Player{}, false
	}

	return l.players[position].clone(), true
}

// CurrentPlayer returns a copy of the player whose turn it is
func (l *Lobby) CurrentPlayer() (Player, bool) {
	if !l.inProgress {
		return Player{}, false
	}

	return l.PlayerAt(l.turn)
}

// IsClientTurn returns true if the client is the seat at the turn index of a running hand
func (l *Lobby) IsClientTurn(clientID uint64) bool {
	p, ok := l.CurrentPlayer()
	return ok && p.ClientID == clientID
}

// TotalChips returns every chip on the table: all stacks plus the pot
func (l *Lobby) TotalChips() int {
	total := l.pot
	for _, p := range l.players {
		total += p.Money
	}

	return total
}

func (l *Lobby) findPlayer(clientID uint64) *Player {
	for _, p := range l.players {
		if p.ClientID == clientID {
			return p
		}
	}

	return nil
}

// AddPlayer seats a new player at the lowest free position
// This is the authoritative join; replicas use UpsertPlayer with the result.
func (l *Lobby) AddPlayer(p Player) (Player, error) {
	if p.ClientID == 0 {
		return Player{}, ErrInvalidClientID
	}

	if l.inProgress {
		return Player{}, ErrHandInProgress
	}

	if l.findPlayer(p.ClientID) != nil {
		return Player{}, ErrAlreadySeated
	}

	if len(l.players) >= l.options.MaxPlayers {
		return Player{}, ErrRoomFull
	}

	seated := &Player{
		Name:     p.Name,
		Money:    p.Money,
		Position: len(l.players),
		ClientID: p.ClientID,
	}

	l.players = append(l.players, seated)
	if l.owner == 0 {
		l.owner = seated.ClientID
	}

	return seated.clone(), nil
}

// UpsertPlayer applies a player as assigned by the server
// The player's hand is kept if the client ID is already seated.
func (l *Lobby) UpsertPlayer(p Player) error {
	if p.ClientID == 0 {
		return ErrInvalidClientID
	}

	if existing := l.findPlayer(p.ClientID); existing != nil {
		hand := existing.Hand
		*existing = p
		existing.Hand = hand
	} else {
		cp := p.clone()
		l.players = append(l.players, &cp)
	}

	sort.SliceStable(l.players, func(i, j int) bool {
		return l.players[i].Position < l.players[j].Position
	})

	if l.owner == 0 {
		l.owner = l.players[0].ClientID
	}

	return nil
}

// SetHand replaces the hand of the player
func (l *Lobby) SetHand(clientID uint64, hand deck.Hand) error {
	p := l.findPlayer(clientID)
	if p == nil {
		return ErrPlayerNotFound
	}

	p.Hand = hand.Clone()
	return nil
}

// removePlayer deletes the seat and closes the gap so positions stay contiguous
func (l *Lobby) removePlayer(clientID uint64) bool {
	index := -1
	for i, p := range l.players {
		if p.ClientID == clientID {
			index = i
			break
		}
	}

	if index < 0 {
		return false
	}

	l.players = append(l.players[:index], l.players[index+1:]...)
	for i, p := range l.players {
		p.Position = i
	}

	if l.turn > index || l.turn >= len(l.players) {
		l.turn--
	}

	if l.turn < 0 {
		l.turn = 0
	}

	if l.owner == clientID {
		l.owner = 0
		if len(l.players) > 0 {
			l.owner = l.players[0].ClientID
		}
	}

	return true
}

// Disconnect converts a lost connection into a state change
// Before a hand starts the seat is removed. During a hand the seat is folded, and if it was that seat's
// turn the turn advances as with any fold.
func (l *Lobby) Disconnect(clientID uint64) (Outcome, error) {
	p := l.findPlayer(clientID)
	if p == nil {
		return OutcomeNone, ErrPlayerNotFound
	}

	if !l.inProgress {
		l.removePlayer(clientID)
		return OutcomeSeatRemoved, nil
	}

	p.Disconnected = true
	if p.IsFolded {
		return OutcomeSeatFolded, nil
	}

	if l.players[l.turn] == p {
		return l.PlayTurn(ActionFold)
	}

	l.fold(p)
	if l.activeCount() == 1 {
		l.finishHandWon()
		return OutcomeHandWon, nil
	}

	return OutcomeSeatFolded, nil
}

// StartHand begins a new hand
// Disconnected seats are removed, players without money sit out, and the deck is rebuilt.
func (l *Lobby) StartHand() error {
	if l.inProgress {
		return ErrHandInProgress
	}

	for _, p := range append([]*Player(nil), l.players...) {
		if p.Disconnected {
			l.removePlayer(p.ClientID)
		}
	}

	withMoney := 0
	for _, p := range l.players {
		if p.Money > 0 {
			withMoney++
		}
	}

	if withMoney < 2 {
		return ErrNotEnoughPlayers
	}

	l.deck.Reset()
	l.discards = deck.NewEmpty()

	for _, p := range l.players {
		p.Hand = nil
		p.IsFolded = p.Money == 0
		p.IsAllIn = false
		p.BetThisTurn = 0
		p.Acted = false
	}

	l.currentBet = 0
	l.round = 0
	l.inProgress = true
	l.turn = l.firstToAct()

	return nil
}

// Deal shuffles the deck and deals n cards to every player still in the hand
// Only the server deals; replicas learn their own hand through SetHand.
func (l *Lobby) Deal(n int) (map[uint64]deck.Hand, error) {
	if !l.inProgress {
		return nil, ErrHandNotInProgress
	}

	l.deck.Shuffle()

	hands := make(map[uint64]deck.Hand)
	for i := 0; i < n; i++ {
		for _, p := range l.players {
			if p.IsFolded {
				continue
			}

			card, err := l.deck.Draw()
			if err != nil {
				return nil, err
			}

			p.Hand.AddCard(card)
		}
	}

	for _, p := range l.players {
		if !p.IsFolded {
			hands[p.ClientID] = p.Hand.Clone()
		}
	}

	return hands, nil
}

// AwardPot splits the pot between the winners after a showdown
// Scoring hands is left to the caller. Any remainder goes to the winner seated lowest.
func (l *Lobby) AwardPot(clientIDs ...uint64) error {
	if l.inProgress {
		return ErrHandInProgress
	}

	winners := make([]*Player, 0, len(clientIDs))
	seen := make(map[uint64]bool, len(clientIDs))
	for _, id := range clientIDs {
		p := l.findPlayer(id)
		if p == nil {
			return ErrPlayerNotFound
		}

		if p.IsFolded || seen[id] {
			return ErrInvalidWinner
		}
		seen[id] = true

		winners = append(winners, p)
	}

	if len(winners) == 0 {
		return ErrPlayerNotFound
	}

	sort.Slice(winners, func(i, j int) bool {
		return winners[i].Position < winners[j].Position
	})

	share := l.pot / len(winners)
	remainder := l.pot % len(winners)
	for _, w := range winners {
		w.Money += share
	}
	winners[0].Money += remainder
	l.pot = 0

	return nil
}
