package lobby

import (
	"pokerroom-server/pkg/deck"
)

// DefaultMoney is the stack a player sits down with unless configured otherwise
const DefaultMoney = 5000

// Player is the state of a single seat
type Player struct {
	Name string `json:"name"`
	// Hand is only known to the player holding it and the server
	Hand        deck.Hand `json:"-"`
	Money       int       `json:"money"`
	Position    int       `json:"position"`
	IsFolded    bool      `json:"isFolded"`
	IsAllIn     bool      `json:"isAllIn"`
	BetThisTurn int       `json:"betThisTurn"`
	// ClientID is the only identifier that is stable across network messages
	ClientID uint64 `json:"clientId,string"`

	// Acted is true once the player has acted in the current betting round
	Acted        bool `json:"acted"`
	Disconnected bool `json:"disconnected"`
}

// NewPlayer returns a player that has not been seated
func NewPlayer(clientID uint64, name string, money int) Player {
	return Player{
		Name:     name,
		Money:    money,
		ClientID: clientID,
	}
}

// CanAct returns true if the player still makes decisions this hand
func (p *Player) CanAct() bool {
	return !p.IsFolded && !p.IsAllIn
}

// commit moves chips from the player's stack into their bet
// returns the amount moved
func (p *Player) commit(amount int) int {
	p.Money -= amount
	p.BetThisTurn += amount
	if p.Money == 0 {
		p.IsAllIn = true
	}

	return amount
}

func (p *Player) clone() Player {
	cp := *p
	cp.Hand = p.Hand.Clone()
	return cp
}
