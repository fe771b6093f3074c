package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"errors"

	"pokerroom-server/internal/rng"
)

// ErrEmptyDeck is an error when Draw() is attempted and there are no more cards
var ErrEmptyDeck = errors.New("no cards remain in the deck")

// Deck represents an ordered collection of playing cards
type Deck struct {
	Cards []Card `json:"cards"`
	rng   rng.Generator
}

// New returns a new deck of cards.
// Important! this deck is unshuffled. You must call the Shuffle() method to shuffle the cards
func New() *Deck {
	d := &Deck{
		rng: rng.Crypto{},
	}

	d.Reset()
	return d
}

// Reset rebuilds the full, unshuffled 52 card deck
func (d *Deck) Reset() {
	cards := make([]Card, 0, 52)
	for rank := Ace; rank <= King; rank++ {
		for _, suit := range Suits {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}

	d.Cards = cards
}

// NewEmpty returns a deck without cards, e.g., a discard pile
func NewEmpty() *Deck {
	return &Deck{
		Cards: make([]Card, 0, 52),
		rng:   rng.Crypto{},
	}
}

// SetGenerator replaces the random number generator used by Shuffle()
// This should only be used by tests.
func (d *Deck) SetGenerator(g rng.Generator) {
	d.rng = g
}

// Shuffle produces a uniformly random permutation of the current cards
func (d *Deck) Shuffle() {
	if d.rng == nil {
		d.rng = rng.Crypto{}
	}

	for j := len(d.Cards) - 1; j > 0; j-- {
		i := d.rng.Intn(j + 1)

		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Draw removes and returns the last card
// If there are no more cards, ErrEmptyDeck is returned
func (d *Deck) Draw() (Card, error) {
	n := len(d.Cards)
	if n == 0 {
		return Card{}, ErrEmptyDeck
	}

	card := d.Cards[n-1]
	d.Cards = d.Cards[:n-1]

	return card, nil
}

// AddCard appends a card to the deck
// Duplicates are not checked; callers must not insert a card that is already present.
func (d *Deck) AddCard(card Card) {
	d.Cards = append(d.Cards, card)
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.Cards)
}

// CanDraw returns true if there are {want} cards left in the deck
func (d *Deck) CanDraw(want int) bool {
	return len(d.Cards) >= want
}

// HashCode returns a SHA1 hash code of the deck.
func (d *Deck) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range d.Cards {
		_, _ = hash.Write([]byte(card.String()))
	}

	return hex.EncodeToString(hash.Sum(nil))
}

// Clone returns a copy of the deck that shares the generator
func (d *Deck) Clone() *Deck {
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)

	return &Deck{Cards: cards, rng: d.rng}
}
