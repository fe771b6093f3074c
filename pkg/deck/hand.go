package deck

import (
	"fmt"
	"strings"
)

// Hand is the cards a player holds, in the order they were dealt
type Hand []Card

// AddCard adds a card to the hand
func (h *Hand) AddCard(card Card) {
	*h = append(*h, card)
}

// HasCard returns true if the hand contains the specified card
func (h Hand) HasCard(card Card) bool {
	for _, c := range h {
		if c == card {
			return true
		}
	}

	return false
}

// Validate returns an error for the first card that is not one of the 52, or for a card held twice
func (h Hand) Validate() error {
	seen := make(map[Card]bool, len(h))
	for i, c := range h {
		if _, err := NewCard(c.Rank, c.Suit); err != nil {
			return fmt.Errorf("card %d: %w", i, err)
		}

		if seen[c] {
			return fmt.Errorf("card %d: %s is held twice", i, c.String())
		}

		seen[c] = true
	}

	return nil
}

func (h Hand) String() string {
	c := make([]string, len(h))
	for i, card := range h {
		c[i] = CardToString(card)
	}

	return strings.Join(c, ",")
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}

	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}
