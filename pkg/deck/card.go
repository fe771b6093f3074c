package deck

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suit represents a card suit
type Suit string

// suit constants
const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists the suits in deck order
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// IsValid returns true if the suit is one of the four standard suits
func (s Suit) IsValid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}

	return false
}

// Rank is the face value of a card. Aces are low.
type Rank int

// face cards
const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// IsValid returns true if the rank is between Ace and King
func (r Rank) IsValid() bool {
	return r >= Ace && r <= King
}

// Card is an individual playing card
// Cards are values; two cards are the same card if rank and suit match.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// NewCard returns a validated card
func NewCard(rank Rank, suit Suit) (Card, error) {
	if !rank.IsValid() {
		return Card{}, fmt.Errorf("invalid rank: %d", rank)
	}

	if !suit.IsValid() {
		return Card{}, fmt.Errorf("invalid suit: %q", suit)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

func (c Card) String() string {
	var rank string
	switch c.Rank {
	case Jack:
		rank = "J"
	case Queen:
		rank = "Q"
	case King:
		rank = "K"
	case Ace:
		rank = "A"
	default:
		rank = strconv.Itoa(int(c.Rank))
	}

	var suit string
	switch c.Suit {
	case Clubs:
		suit = "♣"
	case Diamonds:
		suit = "♢"
	case Hearts:
		suit = "♡"
	case Spades:
		suit = "♠"
	default:
		suit = "?"
	}

	return rank + suit
}

type wireCard struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// MarshalJSON encodes the card with a two-digit rank ("01".."13") and a lowercase suit
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{
		Rank: fmt.Sprintf("%02d", c.Rank),
		Suit: string(c.Suit),
	})
}

// UnmarshalJSON decodes a card encoded by MarshalJSON
func (c *Card) UnmarshalJSON(b []byte) error {
	var w wireCard
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	rank, err := strconv.Atoi(w.Rank)
	if err != nil || len(w.Rank) != 2 {
		return fmt.Errorf("invalid rank: %q", w.Rank)
	}

	card, err := NewCard(Rank(rank), Suit(w.Suit))
	if err != nil {
		return err
	}

	*c = card
	return nil
}

var cardRx = regexp.MustCompile(`(?i)^([1-9]|1[0-3])([cdhs])\z`)

// CardFromString returns a Card from the string.
// The string must be in the format of <rank><suit> where rank >= 1 and <= 13 and suit in [cdhs]
func CardFromString(s string) (Card, error) {
	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		return Card{}, fmt.Errorf("could not parse card: %s", s)
	}

	rank, _ := strconv.Atoi(match[1])

	var suit Suit
	switch strings.ToLower(match[2]) {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	}

	return Card{Rank: Rank(rank), Suit: suit}, nil
}

// MustCardsFromString parses a comma-separated list of cards and panics on failure
// This is meant for tests.
func MustCardsFromString(s string) Hand {
	if s == "" {
		return Hand{}
	}

	parts := strings.Split(s, ",")
	cards := make(Hand, len(parts))
	for i, part := range parts {
		card, err := CardFromString(part)
		if err != nil {
			panic(err)
		}

		cards[i] = card
	}

	return cards
}

// CardToString converts a card (Ace of Clubs) to a string (1c)
func CardToString(card Card) string {
	if card.Suit == "" {
		return strconv.Itoa(int(card.Rank))
	}

	return fmt.Sprintf("%d%c", card.Rank, card.Suit[0])
}
