package deck

import (
	"github.com/stretchr/testify/assert"
	"pokerroom-server/internal/rng"
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := New()

	assert.Equal(t, 52, deck.Remaining())
	assert.Equal(t, Card{Rank: Ace, Suit: Hearts}, deck.Cards[0])
	assert.Equal(t, Card{Rank: King, Suit: Spades}, deck.Cards[51])

	seen := make(map[Card]bool)
	for _, card := range deck.Cards {
		assert.False(t, seen[card], "duplicate card %s", card)
		seen[card] = true
	}
	assert.Len(t, seen, 52)
}

func TestDeck_Shuffle(t *testing.T) {
	a := assert.New(t)

	d1 := New()
	d1.SetGenerator(rng.Seeded(1))
	d1.Shuffle()

	d2 := New()
	d2.SetGenerator(rng.Seeded(1))
	d2.Shuffle()

	a.Equal(d1.HashCode(), d2.HashCode())
	a.NotEqual(New().HashCode(), d1.HashCode())
	a.Equal(52, d1.Remaining())

	// same cards, different order
	seen := make(map[Card]bool)
	for _, card := range d1.Cards {
		seen[card] = true
	}
	a.Len(seen, 52)

	d1.Shuffle()
	a.NotEqual(d2.HashCode(), d1.HashCode())
}

func TestDeck_ShuffleEmpty(t *testing.T) {
	d := NewEmpty()
	d.Shuffle()
	assert.Equal(t, 0, d.Remaining())

	d.AddCard(Card{Rank: 2, Suit: Clubs})
	d.Shuffle()
	assert.Equal(t, Hand{{Rank: 2, Suit: Clubs}}, Hand(d.Cards))
}

func TestDeck_Draw(t *testing.T) {
	deck := New()

	if !deck.CanDraw(52) {
		t.Errorf("expected CanDraw(52) to be true")
	}

	if deck.CanDraw(53) {
		t.Errorf("expected CanDraw(53) to be false")
	}

	card, err := deck.Draw()
	assert.NoError(t, err)
	assert.Equal(t, Card{Rank: King, Suit: Spades}, card, "draws from the end")

	for i := 0; i < 51; i++ {
		_, err := deck.Draw()
		assert.NoError(t, err)
	}

	assert.Equal(t, 0, deck.Remaining())

	card, err = deck.Draw()
	assert.Equal(t, ErrEmptyDeck, err)
	assert.Equal(t, Card{}, card)
}

func TestDeck_AddCard(t *testing.T) {
	discards := NewEmpty()
	d := New()

	for i := 0; i < 3; i++ {
		card, err := d.Draw()
		assert.NoError(t, err)
		discards.AddCard(card)
	}

	assert.Equal(t, 49, d.Remaining())
	assert.Equal(t, 3, discards.Remaining())
	assert.Equal(t, "13s,13c,13d", Hand(discards.Cards).String())
}

func TestDeck_Clone(t *testing.T) {
	d := New()
	c := d.Clone()
	_, _ = c.Draw()

	assert.Equal(t, 52, d.Remaining())
	assert.Equal(t, 51, c.Remaining())
}

func TestDeck_Reset(t *testing.T) {
	d := New()
	d.SetGenerator(rng.Seeded(3))
	d.Shuffle()
	_, _ = d.Draw()

	d.Reset()
	assert.Equal(t, 52, d.Remaining())
	assert.Equal(t, New().HashCode(), d.HashCode())
}
