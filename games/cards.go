package games

import "sennabot/service"

// Card is a single playing card.
type Card struct {
	Rank string
	Suit string
}

var suits = []string{"♠", "♥", "♦", "♣"}
var ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// String renders the card for embeds.
func (c Card) String() string {
	return c.Rank + c.Suit
}

// value returns the blackjack value of the rank, counting aces as 11.
func (c Card) value() int {
	switch c.Rank {
	case "A":
		return 11
	case "K", "Q", "J", "10":
		return 10
	default:
		return int(c.Rank[0] - '0')
	}
}

// Deck is a 52-card shoe that reshuffles itself when exhausted.
type Deck struct {
	cards []Card
	dice  service.Dice
}

// NewDeck builds a shuffled deck.
func NewDeck(dice service.Dice) *Deck {
	d := &Deck{dice: dice}
	d.refill()
	return d
}

func (d *Deck) refill() {
	d.cards = d.cards[:0]
	for _, s := range suits {
		for _, r := range ranks {
			d.cards = append(d.cards, Card{Rank: r, Suit: s})
		}
	}
	// Fisher-Yates
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.dice.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw deals the next card, reshuffling a fresh deck when empty.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		d.refill()
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c
}

// HandValue totals a hand, demoting aces from 11 to 1 while the hand busts.
func HandValue(hand []Card) int {
	total := 0
	aces := 0
	for _, c := range hand {
		total += c.value()
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports a two-card 21.
func IsNatural(hand []Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}
