package hand

import "github.com/tractorhub/shengji/internal/cards"

// Deck describes one physical deck contributing to the shoe: whether each
// joker is excluded, and the lowest number present (cards strictly below
// Min are absent; a standard deck has Min == Two).
type Deck struct {
	ExcludeSmallJoker bool
	ExcludeBigJoker   bool
	Min               cards.Number
}

// StandardDeck is a full 54-card deck: both jokers, 2 through Ace.
var StandardDeck = Deck{Min: cards.Two}

func (d Deck) cardSet() []cards.Card {
	var out []cards.Card
	if !d.ExcludeSmallJoker {
		out = append(out, cards.SmallJoker)
	}
	if !d.ExcludeBigJoker {
		out = append(out, cards.BigJoker)
	}
	min := d.Min
	if min < cards.Two {
		min = cards.Two
	}
	for _, s := range []cards.Suit{cards.Club, cards.Diamond, cards.Spade, cards.Heart} {
		for n := min; n <= cards.Ace; n++ {
			out = append(out, cards.Suited(s, n))
		}
	}
	return out
}

// Len returns the number of cards this Deck contributes.
func (d Deck) Len() int { return len(d.cardSet()) }

// PointValue returns the sum of point values of every card this Deck
// contributes.
func (d Deck) PointValue() int {
	total := 0
	for _, c := range d.cardSet() {
		total += c.PointValue()
	}
	return total
}

// ShoeConfig is the ordered list of configured Deck descriptors; the
// overall shoe is their concatenation, padded with StandardDeck up to
// numDecks.
type ShoeConfig struct {
	Decks    []Deck
	NumDecks int
}

// effective returns the per-deck descriptors actually used: the
// configured prefix, padded with StandardDeck entries to NumDecks.
func (s ShoeConfig) effective() []Deck {
	out := append([]Deck(nil), s.Decks...)
	for len(out) < s.NumDecks {
		out = append(out, StandardDeck)
	}
	if s.NumDecks > 0 && len(out) > s.NumDecks {
		out = out[:s.NumDecks]
	}
	return out
}

// Len returns the total number of cards in the configured shoe.
func (s ShoeConfig) Len() int {
	total := 0
	for _, d := range s.effective() {
		total += d.Len()
	}
	return total
}

// PointValue returns the total point value of the configured shoe.
func (s ShoeConfig) PointValue() int {
	total := 0
	for _, d := range s.effective() {
		total += d.PointValue()
	}
	return total
}

// Cards returns the flat (unshuffled) list of cards making up the shoe.
func (s ShoeConfig) Cards() []cards.Card {
	var out []cards.Card
	for _, d := range s.effective() {
		out = append(out, d.cardSet()...)
	}
	return out
}
