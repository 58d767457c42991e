package cards

import "fmt"

// Wire encoding: each Card serializes as a single Unicode playing-card code
// point. Suit blocks follow the standard layout (Spades U+1F0A_, Hearts
// U+1F0B_, Diamonds U+1F0C_, Clubs U+1F0D_); within a block, offset 1 is
// Ace, 2..10 are the pip cards, 11 is Jack, 13 is Queen, 14 is King — offset
// 12 (Knight) is never produced and is rejected on read like any other
// unassigned point in the block. The back-of-card point stands for Unknown;
// the two joker points stand for SmallJoker/BigJoker.

const (
	backOfCard = 0x1F0A0
	redJoker   = 0x1F0BF // used as SmallJoker
	whiteJoker = 0x1F0DF // used as BigJoker

	spadeBase   = 0x1F0A0
	heartBase   = 0x1F0B0
	diamondBase = 0x1F0C0
	clubBase    = 0x1F0D0
)

func suitBase(s Suit) rune {
	switch s {
	case Spade:
		return spadeBase
	case Heart:
		return heartBase
	case Diamond:
		return diamondBase
	case Club:
		return clubBase
	default:
		return 0
	}
}

func numberOffset(n Number) rune {
	switch n {
	case Ace:
		return 1
	case Jack:
		return 11
	case Queen:
		return 13
	case King:
		return 14
	default:
		return rune(n) // Two..Ten == 2..10
	}
}

func offsetNumber(off rune) (Number, bool) {
	switch off {
	case 1:
		return Ace, true
	case 11:
		return Jack, true
	case 13:
		return Queen, true
	case 14:
		return King, true
	case 2, 3, 4, 5, 6, 7, 8, 9, 10:
		return Number(off), true
	default:
		return 0, false
	}
}

// Rune encodes c as its single Unicode playing-card code point.
func (c Card) Rune() rune {
	switch c.Kind {
	case KindUnknown:
		return backOfCard
	case KindSmallJoker:
		return redJoker
	case KindBigJoker:
		return whiteJoker
	default:
		return suitBase(c.Suit) + numberOffset(c.Number)
	}
}

// FromRune decodes a single Unicode playing-card code point into a Card.
// Deserialization is total over the recognized code point set; ok is false
// for any rune outside it.
func FromRune(r rune) (Card, bool) {
	switch r {
	case backOfCard:
		return Unknown, true
	case redJoker:
		return SmallJoker, true
	case whiteJoker:
		return BigJoker, true
	}
	for _, s := range []Suit{Spade, Heart, Diamond, Club} {
		base := suitBase(s)
		if r >= base && r <= base+0xF {
			if n, ok := offsetNumber(r - base); ok {
				return Suited(s, n), true
			}
			return Card{}, false
		}
	}
	return Card{}, false
}

// MarshalText encodes c as its playing-card code point, so cards embed in
// JSON as single-character strings and work as JSON object keys.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(string(c.Rune())), nil
}

// UnmarshalText decodes a single playing-card code point.
func (c *Card) UnmarshalText(b []byte) error {
	rs := []rune(string(b))
	if len(rs) != 1 {
		return fmt.Errorf("cards: %q is not a single playing-card code point", string(b))
	}
	decoded, ok := FromRune(rs[0])
	if !ok {
		return fmt.Errorf("cards: %q is not a recognized playing-card code point", string(b))
	}
	*c = decoded
	return nil
}
