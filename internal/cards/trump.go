package cards

// Trump describes the hand's trump configuration: either a standard
// suit+number trump, or a no-trump hand where only a number (if any) is
// elevated.
type Trump struct {
	NoTrump   bool
	Suit      Suit   // meaningful only when !NoTrump
	Number    Number // trump-number; meaningful only when HasNumber
	HasNumber bool
}

// StandardTrump builds a {suit, number} trump.
func StandardTrump(s Suit, n Number) Trump {
	return Trump{Suit: s, Number: n, HasNumber: true}
}

// NoTrumpOf builds a no-trump configuration, optionally elevating a number.
func NoTrumpOf(n Number, hasNumber bool) Trump {
	return Trump{NoTrump: true, Number: n, HasNumber: hasNumber}
}

// EffSuit is a card's effective suit for following purposes: either the
// pseudo-suit Trump, or one of the four ordinary suits.
type EffSuit struct {
	IsTrump bool
	Suit    Suit // meaningful only when !IsTrump
}

var TrumpSuit = EffSuit{IsTrump: true}

func OrdinarySuit(s Suit) EffSuit { return EffSuit{Suit: s} }

// EffectiveSuit returns c's effective suit under trump: jokers and any card
// of the trump-number are Trump; a Suited card of the trump-suit is Trump;
// otherwise its own suit. Unknown has no effective suit and reports the
// zero EffSuit{} with ok=false.
func EffectiveSuit(trump Trump, c Card) (EffSuit, bool) {
	switch c.Kind {
	case KindUnknown:
		return EffSuit{}, false
	case KindSmallJoker, KindBigJoker:
		return TrumpSuit, true
	}
	if trump.HasNumber && c.Number == trump.Number {
		return TrumpSuit, true
	}
	if !trump.NoTrump && c.Suit == trump.Suit {
		return TrumpSuit, true
	}
	return OrdinarySuit(c.Suit), true
}

// isOnSuitTrumpNumber reports whether c is the trump-suit's trump-number
// card, the single card that outranks every other trump-number card.
func isOnSuitTrumpNumber(trump Trump, c Card) bool {
	return !trump.NoTrump && trump.HasNumber && c.Kind == KindSuited &&
		c.Suit == trump.Suit && c.Number == trump.Number
}

// isOffSuitTrumpNumber reports whether c is a trump-number card in a suit
// other than the trump suit (or, in NoTrump, any trump-number card).
func isOffSuitTrumpNumber(trump Trump, c Card) bool {
	if !trump.HasNumber || c.Kind != KindSuited || c.Number != trump.Number {
		return false
	}
	return trump.NoTrump || c.Suit != trump.Suit
}

// suitRotation is the fixed ordinal used to break ties between suits that
// are not individually trump — both for ranking the non-trump effective
// suits against each other and for ordering off-suit trump-number cards
// deterministically.
func suitRotation(s Suit) int {
	switch s {
	case Club:
		return 0
	case Diamond:
		return 1
	case Spade:
		return 2
	case Heart:
		return 3
	default:
		return -1
	}
}

// rankKey computes (bucket, withinBucket, codepoint) for c under trump; the
// total order is the lexicographic comparison of this triple.
func rankKey(trump Trump, c Card) (bucket, within int, cp rune) {
	cp = c.Rune()
	if c.Kind == KindUnknown {
		return -1, 0, cp
	}
	eff, _ := EffectiveSuit(trump, c)
	if !eff.IsTrump {
		return suitRotation(eff.Suit), int(c.Number), cp
	}
	switch {
	case c.Kind == KindBigJoker:
		return 1000, 101, cp
	case c.Kind == KindSmallJoker:
		return 1000, 100, cp
	case isOnSuitTrumpNumber(trump, c):
		return 1000, 99, cp
	case isOffSuitTrumpNumber(trump, c):
		return 1000, 50 + suitRotation(c.Suit), cp
	default:
		// Suited card of the trump suit, not the trump number.
		return 1000, 10 + int(c.Number), cp
	}
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than
// b under trump's total order. The order is total over all cards including
// Unknown, and deterministic via a final code-point tiebreak.
func Compare(trump Trump, a, b Card) int {
	ab, aw, acp := rankKey(trump, a)
	bb, bw, bcp := rankKey(trump, b)
	if ab != bb {
		return cmp(ab, bb)
	}
	if aw != bw {
		return cmp(aw, bw)
	}
	return cmp(int(acp), int(bcp))
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether a ranks strictly below b under trump's order.
func Less(trump Trump, a, b Card) bool { return Compare(trump, a, b) < 0 }

// Successors returns the 0..4 cards immediately above c under the
// successor relation used for tractor detection: within a non-trump suit,
// the next-higher card of the same effective suit (a hole opens where the
// trump-number would sit); an off-suit trump-number's successors are the
// other off-suit trump-numbers; the on-suit trump-number's successor is
// SmallJoker; SmallJoker's successor is BigJoker; BigJoker has none.
func Successors(trump Trump, c Card) []Card {
	switch c.Kind {
	case KindUnknown:
		return nil
	case KindBigJoker:
		return nil
	case KindSmallJoker:
		return []Card{BigJoker}
	}

	if isOnSuitTrumpNumber(trump, c) {
		return []Card{SmallJoker}
	}
	if isOffSuitTrumpNumber(trump, c) {
		var out []Card
		for _, s := range []Suit{Club, Diamond, Spade, Heart} {
			if s == c.Suit {
				continue
			}
			if !trump.NoTrump && s == trump.Suit {
				continue
			}
			out = append(out, Suited(s, trump.Number))
		}
		return out
	}

	eff, _ := EffectiveSuit(trump, c)
	if eff.IsTrump {
		// Suited trump-suit card that is not itself the trump number: the
		// trump number stays inside this suit's effective-suit run (it is
		// only other suits that open a hole at that rank), so the chain
		// runs straight through it.
		next := c.Number + 1
		if next > Ace {
			return nil
		}
		return []Card{Suited(c.Suit, next)}
	}

	next := c.Number + 1
	if next > Ace {
		return nil
	}
	if trump.HasNumber && next == trump.Number {
		return nil
	}
	return []Card{Suited(c.Suit, next)}
}
