package match

import (
	"testing"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
)

var testTrump = cards.StandardTrump(cards.Spade, cards.Four)

func c(s cards.Suit, n cards.Number) cards.Card { return cards.Suited(s, n) }

func TestFindTractorsSimplePair(t *testing.T) {
	counts := hand.Multiset{
		c(cards.Club, cards.Five): 2,
		c(cards.Club, cards.Six):  2,
	}
	found := FindTractors(testTrump, counts)
	if len(found) != 1 {
		t.Fatalf("expected exactly one tractor candidate, got %d", len(found))
	}
	if found[0].Size() != 4 {
		t.Errorf("expected size 4, got %d", found[0].Size())
	}
}

func TestFormatFromLeadPlainTractor(t *testing.T) {
	lead := []cards.Card{
		c(cards.Club, cards.Five), c(cards.Club, cards.Five),
		c(cards.Club, cards.Six), c(cards.Club, cards.Six),
	}
	f, err := FormatFromLead(testTrump, lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Units) != 1 || f.Units[0].Kind != UnitTractor || f.Units[0].Count != 2 {
		t.Fatalf("expected a single count-2 tractor, got %+v", f.Units)
	}
}

func TestFormatFromLeadTractorPlusRepeated(t *testing.T) {
	lead := []cards.Card{
		c(cards.Club, cards.Seven), c(cards.Club, cards.Seven), c(cards.Club, cards.Seven),
		c(cards.Club, cards.Eight), c(cards.Club, cards.Eight),
	}
	f, err := FormatFromLead(testTrump, lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Units) != 2 {
		t.Fatalf("expected 2 units, got %d: %+v", len(f.Units), f.Units)
	}
	// Sorted ascending by size: the Repeated{count:1} unit comes first.
	if f.Units[0].Kind != UnitRepeated || f.Units[0].Count != 1 || f.Units[0].Card != c(cards.Club, cards.Seven) {
		t.Errorf("expected leftover single Seven first, got %+v", f.Units[0])
	}
	if f.Units[1].Kind != UnitTractor || f.Units[1].Count != 2 {
		t.Errorf("expected a count-2 tractor second, got %+v", f.Units[1])
	}
}

func TestFormatFromLeadSingleCard(t *testing.T) {
	f, err := FormatFromLead(testTrump, []cards.Card{c(cards.Heart, cards.King)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Units) != 1 || f.Units[0].Kind != UnitRepeated || f.Units[0].Count != 1 {
		t.Fatalf("expected a single Repeated unit, got %+v", f.Units)
	}
}

func TestCanFollowExactTractorRequired(t *testing.T) {
	lead := []cards.Card{
		c(cards.Club, cards.Five), c(cards.Club, cards.Five),
		c(cards.Club, cards.Six), c(cards.Club, cards.Six),
	}
	format, _ := FormatFromLead(testTrump, lead)

	// Follower holds a matching club tractor: must use it, a non-matching
	// equal-size play is illegal.
	h := hand.Multiset{
		c(cards.Club, cards.Nine): 2,
		c(cards.Club, cards.Ten):  2,
		c(cards.Club, cards.King): 1,
	}
	good := []cards.Card{
		c(cards.Club, cards.Nine), c(cards.Club, cards.Nine),
		c(cards.Club, cards.Ten), c(cards.Club, cards.Ten),
	}
	if !CanFollow(testTrump, h, good, format, NoProtections) {
		t.Errorf("expected matching tractor follow to be legal")
	}

	bad := []cards.Card{
		c(cards.Club, cards.Nine), c(cards.Club, cards.Nine),
		c(cards.Club, cards.Ten), c(cards.Club, cards.King),
	}
	if CanFollow(testTrump, h, bad, format, NoProtections) {
		t.Errorf("expected non-tractor follow to be illegal when a matching tractor is held")
	}
}

func TestCanFollowShortOnSuitMustDumpAll(t *testing.T) {
	lead := []cards.Card{c(cards.Club, cards.Five), c(cards.Club, cards.Five)}
	format, _ := FormatFromLead(testTrump, lead)

	h := hand.Multiset{
		c(cards.Club, cards.Nine): 1,
		c(cards.Heart, cards.Ace): 3,
	}
	full := []cards.Card{c(cards.Club, cards.Nine), c(cards.Heart, cards.Ace)}
	if !CanFollow(testTrump, h, full, format, NoProtections) {
		t.Errorf("expected legal: only one club held, must dump it plus one off-suit card")
	}
	short := []cards.Card{c(cards.Heart, cards.Ace), c(cards.Heart, cards.Ace)}
	if CanFollow(testTrump, h, short, format, NoProtections) {
		t.Errorf("expected illegal: held club was not included in the discard")
	}
}

func TestCanFollowDegradesWhenNoTractorHeld(t *testing.T) {
	lead := []cards.Card{
		c(cards.Club, cards.Five), c(cards.Club, cards.Five),
		c(cards.Club, cards.Six), c(cards.Club, cards.Six),
	}
	format, _ := FormatFromLead(testTrump, lead)

	// Four clubs, no adjacent pairs: any 4 of them should be a legal follow.
	h := hand.Multiset{
		c(cards.Club, cards.Nine): 1,
		c(cards.Club, cards.Jack): 1,
		c(cards.Club, cards.King): 1,
		c(cards.Club, cards.Ace):  1,
	}
	play := []cards.Card{
		c(cards.Club, cards.Nine), c(cards.Club, cards.Jack),
		c(cards.Club, cards.King), c(cards.Club, cards.Ace),
	}
	if !CanFollow(testTrump, h, play, format, NoProtections) {
		t.Errorf("expected legal: hand cannot meet the tractor shape at all")
	}
}

func TestChallengeThrowDowngradesToWeakestBeatenUnit(t *testing.T) {
	lead := []cards.Card{
		c(cards.Club, cards.Five), c(cards.Club, cards.Five),
		c(cards.Club, cards.Nine),
	}
	format, _ := FormatFromLead(testTrump, lead)

	opponent := hand.Multiset{c(cards.Club, cards.Queen): 1}
	unit, challenged := ChallengeThrow(testTrump, format, []hand.Multiset{opponent})
	if !challenged {
		t.Fatalf("expected the single Nine to be challenged by a higher single Queen")
	}
	if unit.Kind != UnitRepeated || unit.Card != c(cards.Club, cards.Nine) {
		t.Errorf("expected the challenged unit to be the lone Nine, got %+v", unit)
	}
}

func TestChallengeThrowPassesWhenUnbeaten(t *testing.T) {
	lead := []cards.Card{
		c(cards.Club, cards.Five), c(cards.Club, cards.Five),
		c(cards.Club, cards.Ace),
	}
	format, _ := FormatFromLead(testTrump, lead)
	opponent := hand.Multiset{c(cards.Club, cards.King): 1}
	_, challenged := ChallengeThrow(testTrump, format, []hand.Multiset{opponent})
	if challenged {
		t.Errorf("expected no challenge: Ace beats opponent's King")
	}
}

func TestWinnerHighestMatchingTractorWins(t *testing.T) {
	lead := []cards.Card{
		c(cards.Club, cards.Five), c(cards.Club, cards.Five),
		c(cards.Club, cards.Six), c(cards.Club, cards.Six),
	}
	format, _ := FormatFromLead(testTrump, lead)

	plays := []Play{
		{Player: 0, Cards: lead},
		{Player: 1, Cards: []cards.Card{
			c(cards.Club, cards.Nine), c(cards.Club, cards.Nine),
			c(cards.Club, cards.Ten), c(cards.Club, cards.Ten),
		}},
		{Player: 2, Cards: []cards.Card{
			c(cards.Heart, cards.Ace), c(cards.Heart, cards.Ace),
			c(cards.Heart, cards.King), c(cards.Heart, cards.King),
		}}, // off-suit, cannot win
	}
	winner, err := Winner(testTrump, format, plays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if winner != 1 {
		t.Errorf("expected player 1 to win with the higher tractor, got %d", winner)
	}
}

func TestCatalogContainsTractorAlternative(t *testing.T) {
	shapes := Catalog(4)
	if len(shapes) == 0 {
		t.Fatalf("expected at least one shape for n=4")
	}
	sawTractor, sawAllSingles := false, false
	for _, s := range shapes {
		if len(s.Units) == 1 && s.Units[0].Kind == UnitTractor && s.Units[0].Length == 2 && s.Units[0].Count == 2 {
			sawTractor = true
		}
		if len(s.Units) == 4 {
			sawAllSingles = true
		}
	}
	if !sawTractor {
		t.Errorf("expected a length-2 count-2 tractor shape among partitions of 4")
	}
	if !sawAllSingles {
		t.Errorf("expected the all-singles partition of 4")
	}
	// Cached: calling again must return the same slice content.
	if again := Catalog(4); len(again) != len(shapes) {
		t.Errorf("expected cached catalog to be stable across calls")
	}
}

func TestChallengeThrowLongerTractorBeatsShorterUnit(t *testing.T) {
	lead := []cards.Card{
		c(cards.Club, cards.Five), c(cards.Club, cards.Five),
		c(cards.Club, cards.Six), c(cards.Club, cards.Six),
		c(cards.Club, cards.Ace),
	}
	format, _ := FormatFromLead(testTrump, lead)

	// A three-long tractor at a higher start covers the thrown two-long
	// shape, so the tractor unit is challengeable.
	opponent := hand.Multiset{
		c(cards.Club, cards.Nine): 2,
		c(cards.Club, cards.Ten):  2,
		c(cards.Club, cards.Jack): 2,
	}
	unit, challenged := ChallengeThrow(testTrump, format, []hand.Multiset{opponent})
	if !challenged {
		t.Fatalf("expected the five-six tractor to be challenged by a longer, higher tractor")
	}
	if unit.Kind != UnitTractor || unit.Members[0] != c(cards.Club, cards.Five) {
		t.Errorf("expected the challenged unit to be the five-six tractor, got %+v", unit)
	}
}
