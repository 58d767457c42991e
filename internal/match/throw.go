package match

import (
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
)

// ChallengeThrow checks a multi-unit throw against every other player's
// hand for a unit any of them could beat outright: a run of the same Kind
// at Count copies or more (for tractors, of the same or greater Length),
// led by a higher card under trump order, within the throw's effective
// suit.
//
// When one or more units are challengeable, the throw downgrades to just
// the weakest challenged unit (smallest size, then lowest leading card)
// and ChallengeThrow reports it along with true. A throw with no
// challengeable unit passes unmodified, reported with false.
func ChallengeThrow(trump cards.Trump, format TrickFormat, opponents []hand.Multiset) (Unit, bool) {
	if !format.IsThrow() {
		return Unit{}, false
	}
	var challenged []Unit
	for _, u := range format.Units {
		for _, opp := range opponents {
			if beatable(trump, format.Suit, u, opp) {
				challenged = append(challenged, u)
				break
			}
		}
	}
	if len(challenged) == 0 {
		return Unit{}, false
	}
	sortUnits(trump, challenged)
	return challenged[0], true
}

// CanBeat reports whether opp holds, among its cards of suit, a run of
// u's shape (or a longer tractor) at a higher rank. It is the per-opponent predicate
// behind ChallengeThrow, exported so the play phase can name the
// defeating player once a unit is challenged.
func CanBeat(trump cards.Trump, suit cards.EffSuit, u Unit, opp hand.Multiset) bool {
	return beatable(trump, suit, u, opp)
}

// beatable reports whether opp holds, among its cards of suit, a run of
// u's shape (or a longer tractor) at a higher rank.
func beatable(trump cards.Trump, suit cards.EffSuit, u Unit, opp hand.Multiset) bool {
	suited := countsOfSuit(trump, opp, suit)
	if u.Kind == UnitRepeated {
		for c, n := range suited {
			if n >= u.Count && cards.Less(trump, u.Card, c) {
				return true
			}
		}
		return false
	}
	// A longer tractor of sufficient count covers the challenged shape
	// too, so only shorter or thinner candidates are ruled out.
	for _, cand := range FindTractors(trump, suited) {
		if len(cand.Members) < len(u.Members) || cand.Count < u.Count {
			continue
		}
		if cards.Less(trump, u.Members[0], cand.Members[0]) {
			return true
		}
	}
	return false
}
