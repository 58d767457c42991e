package match

import (
	"fmt"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
)

// FormatFromLead decomposes a leading play into its canonical TrickFormat.
// Every card in lead must share the same effective suit; the format's
// suit is taken from the first card.
func FormatFromLead(trump cards.Trump, lead []cards.Card) (TrickFormat, error) {
	if len(lead) == 0 {
		return TrickFormat{}, fmt.Errorf("match: empty lead")
	}
	suit, ok := cards.EffectiveSuit(trump, lead[0])
	if !ok {
		return TrickFormat{}, fmt.Errorf("match: unknown card in lead")
	}
	remaining := hand.FromSlice(lead)

	if len(remaining) == 1 {
		for c, n := range remaining {
			return TrickFormat{Suit: suit, Units: []Unit{{Kind: UnitRepeated, Card: c, Count: n}}}, nil
		}
	}

	var units []Unit
	for {
		candidates := FindTractors(trump, remaining)
		var best TractorCandidate
		found := false
		for _, cand := range candidates {
			if !worthwhile(remaining, cand) {
				continue
			}
			if !found || cand.Size() > best.Size() {
				best, found = cand, true
			} else if cand.Size() == best.Size() {
				if len(cand.Members) > len(best.Members) {
					best = cand
				} else if len(cand.Members) == len(best.Members) && cards.Less(trump, cand.Members[0], best.Members[0]) {
					best = cand
				}
			}
		}
		if !found {
			break
		}
		units = append(units, Unit{Kind: UnitTractor, Count: best.Count, Members: best.Members})
		for _, m := range best.Members {
			remaining[m] -= best.Count
			if remaining[m] <= 0 {
				delete(remaining, m)
			}
		}
	}
	for c, n := range remaining {
		units = append(units, Unit{Kind: UnitRepeated, Card: c, Count: n})
	}
	sortUnits(trump, units)
	return TrickFormat{Suit: suit, Units: units}, nil
}

// worthwhile reports whether extracting cand as a tractor is preferable to
// leaving its members as plain repeated runs: its total size must be at
// least as large as the largest available count among its members.
func worthwhile(remaining hand.Multiset, cand TractorCandidate) bool {
	max := 0
	for _, m := range cand.Members {
		if n := remaining[m]; n > max {
			max = n
		}
	}
	return cand.Size() >= max
}
