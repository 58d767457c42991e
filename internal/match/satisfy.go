package match

import (
	"sort"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
)

// canSatisfy asks whether the shape requirements reqs can be carved out of
// available (a suit-restricted multiset) as a disjoint assignment: each
// Tractor requirement consumes a real adjacency chain discovered via
// FindTractors, each Repeated requirement consumes any single card with
// enough copies left.
//
// When protectLonger is set (the LongerTuplesProtected draw policy), a
// Repeated requirement prefers a card whose remaining count exactly meets
// the requirement over one with surplus copies, so a longer run is not
// broken open to cover a shorter requirement unless nothing else will do.
func canSatisfy(trump cards.Trump, available hand.Multiset, reqs []UnitReq, protectLonger bool) bool {
	if len(reqs) == 0 {
		return true
	}
	// Largest, most constrained requirements first so failure is found fast.
	ordered := append([]UnitReq(nil), reqs...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Size() > ordered[j].Size() })
	return satisfyStep(trump, available, ordered, protectLonger)
}

func satisfyStep(trump cards.Trump, available hand.Multiset, reqs []UnitReq, protectLonger bool) bool {
	if len(reqs) == 0 {
		return true
	}
	req := reqs[0]
	rest := reqs[1:]

	if req.Kind == UnitTractor && req.Length > 1 {
		for _, cand := range FindTractors(trump, available) {
			if len(cand.Members) != req.Length || cand.Count < req.Count {
				continue
			}
			next := available.Clone()
			for _, m := range cand.Members {
				next[m] -= req.Count
				if next[m] <= 0 {
					delete(next, m)
				}
			}
			if satisfyStep(trump, next, rest, protectLonger) {
				return true
			}
		}
		return false
	}

	// Repeated (or a degenerate length-1 "tractor").
	var exact, surplus []cards.Card
	for c, n := range available {
		if n < req.Count {
			continue
		}
		if n == req.Count {
			exact = append(exact, c)
		} else {
			surplus = append(surplus, c)
		}
	}
	order := func(cs []cards.Card) {
		sort.Slice(cs, func(i, j int) bool { return cards.Less(trump, cs[i], cs[j]) })
	}
	order(exact)
	order(surplus)

	try := exact
	if protectLonger {
		try = append(append([]cards.Card{}, exact...), surplus...)
	} else {
		try = append(append([]cards.Card{}, surplus...), exact...)
	}
	for _, c := range try {
		next := available.Clone()
		next[c] -= req.Count
		if next[c] <= 0 {
			delete(next, c)
		}
		if satisfyStep(trump, next, rest, protectLonger) {
			return true
		}
	}
	return false
}
