package match

import (
	"sort"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
)

// TractorCandidate is one adjacency chain discovered in a multiset: a
// sequence of cards consecutive under the successor relation, each
// appearing at least Count times.
type TractorCandidate struct {
	Members []cards.Card
	Count   int
}

func (t TractorCandidate) Size() int { return len(t.Members) * t.Count }

// FindTractors enumerates every tractor candidate available in counts
// (assumed already restricted to a single effective suit). It performs a
// depth-first walk from every card with count >= 2, following every
// successor that also has count >= 2, recording every path of length >= 2
// along with the minimum shared count across its members.
func FindTractors(trump cards.Trump, counts hand.Multiset) []TractorCandidate {
	var out []TractorCandidate
	var starts []cards.Card
	for c, n := range counts {
		if n >= 2 {
			starts = append(starts, c)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return cards.Less(trump, starts[i], starts[j]) })

	for _, c := range starts {
		walkTractors(trump, counts, []cards.Card{c}, counts[c], &out)
	}
	return out
}

func walkTractors(trump cards.Trump, counts hand.Multiset, path []cards.Card, minCount int, out *[]TractorCandidate) {
	if len(path) >= 2 {
		*out = append(*out, TractorCandidate{
			Members: append([]cards.Card(nil), path...),
			Count:   minCount,
		})
	}
	last := path[len(path)-1]
	for _, succ := range cards.Successors(trump, last) {
		n, ok := counts[succ]
		if !ok || n < 2 {
			continue
		}
		next := minCount
		if n < next {
			next = n
		}
		nextPath := append(append([]cards.Card(nil), path...), succ)
		walkTractors(trump, counts, nextPath, next, out)
	}
}

// LargestTractor returns the tractor candidate with the greatest size,
// breaking ties by member count (preferring longer chains) and then by
// leading card under trump order. It reports false when candidates is
// empty.
func LargestTractor(trump cards.Trump, candidates []TractorCandidate) (TractorCandidate, bool) {
	if len(candidates) == 0 {
		return TractorCandidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Size() > best.Size() {
			best = c
			continue
		}
		if c.Size() < best.Size() {
			continue
		}
		if len(c.Members) > len(best.Members) {
			best = c
			continue
		}
		if len(c.Members) < len(best.Members) {
			continue
		}
		if cards.Less(trump, c.Members[0], best.Members[0]) {
			best = c
		}
	}
	return best, true
}
