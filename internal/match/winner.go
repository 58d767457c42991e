package match

import (
	"errors"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
)

// Play is one player's contribution to a trick: the cards they played.
// The leader's Play establishes the trick's format.
type Play struct {
	Player hand.PlayerID
	Cards  []cards.Card
}

// ErrNoPlays is returned by Winner when called with no plays.
var ErrNoPlays = errors.New("match: no plays in trick")

// Winner resolves a completed trick. The lead establishes the format and
// always holds the trick initially. A later play takes it iff its cards
// admit a per-unit assignment — entirely within the led effective suit,
// or entirely within trump (a ruff) — in which every unit's leading card
// is strictly greater than the corresponding unit of the play currently
// holding the trick. The last such play wins. Off-suit discards and
// shape-breaking follows never contend.
func Winner(trump cards.Trump, format TrickFormat, plays []Play) (hand.PlayerID, error) {
	if len(plays) == 0 {
		return 0, ErrNoPlays
	}
	reqs := orderedBySize(format.Requirement())

	suits := []cards.EffSuit{format.Suit}
	if format.Suit != cards.TrumpSuit {
		suits = append(suits, cards.TrumpSuit)
	}

	bestPlayer := plays[0].Player
	bestLeaders, _ := bestLeadersFor(trump, reqs, hand.FromSlice(plays[0].Cards), format.Suit)

	for _, p := range plays[1:] {
		for _, s := range suits {
			leaders, ok := bestLeadersFor(trump, reqs, hand.FromSlice(p.Cards), s)
			if !ok {
				continue
			}
			if allStrictlyGreater(trump, leaders, bestLeaders) {
				bestPlayer, bestLeaders = p.Player, leaders
			}
			break
		}
	}
	return bestPlayer, nil
}

// allStrictlyGreater reports whether every card in challenger outranks its
// counterpart in incumbent under trump's order. A nil incumbent (a lead
// that could not realize its own format, which cannot happen for a
// well-formed trick) loses to any contender.
func allStrictlyGreater(trump cards.Trump, challenger, incumbent []cards.Card) bool {
	if incumbent == nil {
		return true
	}
	for i := range challenger {
		if !cards.Less(trump, incumbent[i], challenger[i]) {
			return false
		}
	}
	return true
}

func orderedBySize(reqs []UnitReq) []UnitReq {
	out := append([]UnitReq(nil), reqs...)
	for i := 0; i < len(out); i++ {
		maxIdx := i
		for j := i + 1; j < len(out); j++ {
			if out[j].Size() > out[maxIdx].Size() {
				maxIdx = j
			}
		}
		out[i], out[maxIdx] = out[maxIdx], out[i]
	}
	return out
}

// bestLeadersFor reports whether counts can realize the shape reqs
// entirely within suit, and if so the highest achievable leading card for
// each requirement (in the given, size-descending order), greedily
// assigning the best available unit to each slot in turn.
func bestLeadersFor(trump cards.Trump, reqs []UnitReq, counts hand.Multiset, suit cards.EffSuit) ([]cards.Card, bool) {
	if counts.Total() != sizeOf(reqs) {
		return nil, false
	}
	for c := range counts {
		if eff, ok := cards.EffectiveSuit(trump, c); !ok || eff != suit {
			return nil, false
		}
	}
	remaining := counts.Clone()
	leaders := make([]cards.Card, 0, len(reqs))
	for _, r := range reqs {
		if r.Kind == UnitTractor && r.Length > 1 {
			cand, ok := bestTractorFor(trump, remaining, r)
			if !ok {
				return nil, false
			}
			leaders = append(leaders, cand.Members[len(cand.Members)-1])
			for _, m := range cand.Members {
				remaining[m] -= r.Count
				if remaining[m] <= 0 {
					delete(remaining, m)
				}
			}
			continue
		}
		c, ok := bestRepeatedFor(trump, remaining, r)
		if !ok {
			return nil, false
		}
		leaders = append(leaders, c)
		remaining[c] -= r.Count
		if remaining[c] <= 0 {
			delete(remaining, c)
		}
	}
	return leaders, true
}

func bestTractorFor(trump cards.Trump, available hand.Multiset, r UnitReq) (TractorCandidate, bool) {
	var best TractorCandidate
	found := false
	for _, cand := range FindTractors(trump, available) {
		if len(cand.Members) != r.Length || cand.Count < r.Count {
			continue
		}
		if !found || cards.Less(trump, best.Members[0], cand.Members[0]) {
			best, found = cand, true
		}
	}
	return best, found
}

func bestRepeatedFor(trump cards.Trump, available hand.Multiset, r UnitReq) (cards.Card, bool) {
	var best cards.Card
	found := false
	for c, n := range available {
		if n < r.Count {
			continue
		}
		if !found || cards.Less(trump, best, c) {
			best, found = c, true
		}
	}
	return best, found
}
