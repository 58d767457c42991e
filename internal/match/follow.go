package match

import (
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
)

// CanFollow reports whether proposal is a legal follow to format, given
// the follower's full hand (still holding the proposed cards) and the
// draw policy in effect.
//
// Algorithm: let n be the format's size, p_S the count of proposal cards
// of the format's effective suit, and h_S the count of hand cards of that
// suit. If p_S < n, the follow is legal only if the player has exhausted
// every on-suit card (h_S == p_S). Otherwise the proposal must consist
// entirely of suit cards, and must match the format's requirement: if the
// hand could have matched the requirement exactly, the proposal must too;
// otherwise the requirement is progressively weakened (largest unit
// first) until either the hand can no longer meet it — in which case any
// on-suit play of the right size is legal — or the hand can meet a
// weakened requirement, in which case the proposal must meet that same
// weakened requirement.
func CanFollow(trump cards.Trump, h hand.Multiset, proposal []cards.Card, format TrickFormat, policy DrawPolicy) bool {
	n := format.TotalSize()
	if len(proposal) != n {
		return false
	}
	proposalCounts := hand.FromSlice(proposal)
	pS := 0
	for c, cnt := range proposalCounts {
		if eff, ok := cards.EffectiveSuit(trump, c); ok && eff == format.Suit {
			pS += cnt
		}
	}
	handSuit := countsOfSuit(trump, h, format.Suit)
	hS := handSuit.Total()

	if pS < n {
		return hS == pS
	}
	if pS != n {
		// Cards outside the format's suit mixed with on-suit cards, but
		// not a full off-suit discard: only legal when exactly n on-suit
		// cards exist to take, handled above; anything else is illegal.
		return false
	}

	reqs := format.Requirement()
	protect := policy.protectLonger()
	for {
		if canSatisfy(trump, handSuit, reqs, protect) {
			return canSatisfy(trump, proposalCounts, reqs, protect) && proposalCounts.Total() == sizeOf(reqs)
		}
		weaker := degradeOnce(reqs)
		if weaker == nil {
			// Hand cannot meet any shape at all; any on-suit play of the
			// right size is legal.
			return true
		}
		reqs = weaker
	}
}

func sizeOf(reqs []UnitReq) int {
	n := 0
	for _, r := range reqs {
		n += r.Size()
	}
	return n
}
