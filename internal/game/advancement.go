package game

import (
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/settings"
)

// mustDefend reports whether rank is a "must-defend" rank under policy:
// always true at maxRank, and also true at any points-number rank (5, 10,
// K) under DefendPoints.
func mustDefend(rank, maxRank cards.Number, policy settings.AdvancementPolicy) bool {
	if rank == maxRank {
		return true
	}
	if policy == settings.AdvancementDefendPoints && rank.PointValue() > 0 {
		return true
	}
	return false
}

// advanceOne returns the next rank above rank, or Ace unchanged: Ace is
// the ceiling and no step wraps past it.
func advanceOne(rank cards.Number) cards.Number {
	if rank >= cards.Ace {
		return cards.Ace
	}
	return rank + 1
}

// advanceRank advances player's rank by k steps under policy. At a
// must-defend rank, non-defenders are blocked unconditionally; defenders
// pass only on the first blocked step of this hand's bump (firstBumpUsed
// is fresh per hand). FullyUnrestricted blocks nothing.
func advanceRank(current cards.Number, k int, isDefending bool, maxRank cards.Number, policy settings.AdvancementPolicy, firstBumpUsed *bool) cards.Number {
	rank := current
	for i := 0; i < k; i++ {
		if mustDefend(rank, maxRank, policy) && policy != settings.AdvancementFullyUnrestricted {
			if !isDefending || *firstBumpUsed {
				return rank
			}
			*firstBumpUsed = true
		}
		rank = advanceOne(rank)
	}
	return rank
}
