// Package settings implements the policy/settings registry: the bag of
// enum-valued options (PropagatedState) that flows unchanged from one
// hand to the next, plus the validation and change-event recording
// recorded on every change.
package settings

import (
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/scoring"
)

// GameMode selects whether friends are designated dynamically
// (FindingFriends) or fixed by seating parity (Tractor).
type GameMode int

const (
	ModeTractor GameMode = iota
	ModeFindingFriends
)

// KittyPenalty governs how the kitty's point value is multiplied into the
// final trick's award.
type KittyPenalty int

const (
	KittyPenaltyTimes KittyPenalty = iota
	KittyPenaltyPower
)

// ThrowPenalty governs whether a failed throw costs the thrower points.
type ThrowPenalty int

const (
	ThrowPenaltyNone ThrowPenalty = iota
	ThrowPenaltyTenPointsPerAttempt
)

// ThrowEvaluationPolicy governs how a multi-unit throw is ranked against
// defenders for challenge purposes.
type ThrowEvaluationPolicy int

const (
	ThrowEvalAll ThrowEvaluationPolicy = iota
	ThrowEvalHighest
	ThrowEvalTrickUnitLength
)

// AdvancementPolicy governs how rank advancement is blocked at
// must-defend ranks.
type AdvancementPolicy int

const (
	AdvancementUnrestricted AdvancementPolicy = iota
	AdvancementFullyUnrestricted
	AdvancementDefendPoints
)

// FriendSelectionPolicy restricts which cards the landlord may name as
// friend-selection descriptors in Exchange/FindingFriends.
type FriendSelectionPolicy int

const (
	FriendSelectionUnrestricted FriendSelectionPolicy = iota
	FriendSelectionTrumpsIncluded
	FriendSelectionHighestCardNotAllowed
	FriendSelectionPointCardNotAllowed
)

// MultipleJoinPolicy governs whether a single friend-reveal card may
// claim more than one join slot.
type MultipleJoinPolicy int

const (
	MultipleJoinUnrestricted MultipleJoinPolicy = iota
	MultipleJoinNoDoubleJoin
)

// FirstLandlordSelectionPolicy governs who becomes landlord when no
// landlord has been pre-selected.
type FirstLandlordSelectionPolicy int

const (
	FirstLandlordByWinningBid FirstLandlordSelectionPolicy = iota
	FirstLandlordByFirstBid
)

// BidPolicy governs how an equal-count bid may overturn the current top
// bid.
type BidPolicy int

const (
	BidPolicyJokerOrHigherSuit BidPolicy = iota
	BidPolicyJokerOrGreaterLength
	BidPolicyGreaterLength
)

// BidReinforcementPolicy governs whether a player may reinforce their own
// already-winning bid.
type BidReinforcementPolicy int

const (
	ReinforceWhileWinning BidReinforcementPolicy = iota
	OverturnOrReinforceWhileWinning
	ReinforceWhileEquivalent
)

// JokerBidPolicy sets the count threshold a joker bid must meet.
type JokerBidPolicy int

const (
	JokerBidBothTwoOrMore JokerBidPolicy = iota
	JokerBidBothNumDecks
	JokerBidLJNumDecksHJNumDecksLessOne
)

// KittyBidPolicy governs the auto-bid behavior while kitty cards are
// revealed one at a time in Draw when no bid has arrived.
type KittyBidPolicy int

const (
	KittyBidFirstCard KittyBidPolicy = iota
	KittyBidFirstCardOfLevelOrHighest
)

// KittyTheftPolicy governs whether a player other than the current
// exchanger may overbid and take over the kitty in Exchange.
type KittyTheftPolicy int

const (
	KittyTheftAllow KittyTheftPolicy = iota
	KittyTheftNone
)

// PlayTakebackPolicy governs whether a play may be retracted before the
// trick completes.
type PlayTakebackPolicy int

const (
	PlayTakebackAllow PlayTakebackPolicy = iota
	PlayTakebackNone
)

// BidTakebackPolicy governs whether a Draw-phase bid may be retracted.
type BidTakebackPolicy int

const (
	BidTakebackAllow BidTakebackPolicy = iota
	BidTakebackNone
)

// GameShadowingPolicy governs whether a player may hold more than one
// live session simultaneously.
type GameShadowingPolicy int

const (
	ShadowingAllowMultipleSessions GameShadowingPolicy = iota
	ShadowingSingleSessionOnly
)

// GameStartPolicy restricts who may call Initialize.start.
type GameStartPolicy int

const (
	StartAllowAnyPlayer GameStartPolicy = iota
	StartAllowLandlordOnly
)

// BackToTwoSetting is the jack_variation option: a landlord stuck at Jack
// who loses by a single jack of points may be sent back to Two instead of
// demoted by the ordinary step.
type BackToTwoSetting int

const (
	JackVariationDisabled BackToTwoSetting = iota
	JackVariationSingleJack
)

// GameVisibility is informational metadata for a room directory; it has
// no effect on rule enforcement.
type GameVisibility int

const (
	VisibilityPublic GameVisibility = iota
	VisibilityUnlisted
)

// TractorRequirements parametrizes the format/follow matcher. It is
// carried here, rather than hardcoded in internal/match, so a future
// variant ruleset can loosen or tighten worthwhile-tractor detection
// without touching the matcher itself.
type TractorRequirements struct {
	// MinCount is the minimum multiplicity a tractor unit may claim; the
	// matcher's own constant (2) is the only value currently honored.
	MinCount int
}

// DefaultTractorRequirements matches the matcher's built-in assumptions.
var DefaultTractorRequirements = TractorRequirements{MinCount: 2}

// PropagatedState is the bag of policy options that survives from one
// hand to the next within a room, plus the player/observer roster and
// per-hand parameters (num_decks, kitty_size) that are set in Initialize
// and then carried through Draw/Exchange/Play.
type PropagatedState struct {
	GameMode   GameMode
	NumFriends int // meaningful only when GameMode == ModeFindingFriends; 0 means default (players/2 - 1)

	KittySize *int
	NumDecks  *int

	KittyPenalty              KittyPenalty
	ThrowPenalty              ThrowPenalty
	TrickDrawPolicy           int // internal/match.DrawPolicy, held as int to avoid an import cycle
	ThrowEvaluationPolicy     ThrowEvaluationPolicy
	AdvancementPolicy         AdvancementPolicy
	FriendSelectionPolicy     FriendSelectionPolicy
	MultipleJoinPolicy        MultipleJoinPolicy
	FirstLandlordSelection    FirstLandlordSelectionPolicy
	BidPolicy                 BidPolicy
	BidReinforcementPolicy    BidReinforcementPolicy
	JokerBidPolicy            JokerBidPolicy
	KittyBidPolicy            KittyBidPolicy
	KittyTheftPolicy          KittyTheftPolicy
	PlayTakebackPolicy        PlayTakebackPolicy
	BidTakebackPolicy         BidTakebackPolicy
	GameShadowingPolicy       GameShadowingPolicy
	GameStartPolicy           GameStartPolicy
	HideLandlordPoints        bool
	HidePlayedCards           bool
	HideThrowHaltingPlayer    bool
	ShouldRevealKittyAtEnd    bool
	JackVariation             BackToTwoSetting
	MaxRank                   cards.Number
	GameVisibility            GameVisibility
	TractorRequirements       TractorRequirements
	BonusLevelPolicy          scoring.BonusLevelPolicy
}

// Default returns the PropagatedState a freshly-created room starts with.
func Default() PropagatedState {
	return PropagatedState{
		GameMode:            ModeTractor,
		TractorRequirements: DefaultTractorRequirements,
		MaxRank:             cards.Ace,
	}
}

// EffectiveNumFriends returns the configured friend count, or the
// players/2 - 1 default when unset and GameMode is FindingFriends.
func (p PropagatedState) EffectiveNumFriends(numPlayers int) int {
	if p.NumFriends > 0 {
		return p.NumFriends
	}
	return numPlayers/2 - 1
}

// EffectiveKittySize returns the configured kitty size, defaulting to 8.
func (p PropagatedState) EffectiveKittySize() int {
	if p.KittySize != nil {
		return *p.KittySize
	}
	return 8
}

// EffectiveNumDecks returns the configured deck count, defaulting to one
// deck per two players, minimum 2.
func (p PropagatedState) EffectiveNumDecks(numPlayers int) int {
	if p.NumDecks != nil {
		return *p.NumDecks
	}
	n := numPlayers / 2
	if n < 2 {
		n = 2
	}
	return n
}

// Event describes a single settings change as a field name and value.
// The option setters in internal/game report changes as a game Event of
// kind "settings_changed" and do not build this type.
type Event struct {
	Field string
	Value string
}
