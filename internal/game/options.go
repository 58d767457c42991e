package game

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/scoring"
	"github.com/tractorhub/shengji/internal/settings"
)

// optionSetters maps every settable policy option to a parser that
// validates the textual value and applies it to the room's propagated
// settings. Options here may only change during Initialize; the
// per-field mutators (SetGameMode, SetNumDecks, SetKittySize,
// SetLandlord, SetRank, Reorder) cover the rest of the pre-deal surface.
var optionSetters = map[string]func(g *GameState, value string) error{
	"game_mode": func(g *GameState, v string) error {
		switch v {
		case "Tractor":
			g.Propagated.GameMode = settings.ModeTractor
		case "FindingFriends":
			g.Propagated.GameMode = settings.ModeFindingFriends
		default:
			return fmt.Errorf("unknown game_mode %q", v)
		}
		return nil
	},
	"kitty_penalty": enumSetter(map[string]settings.KittyPenalty{
		"Times": settings.KittyPenaltyTimes, "Power": settings.KittyPenaltyPower,
	}, func(g *GameState, v settings.KittyPenalty) { g.Propagated.KittyPenalty = v }),
	"throw_penalty": enumSetter(map[string]settings.ThrowPenalty{
		"None": settings.ThrowPenaltyNone, "TenPointsPerAttempt": settings.ThrowPenaltyTenPointsPerAttempt,
	}, func(g *GameState, v settings.ThrowPenalty) { g.Propagated.ThrowPenalty = v }),
	"trick_draw_policy": enumSetter(map[string]int{
		"NoProtections": 0, "LongerTuplesProtected": 1,
	}, func(g *GameState, v int) { g.Propagated.TrickDrawPolicy = v }),
	"throw_evaluation_policy": enumSetter(map[string]settings.ThrowEvaluationPolicy{
		"All": settings.ThrowEvalAll, "Highest": settings.ThrowEvalHighest, "TrickUnitLength": settings.ThrowEvalTrickUnitLength,
	}, func(g *GameState, v settings.ThrowEvaluationPolicy) { g.Propagated.ThrowEvaluationPolicy = v }),
	"advancement_policy": enumSetter(map[string]settings.AdvancementPolicy{
		"Unrestricted": settings.AdvancementUnrestricted, "FullyUnrestricted": settings.AdvancementFullyUnrestricted, "DefendPoints": settings.AdvancementDefendPoints,
	}, func(g *GameState, v settings.AdvancementPolicy) { g.Propagated.AdvancementPolicy = v }),
	"friend_selection_policy": enumSetter(map[string]settings.FriendSelectionPolicy{
		"Unrestricted": settings.FriendSelectionUnrestricted, "TrumpsIncluded": settings.FriendSelectionTrumpsIncluded,
		"HighestCardNotAllowed": settings.FriendSelectionHighestCardNotAllowed, "PointCardNotAllowed": settings.FriendSelectionPointCardNotAllowed,
	}, func(g *GameState, v settings.FriendSelectionPolicy) { g.Propagated.FriendSelectionPolicy = v }),
	"multiple_join_policy": enumSetter(map[string]settings.MultipleJoinPolicy{
		"Unrestricted": settings.MultipleJoinUnrestricted, "NoDoubleJoin": settings.MultipleJoinNoDoubleJoin,
	}, func(g *GameState, v settings.MultipleJoinPolicy) { g.Propagated.MultipleJoinPolicy = v }),
	"first_landlord_selection_policy": enumSetter(map[string]settings.FirstLandlordSelectionPolicy{
		"ByWinningBid": settings.FirstLandlordByWinningBid, "ByFirstBid": settings.FirstLandlordByFirstBid,
	}, func(g *GameState, v settings.FirstLandlordSelectionPolicy) { g.Propagated.FirstLandlordSelection = v }),
	"bid_policy": enumSetter(map[string]settings.BidPolicy{
		"JokerOrHigherSuit": settings.BidPolicyJokerOrHigherSuit, "JokerOrGreaterLength": settings.BidPolicyJokerOrGreaterLength, "GreaterLength": settings.BidPolicyGreaterLength,
	}, func(g *GameState, v settings.BidPolicy) { g.Propagated.BidPolicy = v }),
	"bid_reinforcement_policy": enumSetter(map[string]settings.BidReinforcementPolicy{
		"ReinforceWhileWinning": settings.ReinforceWhileWinning, "OverturnOrReinforceWhileWinning": settings.OverturnOrReinforceWhileWinning, "ReinforceWhileEquivalent": settings.ReinforceWhileEquivalent,
	}, func(g *GameState, v settings.BidReinforcementPolicy) { g.Propagated.BidReinforcementPolicy = v }),
	"joker_bid_policy": enumSetter(map[string]settings.JokerBidPolicy{
		"BothTwoOrMore": settings.JokerBidBothTwoOrMore, "BothNumDecks": settings.JokerBidBothNumDecks, "LJNumDecksHJNumDecksLessOne": settings.JokerBidLJNumDecksHJNumDecksLessOne,
	}, func(g *GameState, v settings.JokerBidPolicy) { g.Propagated.JokerBidPolicy = v }),
	"kitty_bid_policy": enumSetter(map[string]settings.KittyBidPolicy{
		"FirstCard": settings.KittyBidFirstCard, "FirstCardOfLevelOrHighest": settings.KittyBidFirstCardOfLevelOrHighest,
	}, func(g *GameState, v settings.KittyBidPolicy) { g.Propagated.KittyBidPolicy = v }),
	"kitty_theft_policy": enumSetter(map[string]settings.KittyTheftPolicy{
		"AllowKittyTheft": settings.KittyTheftAllow, "NoKittyTheft": settings.KittyTheftNone,
	}, func(g *GameState, v settings.KittyTheftPolicy) { g.Propagated.KittyTheftPolicy = v }),
	"play_takeback_policy": enumSetter(map[string]settings.PlayTakebackPolicy{
		"AllowPlayTakeback": settings.PlayTakebackAllow, "NoPlayTakeback": settings.PlayTakebackNone,
	}, func(g *GameState, v settings.PlayTakebackPolicy) { g.Propagated.PlayTakebackPolicy = v }),
	"bid_takeback_policy": enumSetter(map[string]settings.BidTakebackPolicy{
		"AllowBidTakeback": settings.BidTakebackAllow, "NoBidTakeback": settings.BidTakebackNone,
	}, func(g *GameState, v settings.BidTakebackPolicy) { g.Propagated.BidTakebackPolicy = v }),
	"game_shadowing_policy": enumSetter(map[string]settings.GameShadowingPolicy{
		"AllowMultipleSessions": settings.ShadowingAllowMultipleSessions, "SingleSessionOnly": settings.ShadowingSingleSessionOnly,
	}, func(g *GameState, v settings.GameShadowingPolicy) { g.Propagated.GameShadowingPolicy = v }),
	"game_start_policy": enumSetter(map[string]settings.GameStartPolicy{
		"AllowAnyPlayer": settings.StartAllowAnyPlayer, "AllowLandlordOnly": settings.StartAllowLandlordOnly,
	}, func(g *GameState, v settings.GameStartPolicy) { g.Propagated.GameStartPolicy = v }),
	"jack_variation": enumSetter(map[string]settings.BackToTwoSetting{
		"Disabled": settings.JackVariationDisabled, "SingleJack": settings.JackVariationSingleJack,
	}, func(g *GameState, v settings.BackToTwoSetting) { g.Propagated.JackVariation = v }),
	"game_visibility": enumSetter(map[string]settings.GameVisibility{
		"Public": settings.VisibilityPublic, "Unlisted": settings.VisibilityUnlisted,
	}, func(g *GameState, v settings.GameVisibility) { g.Propagated.GameVisibility = v }),
	"bonus_level_policy": enumSetter(map[string]scoring.BonusLevelPolicy{
		"None": scoring.BonusLevelNone, "BonusLevelForSmallerLandlordTeam": scoring.BonusLevelForSmallerLandlordTeam,
	}, func(g *GameState, v scoring.BonusLevelPolicy) { g.Propagated.BonusLevelPolicy = v }),
	"hide_landlord_points": boolSetter(func(g *GameState, v bool) { g.Propagated.HideLandlordPoints = v }),
	"hide_played_cards":    boolSetter(func(g *GameState, v bool) { g.Propagated.HidePlayedCards = v }),
	"hide_throw_halting_player": boolSetter(func(g *GameState, v bool) {
		g.Propagated.HideThrowHaltingPlayer = v
	}),
	"should_reveal_kitty_at_end_of_game": boolSetter(func(g *GameState, v bool) {
		g.Propagated.ShouldRevealKittyAtEnd = v
	}),
	"max_rank": func(g *GameState, v string) error {
		var n cards.Number
		if err := n.UnmarshalText([]byte(v)); err != nil {
			return err
		}
		g.Propagated.MaxRank = n
		return nil
	},
	"num_friends": func(g *GameState, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("num_friends must be an integer")
		}
		if err := settings.ValidateNumFriends(n, len(g.Roster.Names)); err != nil {
			return err
		}
		g.Propagated.NumFriends = n
		return nil
	},
}

func enumSetter[T any](values map[string]T, apply func(*GameState, T)) func(*GameState, string) error {
	return func(g *GameState, raw string) error {
		v, ok := values[raw]
		if !ok {
			names := make([]string, 0, len(values))
			for k := range values {
				names = append(names, k)
			}
			sort.Strings(names)
			return fmt.Errorf("unknown value %q (want one of %v)", raw, names)
		}
		apply(g, v)
		return nil
	}
}

func boolSetter(apply func(*GameState, bool)) func(*GameState, string) error {
	return func(g *GameState, raw string) error {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("expected a boolean, got %q", raw)
		}
		apply(g, v)
		return nil
	}
}

// SetOption sets one named policy option to the given textual value,
// validating both name and value, and emits the settings-change event.
// Options may only change during Initialize so a mid-hand change can
// never invalidate state derived from the old value.
func (g *GameState) SetOption(field, value string) ([]Event, error) {
	if _, err := g.requireInitialize(); err != nil {
		return nil, err
	}
	setter, ok := optionSetters[field]
	if !ok {
		return nil, validationErrorf("unknown option %q", field)
	}
	if err := setter(g, value); err != nil {
		return nil, validationErrorf("%v", err)
	}
	return []Event{ev("settings_changed", fmt.Sprintf("%s set to %s", field, value),
		map[string]any{"field": field, "value": value})}, nil
}

// OptionNames returns the settable option names, sorted, for discovery.
func OptionNames() []string {
	out := make([]string, 0, len(optionSetters))
	for k := range optionSetters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
