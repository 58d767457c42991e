package game

import (
	"fmt"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/scoring"
	"github.com/tractorhub/shengji/internal/settings"
)

// FinishGame computes the hand's outcome once every hand is empty,
// advances ranks, selects the next landlord, and transitions back to
// Initialize preserving settings and roster.
func (g *GameState) FinishGame() ([]Event, error) {
	p, err := g.requirePlay()
	if err != nil {
		return nil, err
	}
	if !allHandsEmpty(p.Hands) || p.Trick != nil {
		return nil, validationErrorf("the hand is not yet complete")
	}
	return g.finishGameWith(p.NonLandlordPoints)
}

// FinishGameEarly is permitted only when no further play could change
// the level-delta outcome: i.e. the current non-landlord points already
// sit in a window whose boundaries can no longer be crossed by the
// points remaining in hands, the kitty, and the current (incomplete)
// trick.
func (g *GameState) FinishGameEarly() ([]Event, error) {
	p, err := g.requirePlay()
	if err != nil {
		return nil, err
	}
	params := scoring.DefaultParameters()
	numDecks := g.Propagated.EffectiveNumDecks(len(g.Roster.Names))
	remaining := remainingPoints(p)
	current := scoring.ComputeLevelDeltas(params, numDecks, p.NonLandlordPoints)
	worstCase := scoring.ComputeLevelDeltas(params, numDecks, p.NonLandlordPoints+remaining)
	if current != worstCase {
		return nil, validationErrorf("remaining points could still change the outcome")
	}
	return g.finishGameWith(p.NonLandlordPoints)
}

func remainingPoints(p *PlayState) int {
	total := 0
	for _, seat := range p.Hands.Players() {
		for c, n := range p.Hands.Of(seat) {
			total += c.PointValue() * n
		}
	}
	if p.Trick != nil {
		for _, play := range p.Trick.Plays {
			for _, c := range play.Cards {
				total += c.PointValue()
			}
		}
	}
	for _, c := range p.Kitty {
		total += c.PointValue() * 2
	}
	return total
}

func (g *GameState) finishGameWith(nonLandlordPoints int) ([]Event, error) {
	p := g.Play
	params := scoring.DefaultParameters()
	numDecks := g.Propagated.EffectiveNumDecks(len(g.Roster.Names))
	params.BonusLevelPolicy = g.Propagated.BonusLevelPolicy
	result := scoring.ComputeLevelDeltas(params, numDecks, nonLandlordPoints)

	teamSize := g.Propagated.EffectiveNumFriends(len(g.Roster.Names)) + 1
	landlordTeamSmaller := g.Propagated.GameMode == settings.ModeFindingFriends && len(p.LandlordsTeam) < teamSize
	result = scoring.ApplyBonus(params, result, landlordTeamSmaller)

	if g.Propagated.JackVariation == settings.JackVariationSingleJack && !result.LandlordWon {
		if g.Roster.Levels[p.Landlord] == cards.Jack && result.NonLandlordDelta <= 1 {
			g.Roster.Levels[p.Landlord] = cards.Two
			for seat := range p.LandlordsTeam {
				g.Roster.Levels[seat] = cards.Two
			}
		}
	}

	g.resetRequestedBy = nil

	for seat := range g.Roster.Levels {
		inTeam := p.LandlordsTeam[seat]
		var k int
		if result.LandlordWon && inTeam {
			k = result.LandlordDelta
		} else if !result.LandlordWon && !inTeam {
			k = result.NonLandlordDelta
		}
		if k <= 0 {
			continue
		}
		// Each hand's bump gets its own first-step allowance.
		used := false
		defending := result.LandlordWon && inTeam
		g.Roster.Levels[seat] = advanceRank(g.Roster.Levels[seat], k, defending, g.Propagated.MaxRank, g.Propagated.AdvancementPolicy, &used)
	}

	nextLandlord := selectNextLandlord(p.Landlord, p.LandlordsTeam, result.LandlordWon, len(g.Roster.Names))

	var events []Event
	if g.Propagated.ShouldRevealKittyAtEnd {
		revealed := make([]string, len(p.Kitty))
		for i, card := range p.Kitty {
			revealed[i] = card.String()
		}
		events = append(events, ev("kitty_revealed", "the kitty is revealed", map[string]any{"cards": revealed}))
	}

	init := newInitializeState()
	init.Landlord = &nextLandlord
	g.Phase = PhaseInitialize
	g.Init = init
	g.Play = nil
	g.Exch = nil
	g.Draw = nil

	events = append(events, ev("game_finished", fmt.Sprintf("hand complete: landlord won %v, non-landlord points %d", result.LandlordWon, nonLandlordPoints),
		map[string]any{"landlord_won": result.LandlordWon, "non_landlord_points": nonLandlordPoints}))
	return events, nil
}

// selectNextLandlord picks the first seat after current whose
// team-membership matches landlordWon: if the landlord team won, the
// next landlord is the next landlord-team seat; otherwise it is the next
// seat outside that team.
func selectNextLandlord(current PlayerID, team map[PlayerID]bool, landlordWon bool, numPlayers int) PlayerID {
	for i := 1; i <= numPlayers; i++ {
		candidate := PlayerID((int(current) + i) % numPlayers)
		if team[candidate] == landlordWon {
			return candidate
		}
	}
	return current
}
