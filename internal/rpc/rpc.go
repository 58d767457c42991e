// Package rpc exposes the pure algorithmic cores — matching, bidding,
// scoring, deck arithmetic — as a stateless request/response surface for
// client-side preview and validation. No room state is read or written.
package rpc

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/tractorhub/shengji/internal/bidding"
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
	"github.com/tractorhub/shengji/internal/match"
	"github.com/tractorhub/shengji/internal/scoring"
	"github.com/tractorhub/shengji/internal/settings"
)

// Request is the tagged union accepted by the compute endpoint. Type
// selects the operation; only the fields that operation reads are
// consulted.
type Request struct {
	Type string `json:"type"`

	Trump        cards.Trump  `json:"trump,omitempty"`
	Cards        []cards.Card `json:"cards,omitempty"`
	Hand         []cards.Card `json:"hand,omitempty"`
	LeadingPlay  []cards.Card `json:"leading_play,omitempty"`
	ProposedPlay []cards.Card `json:"proposed_play,omitempty"`
	DrawPolicy   string       `json:"trick_draw_policy,omitempty"`

	Player        int           `json:"player,omitempty"`
	Bids          []bidding.Bid `json:"bids,omitempty"`
	BidderLevel   cards.Number  `json:"bidder_level,omitempty"`
	LandlordLevel *cards.Number `json:"landlord_level,omitempty"`
	Epoch         int           `json:"epoch,omitempty"`

	NumDecks          int                            `json:"num_decks,omitempty"`
	Params            *scoring.GameScoringParameters `json:"params,omitempty"`
	NonLandlordPoints int                            `json:"non_landlord_points,omitempty"`
	SmallerTeam       bool                           `json:"smaller_team,omitempty"`
	Decks             []hand.Deck                    `json:"decks,omitempty"`
}

// TractorInfo is one viable tractor found in a hand.
type TractorInfo struct {
	Members []cards.Card `json:"members"`
	Count   int          `json:"count"`
}

// CardInfo is the per-card record BatchGetCardInfo returns.
type CardInfo struct {
	Card          string `json:"card"`
	Display       string `json:"display"`
	PointValue    int    `json:"point_value"`
	EffectiveSuit string `json:"effective_suit,omitempty"`
}

// Handler serves the compute endpoint.
type Handler struct{}

// SetupRouter mounts the compute endpoint and a health probe.
func SetupRouter(r *gin.Engine) {
	h := &Handler{}
	api := r.Group("/api/v1")
	{
		api.GET("/health", h.handleHealth)
		api.POST("/compute", h.handleCompute)
	}
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"engine": "Tractor Room Server",
		"capabilities": gin.H{
			"viable_plays":   true,
			"follow_check":   true,
			"bid_validation": true,
			"score_explain":  true,
		},
	})
}

func (h *Handler) handleCompute(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid request body"})
		return
	}
	resp, err := Dispatch(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dispatch routes one request to its pure function. It is exported
// separately from the HTTP plumbing so tests and other transports can
// call the same surface.
func Dispatch(req Request) (any, error) {
	switch req.Type {
	case "find_viable_plays":
		return findViablePlays(req.Trump, req.Cards), nil
	case "decompose_trick_format":
		format, err := match.FormatFromLead(req.Trump, req.Cards)
		if err != nil {
			return nil, err
		}
		return gin.H{"suit": format.Suit, "units": format.Units}, nil
	case "can_play_cards":
		format, err := match.FormatFromLead(req.Trump, req.LeadingPlay)
		if err != nil {
			return nil, err
		}
		legal := match.CanFollow(req.Trump, hand.FromSlice(req.Hand), req.ProposedPlay, format, parseDrawPolicy(req.DrawPolicy))
		return gin.H{"legal": legal}, nil
	case "find_valid_bids":
		valid := bidding.ValidBids(hand.PlayerID(req.Player), req.Bids, hand.FromSlice(req.Hand),
			req.BidderLevel, req.LandlordLevel, req.Epoch,
			settings.BidPolicyJokerOrHigherSuit, settings.ReinforceWhileWinning,
			settings.JokerBidBothTwoOrMore, defaultDecks(req.NumDecks))
		return gin.H{"bids": valid}, nil
	case "sort_and_group_cards":
		return sortAndGroup(req.Trump, req.Cards), nil
	case "next_threshold_reachable":
		p := paramsOrDefault(req.Params)
		return gin.H{"next": scoring.NextRelevantScore(p, defaultDecks(req.NumDecks), req.NonLandlordPoints)}, nil
	case "explain_scoring":
		p := paramsOrDefault(req.Params)
		total := totalPoints(req.Decks, defaultDecks(req.NumDecks))
		return gin.H{"thresholds": scoring.ExplainScoring(p, defaultDecks(req.NumDecks), total)}, nil
	case "compute_score":
		p := paramsOrDefault(req.Params)
		result := scoring.ComputeLevelDeltas(p, defaultDecks(req.NumDecks), req.NonLandlordPoints)
		result = scoring.ApplyBonus(p, result, req.SmallerTeam)
		return gin.H{"result": result}, nil
	case "compute_deck_len":
		shoe := hand.ShoeConfig{Decks: req.Decks, NumDecks: defaultDecks(req.NumDecks)}
		return gin.H{"len": shoe.Len(), "points": shoe.PointValue()}, nil
	case "batch_get_card_info":
		return batchCardInfo(req.Trump, req.Cards), nil
	default:
		return nil, &UnknownRequestError{Type: req.Type}
	}
}

// UnknownRequestError reports an unrecognized request tag.
type UnknownRequestError struct{ Type string }

func (e *UnknownRequestError) Error() string { return "unknown request type " + e.Type }

func parseDrawPolicy(s string) match.DrawPolicy {
	if s == "LongerTuplesProtected" {
		return match.LongerTuplesProtected
	}
	return match.NoProtections
}

func defaultDecks(n int) int {
	if n < 1 {
		return 2
	}
	return n
}

func paramsOrDefault(p *scoring.GameScoringParameters) scoring.GameScoringParameters {
	if p != nil {
		return *p
	}
	return scoring.DefaultParameters()
}

func totalPoints(decks []hand.Deck, numDecks int) int {
	return hand.ShoeConfig{Decks: decks, NumDecks: numDecks}.PointValue()
}

// findViablePlays enumerates every tractor available in the given cards,
// grouped by effective suit.
func findViablePlays(trump cards.Trump, cs []cards.Card) gin.H {
	bySuit := map[cards.EffSuit]hand.Multiset{}
	for _, c := range cs {
		eff, ok := cards.EffectiveSuit(trump, c)
		if !ok {
			continue
		}
		if bySuit[eff] == nil {
			bySuit[eff] = hand.Multiset{}
		}
		bySuit[eff][c]++
	}
	var out []TractorInfo
	for _, counts := range bySuit {
		for _, cand := range match.FindTractors(trump, counts) {
			out = append(out, TractorInfo{Members: cand.Members, Count: cand.Count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Members)*out[i].Count != len(out[j].Members)*out[j].Count {
			return len(out[i].Members)*out[i].Count > len(out[j].Members)*out[j].Count
		}
		return cards.Less(trump, out[i].Members[0], out[j].Members[0])
	})
	return gin.H{"tractors": out}
}

// sortAndGroup splits cards by effective suit, each group sorted by the
// trump order, trump group last.
func sortAndGroup(trump cards.Trump, cs []cards.Card) gin.H {
	type group struct {
		Suit  string       `json:"suit"`
		Cards []cards.Card `json:"cards"`
	}
	bySuit := map[cards.EffSuit][]cards.Card{}
	for _, c := range cs {
		if eff, ok := cards.EffectiveSuit(trump, c); ok {
			bySuit[eff] = append(bySuit[eff], c)
		}
	}
	var groups []group
	for _, s := range []cards.Suit{cards.Club, cards.Diamond, cards.Spade, cards.Heart} {
		if members, ok := bySuit[cards.OrdinarySuit(s)]; ok {
			groups = append(groups, group{Suit: s.String(), Cards: sortCards(trump, members)})
		}
	}
	if members, ok := bySuit[cards.TrumpSuit]; ok {
		groups = append(groups, group{Suit: "trump", Cards: sortCards(trump, members)})
	}
	return gin.H{"groups": groups}
}

func sortCards(trump cards.Trump, cs []cards.Card) []cards.Card {
	out := append([]cards.Card(nil), cs...)
	sort.Slice(out, func(i, j int) bool { return cards.Less(trump, out[i], out[j]) })
	return out
}

func batchCardInfo(trump cards.Trump, cs []cards.Card) gin.H {
	infos := make([]CardInfo, 0, len(cs))
	for _, c := range cs {
		info := CardInfo{
			Card:       string(c.Rune()),
			Display:    c.String(),
			PointValue: c.PointValue(),
		}
		if eff, ok := cards.EffectiveSuit(trump, c); ok {
			if eff.IsTrump {
				info.EffectiveSuit = "trump"
			} else {
				info.EffectiveSuit = eff.Suit.String()
			}
		}
		infos = append(infos, info)
	}
	return gin.H{"cards": infos}
}
