package game

import (
	"fmt"

	"github.com/tractorhub/shengji/internal/bidding"
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
	"github.com/tractorhub/shengji/internal/settings"
)

// ExchangeState is the Exchange phase: the exchanger swaps cards with the
// kitty, the landlord (in FindingFriends mode) names friend descriptors,
// and — if KittyTheftPolicy allows — another player may overbid and take
// over as exchanger before the hand advances to Play.
//
// Landlord is fixed when Draw advances and never changes afterward; theft
// reassigns Exchanger and the trump suit, not the landlord seat.
type ExchangeState struct {
	Hands      *hand.Hand
	Kitty      []cards.Card // empty while the exchanger holds the kitty in hand
	KittySize  int
	Landlord   PlayerID
	Exchanger  PlayerID
	Trump      cards.Trump
	WinningBid Bid
	Epoch      int

	Finalized bool
	Friends   []FriendSelection
}

func (g *GameState) requireExchange() (*ExchangeState, error) {
	if g.Phase != PhaseExchange {
		return nil, validationErrorf("not in Exchange phase")
	}
	return g.Exch, nil
}

// PutInHand moves the kitty into the exchanger's hand so they can freely
// choose what to discard back.
func (g *GameState) PutInHand(caller PlayerID) ([]Event, error) {
	e, err := g.requireExchange()
	if err != nil {
		return nil, err
	}
	if caller != e.Exchanger {
		return nil, validationErrorf("only the exchanger may take the kitty")
	}
	if e.Finalized {
		return nil, validationErrorf("exchange already finalized")
	}
	if len(e.Kitty) == 0 {
		return nil, validationErrorf("the kitty has already been taken")
	}
	if err := e.Hands.Add(caller, e.Kitty); err != nil {
		return nil, invariantErrorf("%v", err)
	}
	e.Kitty = nil
	return []Event{ev("kitty_taken", fmt.Sprintf("%d picked up the kitty", caller), nil)}, nil
}

// FinalizeExchange discards the exchanger's chosen cards back into the
// kitty, restoring it to the configured kitty size.
func (g *GameState) FinalizeExchange(caller PlayerID, discard []cards.Card) ([]Event, error) {
	e, err := g.requireExchange()
	if err != nil {
		return nil, err
	}
	if caller != e.Exchanger {
		return nil, validationErrorf("only the exchanger may finalize the exchange")
	}
	if e.Finalized {
		return nil, validationErrorf("exchange already finalized")
	}
	if len(e.Kitty) != 0 {
		return nil, validationErrorf("the kitty has not been picked up yet")
	}
	if len(discard) != e.KittySize {
		return nil, validationErrorf("must discard exactly %d cards back to the kitty", e.KittySize)
	}
	if err := e.Hands.Remove(caller, discard); err != nil {
		return nil, validationErrorf("%v", err)
	}
	e.Kitty = append([]cards.Card(nil), discard...)
	e.Finalized = true
	return []Event{ev("exchange_finalized", fmt.Sprintf("%d finalized the kitty exchange", caller), nil)}, nil
}

// Overbid lets another player take over as exchanger after finalize, when
// KittyTheftPolicy allows it: their bid must beat the current winning bid
// under the same bidding rules, in a fresh epoch. The thief immediately
// picks up the finalized kitty and must finalize again themselves.
func (g *GameState) Overbid(caller PlayerID, card cards.Card, count int) ([]Event, error) {
	e, err := g.requireExchange()
	if err != nil {
		return nil, err
	}
	if g.Propagated.KittyTheftPolicy != settings.KittyTheftAllow {
		return nil, validationErrorf("kitty theft is not allowed")
	}
	if !e.Finalized {
		return nil, validationErrorf("cannot overbid before the current exchanger finalizes")
	}
	own := e.Hands.Of(caller)
	landlordLevel := g.Roster.Levels[e.Landlord]
	prior := []Bid{{Player: e.WinningBid.Player, Card: e.WinningBid.Card, Count: e.WinningBid.Count, Epoch: e.Epoch}}
	legal := bidding.ValidBids(caller, prior, own, g.Roster.Levels[caller], &landlordLevel, e.Epoch,
		g.Propagated.BidPolicy, g.Propagated.BidReinforcementPolicy, g.Propagated.JokerBidPolicy,
		g.Propagated.EffectiveNumDecks(len(g.Roster.Names)))
	ok := false
	for _, b := range legal {
		if b.Card == card && b.Count == count && b.Player != e.WinningBid.Player {
			ok = true
			break
		}
	}
	if !ok {
		return nil, validationErrorf("that overbid is not currently legal")
	}

	e.Epoch++
	e.Exchanger = caller
	e.WinningBid = Bid{Player: caller, Card: card, Count: count, Epoch: e.Epoch}
	if card.IsJoker() {
		e.Trump = cards.NoTrumpOf(landlordLevel, true)
	} else {
		e.Trump = cards.StandardTrump(card.Suit, landlordLevel)
	}
	e.Finalized = false
	if err := e.Hands.Add(caller, e.Kitty); err != nil {
		return nil, invariantErrorf("%v", err)
	}
	e.Kitty = nil
	return []Event{ev("kitty_theft", fmt.Sprintf("%d overbid and took over the kitty", caller), map[string]any{"player": int(caller), "epoch": e.Epoch})}, nil
}

// SetFriendSelections records the landlord's friend descriptors for
// FindingFriends mode.
func (g *GameState) SetFriendSelections(caller PlayerID, selections []FriendSelection) ([]Event, error) {
	e, err := g.requireExchange()
	if err != nil {
		return nil, err
	}
	if g.Propagated.GameMode != settings.ModeFindingFriends {
		return nil, validationErrorf("friend selection only applies in FindingFriends mode")
	}
	if caller != e.Landlord {
		return nil, validationErrorf("only the landlord selects friends")
	}
	want := g.Propagated.EffectiveNumFriends(len(g.Roster.Names))
	if len(selections) != want {
		return nil, validationErrorf("expected exactly %d friend selections, got %d", want, len(selections))
	}
	if g.Propagated.FriendSelectionPolicy != settings.FriendSelectionUnrestricted {
		for _, s := range selections {
			if err := checkFriendSelectionPolicy(s.Card, g.Propagated.FriendSelectionPolicy, e.Trump); err != nil {
				return nil, err
			}
		}
	}
	e.Friends = make([]FriendSelection, len(selections))
	for i, s := range selections {
		e.Friends[i] = FriendSelection{Card: s.Card, InitialSkip: s.InitialSkip}
	}
	return []Event{ev("friends_selected", fmt.Sprintf("%d selected friends", caller), nil)}, nil
}

func checkFriendSelectionPolicy(c cards.Card, policy settings.FriendSelectionPolicy, trump cards.Trump) error {
	switch policy {
	case settings.FriendSelectionTrumpsIncluded:
		return nil
	case settings.FriendSelectionHighestCardNotAllowed:
		if c == cards.BigJoker {
			return validationErrorf("the highest card may not be named as a friend selection")
		}
	case settings.FriendSelectionPointCardNotAllowed:
		if c.PointValue() > 0 {
			return validationErrorf("a point card may not be named as a friend selection")
		}
	}
	return nil
}

// AdvanceFromExchange moves Exchange -> Play. The landlord's team is
// {landlord} in FindingFriends (friends join later by reveal) or every
// seat sharing the landlord's seating parity in Tractor mode.
func (g *GameState) AdvanceFromExchange() ([]Event, error) {
	e, err := g.requireExchange()
	if err != nil {
		return nil, err
	}
	if !e.Finalized {
		return nil, validationErrorf("exchange has not been finalized")
	}
	if g.Propagated.GameMode == settings.ModeFindingFriends &&
		len(e.Friends) != g.Propagated.EffectiveNumFriends(len(g.Roster.Names)) {
		return nil, validationErrorf("the landlord has not selected friends yet")
	}

	numPlayers := len(g.Roster.Names)
	var team map[PlayerID]bool
	if g.Propagated.GameMode == settings.ModeFindingFriends {
		team = map[PlayerID]bool{e.Landlord: true}
	} else {
		team = map[PlayerID]bool{}
		parity := int(e.Landlord) % 2
		for p := 0; p < numPlayers; p++ {
			if p%2 == parity {
				team[PlayerID(p)] = true
			}
		}
	}

	queue := make([]PlayerID, 0, numPlayers)
	for i := 0; i < numPlayers; i++ {
		queue = append(queue, PlayerID((int(e.Landlord)+i)%numPlayers))
	}

	play := &PlayState{
		Hands:         e.Hands,
		Kitty:         e.Kitty,
		Trump:         e.Trump,
		Landlord:      e.Landlord,
		LandlordsTeam: team,
		Friends:       e.Friends,
		Queue:         queue,
		CurrentWinner: e.Landlord,
	}
	g.Phase = PhasePlay
	g.Play = play
	g.Exch = nil
	return []Event{ev("advanced_to_play", fmt.Sprintf("%d is the landlord; play begins", e.Landlord), nil)}, nil
}
