package game

import (
	"fmt"

	"github.com/tractorhub/shengji/internal/bidding"
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
	"github.com/tractorhub/shengji/internal/settings"
)

// DrawState is the Draw phase: players draw from DeckTail one at a time
// in seat order while bids accumulate; once the deck is exhausted and a
// winning bid exists, Advance moves to Exchange.
type DrawState struct {
	Hands         *hand.Hand
	DeckTail      []cards.Card // undrawn cards, drawn from the front in seat order
	Kitty         []cards.Card // face-down until a bid winner is known
	KittyRevealed int          // how many kitty cards have been revealed for autobid purposes
	Bids          []Bid
	Epoch         int
	PreLandlord   *PlayerID
	NextDrawSeat  PlayerID
}

func (g *GameState) requireDraw() (*DrawState, error) {
	if g.Phase != PhaseDraw {
		return nil, validationErrorf("not in Draw phase")
	}
	return g.Draw, nil
}

func (d *DrawState) numPlayers() int { return len(d.Hands.Players()) }

// DrawCard gives caller the next card from the deck tail, enforcing seat
// order.
func (g *GameState) DrawCard(caller PlayerID) ([]Event, error) {
	d, err := g.requireDraw()
	if err != nil {
		return nil, err
	}
	if len(d.DeckTail) == 0 {
		return nil, validationErrorf("deck is empty")
	}
	if caller != d.NextDrawSeat {
		return nil, validationErrorf("it is not %d's turn to draw", caller)
	}
	c := d.DeckTail[0]
	d.DeckTail = d.DeckTail[1:]
	if err := d.Hands.Add(caller, []cards.Card{c}); err != nil {
		return nil, invariantErrorf("%v", err)
	}
	d.NextDrawSeat = PlayerID((int(caller) + 1) % d.numPlayers())

	events := []Event{ev("card_drawn", fmt.Sprintf("%d drew a card", caller), map[string]any{"player": int(caller)})}
	if len(d.DeckTail) == 0 {
		_, aev := g.maybeAutobid()
		events = append(events, aev...)
	}
	return events, nil
}

// bidderLevel returns the level used to validate a bid card for player:
// the pre-selected landlord's level if one is set, else the bidder's own.
func (g *GameState) bidderLevel(player PlayerID) (cards.Number, *cards.Number) {
	var landlordLevel *cards.Number
	if g.Draw.PreLandlord != nil {
		lvl := g.Roster.Levels[*g.Draw.PreLandlord]
		landlordLevel = &lvl
	}
	return g.Roster.Levels[player], landlordLevel
}

// Bid places a new trump bid for caller if it is among the legal next
// bids.
func (g *GameState) Bid(caller PlayerID, card cards.Card, count int) ([]Event, error) {
	d, err := g.requireDraw()
	if err != nil {
		return nil, err
	}
	own := d.Hands.Of(caller)
	bidderLevel, landlordLevel := g.bidderLevel(caller)
	legal := bidding.ValidBids(caller, d.Bids, own, bidderLevel, landlordLevel, d.Epoch,
		g.Propagated.BidPolicy, g.Propagated.BidReinforcementPolicy, g.Propagated.JokerBidPolicy,
		g.Propagated.EffectiveNumDecks(d.numPlayers()))
	ok := false
	for _, b := range legal {
		if b.Card == card && b.Count == count {
			ok = true
			break
		}
	}
	if !ok {
		return nil, validationErrorf("that bid is not currently legal")
	}
	d.Bids = append(d.Bids, Bid{Player: caller, Card: card, Count: count, Epoch: d.Epoch})
	return []Event{ev("bid_placed", fmt.Sprintf("%d bid %dx%s", caller, count, card), map[string]any{"player": int(caller), "card": card.String(), "count": count})}, nil
}

// TakebackBid retracts caller's current top bid, if policy allows.
func (g *GameState) TakebackBid(caller PlayerID) ([]Event, error) {
	d, err := g.requireDraw()
	if err != nil {
		return nil, err
	}
	if !bidding.ValidTakeback(caller, d.Bids, d.Epoch, g.Propagated.BidTakebackPolicy) {
		return nil, validationErrorf("no takeback available")
	}
	for i := len(d.Bids) - 1; i >= 0; i-- {
		if d.Bids[i].Player == caller && d.Bids[i].Epoch == d.Epoch {
			d.Bids = append(d.Bids[:i], d.Bids[i+1:]...)
			break
		}
	}
	return []Event{ev("bid_taken_back", fmt.Sprintf("%d took back their bid", caller), nil)}, nil
}

// topBid returns the reigning bid of the current epoch: placement is
// gated on beating the prior top, so the last bid placed reigns.
func (d *DrawState) topBid() (Bid, bool) {
	for i := len(d.Bids) - 1; i >= 0; i-- {
		if d.Bids[i].Epoch == d.Epoch {
			return d.Bids[i], true
		}
	}
	return Bid{}, false
}

// maybeAutobid reveals kitty cards one at a time per KittyBidPolicy when
// the deck is empty, the landlord was pre-selected, and no bid has
// arrived yet; it stops as soon as a bid exists or the kitty runs out.
func (g *GameState) maybeAutobid() (bool, []Event) {
	d := g.Draw
	if d.PreLandlord == nil {
		return false, nil
	}
	if _, ok := d.topBid(); ok {
		return false, nil
	}
	var events []Event
	landlordLevel := g.Roster.Levels[*d.PreLandlord]
	for d.KittyRevealed < len(d.Kitty) {
		c := d.Kitty[d.KittyRevealed]
		d.KittyRevealed++
		events = append(events, ev("kitty_card_revealed", fmt.Sprintf("kitty revealed %s", c), map[string]any{"card": c.String()}))

		eligible := false
		switch g.Propagated.KittyBidPolicy {
		case settings.KittyBidFirstCard:
			// Only a plain card of the landlord's own level triggers.
			eligible = c.Kind == cards.KindSuited && c.Number == landlordLevel
		case settings.KittyBidFirstCardOfLevelOrHighest:
			// A level card or either joker (the highest-ranked cards)
			// triggers; the joker gives the stronger bid of the two.
			eligible = (c.Kind == cards.KindSuited && c.Number == landlordLevel) || c.IsJoker()
		}
		if !eligible {
			continue
		}
		d.Bids = append(d.Bids, Bid{Player: *d.PreLandlord, Card: c, Count: 1, Epoch: d.Epoch})
		events = append(events, ev("autobid", "kitty reveal auto-assigned a bid", map[string]any{"card": c.String()}))
		return true, events
	}
	return false, events
}

// AdvanceFromDraw moves Draw -> Exchange once the deck is empty and a
// winning bid exists. The landlord seat is fixed here: the pre-selected
// landlord if one was set, otherwise the winning (or, under ByFirstBid,
// the first) bidder of the current epoch.
func (g *GameState) AdvanceFromDraw() ([]Event, error) {
	d, err := g.requireDraw()
	if err != nil {
		return nil, err
	}
	if len(d.DeckTail) != 0 {
		return nil, validationErrorf("the deck is not yet exhausted")
	}
	top, ok := d.topBid()
	if !ok {
		return nil, validationErrorf("no winning bid exists")
	}
	landlord := top.Player
	if d.PreLandlord != nil {
		landlord = *d.PreLandlord
	} else if g.Propagated.FirstLandlordSelection == settings.FirstLandlordByFirstBid {
		for _, b := range d.Bids {
			if b.Epoch == d.Epoch {
				landlord = b.Player
				break
			}
		}
	}
	landlordLevel := g.Roster.Levels[landlord]
	var trump cards.Trump
	if top.Card.IsJoker() {
		trump = cards.NoTrumpOf(landlordLevel, true)
	} else {
		trump = cards.StandardTrump(top.Card.Suit, landlordLevel)
	}
	exch := &ExchangeState{
		Hands:      d.Hands,
		Kitty:      d.Kitty,
		KittySize:  len(d.Kitty),
		Landlord:   landlord,
		Exchanger:  top.Player,
		Trump:      trump,
		WinningBid: top,
		Epoch:      d.Epoch,
	}
	g.Phase = PhaseExchange
	g.Exch = exch
	g.Draw = nil
	return []Event{ev("advanced_to_exchange", fmt.Sprintf("%d won the bid and will exchange the kitty", top.Player), nil)}, nil
}
