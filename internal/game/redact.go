package game

import (
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/match"
)

// ForPlayer builds the per-recipient view of the room: a deep copy with
// every field the recipient must not see blanked to the Unknown sentinel.
// Observers and unknown names get the fully blind view. The original
// state is never modified.
func (g *GameState) ForPlayer(name string) *GameState {
	id, ok := g.Roster.idOf(name)
	if !ok {
		id = PlayerID(-1)
	}
	out := g.Clone()
	switch out.Phase {
	case PhaseDraw:
		d := out.Draw
		d.Hands = d.Hands.RedactExcept(id)
		d.DeckTail = unknowns(len(d.DeckTail))
		// Revealed kitty cards stay visible; the rest are face-down.
		hidden := unknowns(len(d.Kitty))
		copy(hidden, d.Kitty[:d.KittyRevealed])
		d.Kitty = hidden
	case PhaseExchange:
		e := out.Exch
		e.Hands = e.Hands.RedactExcept(id)
		if id != e.Exchanger {
			e.Kitty = unknowns(len(e.Kitty))
		}
	case PhasePlay:
		p := out.Play
		p.Hands = p.Hands.RedactExcept(id)
		p.Kitty = unknowns(len(p.Kitty))
		if g.Propagated.HideLandlordPoints && p.LandlordsTeam[id] {
			p.NonLandlordPoints = 0
		}
		if g.Propagated.HideThrowHaltingPlayer && p.LastDowngrade != nil {
			p.LastDowngrade.Defeater = PlayerID(-1)
		}
		if g.Propagated.HidePlayedCards && p.Trick != nil {
			for i := range p.Trick.Plays {
				if p.Trick.Plays[i].Player != id {
					p.Trick.Plays[i].Cards = unknowns(len(p.Trick.Plays[i].Cards))
				}
			}
		}
	}
	return out
}

func unknowns(n int) []cards.Card {
	out := make([]cards.Card, n)
	for i := range out {
		out[i] = cards.Unknown
	}
	return out
}

// Clone deep-copies the state, so callers can transform a copy and only
// commit it on success (and so redaction can blank fields destructively).
func (g *GameState) Clone() *GameState {
	out := &GameState{
		Phase:      g.Phase,
		Propagated: g.Propagated,
		Roster: Roster{
			Names:     append([]string(nil), g.Roster.Names...),
			Observers: append([]string(nil), g.Roster.Observers...),
			Levels:    clonePlayerMap(g.Roster.Levels),
		},
		resetRequestedBy: clonePlayerMap(g.resetRequestedBy),
	}
	if g.Init != nil {
		init := *g.Init
		if g.Init.Landlord != nil {
			l := *g.Init.Landlord
			init.Landlord = &l
		}
		out.Init = &init
	}
	if g.Draw != nil {
		d := *g.Draw
		d.Hands = g.Draw.Hands.Clone()
		d.DeckTail = append([]cards.Card(nil), g.Draw.DeckTail...)
		d.Kitty = append([]cards.Card(nil), g.Draw.Kitty...)
		d.Bids = append([]Bid(nil), g.Draw.Bids...)
		if g.Draw.PreLandlord != nil {
			l := *g.Draw.PreLandlord
			d.PreLandlord = &l
		}
		out.Draw = &d
	}
	if g.Exch != nil {
		e := *g.Exch
		e.Hands = g.Exch.Hands.Clone()
		e.Kitty = append([]cards.Card(nil), g.Exch.Kitty...)
		e.Friends = append([]FriendSelection(nil), g.Exch.Friends...)
		out.Exch = &e
	}
	if g.Play != nil {
		p := *g.Play
		p.Hands = g.Play.Hands.Clone()
		p.Kitty = append([]cards.Card(nil), g.Play.Kitty...)
		p.Friends = append([]FriendSelection(nil), g.Play.Friends...)
		p.Queue = append([]PlayerID(nil), g.Play.Queue...)
		p.LandlordsTeam = clonePlayerMap(g.Play.LandlordsTeam)
		if g.Play.LastDowngrade != nil {
			d := *g.Play.LastDowngrade
			d.Original = append([]cards.Card(nil), d.Original...)
			d.ReturnedToHand = append([]cards.Card(nil), d.ReturnedToHand...)
			p.LastDowngrade = &d
		}
		if g.Play.Trick != nil {
			t := Trick{
				Queue: append([]PlayerID(nil), g.Play.Trick.Queue...),
				Plays: make([]match.Play, len(g.Play.Trick.Plays)),
			}
			for i, pl := range g.Play.Trick.Plays {
				t.Plays[i] = match.Play{Player: pl.Player, Cards: append([]cards.Card(nil), pl.Cards...)}
			}
			if g.Play.Trick.Format != nil {
				f := *g.Play.Trick.Format
				f.Units = append([]match.Unit(nil), f.Units...)
				t.Format = &f
			}
			p.Trick = &t
		}
		out.Play = &p
	}
	return out
}

func clonePlayerMap[V any](m map[PlayerID]V) map[PlayerID]V {
	if m == nil {
		return nil
	}
	out := make(map[PlayerID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
