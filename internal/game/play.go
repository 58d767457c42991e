package game

import (
	"fmt"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
	"github.com/tractorhub/shengji/internal/match"
	"github.com/tractorhub/shengji/internal/settings"
)

// Trick is the in-progress or most recently completed trick: the seats
// still due to play, and the plays made so far (the first of which fixes
// Format, possibly after a throw downgrade).
type Trick struct {
	Queue  []PlayerID
	Plays  []match.Play
	Format *match.TrickFormat
}

// PlayState is the Play phase: tricks are played out in queue order until
// every hand is empty, at which point FinishGame computes the hand's
// outcome.
type PlayState struct {
	Hands         *hand.Hand
	Kitty         []cards.Card
	Trump         cards.Trump
	Landlord      PlayerID
	LandlordsTeam map[PlayerID]bool
	Friends       []FriendSelection
	Queue         []PlayerID // seating order for the *next* trick's lead rotation
	CurrentWinner PlayerID
	Trick         *Trick

	NonLandlordPoints int
	ThrowFailures     int
	TricksPlayed      int
	LastDowngrade     *ThrowDowngrade
}

// ThrowDowngrade records the most recent throw-challenge outcome so the
// session layer can render it (and, under hide_throw_halting_player,
// redact the defeater's identity).
type ThrowDowngrade struct {
	Leader         PlayerID
	Original       []cards.Card
	KeptUnit       match.Unit
	ReturnedToHand []cards.Card
	Defeater       PlayerID
}

func (g *GameState) requirePlay() (*PlayState, error) {
	if g.Phase != PhasePlay {
		return nil, validationErrorf("not in Play phase")
	}
	return g.Play, nil
}

func (p *PlayState) numPlayers() int { return len(p.Queue) }

func (p *PlayState) startTrick() {
	queue := make([]PlayerID, 0, p.numPlayers())
	idx := 0
	for i, s := range p.Queue {
		if s == p.CurrentWinner {
			idx = i
			break
		}
	}
	for i := 0; i < p.numPlayers(); i++ {
		queue = append(queue, p.Queue[(idx+i)%p.numPlayers()])
	}
	p.Trick = &Trick{Queue: queue}
}

// PlayCards plays caller's proposed cards into the current trick,
// enforcing leading-format establishment, follow legality, and
// throw-challenge downgrade.
func (g *GameState) PlayCards(caller PlayerID, proposal []cards.Card) ([]Event, error) {
	p, err := g.requirePlay()
	if err != nil {
		return nil, err
	}
	if p.Trick == nil {
		p.startTrick()
	}
	t := p.Trick
	if len(t.Queue) == 0 || t.Queue[0] != caller {
		return nil, validationErrorf("it is not %d's turn to play", caller)
	}
	if !p.Hands.ContainsMultiset(caller, hand.FromSlice(proposal)) {
		return nil, validationErrorf("player does not hold the proposed cards")
	}

	var events []Event
	if t.Format == nil {
		format, err := match.FormatFromLead(p.Trump, proposal)
		if err != nil {
			return nil, validationErrorf("%v", err)
		}
		if format.IsThrow() {
			opponents := make([]hand.Multiset, 0, p.numPlayers()-1)
			for _, seat := range t.Queue[1:] {
				opponents = append(opponents, p.Hands.Of(seat))
			}
			if defeated, ok := match.ChallengeThrow(p.Trump, format, opponents); ok {
				format = match.TrickFormat{Suit: format.Suit, Units: []match.Unit{defeated}}
				defeater := findDefeater(p.Trump, format.Suit, defeated, t.Queue[1:], p.Hands)
				kept := defeated.Cards()
				returned := subtractCards(proposal, kept)
				p.LastDowngrade = &ThrowDowngrade{Leader: caller, Original: proposal, KeptUnit: defeated, ReturnedToHand: returned, Defeater: defeater}
				p.ThrowFailures++
				events = append(events, ev("throw_downgraded", fmt.Sprintf("%d's throw was challenged", caller), map[string]any{"player": int(caller)}))
				proposal = kept
			}
		}
		t.Format = &format
	} else {
		if !match.CanFollow(p.Trump, p.Hands.Of(caller), proposal, *t.Format, match.DrawPolicy(g.Propagated.TrickDrawPolicy)) {
			return nil, validationErrorf("that play does not legally follow the trick's format")
		}
	}

	if err := p.Hands.Remove(caller, proposal); err != nil {
		return nil, invariantErrorf("%v", err)
	}
	t.Plays = append(t.Plays, match.Play{Player: caller, Cards: proposal})
	t.Queue = t.Queue[1:]
	events = append(events, ev("cards_played", fmt.Sprintf("%d played", caller), map[string]any{"player": int(caller)}))

	if len(t.Queue) == 0 {
		finishEvents, err := g.finishTrick()
		if err != nil {
			return nil, err
		}
		events = append(events, finishEvents...)
	}
	return events, nil
}

// findDefeater identifies the first later player holding a unit that
// strictly beats the challenged unit within its effective suit.
func findDefeater(trump cards.Trump, suit cards.EffSuit, unit match.Unit, candidates []PlayerID, h *hand.Hand) PlayerID {
	for _, seat := range candidates {
		if match.CanBeat(trump, suit, unit, h.Of(seat)) {
			return seat
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return 0
}

func subtractCards(all, kept []cards.Card) []cards.Card {
	remaining := hand.FromSlice(all)
	for _, c := range kept {
		remaining[c]--
		if remaining[c] <= 0 {
			delete(remaining, c)
		}
	}
	return remaining.ToSlice()
}

// TakebackPlay retracts caller's most recent play within the current,
// incomplete trick, if the policy allows it.
func (g *GameState) TakebackPlay(caller PlayerID) ([]Event, error) {
	p, err := g.requirePlay()
	if err != nil {
		return nil, err
	}
	if g.Propagated.PlayTakebackPolicy != settings.PlayTakebackAllow {
		return nil, validationErrorf("play takeback is not allowed")
	}
	t := p.Trick
	if t == nil || len(t.Plays) == 0 {
		return nil, validationErrorf("nothing to take back")
	}
	last := t.Plays[len(t.Plays)-1]
	if last.Player != caller {
		return nil, validationErrorf("only the most recent player may take back their play")
	}
	if err := p.Hands.Add(caller, last.Cards); err != nil {
		return nil, invariantErrorf("%v", err)
	}
	t.Plays = t.Plays[:len(t.Plays)-1]
	t.Queue = append([]PlayerID{caller}, t.Queue...)
	if len(t.Plays) == 0 {
		t.Format = nil
	}
	return []Event{ev("play_taken_back", fmt.Sprintf("%d took back their play", caller), nil)}, nil
}

// finishTrick resolves the winner of a completed trick, awards point
// cards (with the kitty multiplier on the final trick), credits
// friend-reveals, and rotates the lead.
func (g *GameState) finishTrick() ([]Event, error) {
	p := g.Play
	t := p.Trick
	winner, err := match.Winner(p.Trump, *t.Format, t.Plays)
	if err != nil {
		return nil, invariantErrorf("%v", err)
	}
	p.CurrentWinner = winner
	p.TricksPlayed++

	points := 0
	for _, play := range t.Plays {
		for _, c := range play.Cards {
			points += c.PointValue()
		}
	}

	isFinalTrick := allHandsEmpty(p.Hands)
	if isFinalTrick {
		kittyPoints := 0
		for _, c := range p.Kitty {
			kittyPoints += c.PointValue()
		}
		switch g.Propagated.KittyPenalty {
		case settings.KittyPenaltyPower:
			points += kittyPoints * (1 << uint(trickLargestUnitSize(*t.Format)))
		default:
			points += kittyPoints * 2
		}
	}

	if !p.LandlordsTeam[winner] {
		p.NonLandlordPoints += points
	}

	events := []Event{ev("trick_finished", fmt.Sprintf("%d won the trick", winner), map[string]any{"winner": int(winner), "points": points})}
	events = append(events, g.resolveFriendReveals(t)...)

	if g.Propagated.ThrowPenalty == settings.ThrowPenaltyTenPointsPerAttempt && p.LastDowngrade != nil && p.LastDowngrade.Leader != winner {
		p.NonLandlordPoints += 10
		p.LastDowngrade = nil
	}

	newQueue := make([]PlayerID, 0, p.numPlayers())
	idx := 0
	for i, s := range p.Queue {
		if s == winner {
			idx = i
			break
		}
	}
	for i := 0; i < p.numPlayers(); i++ {
		newQueue = append(newQueue, p.Queue[(idx+i)%p.numPlayers()])
	}
	p.Queue = newQueue
	p.Trick = nil
	if !allHandsEmpty(p.Hands) {
		p.startTrick()
	}
	return events, nil
}

func trickLargestUnitSize(f match.TrickFormat) int {
	max := 0
	for _, u := range f.Units {
		if u.Size() > max {
			max = u.Size()
		}
	}
	return max
}

func allHandsEmpty(h *hand.Hand) bool {
	for _, p := range h.Players() {
		if h.Total(p) > 0 {
			return false
		}
	}
	return true
}

func (g *GameState) resolveFriendReveals(t *Trick) []Event {
	p := g.Play
	if len(p.Friends) == 0 {
		return nil
	}
	var events []Event
	for i := range p.Friends {
		f := &p.Friends[i]
		if f.Claimed {
			continue
		}
		for _, play := range t.Plays {
			for _, c := range play.Cards {
				if c != f.Card {
					continue
				}
				if f.Seen < f.InitialSkip {
					f.Seen++
					continue
				}
				if g.Propagated.MultipleJoinPolicy == settings.MultipleJoinNoDoubleJoin && p.LandlordsTeam[play.Player] {
					f.Claimed = true
					f.Claimer = play.Player
					continue
				}
				f.Claimed = true
				f.Claimer = play.Player
				if !p.LandlordsTeam[play.Player] {
					p.LandlordsTeam[play.Player] = true
					events = append(events, ev("friend_revealed", fmt.Sprintf("%d was revealed as a friend", play.Player), map[string]any{"player": int(play.Player)}))
				}
			}
		}
	}
	return events
}
