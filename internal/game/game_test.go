package game

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
	"github.com/tractorhub/shengji/internal/settings"
)

func c(s cards.Suit, n cards.Number) cards.Card { return cards.Suited(s, n) }

var spadeFour = cards.StandardTrump(cards.Spade, cards.Four)

// playFixture builds a Play-phase room with the given per-seat hands,
// seat 0 as landlord (team = seat 0 only, so any other winner's points
// count), and seat 0 on lead.
func playFixture(trump cards.Trump, handsBySeat [][]cards.Card) *GameState {
	n := len(handsBySeat)
	players := make([]PlayerID, n)
	names := make([]string, n)
	levels := map[PlayerID]cards.Number{}
	queue := make([]PlayerID, n)
	for i := 0; i < n; i++ {
		players[i] = PlayerID(i)
		names[i] = string(rune('A' + i))
		levels[PlayerID(i)] = cards.Two
		queue[i] = PlayerID(i)
	}
	h := hand.New(players)
	for i, cs := range handsBySeat {
		if err := h.Add(PlayerID(i), cs); err != nil {
			panic(err)
		}
	}
	return &GameState{
		Phase:      PhasePlay,
		Roster:     Roster{Names: names, Levels: levels},
		Propagated: settings.Default(),
		Play: &PlayState{
			Hands:         h,
			Trump:         trump,
			Landlord:      0,
			LandlordsTeam: map[PlayerID]bool{0: true},
			Queue:         queue,
			CurrentWinner: 0,
		},
	}
}

func mustPlay(t *testing.T, g *GameState, seat PlayerID, cs []cards.Card) {
	t.Helper()
	if _, err := g.PlayCards(seat, cs); err != nil {
		t.Fatalf("seat %d playing %v: %v", seat, cs, err)
	}
}

func TestBasicSinglesTrick(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{
		{c(cards.Spade, cards.Two), c(cards.Spade, cards.Three), c(cards.Spade, cards.Five)},
		{c(cards.Spade, cards.Two), c(cards.Spade, cards.Three), c(cards.Spade, cards.Five)},
		{c(cards.Spade, cards.Two), c(cards.Spade, cards.Three), c(cards.Spade, cards.Five)},
		{c(cards.Spade, cards.Two), c(cards.Spade, cards.Three), c(cards.Spade, cards.Five)},
	})
	mustPlay(t, g, 0, []cards.Card{c(cards.Spade, cards.Two)})
	mustPlay(t, g, 1, []cards.Card{c(cards.Spade, cards.Five)})
	mustPlay(t, g, 2, []cards.Card{c(cards.Spade, cards.Three)})
	mustPlay(t, g, 3, []cards.Card{c(cards.Spade, cards.Five)})

	if g.Play.CurrentWinner != 1 {
		t.Errorf("expected seat 1 to win (first five; an equal later five does not overtake), got %d", g.Play.CurrentWinner)
	}
	if g.Play.NonLandlordPoints != 10 {
		t.Errorf("expected 10 points (two fives), got %d", g.Play.NonLandlordPoints)
	}
}

func TestPairTrickWithOffShapeFollow(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{
		{c(cards.Spade, cards.Two), c(cards.Spade, cards.Two)},
		{c(cards.Spade, cards.Three), c(cards.Spade, cards.Four)},
		{c(cards.Spade, cards.Five), c(cards.Spade, cards.Five)},
		{c(cards.Spade, cards.Three), c(cards.Spade, cards.Five)},
	})
	mustPlay(t, g, 0, []cards.Card{c(cards.Spade, cards.Two), c(cards.Spade, cards.Two)})
	mustPlay(t, g, 1, []cards.Card{c(cards.Spade, cards.Three), c(cards.Spade, cards.Four)})
	mustPlay(t, g, 2, []cards.Card{c(cards.Spade, cards.Five), c(cards.Spade, cards.Five)})
	mustPlay(t, g, 3, []cards.Card{c(cards.Spade, cards.Three), c(cards.Spade, cards.Five)})

	if g.Play.CurrentWinner != 2 {
		t.Errorf("expected seat 2's pair of fives to win, got %d", g.Play.CurrentWinner)
	}
	if g.Play.NonLandlordPoints != 15 {
		t.Errorf("expected 15 points (three fives), got %d", g.Play.NonLandlordPoints)
	}
}

func TestTractorTrick(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{
		{c(cards.Spade, cards.Two), c(cards.Spade, cards.Two), c(cards.Spade, cards.Three), c(cards.Spade, cards.Three)},
		{c(cards.Spade, cards.Six), c(cards.Spade, cards.Six), c(cards.Spade, cards.Seven), c(cards.Spade, cards.Seven)},
		{c(cards.Spade, cards.Two), c(cards.Spade, cards.Five), c(cards.Spade, cards.Five), c(cards.Spade, cards.Five)},
		{c(cards.Spade, cards.Six), c(cards.Spade, cards.Six), c(cards.Spade, cards.Six), c(cards.Spade, cards.Six)},
	})
	mustPlay(t, g, 0, []cards.Card{c(cards.Spade, cards.Two), c(cards.Spade, cards.Two), c(cards.Spade, cards.Three), c(cards.Spade, cards.Three)})
	mustPlay(t, g, 1, []cards.Card{c(cards.Spade, cards.Six), c(cards.Spade, cards.Six), c(cards.Spade, cards.Seven), c(cards.Spade, cards.Seven)})
	mustPlay(t, g, 2, []cards.Card{c(cards.Spade, cards.Two), c(cards.Spade, cards.Five), c(cards.Spade, cards.Five), c(cards.Spade, cards.Five)})
	mustPlay(t, g, 3, []cards.Card{c(cards.Spade, cards.Six), c(cards.Spade, cards.Six), c(cards.Spade, cards.Six), c(cards.Spade, cards.Six)})

	if g.Play.CurrentWinner != 1 {
		t.Errorf("expected seat 1's higher tractor to win, got %d", g.Play.CurrentWinner)
	}
	if g.Play.NonLandlordPoints != 15 {
		t.Errorf("expected 15 points (three fives), got %d", g.Play.NonLandlordPoints)
	}
}

func TestThrowChallengeDowngrade(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{
		{c(cards.Heart, cards.Eight), c(cards.Heart, cards.Eight), c(cards.Heart, cards.Seven), c(cards.Heart, cards.Two)},
		{c(cards.Heart, cards.Nine), c(cards.Heart, cards.Three), c(cards.Heart, cards.Four), c(cards.Heart, cards.Five)},
		{c(cards.Club, cards.Two), c(cards.Club, cards.Three), c(cards.Club, cards.Five), c(cards.Club, cards.Six)},
		{c(cards.Spade, cards.Four), c(cards.Spade, cards.Four), c(cards.Spade, cards.Four), c(cards.Heart, cards.Three)},
	})
	if _, err := g.PlayCards(0, []cards.Card{
		c(cards.Heart, cards.Eight), c(cards.Heart, cards.Eight),
		c(cards.Heart, cards.Seven), c(cards.Heart, cards.Two),
	}); err != nil {
		t.Fatalf("lead: %v", err)
	}

	p := g.Play
	if p.LastDowngrade == nil {
		t.Fatalf("expected the throw to be challenged and downgraded")
	}
	format := p.Trick.Format
	if len(format.Units) != 1 {
		t.Fatalf("expected the format to collapse to a single unit, got %+v", format.Units)
	}
	// The weakest challenged unit is the lone two of hearts.
	if format.Units[0].Card != c(cards.Heart, cards.Two) || format.Units[0].Count != 1 {
		t.Errorf("expected the kept unit to be the single two of hearts, got %+v", format.Units[0])
	}
	played := len(p.Trick.Plays[0].Cards)
	returned := len(p.LastDowngrade.ReturnedToHand)
	if played+returned != 4 {
		t.Errorf("downgrade must conserve the throw: played %d + returned %d != 4", played, returned)
	}
	if p.Hands.Total(0) != 3 {
		t.Errorf("leader should have 3 cards back in hand, got %d", p.Hands.Total(0))
	}
}

func TestKittyTheftRound(t *testing.T) {
	players := []PlayerID{0, 1, 2, 3}
	names := []string{"A", "B", "C", "D"}
	levels := map[PlayerID]cards.Number{0: cards.Two, 1: cards.Two, 2: cards.Two, 3: cards.Two}
	h := hand.New(players)
	// Seat 0 won the draw bid with H2x1; seats 2 and 1 hold joker pairs.
	mustAdd := func(p PlayerID, cs ...cards.Card) {
		if err := h.Add(p, cs); err != nil {
			panic(err)
		}
	}
	mustAdd(0, c(cards.Heart, cards.Two), c(cards.Club, cards.Five), c(cards.Club, cards.Six), c(cards.Club, cards.Seven))
	mustAdd(1, cards.BigJoker, cards.BigJoker, c(cards.Diamond, cards.Nine), c(cards.Diamond, cards.Ten))
	mustAdd(2, cards.SmallJoker, cards.SmallJoker, c(cards.Heart, cards.Nine), c(cards.Heart, cards.Ten))
	mustAdd(3, c(cards.Club, cards.Nine), c(cards.Club, cards.Ten), c(cards.Club, cards.Jack), c(cards.Club, cards.Queen))

	kitty := []cards.Card{c(cards.Diamond, cards.Two), c(cards.Diamond, cards.Three)}
	g := &GameState{
		Phase:      PhaseExchange,
		Roster:     Roster{Names: names, Levels: levels},
		Propagated: settings.Default(),
		Exch: &ExchangeState{
			Hands:      h,
			Kitty:      kitty,
			KittySize:  2,
			Landlord:   0,
			Exchanger:  0,
			Trump:      cards.StandardTrump(cards.Heart, cards.Two),
			WinningBid: Bid{Player: 0, Card: c(cards.Heart, cards.Two), Count: 1, Epoch: 0},
			Epoch:      0,
		},
	}
	g.Propagated.KittyTheftPolicy = settings.KittyTheftAllow

	if _, err := g.PutInHand(0); err != nil {
		t.Fatalf("exchanger pickup: %v", err)
	}
	if _, err := g.FinalizeExchange(0, []cards.Card{c(cards.Club, cards.Five), c(cards.Club, cards.Six)}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	// Seat 2 steals with a pair of small jokers.
	if _, err := g.Overbid(2, cards.SmallJoker, 2); err != nil {
		t.Fatalf("first theft: %v", err)
	}
	if g.Exch.Exchanger != 2 || g.Exch.Epoch != 1 {
		t.Fatalf("expected seat 2 exchanging in epoch 1, got exchanger=%d epoch=%d", g.Exch.Exchanger, g.Exch.Epoch)
	}
	if g.Exch.Finalized {
		t.Fatalf("theft must clear the finalize flag")
	}
	if _, err := g.FinalizeExchange(2, []cards.Card{c(cards.Heart, cards.Nine), c(cards.Heart, cards.Ten)}); err != nil {
		t.Fatalf("thief finalize: %v", err)
	}

	// Seat 1 steals back with a pair of big jokers.
	if _, err := g.Overbid(1, cards.BigJoker, 2); err != nil {
		t.Fatalf("second theft: %v", err)
	}
	if _, err := g.FinalizeExchange(1, []cards.Card{c(cards.Diamond, cards.Nine), c(cards.Diamond, cards.Ten)}); err != nil {
		t.Fatalf("second thief finalize: %v", err)
	}

	// Nothing in seat 0's hand beats a pair of big jokers.
	if _, err := g.Overbid(0, c(cards.Heart, cards.Two), 1); err == nil {
		t.Fatalf("expected the original winner's re-bid to fail")
	}

	if _, err := g.AdvanceFromExchange(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if g.Play.Landlord != 0 {
		t.Errorf("the landlord seat stays with the original bid winner, got %d", g.Play.Landlord)
	}
	if !g.Play.Trump.NoTrump {
		t.Errorf("trump must derive from the final joker bid, got %+v", g.Play.Trump)
	}
}

func TestStartDealConservation(t *testing.T) {
	g := New()
	for _, name := range []string{"A", "B", "C", "D"} {
		if _, _, err := g.Register(name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	two := 2
	g.Propagated.NumDecks = &two
	g.Init.Rand = rand.New(rand.NewSource(7))

	if _, err := g.Start(0); err != nil {
		t.Fatalf("start: %v", err)
	}
	d := g.Draw
	shoe := hand.ShoeConfig{NumDecks: 2}.Len()
	total := len(d.DeckTail) + len(d.Kitty)
	for _, p := range d.Hands.Players() {
		total += d.Hands.Total(p)
	}
	if total != shoe {
		t.Fatalf("card conservation violated after deal: %d != %d", total, shoe)
	}

	// Draw the whole deck in seat order, checking conservation throughout.
	seat := PlayerID(0)
	for len(d.DeckTail) > 0 {
		if _, err := g.DrawCard(seat); err != nil {
			t.Fatalf("draw by %d: %v", seat, err)
		}
		seat = PlayerID((int(seat) + 1) % 4)
		total = len(d.DeckTail) + len(d.Kitty)
		for _, p := range d.Hands.Players() {
			total += d.Hands.Total(p)
		}
		if total != shoe {
			t.Fatalf("card conservation violated mid-draw: %d != %d", total, shoe)
		}
	}

	// Someone certainly drew a two; have the first such seat bid it.
	bidder := PlayerID(-1)
	var bidCard cards.Card
	for s := 0; s < 4; s++ {
		for card, n := range d.Hands.Of(PlayerID(s)) {
			if card.Kind == cards.KindSuited && card.Number == cards.Two && n >= 1 {
				bidder, bidCard = PlayerID(s), card
				break
			}
		}
		if bidder >= 0 {
			break
		}
	}
	if bidder < 0 {
		t.Fatalf("no seat holds a two; fixture assumption broken")
	}
	if _, err := g.Bid(bidder, bidCard, 1); err != nil {
		t.Fatalf("bid: %v", err)
	}
	if _, err := g.AdvanceFromDraw(); err != nil {
		t.Fatalf("advance from draw: %v", err)
	}

	e := g.Exch
	if _, err := g.PutInHand(e.Exchanger); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	discard := e.Hands.Of(e.Exchanger).SortedByTrump(e.Trump)[:e.KittySize]
	if _, err := g.FinalizeExchange(e.Exchanger, discard); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := g.AdvanceFromExchange(); err != nil {
		t.Fatalf("advance from exchange: %v", err)
	}

	p := g.Play
	total = len(p.Kitty)
	for _, s := range p.Hands.Players() {
		total += p.Hands.Total(s)
	}
	if total != shoe {
		t.Fatalf("card conservation violated entering Play: %d != %d", total, shoe)
	}
}

func TestResetNeedsTwoDistinctPlayers(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{
		{c(cards.Spade, cards.Two)}, {c(cards.Spade, cards.Three)},
		{c(cards.Spade, cards.Five)}, {c(cards.Spade, cards.Six)},
	})
	if _, err := g.RequestReset(0); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if g.Phase != PhasePlay {
		t.Fatalf("one request must not reset the hand")
	}
	if _, err := g.RequestReset(0); err != nil {
		t.Fatalf("repeat request: %v", err)
	}
	if g.Phase != PhasePlay {
		t.Fatalf("a repeat request from the same player must not confirm")
	}
	if _, err := g.RequestReset(2); err != nil {
		t.Fatalf("confirming request: %v", err)
	}
	if g.Phase != PhaseInitialize {
		t.Fatalf("second distinct request must return to Initialize")
	}
	if len(g.Roster.Names) != 4 {
		t.Fatalf("reset must preserve the roster")
	}
}

func TestRedactionHidesOtherHands(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{
		{c(cards.Spade, cards.Two), c(cards.Spade, cards.Three)},
		{c(cards.Spade, cards.Five), c(cards.Spade, cards.Six)},
		{c(cards.Spade, cards.Seven), c(cards.Spade, cards.Eight)},
		{c(cards.Spade, cards.Nine), c(cards.Spade, cards.Ten)},
	})
	g.Play.Kitty = []cards.Card{c(cards.Heart, cards.King)}

	view := g.ForPlayer("A")
	own := view.Play.Hands.Of(0)
	if own[c(cards.Spade, cards.Two)] != 1 {
		t.Errorf("viewer's own hand must stay visible")
	}
	other := view.Play.Hands.Of(1)
	if other[cards.Unknown] != 2 || len(other) != 1 {
		t.Errorf("other hands must collapse to Unknown sentinels, got %v", other)
	}
	if view.Play.Kitty[0] != cards.Unknown {
		t.Errorf("the kitty must be hidden during Play")
	}
	// Redaction must not disturb the authoritative state.
	if g.Play.Hands.Of(1)[c(cards.Spade, cards.Five)] != 1 {
		t.Errorf("redaction mutated the original state")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{
		{c(cards.Spade, cards.Two), c(cards.Spade, cards.Three)},
		{c(cards.Spade, cards.Five), c(cards.Spade, cards.Six)},
		{c(cards.Spade, cards.Seven), c(cards.Spade, cards.Eight)},
		{c(cards.Spade, cards.Nine), c(cards.Spade, cards.Ten)},
	})
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back GameState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Phase != PhasePlay {
		t.Fatalf("phase tag lost: %v", back.Phase)
	}
	if back.Play == nil || back.Play.Hands.Total(0) != 2 {
		t.Fatalf("hands lost in round trip")
	}
	if back.Play.Trump != g.Play.Trump {
		t.Fatalf("trump lost in round trip: %+v != %+v", back.Play.Trump, g.Play.Trump)
	}
	if len(back.Roster.Names) != 4 {
		t.Fatalf("roster lost in round trip")
	}
}

func TestSetOptionValidation(t *testing.T) {
	g := New()
	if _, err := g.SetOption("kitty_theft_policy", "NoKittyTheft"); err != nil {
		t.Fatalf("valid option: %v", err)
	}
	if g.Propagated.KittyTheftPolicy != settings.KittyTheftNone {
		t.Fatalf("option did not apply")
	}
	if _, err := g.SetOption("kitty_theft_policy", "Sometimes"); err == nil {
		t.Fatalf("invalid value must be rejected")
	}
	if _, err := g.SetOption("no_such_option", "x"); err == nil {
		t.Fatalf("unknown option must be rejected")
	}
	g.Phase = PhaseDraw
	g.Draw = &DrawState{Hands: hand.New(nil)}
	if _, err := g.SetOption("kitty_theft_policy", "AllowKittyTheft"); err == nil {
		t.Fatalf("options must be frozen outside Initialize")
	}
}

func TestFinishGameAdvancesWinningSide(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{{}, {}, {}, {}})
	g.Play.NonLandlordPoints = 30 // landlord side holds them under 40: +3 levels

	if _, err := g.FinishGame(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if g.Phase != PhaseInitialize {
		t.Fatalf("finish must return to Initialize, got %v", g.Phase)
	}
	if got := g.Roster.Levels[0]; got != cards.Five {
		t.Errorf("landlord at rank 2 winning +3 must reach 5, got %v", got)
	}
	if got := g.Roster.Levels[1]; got != cards.Two {
		t.Errorf("losing side must not advance, got %v", got)
	}
	if g.Init == nil || g.Init.Landlord == nil {
		t.Fatalf("finish must pre-select the next landlord")
	}
}

func TestFinishGameNonLandlordTurnover(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{{}, {}, {}, {}})
	g.Play.NonLandlordPoints = 160 // one step past turnover: non-landlords +2

	if _, err := g.FinishGame(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if got := g.Roster.Levels[1]; got != cards.Four {
		t.Errorf("attackers at rank 2 winning +2 must reach 4, got %v", got)
	}
	if got := g.Roster.Levels[0]; got != cards.Two {
		t.Errorf("landlord must not advance on a loss, got %v", got)
	}
	if next := *g.Init.Landlord; next != 1 {
		t.Errorf("next landlord must be the first attacker after the old landlord, got %d", next)
	}
}

func TestKickRekeysLevels(t *testing.T) {
	g := New()
	for _, name := range []string{"A", "B", "C", "D"} {
		if _, _, err := g.Register(name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	g.Roster.Levels[1] = cards.Five
	g.Roster.Levels[2] = cards.Nine
	g.Roster.Levels[3] = cards.King

	if _, err := g.Kick(0, 1); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if got := g.Roster.Names; len(got) != 3 || got[1] != "C" || got[2] != "D" {
		t.Fatalf("seats must close the gap: %v", got)
	}
	// C and D shifted down a seat; their levels must follow them.
	if g.Roster.Levels[1] != cards.Nine {
		t.Errorf("seat 1 (now C) must keep C's level, got %v", g.Roster.Levels[1])
	}
	if g.Roster.Levels[2] != cards.King {
		t.Errorf("seat 2 (now D) must keep D's level, got %v", g.Roster.Levels[2])
	}
	if _, ok := g.Roster.Levels[3]; ok {
		t.Errorf("the vacated last seat must not keep an orphaned level")
	}
}

func TestAdvancementBlocksNonDefendersAtMaxRank(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{{}, {}, {}, {}})
	g.Propagated.MaxRank = cards.King
	g.Roster.Levels[1] = cards.King
	g.Play.NonLandlordPoints = 160 // attackers win +2

	if _, err := g.FinishGame(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if got := g.Roster.Levels[1]; got != cards.King {
		t.Errorf("a non-defender must not pass the max rank, got %v", got)
	}
	if got := g.Roster.Levels[3]; got != cards.Four {
		t.Errorf("attackers below the max rank advance normally, got %v", got)
	}
}

func TestAdvancementDefenderFirstStepPassesMaxRank(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{{}, {}, {}, {}})
	g.Propagated.MaxRank = cards.King
	g.Roster.Levels[0] = cards.King
	g.Play.NonLandlordPoints = 0 // landlord wins +3

	if _, err := g.FinishGame(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if got := g.Roster.Levels[0]; got != cards.Ace {
		t.Errorf("a defending landlord's first step passes the max rank, got %v", got)
	}
}

func TestAdvancementFullyUnrestrictedIgnoresMaxRank(t *testing.T) {
	g := playFixture(spadeFour, [][]cards.Card{{}, {}, {}, {}})
	g.Propagated.MaxRank = cards.King
	g.Propagated.AdvancementPolicy = settings.AdvancementFullyUnrestricted
	g.Roster.Levels[1] = cards.King
	g.Play.NonLandlordPoints = 160 // attackers win +2

	if _, err := g.FinishGame(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if got := g.Roster.Levels[1]; got != cards.Ace {
		t.Errorf("FullyUnrestricted blocks nothing, got %v", got)
	}
}
