package game

import (
	"math/rand"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
	"github.com/tractorhub/shengji/internal/settings"
)

// InitializeState is the pre-deal phase: settings and roster are mutable,
// nothing about the hand itself exists yet.
type InitializeState struct {
	Landlord *PlayerID
	Shoe     hand.ShoeConfig
	Rand     *rand.Rand `json:"-"` // nil uses a process-default source
}

func newInitializeState() *InitializeState {
	return &InitializeState{Shoe: hand.ShoeConfig{NumDecks: 0}}
}

func (g *GameState) requireInitialize() (*InitializeState, error) {
	if g.Phase != PhaseInitialize {
		return nil, validationErrorf("not in Initialize phase")
	}
	return g.Init, nil
}

// SetGameMode switches between Tractor and FindingFriends, optionally
// setting the friend count for FindingFriends.
func (g *GameState) SetGameMode(mode settings.GameMode, numFriends int) ([]Event, error) {
	if _, err := g.requireInitialize(); err != nil {
		return nil, err
	}
	g.Propagated.GameMode = mode
	g.Propagated.NumFriends = numFriends
	return []Event{ev("settings_changed", "game mode changed", map[string]any{"field": "game_mode"})}, nil
}

// SetLandlord pre-selects the landlord for the upcoming hand.
func (g *GameState) SetLandlord(id PlayerID) ([]Event, error) {
	init, err := g.requireInitialize()
	if err != nil {
		return nil, err
	}
	if int(id) < 0 || int(id) >= len(g.Roster.Names) {
		return nil, validationErrorf("no such player")
	}
	init.Landlord = &id
	return []Event{ev("settings_changed", "landlord pre-selected", map[string]any{"field": "landlord"})}, nil
}

// SetRank sets player's current level.
func (g *GameState) SetRank(id PlayerID, rank cards.Number) ([]Event, error) {
	if _, err := g.requireInitialize(); err != nil {
		return nil, err
	}
	g.Roster.Levels[id] = rank
	return []Event{ev("settings_changed", "rank set", map[string]any{"field": "rank"})}, nil
}

// SetNumDecks configures the shoe's deck count.
func (g *GameState) SetNumDecks(n int) ([]Event, error) {
	init, err := g.requireInitialize()
	if err != nil {
		return nil, err
	}
	if err := settings.ValidateNumDecks(n); err != nil {
		return nil, validationErrorf("%v", err)
	}
	init.Shoe.NumDecks = n
	g.Propagated.NumDecks = &n
	return []Event{ev("settings_changed", "deck count set", map[string]any{"field": "num_decks"})}, nil
}

// SetKittySize configures the kitty size.
func (g *GameState) SetKittySize(n int) ([]Event, error) {
	if _, err := g.requireInitialize(); err != nil {
		return nil, err
	}
	g.Propagated.KittySize = &n
	return []Event{ev("settings_changed", "kitty size set", map[string]any{"field": "kitty_size"})}, nil
}

// Reorder changes seating order to the given permutation of names.
func (g *GameState) Reorder(order []string) ([]Event, error) {
	if _, err := g.requireInitialize(); err != nil {
		return nil, err
	}
	if len(order) != len(g.Roster.Names) {
		return nil, validationErrorf("reorder must name every seated player exactly once")
	}
	seen := map[string]bool{}
	for _, n := range order {
		if _, ok := g.Roster.idOf(n); !ok {
			return nil, validationErrorf("unknown player %q in reorder", n)
		}
		if seen[n] {
			return nil, validationErrorf("duplicate player %q in reorder", n)
		}
		seen[n] = true
	}
	newLevels := make(map[PlayerID]cards.Number, len(g.Roster.Levels))
	for i, n := range order {
		old, _ := g.Roster.idOf(n)
		newLevels[PlayerID(i)] = g.Roster.Levels[old]
	}
	g.Roster.Names = order
	g.Roster.Levels = newLevels
	return []Event{ev("settings_changed", "seating reordered", nil)}, nil
}

var defaultRand = rand.New(rand.NewSource(rand.Int63()))

func (g *GameState) rng() *rand.Rand {
	if g.Init.Rand != nil {
		return g.Init.Rand
	}
	return defaultRand
}

// Start validates and performs the Initialize -> Draw transition: shuffle
// the configured shoe, trim it to an even deal, and deal the remainder to
// hands.
func (g *GameState) Start(caller PlayerID) ([]Event, error) {
	init, err := g.requireInitialize()
	if err != nil {
		return nil, err
	}
	numPlayers := len(g.Roster.Names)
	if err := settings.ValidatePlayerCount(numPlayers, g.Propagated.GameMode); err != nil {
		return nil, validationErrorf("%v", err)
	}
	if g.Propagated.GameStartPolicy == settings.StartAllowLandlordOnly {
		if init.Landlord == nil || *init.Landlord != caller {
			return nil, validationErrorf("only the pre-selected landlord may start the game")
		}
	}

	shoe := hand.ShoeConfig{NumDecks: g.Propagated.EffectiveNumDecks(numPlayers), Decks: init.Shoe.Decks}
	g.Propagated.NumDecks = intPtr(shoe.NumDecks)
	deck := shoe.Cards()
	g.rng().Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	kittySize := g.Propagated.EffectiveKittySize()
	trumpNumber := cards.Two
	if init.Landlord != nil {
		trumpNumber = g.Roster.Levels[*init.Landlord]
	}
	kept, _ := trimToFit(deck, kittySize, numPlayers, trumpNumber)
	if err := settings.ValidateKittySize(kittySize, len(kept), numPlayers); err != nil {
		return nil, validationErrorf("%v", err)
	}

	players := make([]PlayerID, numPlayers)
	for i := range players {
		players[i] = PlayerID(i)
	}
	h := hand.New(players)
	toDraw := append([]cards.Card(nil), kept[:len(kept)-kittySize]...)
	kitty := append([]cards.Card(nil), kept[len(kept)-kittySize:]...)

	draw := &DrawState{
		Hands:        h,
		DeckTail:     toDraw,
		Kitty:        kitty,
		Bids:         nil,
		Epoch:        0,
		PreLandlord:  init.Landlord,
		NextDrawSeat: PlayerID(0),
	}

	g.Phase = PhaseDraw
	g.Draw = draw
	g.Init = nil
	return []Event{ev("game_started", "the hand has begun", map[string]any{"num_players": numPlayers})}, nil
}

func intPtr(n int) *int { return &n }

// trimToFit removes cards from deck until (len(deck)-kittySize) is a
// multiple of numPlayers. Candidates are preferred in this order: a
// non-trump-number, zero-point card; removal is spread across suits by
// always taking next from the suit with the fewest removals so far.
func trimToFit(deck []cards.Card, kittySize, numPlayers int, trumpNumber cards.Number) (kept, removed []cards.Card) {
	kept = append([]cards.Card(nil), deck...)
	need := ((len(kept) - kittySize) % numPlayers + numPlayers) % numPlayers
	if need == 0 {
		return kept, nil
	}
	removedBySuit := map[cards.Suit]int{}
	for need > 0 && len(kept) > 0 {
		idx := bestTrimCandidate(kept, trumpNumber, removedBySuit)
		if idx < 0 {
			idx = 0
		}
		c := kept[idx]
		removed = append(removed, c)
		if c.Kind == cards.KindSuited {
			removedBySuit[c.Suit]++
		}
		kept = append(kept[:idx], kept[idx+1:]...)
		need--
	}
	return kept, removed
}

func bestTrimCandidate(deck []cards.Card, trumpNumber cards.Number, removedBySuit map[cards.Suit]int) int {
	best := -1
	bestScore := -1
	for i, c := range deck {
		if c.Kind != cards.KindSuited {
			continue
		}
		if c.Number == trumpNumber || c.PointValue() > 0 {
			continue
		}
		score := -removedBySuit[c.Suit]
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best != -1 {
		return best
	}
	// Nothing non-point/non-trump left; fall back to the least-bad card.
	for i, c := range deck {
		if c.Kind == cards.KindSuited && c.Number != trumpNumber {
			return i
		}
	}
	return 0
}
