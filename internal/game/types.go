package game

import (
	"github.com/tractorhub/shengji/internal/bidding"
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
	"github.com/tractorhub/shengji/internal/settings"
)

// PlayerID identifies a seat; re-exported from internal/hand so callers
// never need to import both packages just to name a player.
type PlayerID = hand.PlayerID

// Phase tags which of the four phase-specific structs is live.
type Phase int

const (
	PhaseInitialize Phase = iota
	PhaseDraw
	PhaseExchange
	PhasePlay
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialize:
		return "Initialize"
	case PhaseDraw:
		return "Draw"
	case PhaseExchange:
		return "Exchange"
	case PhasePlay:
		return "Play"
	default:
		return "Unknown"
	}
}

// Event is a domain-event record describing one effect of a mutating
// operation; the session handler renders these into outbound Broadcast
// messages alongside a human-readable string.
type Event struct {
	Kind    string
	Message string
	Data    map[string]any
}

func ev(kind, message string, data map[string]any) Event {
	return Event{Kind: kind, Message: message, Data: data}
}

// FriendSelection is one landlord-declared friend descriptor in
// FindingFriends mode: the card that claims the friend slot, and how many
// matching plays of that card are skipped before the slot is claimed.
type FriendSelection struct {
	Card        cards.Card `json:"card"`
	InitialSkip int        `json:"initial_skip"`

	Seen    int      `json:"seen"`
	Claimed bool     `json:"claimed"`
	Claimer PlayerID `json:"claimer"`
}

// Roster is the player/observer membership shared across all phases.
type Roster struct {
	Names     []string // seat order; index is the PlayerID
	Observers []string
	Levels    map[PlayerID]cards.Number
}

func (r *Roster) idOf(name string) (PlayerID, bool) {
	for i, n := range r.Names {
		if n == name {
			return PlayerID(i), true
		}
	}
	return 0, false
}

func (r *Roster) nameOf(id PlayerID) string {
	if int(id) < 0 || int(id) >= len(r.Names) {
		return ""
	}
	return r.Names[id]
}

// GameState is the tagged-union public handle onto a room's game value.
// Exactly one of the phase-specific fields is populated, selected by
// Phase. Mutating operations return the list of broadcast Events
// produced; the caller (internal/store's execute_operation) is
// responsible for publishing them only if the operation returned no
// error.
type GameState struct {
	Phase      Phase
	Roster     Roster
	Propagated settings.PropagatedState

	Init *InitializeState
	Draw *DrawState
	Exch *ExchangeState
	Play *PlayState

	resetRequestedBy map[PlayerID]bool
}

// New returns a fresh room at Initialize with default settings and no
// seated players.
func New() *GameState {
	return &GameState{
		Phase:      PhaseInitialize,
		Propagated: settings.Default(),
		Roster:     Roster{Levels: map[PlayerID]cards.Number{}},
		Init:       newInitializeState(),
	}
}

// Bid aliases the bidding package's record so Draw/Exchange state and
// the rules engine share it without an import cycle back into this
// package.
type Bid = bidding.Bid
