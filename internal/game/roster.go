package game

import (
	"fmt"

	"github.com/tractorhub/shengji/internal/cards"
)

// PlayerIDOf looks up the seat a name occupies; ok is false for
// observers and strangers.
func (g *GameState) PlayerIDOf(name string) (PlayerID, bool) {
	return g.Roster.idOf(name)
}

// NameOf returns the name seated at id, or "" when the seat is empty.
func (g *GameState) NameOf(id PlayerID) string {
	return g.Roster.nameOf(id)
}

// Register assigns name a seat (or observer slot, if the game has
// already started) and returns its PlayerID. Re-registering an
// already-seated name returns its existing id without mutation.
func (g *GameState) Register(name string) (PlayerID, []Event, error) {
	if name == "" {
		return 0, nil, validationErrorf("name must not be empty")
	}
	if id, ok := g.Roster.idOf(name); ok {
		return id, nil, nil
	}
	if g.Phase != PhaseInitialize {
		for _, o := range g.Roster.Observers {
			if o == name {
				return 0, nil, nil
			}
		}
		g.Roster.Observers = append(g.Roster.Observers, name)
		return 0, []Event{ev("observer_joined", fmt.Sprintf("%s joined as an observer", name), map[string]any{"name": name})}, nil
	}
	id := PlayerID(len(g.Roster.Names))
	g.Roster.Names = append(g.Roster.Names, name)
	if _, ok := g.Roster.Levels[id]; !ok {
		g.Roster.Levels[id] = 2
	}
	return id, []Event{ev("player_joined", fmt.Sprintf("%s joined", name), map[string]any{"name": name, "id": int(id)})}, nil
}

// Kick removes a seated player from the roster. Only permitted while
// still in Initialize; callers enforce any additional caller-permission
// policy. To remove an observer, use RemoveObserver instead — observers
// have no PlayerID to name them by.
func (g *GameState) Kick(caller, target PlayerID) ([]Event, error) {
	name := g.Roster.nameOf(target)
	if name == "" {
		return nil, validationErrorf("no such player")
	}
	if g.Phase != PhaseInitialize {
		return nil, validationErrorf("cannot kick a seated player once the hand has started")
	}
	idx := int(target)
	g.Roster.Names = append(g.Roster.Names[:idx], g.Roster.Names[idx+1:]...)
	// Seat index is the PlayerID: every seat past the removed one shifts
	// down, so levels must be re-keyed, not just pruned.
	newLevels := make(map[PlayerID]cards.Number, len(g.Roster.Levels))
	for id, lvl := range g.Roster.Levels {
		switch {
		case id == target:
		case id > target:
			newLevels[id-1] = lvl
		default:
			newLevels[id] = lvl
		}
	}
	g.Roster.Levels = newLevels
	return []Event{ev("player_kicked", fmt.Sprintf("%s was removed", name), map[string]any{"name": name})}, nil
}

// AddObserver and RemoveObserver manage the observer list directly.
// AddObserver is only permitted during Initialize; RemoveObserver works in
// any phase. Register also adds observers once a hand has started, while
// Kick only removes seated players.
func (g *GameState) AddObserver(name string) error {
	if g.Phase != PhaseInitialize {
		return validationErrorf("observers may only be added during Initialize")
	}
	for _, o := range g.Roster.Observers {
		if o == name {
			return nil
		}
	}
	g.Roster.Observers = append(g.Roster.Observers, name)
	return nil
}

func (g *GameState) RemoveObserver(name string) error {
	for i, o := range g.Roster.Observers {
		if o == name {
			g.Roster.Observers = append(g.Roster.Observers[:i], g.Roster.Observers[i+1:]...)
			return nil
		}
	}
	return validationErrorf("no such observer")
}
