package game

import "fmt"

// RequestReset records caller's request to abandon the current hand. The
// first request arms the reset; a second request from a distinct player
// confirms it and returns the room to Initialize, preserving settings and
// roster. A repeat request from the same player is a no-op.
func (g *GameState) RequestReset(caller PlayerID) ([]Event, error) {
	if g.Roster.nameOf(caller) == "" {
		return nil, validationErrorf("no such player")
	}
	if g.Phase == PhaseInitialize {
		return nil, validationErrorf("nothing to reset")
	}
	if g.resetRequestedBy == nil {
		g.resetRequestedBy = map[PlayerID]bool{}
	}
	if g.resetRequestedBy[caller] {
		return nil, nil
	}
	g.resetRequestedBy[caller] = true
	if len(g.resetRequestedBy) < 2 {
		return []Event{ev("reset_requested", fmt.Sprintf("%s asked to reset the hand", g.Roster.nameOf(caller)),
			map[string]any{"player": int(caller)})}, nil
	}
	return g.Reset()
}

// Reset returns the room to Initialize unconditionally, preserving
// settings and the roster. Pending reset requests are cleared.
func (g *GameState) Reset() ([]Event, error) {
	g.resetRequestedBy = nil
	g.Phase = PhaseInitialize
	g.Init = newInitializeState()
	g.Draw = nil
	g.Exch = nil
	g.Play = nil
	return []Event{ev("reset", "the hand was reset", nil)}, nil
}
