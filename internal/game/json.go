package game

import (
	"encoding/json"
	"fmt"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/settings"
)

// gameStateJSON is the serialized shape of a GameState: the phase tag is
// the discriminator, and exactly one of the phase payloads is present.
// The same encoding serves both the durable snapshot file and the State
// messages pushed to clients (after per-recipient redaction).
type gameStateJSON struct {
	Phase            string                   `json:"phase"`
	Roster           Roster                   `json:"roster"`
	Propagated       settings.PropagatedState `json:"settings"`
	Initialize       *InitializeState         `json:"initialize,omitempty"`
	Draw             *DrawState               `json:"draw,omitempty"`
	Exchange         *ExchangeState           `json:"exchange,omitempty"`
	Play             *PlayState               `json:"play,omitempty"`
	ResetRequestedBy map[PlayerID]bool        `json:"reset_requested_by,omitempty"`
}

func (g *GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(gameStateJSON{
		Phase:            g.Phase.String(),
		Roster:           g.Roster,
		Propagated:       g.Propagated,
		Initialize:       g.Init,
		Draw:             g.Draw,
		Exchange:         g.Exch,
		Play:             g.Play,
		ResetRequestedBy: g.resetRequestedBy,
	})
}

func (g *GameState) UnmarshalJSON(b []byte) error {
	var raw gameStateJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Phase {
	case "Initialize":
		g.Phase = PhaseInitialize
	case "Draw":
		g.Phase = PhaseDraw
	case "Exchange":
		g.Phase = PhaseExchange
	case "Play":
		g.Phase = PhasePlay
	default:
		return fmt.Errorf("game: unknown phase tag %q", raw.Phase)
	}
	g.Roster = raw.Roster
	if g.Roster.Levels == nil {
		g.Roster.Levels = map[PlayerID]cards.Number{}
	}
	g.Propagated = raw.Propagated
	g.Init = raw.Initialize
	g.Draw = raw.Draw
	g.Exch = raw.Exchange
	g.Play = raw.Play
	g.resetRequestedBy = raw.ResetRequestedBy
	if g.Phase == PhaseInitialize && g.Init == nil {
		g.Init = newInitializeState()
	}
	return nil
}
