package game

import (
	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/settings"
)

// Action is the tagged union of game-mutating messages a client may send.
// Exactly the fields relevant to Kind are populated; the rest stay at
// their zero values.
type Action struct {
	Kind string `json:"kind"`

	// Initialize
	Mode       string   `json:"mode,omitempty"`
	NumFriends int      `json:"num_friends,omitempty"`
	Player     int      `json:"player,omitempty"`
	Rank       string   `json:"rank,omitempty"`
	NumDecks   int      `json:"num_decks,omitempty"`
	KittySize  int      `json:"kitty_size,omitempty"`
	Order      []string `json:"order,omitempty"`
	Option     string   `json:"option,omitempty"`
	Value      string   `json:"value,omitempty"`

	// Draw / Exchange
	Card  cards.Card `json:"card,omitempty"`
	Count int        `json:"count,omitempty"`

	// Exchange / Play
	Cards   []cards.Card      `json:"cards,omitempty"`
	Friends []FriendSelection `json:"friends,omitempty"`
}

// Action kinds, grouped by the phase that accepts them.
const (
	ActSetGameMode  = "set_game_mode"
	ActSetLandlord  = "set_landlord"
	ActSetRank      = "set_rank"
	ActSetNumDecks  = "set_num_decks"
	ActSetKittySize = "set_kitty_size"
	ActReorder      = "reorder"
	ActSetOption    = "set_option"
	ActStartGame    = "start_game"

	ActDrawCard        = "draw_card"
	ActBid             = "bid"
	ActTakebackBid     = "takeback_bid"
	ActAdvanceFromDraw = "advance_from_draw"

	ActPickUpKitty         = "pick_up_kitty"
	ActMoveCardsToKitty    = "move_cards_to_kitty"
	ActOverbid             = "overbid"
	ActSetFriends          = "set_friends"
	ActAdvanceFromExchange = "advance_from_exchange"

	ActPlayCards    = "play_cards"
	ActTakebackPlay = "takeback_play"
	ActEndHand      = "end_hand"
	ActEndHandEarly = "end_hand_early"
	ActRequestReset = "request_reset"
)

// Interact dispatches one Action against the room's game value on behalf
// of caller, returning the broadcast events it produced. It is the single
// entry point the session layer uses for state-mutating client messages.
func (g *GameState) Interact(a Action, caller PlayerID) ([]Event, error) {
	switch a.Kind {
	case ActSetGameMode:
		mode, err := parseGameMode(a.Mode)
		if err != nil {
			return nil, err
		}
		return g.SetGameMode(mode, a.NumFriends)
	case ActSetLandlord:
		return g.SetLandlord(PlayerID(a.Player))
	case ActSetRank:
		var n cards.Number
		if err := n.UnmarshalText([]byte(a.Rank)); err != nil {
			return nil, validationErrorf("%v", err)
		}
		return g.SetRank(PlayerID(a.Player), n)
	case ActSetNumDecks:
		return g.SetNumDecks(a.NumDecks)
	case ActSetKittySize:
		return g.SetKittySize(a.KittySize)
	case ActReorder:
		return g.Reorder(a.Order)
	case ActSetOption:
		return g.SetOption(a.Option, a.Value)
	case ActStartGame:
		return g.Start(caller)

	case ActDrawCard:
		return g.DrawCard(caller)
	case ActBid:
		return g.Bid(caller, a.Card, a.Count)
	case ActTakebackBid:
		return g.TakebackBid(caller)
	case ActAdvanceFromDraw:
		return g.AdvanceFromDraw()

	case ActPickUpKitty:
		return g.PutInHand(caller)
	case ActMoveCardsToKitty:
		return g.FinalizeExchange(caller, a.Cards)
	case ActOverbid:
		return g.Overbid(caller, a.Card, a.Count)
	case ActSetFriends:
		return g.SetFriendSelections(caller, a.Friends)
	case ActAdvanceFromExchange:
		return g.AdvanceFromExchange()

	case ActPlayCards:
		return g.PlayCards(caller, a.Cards)
	case ActTakebackPlay:
		return g.TakebackPlay(caller)
	case ActEndHand:
		return g.FinishGame()
	case ActEndHandEarly:
		return g.FinishGameEarly()
	case ActRequestReset:
		return g.RequestReset(caller)
	default:
		return nil, validationErrorf("unknown action %q", a.Kind)
	}
}

func parseGameMode(s string) (settings.GameMode, error) {
	switch s {
	case "Tractor":
		return settings.ModeTractor, nil
	case "FindingFriends":
		return settings.ModeFindingFriends, nil
	default:
		return 0, validationErrorf("unknown game mode %q", s)
	}
}
