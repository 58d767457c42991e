package hand

import (
	"encoding/json"
	"errors"

	"github.com/tractorhub/shengji/internal/cards"
)

// PlayerID identifies a seat at the table. Seats are numbered 0..n-1 in
// seating order.
type PlayerID int

// ErrCardNotKnown is returned by Add when the caller tries to add the
// Unknown sentinel card to a hand.
var ErrCardNotKnown = errors.New("hand: cannot add Unknown card")

// ErrCardsNotFound is returned by Remove when the requested multiset is not
// fully present in the player's hand.
var ErrCardsNotFound = errors.New("hand: requested cards not found")

// Hand is a mapping player -> multiset of cards held.
type Hand struct {
	byPlayer map[PlayerID]Multiset
}

// New returns an empty Hand with an entry for every given player.
func New(players []PlayerID) *Hand {
	h := &Hand{byPlayer: make(map[PlayerID]Multiset, len(players))}
	for _, p := range players {
		h.byPlayer[p] = Multiset{}
	}
	return h
}

// Of returns the live multiset for player, creating one if absent.
func (h *Hand) Of(player PlayerID) Multiset {
	m, ok := h.byPlayer[player]
	if !ok {
		m = Multiset{}
		h.byPlayer[player] = m
	}
	return m
}

// Add increments player's multiset by cs. It fails with ErrCardNotKnown if
// any card is the Unknown sentinel.
func (h *Hand) Add(player PlayerID, cs []cards.Card) error {
	for _, c := range cs {
		if c == cards.Unknown {
			return ErrCardNotKnown
		}
	}
	m := h.Of(player)
	for _, c := range cs {
		m[c]++
	}
	return nil
}

// Remove decrements player's multiset by cs. It fails with
// ErrCardsNotFound unless the full multiset is present.
func (h *Hand) Remove(player PlayerID, cs []cards.Card) error {
	want := FromSlice(cs)
	m := h.Of(player)
	if !m.Contains(want) {
		return ErrCardsNotFound
	}
	for c, n := range want {
		m[c] -= n
		if m[c] <= 0 {
			delete(m, c)
		}
	}
	return nil
}

// Total returns the number of cards player currently holds.
func (h *Hand) Total(player PlayerID) int {
	return h.Of(player).Total()
}

// VoidInSuit reports whether player holds no card of the given effective
// suit under trump.
func (h *Hand) VoidInSuit(trump cards.Trump, player PlayerID, suit cards.EffSuit) bool {
	for c := range h.Of(player) {
		if eff, ok := cards.EffectiveSuit(trump, c); ok && eff == suit {
			return false
		}
	}
	return true
}

// ContainsMultiset reports whether player's hand contains at least sub.
func (h *Hand) ContainsMultiset(player PlayerID, sub Multiset) bool {
	return h.Of(player).Contains(sub)
}

// Clone returns a deep copy of h.
func (h *Hand) Clone() *Hand {
	out := &Hand{byPlayer: make(map[PlayerID]Multiset, len(h.byPlayer))}
	for p, m := range h.byPlayer {
		out.byPlayer[p] = m.Clone()
	}
	return out
}

// Players returns the set of players with an entry in h, in no particular
// order.
func (h *Hand) Players() []PlayerID {
	out := make([]PlayerID, 0, len(h.byPlayer))
	for p := range h.byPlayer {
		out = append(out, p)
	}
	return out
}

// RedactExcept returns a new Hand where every player other than id has
// their multiset collapsed to {Unknown: total}; id's own cards, and an
// absent id (redact for an observer), are left fully visible only when
// id matches — callers that want a fully blind view pass an id that owns
// no seat.
func (h *Hand) RedactExcept(id PlayerID) *Hand {
	out := &Hand{byPlayer: make(map[PlayerID]Multiset, len(h.byPlayer))}
	for p, m := range h.byPlayer {
		if p == id {
			out.byPlayer[p] = m.Clone()
			continue
		}
		total := m.Total()
		if total == 0 {
			out.byPlayer[p] = Multiset{}
			continue
		}
		out.byPlayer[p] = Multiset{cards.Unknown: total}
	}
	return out
}

// MarshalJSON serializes the per-player multisets keyed by seat number.
func (h *Hand) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.byPlayer)
}

// UnmarshalJSON restores a Hand from its serialized per-player form.
func (h *Hand) UnmarshalJSON(b []byte) error {
	m := map[PlayerID]Multiset{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	h.byPlayer = m
	return nil
}
