// Package match implements the combinatorial play-matching core: tractor
// discovery, leading-format decomposition, follow-legality, throw
// validation, trick-winner resolution, and the decomposition catalog used
// for legal-move preview.
package match

import (
	"sort"

	"github.com/tractorhub/shengji/internal/cards"
	"github.com/tractorhub/shengji/internal/hand"
)

// UnitKind discriminates a trick unit's shape.
type UnitKind int

const (
	UnitRepeated UnitKind = iota
	UnitTractor
)

// Unit is a single played shape within a trick format: either a Repeated
// run of one card at some multiplicity, or a Tractor of adjacent cards
// each at the same multiplicity.
type Unit struct {
	Kind    UnitKind
	Card    cards.Card   // meaningful for Repeated
	Count   int          // multiplicity per card
	Members []cards.Card // meaningful for Tractor, in ascending successor order
}

// Leading returns the unit's lowest-ranked card (its own card for
// Repeated, the first member for Tractor).
func (u Unit) Leading() cards.Card {
	if u.Kind == UnitTractor {
		return u.Members[0]
	}
	return u.Card
}

// Length returns the number of distinct card ranks spanned by the unit: 1
// for Repeated, len(Members) for Tractor.
func (u Unit) Length() int {
	if u.Kind == UnitTractor {
		return len(u.Members)
	}
	return 1
}

// Size returns the total number of cards contributed by the unit.
func (u Unit) Size() int { return u.Length() * u.Count }

// Cards expands the unit into its flat card list.
func (u Unit) Cards() []cards.Card {
	if u.Kind == UnitRepeated {
		out := make([]cards.Card, u.Count)
		for i := range out {
			out[i] = u.Card
		}
		return out
	}
	out := make([]cards.Card, 0, u.Size())
	for _, m := range u.Members {
		for i := 0; i < u.Count; i++ {
			out = append(out, m)
		}
	}
	return out
}

// TrickFormat is the canonical shape of a leading play: the effective suit
// it was led in, and its decomposed units.
type TrickFormat struct {
	Suit  cards.EffSuit
	Units []Unit
}

// TotalSize returns the number of cards the format requires.
func (f TrickFormat) TotalSize() int {
	n := 0
	for _, u := range f.Units {
		n += u.Size()
	}
	return n
}

// IsThrow reports whether the format is a throw: a lead with more than
// one unit.
func (f TrickFormat) IsThrow() bool { return len(f.Units) > 1 }

// UnitReq is a shape-only requirement: a Length-member tractor at Count
// copies each (Length==1 degenerates to a Repeated requirement).
type UnitReq struct {
	Kind   UnitKind
	Count  int
	Length int
}

func (r UnitReq) Size() int { return r.Count * r.Length }

// Requirement projects a TrickFormat down to its shape requirements.
func (f TrickFormat) Requirement() []UnitReq {
	out := make([]UnitReq, len(f.Units))
	for i, u := range f.Units {
		out[i] = UnitReq{Kind: u.Kind, Count: u.Count, Length: u.Length()}
	}
	return out
}

func sortUnits(trump cards.Trump, units []Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].Size() != units[j].Size() {
			return units[i].Size() < units[j].Size()
		}
		return cards.Less(trump, units[i].Leading(), units[j].Leading())
	})
}

// countsOfSuit restricts a multiset to the cards sharing effective suit s.
func countsOfSuit(trump cards.Trump, m hand.Multiset, s cards.EffSuit) hand.Multiset {
	out := hand.Multiset{}
	for c, n := range m {
		if eff, ok := cards.EffectiveSuit(trump, c); ok && eff == s {
			out[c] = n
		}
	}
	return out
}
