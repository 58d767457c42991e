// Package hand implements the per-player card multiset, deck/shoe
// configuration, and the redaction used to build per-recipient views.
package hand

import "github.com/tractorhub/shengji/internal/cards"

// Multiset is a card -> count mapping, the common currency for hands,
// bids, kitty contents, and proposed plays.
type Multiset map[cards.Card]int

// FromSlice builds a Multiset from a flat list of cards.
func FromSlice(cs []cards.Card) Multiset {
	m := Multiset{}
	for _, c := range cs {
		m[c]++
	}
	return m
}

// ToSlice expands a Multiset back into a flat, unordered list of cards.
func (m Multiset) ToSlice() []cards.Card {
	out := make([]cards.Card, 0, m.Total())
	for c, n := range m {
		for i := 0; i < n; i++ {
			out = append(out, c)
		}
	}
	return out
}

// Total returns the sum of counts across all cards in m.
func (m Multiset) Total() int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

// Clone returns an independent copy of m.
func (m Multiset) Clone() Multiset {
	out := make(Multiset, len(m))
	for c, n := range m {
		out[c] = n
	}
	return out
}

// Add merges other into m in place.
func (m Multiset) Add(other Multiset) {
	for c, n := range other {
		m[c] += n
	}
}

// Contains reports whether m has at least as many of every card in sub.
func (m Multiset) Contains(sub Multiset) bool {
	for c, n := range sub {
		if m[c] < n {
			return false
		}
	}
	return true
}

// Sub returns a new Multiset equal to m minus other; it assumes
// m.Contains(other) and does not validate that precondition.
func (m Multiset) Sub(other Multiset) Multiset {
	out := m.Clone()
	for c, n := range other {
		out[c] -= n
		if out[c] <= 0 {
			delete(out, c)
		}
	}
	return out
}

// Equal reports whether m and other hold exactly the same cards and counts.
func (m Multiset) Equal(other Multiset) bool {
	if len(m) != len(other) {
		return false
	}
	for c, n := range m {
		if other[c] != n {
			return false
		}
	}
	return true
}

// SortedByTrump returns the cards in m expanded and sorted ascending under
// trump's total order, one entry per copy.
func (m Multiset) SortedByTrump(trump cards.Trump) []cards.Card {
	out := m.ToSlice()
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && cards.Less(trump, out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
