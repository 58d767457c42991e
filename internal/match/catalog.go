package match

import "sync"

// Shape is one abstract requirement achievable from n cards: a multiset
// of UnitReq whose sizes sum to n, independent of any particular suit or
// hand. The catalog is used to preview which trick shapes are even
// structurally possible before checking them against a concrete hand.
type Shape struct {
	Units []UnitReq
}

var catalogCache sync.Map // int -> []Shape

// Catalog returns every distinct Shape summing to n cards, generating it
// once per n and reusing the result for the life of the process.
func Catalog(n int) []Shape {
	if n <= 0 {
		return nil
	}
	if cached, ok := catalogCache.Load(n); ok {
		return cached.([]Shape)
	}
	shapes := buildCatalog(n)
	actual, _ := catalogCache.LoadOrStore(n, shapes)
	return actual.([]Shape)
}

// buildCatalog enumerates weakly-descending integer partitions of n, and
// for every part of size s >= 4 that factors as length*count with both
// factors >= 2, additionally offers a Tractor alternative to the plain
// Repeated reading of that part.
func buildCatalog(n int) []Shape {
	var shapes []Shape
	var partitions [][]int
	var walk func(remaining, max int, acc []int)
	walk = func(remaining, max int, acc []int) {
		if remaining == 0 {
			partitions = append(partitions, append([]int(nil), acc...))
			return
		}
		for p := max; p >= 1; p-- {
			if p > remaining {
				continue
			}
			walk(remaining-p, p, append(acc, p))
		}
	}
	walk(n, n, nil)

	for _, parts := range partitions {
		shapes = append(shapes, expandPartition(parts)...)
	}
	return shapes
}

// expandPartition turns one integer partition into every Shape reading of
// it: each part becomes Repeated{Count: part}, or, for parts that factor
// as length*count (both >= 2), also a Tractor{Length, Count} alternative.
func expandPartition(parts []int) []Shape {
	options := make([][]UnitReq, len(parts))
	for i, p := range parts {
		opts := []UnitReq{{Kind: UnitRepeated, Count: p, Length: 1}}
		for length := 2; length*2 <= p; length++ {
			if p%length == 0 {
				count := p / length
				if count >= 2 {
					opts = append(opts, UnitReq{Kind: UnitTractor, Count: count, Length: length})
				}
			}
		}
		options[i] = opts
	}

	var shapes []Shape
	var combine func(i int, acc []UnitReq)
	combine = func(i int, acc []UnitReq) {
		if i == len(options) {
			shapes = append(shapes, Shape{Units: append([]UnitReq(nil), acc...)})
			return
		}
		for _, o := range options[i] {
			combine(i+1, append(acc, o))
		}
	}
	combine(0, nil)
	return shapes
}
