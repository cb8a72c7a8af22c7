package domain

import "sort"

// OrderUpdate assigns a new rank to a single record. Batches of these are
// applied as independent per-record merges with no cross-record atomicity.
type OrderUpdate struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Move removes the element at src and reinserts it at dst, shifting every
// element between the two indices by one position. It returns a new slice and
// leaves the input untouched. Out-of-range indices or src == dst return the
// input unchanged.
func Move[T any](items []T, src, dst int) []T {
	n := len(items)
	if src < 0 || src >= n || dst < 0 || dst >= n || src == dst {
		return items
	}
	out := make([]T, 0, n)
	out = append(out, items[:src]...)
	out = append(out, items[src+1:]...)
	out = append(out[:dst], append([]T{items[src]}, out[dst:]...)...)
	return out
}

// SortByOrder sorts items ascending by their order value, breaking ties with
// the secondary key so rendering stays deterministic when stored order values
// collide. The sort is stable.
func SortByOrder[T any](items []T, key func(T) (order int, secondary int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		oi, si := key(items[i])
		oj, sj := key(items[j])
		if oi != oj {
			return oi < oj
		}
		return si < sj
	})
}
