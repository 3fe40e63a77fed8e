package services

// orderedGroups is a map that remembers the order in which keys were first
// seen. Ranking ties resolve to that order, so results never depend on Go's
// map iteration order.
type orderedGroups[K comparable, V any] struct {
	index map[K]int
	vals  []V
}

func newOrderedGroups[K comparable, V any]() *orderedGroups[K, V] {
	return &orderedGroups[K, V]{index: make(map[K]int)}
}

// at returns the accumulator for key, creating it with init on first sight.
// The pointer is only valid until the next call to at.
func (g *orderedGroups[K, V]) at(key K, init func() V) *V {
	i, ok := g.index[key]
	if !ok {
		i = len(g.vals)
		g.index[key] = i
		g.vals = append(g.vals, init())
	}
	return &g.vals[i]
}

// values returns the accumulators in first-encounter order.
func (g *orderedGroups[K, V]) values() []V {
	out := make([]V, len(g.vals))
	copy(out, g.vals)
	return out
}
