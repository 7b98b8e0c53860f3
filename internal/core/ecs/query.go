package ecs

// Each calls fn for every live node holding a component of type T,
// in slot order.
func Each[T any](w *World, fn func(*Node, T)) {
	for _, n := range w.Nodes() {
		if c, ok := Component[T](n.Components); ok {
			fn(n, c)
		}
	}
}

// Each2 iterates nodes holding both A and B.
func Each2[A, B any](w *World, fn func(*Node, A, B)) {
	for _, n := range w.Nodes() {
		a, ok := Component[A](n.Components)
		if !ok {
			continue
		}
		if b, ok := Component[B](n.Components); ok {
			fn(n, a, b)
		}
	}
}

// CountKey returns how many live nodes hold a component under key.
func CountKey(w *World, key TypeKey) int {
	count := 0
	for _, n := range w.nodes {
		if n.Components.Has(key) {
			count++
		}
	}
	return count
}
