package tracker

// Disposer is anything torn down with a single Dispose call.
type Disposer interface {
	Dispose()
}

// Group owns a set of trackers and disposes them together, newest first.
// The zero value is ready to use.
type Group struct {
	items []Disposer
}

func (g *Group) Add(d Disposer) {
	g.items = append(g.items, d)
}

// Remove drops d from the group without disposing it and reports whether it
// was a member. Disposers are compared by value.
func (g *Group) Remove(d Disposer) bool {
	for i, item := range g.items {
		if item == d {
			g.items = append(g.items[:i], g.items[i+1:]...)
			return true
		}
	}
	return false
}

func (g *Group) Len() int {
	return len(g.items)
}

// Dispose disposes every member in reverse order of addition and empties the group.
func (g *Group) Dispose() {
	for i := len(g.items) - 1; i >= 0; i-- {
		g.items[i].Dispose()
	}
	g.items = nil
}

// Track creates a tracker for T on reg and adds it to g.
func Track[T any](g *Group, reg Registry, onAttach, onDetach func(T)) *Tracker[T] {
	t := New(reg, onAttach, onDetach)
	g.Add(t)
	return t
}
