package harbor

// DefaultHops is the hop budget for outbound sends. Routing is single-hop
// for now; the budget parameter reserves room for multi-hop resolution.
const DefaultHops = 1

// Router resolves a destination identity to a reachable target using the
// membership table.
type Router struct {
	self  Identity
	store *Store
}

// NewRouter builds a router for the local identity over the given store.
func NewRouter(self Identity, store *Store) *Router {
	return &Router{self: self, store: store}
}

// Resolve maps dest to a dialable identity. The local identity resolves to
// itself; a known peer resolves to its stored identity; anything else, or a
// spent hop budget, fails with *NoRouteError. Resolve never forwards,
// loops, or blocks.
func (r *Router) Resolve(dest Identity, hops int) (Identity, error) {
	if dest.Equal(r.self) {
		return r.self, nil
	}
	if hops <= 0 {
		return Identity{}, &NoRouteError{Dest: dest}
	}
	if stored, ok := r.store.Contains(dest); ok {
		return stored, nil
	}
	return Identity{}, &NoRouteError{Dest: dest}
}
