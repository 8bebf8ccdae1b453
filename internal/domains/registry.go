// Package domains holds the allow-list of source domains searches are scoped to.
package domains

// Registry is the ordered set of source domains a search is scoped to.
// Values are kept exactly as entered: no case folding, no scheme or
// trailing-slash stripping.
type Registry struct {
	items []string
}

// New returns a registry seeded with initial, applying Add semantics to each value.
func New(initial ...string) *Registry {
	r := &Registry{items: make([]string, 0, len(initial))}
	for _, d := range initial {
		r.Add(d)
	}
	return r
}

// Add appends domain when it is non-empty and not already present.
// It reports whether the set changed.
func (r *Registry) Add(domain string) bool {
	if domain == "" || r.Contains(domain) {
		return false
	}
	r.items = append(r.items, domain)
	return true
}

// Remove deletes domain if present and reports whether the set changed.
func (r *Registry) Remove(domain string) bool {
	for i, d := range r.items {
		if d == domain {
			r.items = append(r.items[:i:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether domain is in the set.
func (r *Registry) Contains(domain string) bool {
	for _, d := range r.items {
		if d == domain {
			return true
		}
	}
	return false
}

// List returns a copy of the domains in insertion order.
func (r *Registry) List() []string {
	out := make([]string, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of domains.
func (r *Registry) Len() int { return len(r.items) }
