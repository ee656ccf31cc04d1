package store

// BindingInfo is a point-in-time description of a binding, for inspection
// and display. Invalidated bindings are included with state "moved" so a
// viewer can show where ownership went missing.
type BindingInfo struct {
	Name     string
	Scope    string
	Resource string
	State    string
	Len      int
	Borrows  int
}

// ScopeInfo describes one open scope and its bindings, outermost first.
type ScopeInfo struct {
	Label    string
	Bindings []BindingInfo
	Closed   bool
}

// Snapshot returns the current scope stack with every binding ever created
// in each open scope, outermost scope first, bindings in creation order.
func (s *Store) Snapshot() []ScopeInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Walk top -> root, then reverse.
	var chain []*Scope
	for sc := s.top; sc != nil; sc = sc.parent {
		chain = append(chain, sc)
	}

	out := make([]ScopeInfo, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		sc := chain[i]
		info := ScopeInfo{Label: sc.label, Closed: sc.closed}
		for _, b := range sc.bindings {
			bi := BindingInfo{
				Name:    b.name,
				Scope:   sc.label,
				Borrows: b.borrows,
			}
			if b.valid {
				bi.State = "owned"
				bi.Resource = b.id.String()
				if length, _, ok := s.arena.Size(b.id); ok {
					bi.Len = length
				}
				if b.borrows > 0 {
					bi.State = "borrowed"
				}
			} else if b.released {
				bi.State = "released"
			} else {
				bi.State = "moved"
			}
			info.Bindings = append(info.Bindings, bi)
		}
		out = append(out, info)
	}
	return out
}
