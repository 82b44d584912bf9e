package checker

// scope is one level of the variable scope stack. Lookups fall through to
// the parent; definitions never leak upward.
type scope struct {
	vars   map[string]bool
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]bool{}, parent: parent}
}

func (s *scope) define(name string) {
	if name != "" {
		s.vars[name] = true
	}
}

func (s *scope) defined(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.vars[name] {
			return true
		}
	}
	return false
}
