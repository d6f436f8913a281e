package parser

// Scope is a static lexical scope: the local variable names visible at a
// point of the program. Block scopes see their parent's variables; method
// and top-level scopes do not.
type Scope struct {
	parent *Scope
	vars   []string
	block  bool
}

// NewTopScope returns a fresh top-level scope.
func NewTopScope(vars ...string) *Scope {
	return &Scope{vars: append([]string(nil), vars...)}
}

// NewBlockScope returns a scope nested in parent that can see its locals.
func NewBlockScope(parent *Scope) *Scope {
	return &Scope{parent: parent, block: true}
}

// NewLocalScope returns a method-body scope. Its parent is kept for
// diagnostics only; lookups stop at it.
func NewLocalScope(parent *Scope) *Scope {
	return &Scope{parent: parent}
}

// Declare adds name unless it is already visible, and returns its depth.
func (s *Scope) Declare(name string) int {
	if depth := s.Lookup(name); depth >= 0 {
		return depth
	}
	s.vars = append(s.vars, name)
	return 0
}

// Lookup returns how many scopes up name is declared, or -1.
func (s *Scope) Lookup(name string) int {
	for depth, sc := 0, s; sc != nil; depth, sc = depth+1, sc.parent {
		for _, v := range sc.vars {
			if v == name {
				return depth
			}
		}
		if !sc.block {
			break
		}
	}
	return -1
}

// Variables returns the names declared directly in s.
func (s *Scope) Variables() []string { return append([]string(nil), s.vars...) }

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// IsBlock reports whether s is a block scope.
func (s *Scope) IsBlock() bool { return s.block }
