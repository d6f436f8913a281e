package ast

import "fmt"

// Warning is a non-fatal diagnostic found by a Check. Line is zero-based.
type Warning struct {
	File    string
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: warning: %s", w.File, w.Line+1, w.Message)
}

// Check inspects a tree without modifying it.
type Check interface {
	Name() string
	Check(root *RootNode) []Warning
}

// CheckChain runs checks in order and collects every warning.
type CheckChain []Check

// Run executes each check in sequence.
func (cc CheckChain) Run(root *RootNode) []Warning {
	var out []Warning
	for _, c := range cc {
		out = append(out, c.Check(root)...)
	}
	return out
}

// DefaultChecks are the checks run by the CLI.
var DefaultChecks = CheckChain{AssignInCondition{}, DuplicateKeys{}}

// AssignInCondition warns about `if x = 1` style conditions, where a
// literal is assigned in place of a comparison.
type AssignInCondition struct{}

func (AssignInCondition) Name() string { return "assign-in-condition" }

func (AssignInCondition) Check(root *RootNode) []Warning {
	var out []Warning
	inspect := func(cond Node) {
		if cond == nil || !cond.ContainsVariableAssignment() {
			return
		}
		Walk(cond, func(n Node) bool {
			if !n.ContainsVariableAssignment() {
				return false
			}
			if asgn, ok := n.(*LocalAsgnNode); ok && asgn.Value != nil && IsLiteral(asgn.Value) {
				out = append(out, Warning{
					File:    root.File,
					Line:    asgn.Line(),
					Message: "found '= literal' in conditional, should be ==",
				})
			}
			return true
		})
	}
	Walk(root, func(n Node) bool {
		switch n := n.(type) {
		case *IfNode:
			inspect(n.Condition)
		case *WhileNode:
			inspect(n.Condition)
		}
		return true
	})
	return out
}

// DuplicateKeys warns when a hash repeats a symbol key.
type DuplicateKeys struct{}

func (DuplicateKeys) Name() string { return "duplicate-keys" }

func (DuplicateKeys) Check(root *RootNode) []Warning {
	var out []Warning
	for _, h := range Hashes(root) {
		seen := make(map[string]int)
		for _, p := range h.Pairs() {
			sym, ok := p.Key.(*SymbolNode)
			if !ok {
				continue
			}
			if first, dup := seen[sym.Name]; dup {
				out = append(out, Warning{
					File:    root.File,
					Line:    first,
					Message: fmt.Sprintf("key :%s is duplicated and overwritten on line %d", sym.Name, sym.Line()+1),
				})
				continue
			}
			seen[sym.Name] = sym.Line()
		}
	}
	return out
}
