package ast

// Transform rewrites a freshly parsed tree. Passes run before the tree is
// handed to the execution engine and may edit nodes in place; after the
// last pass the tree is read-only.
type Transform interface {
	Name() string
	Transform(root *RootNode) *RootNode
}

// TransformFunc adapts a named function to the Transform interface.
type TransformFunc struct {
	N string
	F func(*RootNode) *RootNode
}

func (t TransformFunc) Name() string                       { return t.N }
func (t TransformFunc) Transform(root *RootNode) *RootNode { return t.F(root) }

// Chain composes transforms left-to-right into a single Transform.
// Each transform receives the output of the previous one.
func Chain(transforms ...Transform) Transform {
	return TransformFunc{
		N: "chain",
		F: func(root *RootNode) *RootNode {
			for _, t := range transforms {
				root = t.Transform(root)
			}
			return root
		},
	}
}

// DedupHashKeys drops an entry whose symbol key is repeated by the entry
// right after it, as long as the dropped value is a plain literal that
// cannot have side effects. A repeated key keeps its first position, so
// non-adjacent duplicates are left for DuplicateKeys to report. Literal
// hashes stay literal.
var DedupHashKeys Transform = TransformFunc{N: "dedup-hash-keys", F: dedupHashKeys}

func dedupHashKeys(root *RootNode) *RootNode {
	for _, h := range Hashes(root) {
		var drop []Pair
		pairs := h.Pairs()
		for i := 0; i+1 < len(pairs); i++ {
			if sameSymbolKey(pairs[i], pairs[i+1]) && IsLiteral(pairs[i].Value) {
				drop = append(drop, pairs[i])
			}
		}
		wasLiteral := h.IsLiteral()
		if h.RemoveMatching(drop) && wasLiteral {
			h.MarkLiteral()
		}
	}
	return root
}

func sameSymbolKey(a, b Pair) bool {
	ka, ok := a.Key.(*SymbolNode)
	if !ok {
		return false
	}
	kb, ok := b.Key.(*SymbolNode)
	return ok && ka.Name == kb.Name
}
