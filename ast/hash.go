package ast

// Pair is one key/value entry of a HashNode. A nil Key marks a double
// splat entry (**expr) merged into the hash.
type Pair struct {
	Key   Node
	Value Node
}

// hashFlags are the classification flags derived from a HashNode's pairs.
type hashFlags struct {
	restKwarg      bool
	onlySymbolKeys bool
	assigns        bool
}

// emptyHashFlags is the state of a hash with no pairs.
var emptyHashFlags = hashFlags{onlySymbolKeys: true}

// foldPair folds one pair into f. Flags only ever move away from
// emptyHashFlags, so removing a pair means folding the survivors again.
func foldPair(f hashFlags, p Pair) hashFlags {
	if anyAssigns(p.Key, p.Value) {
		f.assigns = true
	}
	if p.Key == nil {
		f.restKwarg = true
		f.onlySymbolKeys = false
	} else if _, ok := p.Key.(*SymbolNode); !ok {
		f.onlySymbolKeys = false
	}
	return f
}

// HashNode is either a hash literal ({a: 1, **b}) or the keyword
// arguments of a call (foo(a: 1, **b)). The two can hold identical pairs;
// only the grammar production that built the node knows which it is and
// records it with MarkLiteral.
type HashNode struct {
	base
	pairs   []Pair
	flags   hashFlags
	literal bool
}

// NewHash returns an empty keyword-argument hash.
func NewHash(line int) *HashNode {
	return &HashNode{base: base{line: line}, flags: emptyHashFlags}
}

// NewHashWithPair returns a hash seeded with one pair.
func NewHashWithPair(line int, p Pair) *HashNode {
	return NewHash(line).Add(p)
}

func (n *HashNode) Kind() Kind       { return KindHash }
func (n *HashNode) Accept(v Visitor) { v.VisitHash(n) }

// MarkLiteral records that the node came from an explicit hash literal.
// Calling it again has no further effect.
func (n *HashNode) MarkLiteral() { n.literal = true }

// IsLiteral reports whether the node is a hash literal rather than
// keyword arguments.
func (n *HashNode) IsLiteral() bool { return n.literal }

// HasRestKwarg reports whether at least one entry is a double splat.
func (n *HashNode) HasRestKwarg() bool { return n.flags.restKwarg }

// HasOnlySymbolKeys reports whether every entry has a symbol literal key.
// It is true for an empty hash.
func (n *HashNode) HasOnlySymbolKeys() bool { return n.flags.onlySymbolKeys }

// HasOnlyRestKwargs reports whether the hash is made up of double splats
// alone, as in foo(**a) or {**a, **b}.
func (n *HashNode) HasOnlyRestKwargs() bool {
	if !n.flags.restKwarg {
		return false
	}
	for _, p := range n.pairs {
		if p.Key != nil {
			return false
		}
	}
	return true
}

// Add appends p and updates the classification flags. It returns n so
// construction can be chained.
func (n *HashNode) Add(p Pair) *HashNode {
	n.apply(p)
	n.pairs = append(n.pairs, p)
	return n
}

func (n *HashNode) apply(p Pair) {
	n.flags = foldPair(n.flags, p)
	if n.flags.assigns {
		n.assigns = true
	}
}

// RemoveMatching removes every pair equal to one in remove. Nodes compare
// by identity. When anything was removed the flags are rebuilt from the
// surviving pairs, which also clears the literal mark: a caller that
// filters a literal hash and wants it to stay literal must call
// MarkLiteral again. It reports whether anything was removed.
func (n *HashNode) RemoveMatching(remove []Pair) bool {
	if len(remove) == 0 || len(n.pairs) == 0 {
		return false
	}
	drop := make(map[Pair]struct{}, len(remove))
	for _, p := range remove {
		drop[p] = struct{}{}
	}
	kept := make([]Pair, 0, len(n.pairs))
	for _, p := range n.pairs {
		if _, ok := drop[p]; !ok {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(n.pairs) {
		return false
	}

	n.flags = emptyHashFlags
	n.literal = false
	n.pairs = kept
	for _, p := range kept {
		n.apply(p)
	}
	return true
}

// IsEmpty reports whether the hash has no pairs.
func (n *HashNode) IsEmpty() bool { return len(n.pairs) == 0 }

// Len returns the number of pairs.
func (n *HashNode) Len() int { return len(n.pairs) }

// Pairs returns a copy of the pairs in source order.
func (n *HashNode) Pairs() []Pair { return append([]Pair(nil), n.pairs...) }

// Children flattens the pairs into key, value, key, value... A double
// splat's missing key appears as Absent.
func (n *HashNode) Children() []Node {
	out := make([]Node, 0, 2*len(n.pairs))
	for _, p := range n.pairs {
		key := p.Key
		if key == nil {
			key = Absent
		}
		out = append(out, key, p.Value)
	}
	return out
}

// Label classifies the node for debugging output.
func (n *HashNode) Label() string {
	switch {
	case n.literal:
		return "literal"
	case n.flags.restKwarg && n.HasOnlyRestKwargs():
		return "onlykwrest"
	case n.flags.restKwarg:
		return "mixedkwrest"
	}
	return "kwarg"
}
