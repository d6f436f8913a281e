package ast

// Visitor has one method per node kind. Adding a kind adds a method here,
// so every Visitor implementation stops compiling until it handles it.
type Visitor interface {
	VisitAbsent(*AbsentNode)
	VisitRoot(*RootNode)
	VisitBlock(*BlockNode)
	VisitDef(*DefNode)
	VisitIf(*IfNode)
	VisitWhile(*WhileNode)
	VisitLocalAsgn(*LocalAsgnNode)
	VisitLocalVar(*LocalVarNode)
	VisitCall(*CallNode)
	VisitFCall(*FCallNode)
	VisitVCall(*VCallNode)
	VisitAnd(*AndNode)
	VisitOr(*OrNode)
	VisitNot(*NotNode)
	VisitArray(*ArrayNode)
	VisitHash(*HashNode)
	VisitSymbol(*SymbolNode)
	VisitStr(*StrNode)
	VisitInt(*IntNode)
	VisitFloat(*FloatNode)
	VisitNil(*NilNode)
	VisitTrue(*TrueNode)
	VisitFalse(*FalseNode)
	VisitSelf(*SelfNode)
	VisitConst(*ConstNode)
}

// Walk traverses the tree rooted at n depth-first, calling fn on every
// node before its children. Returning false from fn skips the children.
// Absent markers are not visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || n.Kind() == KindAbsent {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Hashes returns every HashNode under n in source order.
func Hashes(n Node) []*HashNode {
	var out []*HashNode
	Walk(n, func(n Node) bool {
		if h, ok := n.(*HashNode); ok {
			out = append(out, h)
		}
		return true
	})
	return out
}
