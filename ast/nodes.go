// Package ast defines the syntax tree produced by the parser.
//
// The tree is a closed set of node kinds. Every node carries the zero-based
// line it starts on, its Kind, and whether a local variable assignment
// appears anywhere beneath it. Nodes are built through Factory during a
// single parse and are read-only once parsing and the rewrite passes in
// this package are done.
package ast

import "github.com/rubiojr/rbfront/source"

// Kind identifies the concrete type of a Node.
type Kind int

const (
	KindAbsent Kind = iota
	KindRoot
	KindBlock
	KindDef
	KindIf
	KindWhile
	KindLocalAsgn
	KindLocalVar
	KindCall
	KindFCall
	KindVCall
	KindAnd
	KindOr
	KindNot
	KindArray
	KindHash
	KindSymbol
	KindStr
	KindInt
	KindFloat
	KindNil
	KindTrue
	KindFalse
	KindSelf
	KindConst

	kindCount
)

var kindNames = [...]string{
	KindAbsent:    "AbsentNode",
	KindRoot:      "RootNode",
	KindBlock:     "BlockNode",
	KindDef:       "DefNode",
	KindIf:        "IfNode",
	KindWhile:     "WhileNode",
	KindLocalAsgn: "LocalAsgnNode",
	KindLocalVar:  "LocalVarNode",
	KindCall:      "CallNode",
	KindFCall:     "FCallNode",
	KindVCall:     "VCallNode",
	KindAnd:       "AndNode",
	KindOr:        "OrNode",
	KindNot:       "NotNode",
	KindArray:     "ArrayNode",
	KindHash:      "HashNode",
	KindSymbol:    "SymbolNode",
	KindStr:       "StrNode",
	KindInt:       "IntNode",
	KindFloat:     "FloatNode",
	KindNil:       "NilNode",
	KindTrue:      "TrueNode",
	KindFalse:     "FalseNode",
	KindSelf:      "SelfNode",
	KindConst:     "ConstNode",
}

// Every Kind needs a name; this fails to compile when they drift apart.
var _ = [1]struct{}{}[len(kindNames)-int(kindCount)]

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "UnknownNode"
	}
	return kindNames[k]
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() Kind
	// Line is the zero-based source line the node starts on.
	Line() int
	// ContainsVariableAssignment reports whether a local variable is
	// assigned anywhere in this subtree.
	ContainsVariableAssignment() bool
	// Children returns the direct children in source order.
	Children() []Node
	// Accept dispatches to the Visitor method for the node's kind.
	Accept(v Visitor)
}

type base struct {
	line    int
	assigns bool
}

func (b *base) Line() int                        { return b.line }
func (b *base) ContainsVariableAssignment() bool { return b.assigns }

// anyAssigns reports whether any non-nil node contains an assignment.
func anyAssigns(nodes ...Node) bool {
	for _, n := range nodes {
		if n != nil && n.ContainsVariableAssignment() {
			return true
		}
	}
	return false
}

// list drops nil entries.
func list(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// AbsentNode marks a missing child in Children, such as the key of a
// double-splat hash entry.
type AbsentNode struct{}

// Absent is the shared AbsentNode.
var Absent = &AbsentNode{}

func (*AbsentNode) Kind() Kind                       { return KindAbsent }
func (*AbsentNode) Line() int                        { return 0 }
func (*AbsentNode) ContainsVariableAssignment() bool { return false }
func (*AbsentNode) Children() []Node                 { return nil }
func (n *AbsentNode) Accept(v Visitor)               { v.VisitAbsent(n) }

// RootNode is the result of a parse.
type RootNode struct {
	base
	File   string
	Body   *BlockNode
	Locals []string // top-level (or eval block) local variables
}

func (n *RootNode) Kind() Kind       { return KindRoot }
func (n *RootNode) Children() []Node { return []Node{n.Body} }
func (n *RootNode) Accept(v Visitor) { v.VisitRoot(n) }

// BlockNode is a sequence of statements.
type BlockNode struct {
	base
	Statements []Node
}

func (n *BlockNode) Kind() Kind       { return KindBlock }
func (n *BlockNode) Children() []Node { return append([]Node(nil), n.Statements...) }
func (n *BlockNode) Accept(v Visitor) { v.VisitBlock(n) }

// DefNode is a method definition. Its body has its own scope, so
// assignments inside it do not propagate outward.
type DefNode struct {
	base
	Name   string
	Params []string
	KwRest string // name of the **rest parameter, if any
	Body   *BlockNode
	Locals []string
}

func (n *DefNode) Kind() Kind       { return KindDef }
func (n *DefNode) Children() []Node { return []Node{n.Body} }
func (n *DefNode) Accept(v Visitor) { v.VisitDef(n) }

// IfNode is if/elsif/else and the if modifier. Else is nil when absent;
// an elsif chain nests IfNodes in Else.
type IfNode struct {
	base
	Condition Node
	Then      Node
	Else      Node
}

func (n *IfNode) Kind() Kind       { return KindIf }
func (n *IfNode) Children() []Node { return list(n.Condition, n.Then, n.Else) }
func (n *IfNode) Accept(v Visitor) { v.VisitIf(n) }

// WhileNode is a while loop or while modifier.
type WhileNode struct {
	base
	Condition Node
	Body      Node
}

func (n *WhileNode) Kind() Kind       { return KindWhile }
func (n *WhileNode) Children() []Node { return list(n.Condition, n.Body) }
func (n *WhileNode) Accept(v Visitor) { v.VisitWhile(n) }

// LocalAsgnNode assigns a local variable. Depth counts scopes up from
// the current one.
type LocalAsgnNode struct {
	base
	Name  string
	Depth int
	Value Node
}

func (n *LocalAsgnNode) Kind() Kind       { return KindLocalAsgn }
func (n *LocalAsgnNode) Children() []Node { return list(n.Value) }
func (n *LocalAsgnNode) Accept(v Visitor) { v.VisitLocalAsgn(n) }

// LocalVarNode reads a local variable.
type LocalVarNode struct {
	base
	Name  string
	Depth int
}

func (n *LocalVarNode) Kind() Kind       { return KindLocalVar }
func (n *LocalVarNode) Children() []Node { return nil }
func (n *LocalVarNode) Accept(v Visitor) { v.VisitLocalVar(n) }

// CallNode is a method call with an explicit receiver. Operators and
// indexing are calls too ("+", "[]", "[]=").
type CallNode struct {
	base
	Receiver Node
	Name     string
	Args     []Node
}

func (n *CallNode) Kind() Kind       { return KindCall }
func (n *CallNode) Children() []Node { return append([]Node{n.Receiver}, n.Args...) }
func (n *CallNode) Accept(v Visitor) { v.VisitCall(n) }

// KeywordArgs returns the trailing keyword-argument hash, if any.
func (n *CallNode) KeywordArgs() *HashNode { return trailingKwargs(n.Args) }

// FCallNode is a receiverless call with arguments, like foo(1) or foo 1.
type FCallNode struct {
	base
	Name string
	Args []Node
}

func (n *FCallNode) Kind() Kind       { return KindFCall }
func (n *FCallNode) Children() []Node { return append([]Node(nil), n.Args...) }
func (n *FCallNode) Accept(v Visitor) { v.VisitFCall(n) }

// KeywordArgs returns the trailing keyword-argument hash, if any.
func (n *FCallNode) KeywordArgs() *HashNode { return trailingKwargs(n.Args) }

func trailingKwargs(args []Node) *HashNode {
	if len(args) == 0 {
		return nil
	}
	if h, ok := args[len(args)-1].(*HashNode); ok && !h.IsLiteral() {
		return h
	}
	return nil
}

// VCallNode is a bare identifier that is not a known local variable.
type VCallNode struct {
	base
	Name string
}

func (n *VCallNode) Kind() Kind       { return KindVCall }
func (n *VCallNode) Children() []Node { return nil }
func (n *VCallNode) Accept(v Visitor) { v.VisitVCall(n) }

// AndNode is left && right.
type AndNode struct {
	base
	Left, Right Node
}

func (n *AndNode) Kind() Kind       { return KindAnd }
func (n *AndNode) Children() []Node { return list(n.Left, n.Right) }
func (n *AndNode) Accept(v Visitor) { v.VisitAnd(n) }

// OrNode is left || right.
type OrNode struct {
	base
	Left, Right Node
}

func (n *OrNode) Kind() Kind       { return KindOr }
func (n *OrNode) Children() []Node { return list(n.Left, n.Right) }
func (n *OrNode) Accept(v Visitor) { v.VisitOr(n) }

// NotNode is !value.
type NotNode struct {
	base
	Value Node
}

func (n *NotNode) Kind() Kind       { return KindNot }
func (n *NotNode) Children() []Node { return list(n.Value) }
func (n *NotNode) Accept(v Visitor) { v.VisitNot(n) }

// ArrayNode is [elem, ...].
type ArrayNode struct {
	base
	Elements []Node
}

func (n *ArrayNode) Kind() Kind       { return KindArray }
func (n *ArrayNode) Children() []Node { return append([]Node(nil), n.Elements...) }
func (n *ArrayNode) Accept(v Visitor) { v.VisitArray(n) }

// SymbolNode is an interned-name literal such as :name.
type SymbolNode struct {
	base
	Name string
}

func (n *SymbolNode) Kind() Kind       { return KindSymbol }
func (n *SymbolNode) Children() []Node { return nil }
func (n *SymbolNode) Accept(v Visitor) { v.VisitSymbol(n) }

// StrNode is a string literal. Value holds the raw bytes in Encoding.
type StrNode struct {
	base
	Value    []byte
	Encoding source.Encoding
}

func (n *StrNode) Kind() Kind       { return KindStr }
func (n *StrNode) Children() []Node { return nil }
func (n *StrNode) Accept(v Visitor) { v.VisitStr(n) }

// String decodes the literal into a Go string.
func (n *StrNode) String() (string, error) { return n.Encoding.Decode(n.Value) }

// IntNode is an integer literal.
type IntNode struct {
	base
	Value string
}

func (n *IntNode) Kind() Kind       { return KindInt }
func (n *IntNode) Children() []Node { return nil }
func (n *IntNode) Accept(v Visitor) { v.VisitInt(n) }

// FloatNode is a floating point literal.
type FloatNode struct {
	base
	Value string
}

func (n *FloatNode) Kind() Kind       { return KindFloat }
func (n *FloatNode) Children() []Node { return nil }
func (n *FloatNode) Accept(v Visitor) { v.VisitFloat(n) }

type NilNode struct{ base }

func (n *NilNode) Kind() Kind       { return KindNil }
func (n *NilNode) Children() []Node { return nil }
func (n *NilNode) Accept(v Visitor) { v.VisitNil(n) }

type TrueNode struct{ base }

func (n *TrueNode) Kind() Kind       { return KindTrue }
func (n *TrueNode) Children() []Node { return nil }
func (n *TrueNode) Accept(v Visitor) { v.VisitTrue(n) }

type FalseNode struct{ base }

func (n *FalseNode) Kind() Kind       { return KindFalse }
func (n *FalseNode) Children() []Node { return nil }
func (n *FalseNode) Accept(v Visitor) { v.VisitFalse(n) }

type SelfNode struct{ base }

func (n *SelfNode) Kind() Kind       { return KindSelf }
func (n *SelfNode) Children() []Node { return nil }
func (n *SelfNode) Accept(v Visitor) { v.VisitSelf(n) }

// ConstNode is a constant reference such as Foo.
type ConstNode struct {
	base
	Name string
}

func (n *ConstNode) Kind() Kind       { return KindConst }
func (n *ConstNode) Children() []Node { return nil }
func (n *ConstNode) Accept(v Visitor) { v.VisitConst(n) }

// IsLiteral reports whether n is a side-effect free literal value.
func IsLiteral(n Node) bool {
	switch n.Kind() {
	case KindInt, KindFloat, KindStr, KindSymbol, KindNil, KindTrue, KindFalse:
		return true
	}
	return false
}
