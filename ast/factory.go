package ast

import "github.com/rubiojr/rbfront/source"

// Factory centralizes AST node creation for the grammar actions and the
// rewrite passes. It is the one place that derives each node's
// contains-assignment flag from its children.
type Factory struct{}

// NewFactory returns a new Factory.
func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Root(line int, file string, body *BlockNode, locals []string) *RootNode {
	return &RootNode{base: base{line, body.assigns}, File: file, Body: body, Locals: locals}
}

func (f *Factory) Block(line int, stmts []Node) *BlockNode {
	return &BlockNode{base: base{line, anyAssigns(stmts...)}, Statements: stmts}
}

// Def does not inherit assignments from its body: the body is a new scope.
func (f *Factory) Def(line int, name string, params []string, kwrest string, body *BlockNode, locals []string) *DefNode {
	return &DefNode{base: base{line: line}, Name: name, Params: params, KwRest: kwrest, Body: body, Locals: locals}
}

func (f *Factory) If(line int, cond, then, els Node) *IfNode {
	return &IfNode{base: base{line, anyAssigns(cond, then, els)}, Condition: cond, Then: then, Else: els}
}

func (f *Factory) While(line int, cond, body Node) *WhileNode {
	return &WhileNode{base: base{line, anyAssigns(cond, body)}, Condition: cond, Body: body}
}

func (f *Factory) LocalAsgn(line int, name string, depth int, value Node) *LocalAsgnNode {
	return &LocalAsgnNode{base: base{line, true}, Name: name, Depth: depth, Value: value}
}

func (f *Factory) LocalVar(line int, name string, depth int) *LocalVarNode {
	return &LocalVarNode{base: base{line: line}, Name: name, Depth: depth}
}

func (f *Factory) Call(line int, recv Node, name string, args []Node) *CallNode {
	return &CallNode{base: base{line, anyAssigns(recv) || anyAssigns(args...)}, Receiver: recv, Name: name, Args: args}
}

func (f *Factory) FCall(line int, name string, args []Node) *FCallNode {
	return &FCallNode{base: base{line, anyAssigns(args...)}, Name: name, Args: args}
}

func (f *Factory) VCall(line int, name string) *VCallNode {
	return &VCallNode{base: base{line: line}, Name: name}
}

func (f *Factory) And(line int, left, right Node) *AndNode {
	return &AndNode{base: base{line, anyAssigns(left, right)}, Left: left, Right: right}
}

func (f *Factory) Or(line int, left, right Node) *OrNode {
	return &OrNode{base: base{line, anyAssigns(left, right)}, Left: left, Right: right}
}

func (f *Factory) Not(line int, value Node) *NotNode {
	return &NotNode{base: base{line, anyAssigns(value)}, Value: value}
}

func (f *Factory) Array(line int, elems []Node) *ArrayNode {
	return &ArrayNode{base: base{line, anyAssigns(elems...)}, Elements: elems}
}

// Hash returns an empty keyword-argument hash; LiteralHash returns one
// already marked as a hash literal.
func (f *Factory) Hash(line int) *HashNode { return NewHash(line) }

func (f *Factory) LiteralHash(line int) *HashNode {
	h := NewHash(line)
	h.MarkLiteral()
	return h
}

// KeyPair builds an entry with an explicit key; Splat builds a **value
// entry.
func (f *Factory) KeyPair(key, value Node) Pair { return Pair{Key: key, Value: value} }

func (f *Factory) Splat(value Node) Pair { return Pair{Value: value} }

func (f *Factory) Symbol(line int, name string) *SymbolNode {
	return &SymbolNode{base: base{line: line}, Name: name}
}

func (f *Factory) Str(line int, value []byte, enc source.Encoding) *StrNode {
	return &StrNode{base: base{line: line}, Value: value, Encoding: enc}
}

func (f *Factory) Int(line int, value string) *IntNode {
	return &IntNode{base: base{line: line}, Value: value}
}

func (f *Factory) Float(line int, value string) *FloatNode {
	return &FloatNode{base: base{line: line}, Value: value}
}

func (f *Factory) Nil(line int) *NilNode     { return &NilNode{base{line: line}} }
func (f *Factory) True(line int) *TrueNode   { return &TrueNode{base{line: line}} }
func (f *Factory) False(line int) *FalseNode { return &FalseNode{base{line: line}} }
func (f *Factory) Self(line int) *SelfNode   { return &SelfNode{base{line: line}} }

func (f *Factory) Const(line int, name string) *ConstNode {
	return &ConstNode{base: base{line: line}, Name: name}
}
