package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/rbfront/source"
)

func TestFactoryAssignmentPropagation(t *testing.T) {
	asgn := tf.LocalAsgn(2, "x", 0, num("1"))
	assert.True(t, asgn.ContainsVariableAssignment())

	call := tf.FCall(2, "puts", []Node{asgn})
	assert.True(t, call.ContainsVariableAssignment())

	block := tf.Block(0, []Node{tf.VCall(1, "foo"), call})
	assert.True(t, block.ContainsVariableAssignment())

	root := tf.Root(0, "a.rb", block, []string{"x"})
	assert.True(t, root.ContainsVariableAssignment())

	plain := tf.Block(0, []Node{tf.VCall(0, "foo")})
	assert.False(t, plain.ContainsVariableAssignment())
}

func TestFactoryDefIsolatesAssignments(t *testing.T) {
	body := tf.Block(1, []Node{tf.LocalAsgn(1, "y", 0, num("2"))})
	def := tf.Def(0, "m", []string{"a"}, "opts", body, []string{"a", "opts", "y"})
	assert.False(t, def.ContainsVariableAssignment())
	assert.True(t, def.Body.ContainsVariableAssignment())
	assert.Equal(t, KindDef, def.Kind())
}

func TestFactoryCallChildren(t *testing.T) {
	recv := tf.LocalVar(0, "a", 0)
	arg := num("1")
	call := tf.Call(0, recv, "+", []Node{arg})
	children := call.Children()
	require.Len(t, children, 2)
	assert.Same(t, recv, children[0])
	assert.Same(t, arg, children[1])
	assert.Nil(t, call.KeywordArgs())
}

func TestFactoryKeywordArgs(t *testing.T) {
	kw := tf.Hash(0).Add(tf.KeyPair(sym("a"), num("1")))
	call := tf.FCall(0, "foo", []Node{num("1"), kw})
	assert.Same(t, kw, call.KeywordArgs())

	lit := tf.LiteralHash(0).Add(tf.KeyPair(sym("a"), num("1")))
	call = tf.FCall(0, "foo", []Node{lit})
	assert.Nil(t, call.KeywordArgs(), "a literal hash argument is not keyword arguments")
}

func TestFactoryIfChildrenSkipMissingElse(t *testing.T) {
	n := tf.If(0, tf.True(0), tf.Nil(0), nil)
	assert.Len(t, n.Children(), 2)
}

func TestFactoryStr(t *testing.T) {
	n := tf.Str(0, []byte{0xe9}, source.ISO88591)
	s, err := n.String()
	require.NoError(t, err)
	assert.Equal(t, "é", s)
}

func TestIsLiteral(t *testing.T) {
	assert.True(t, IsLiteral(num("1")))
	assert.True(t, IsLiteral(sym("a")))
	assert.True(t, IsLiteral(tf.Nil(0)))
	assert.False(t, IsLiteral(tf.VCall(0, "a")))
	assert.False(t, IsLiteral(tf.Hash(0)))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "HashNode", KindHash.String())
	assert.Equal(t, "ConstNode", KindConst.String())
	assert.Equal(t, "UnknownNode", Kind(-1).String())
	assert.Equal(t, "UnknownNode", kindCount.String())
}
