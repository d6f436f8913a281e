package ast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignInCondition(t *testing.T) {
	cond := tf.LocalAsgn(3, "x", 0, num("1"))
	root := rootOf(tf.If(3, cond, tf.Nil(3), nil))

	warnings := AssignInCondition{}.Check(root)
	require.Len(t, warnings, 1)
	assert.Equal(t, 3, warnings[0].Line)
	assert.Equal(t, "test.rb:4: warning: found '= literal' in conditional, should be ==", warnings[0].String())
}

func TestAssignInConditionNonLiteral(t *testing.T) {
	cond := tf.LocalAsgn(0, "x", 0, tf.FCall(0, "gets", nil))
	root := rootOf(tf.While(0, cond, tf.Nil(0)))
	assert.Empty(t, AssignInCondition{}.Check(root))
}

func TestAssignInConditionBodyIgnored(t *testing.T) {
	body := tf.Block(1, []Node{tf.LocalAsgn(1, "x", 0, num("1"))})
	root := rootOf(tf.If(0, tf.True(0), body, nil))
	assert.Empty(t, AssignInCondition{}.Check(root))
}

func TestDuplicateKeys(t *testing.T) {
	h := tf.LiteralHash(0).
		Add(tf.KeyPair(tf.Symbol(0, "a"), num("1"))).
		Add(tf.KeyPair(tf.Symbol(2, "a"), num("2")))
	warnings := DuplicateKeys{}.Check(rootOf(h))
	require.Len(t, warnings, 1)
	assert.Equal(t, 0, warnings[0].Line)
	assert.Equal(t, "key :a is duplicated and overwritten on line 3", warnings[0].Message)
}

func TestDefaultChecks(t *testing.T) {
	h := tf.Hash(0).
		Add(tf.KeyPair(sym("a"), num("1"))).
		Add(tf.KeyPair(sym("a"), num("2")))
	cond := tf.LocalAsgn(0, "x", 0, num("1"))
	root := rootOf(tf.If(0, cond, tf.FCall(0, "foo", []Node{h}), nil))
	assert.Len(t, DefaultChecks.Run(root), 2)
}

func TestWalkSkipsChildren(t *testing.T) {
	inner := tf.VCall(0, "inner")
	root := rootOf(tf.Not(0, inner), tf.VCall(0, "other"))

	var seen []Kind
	Walk(root, func(n Node) bool {
		seen = append(seen, n.Kind())
		return n.Kind() != KindNot
	})
	assert.Equal(t, []Kind{KindRoot, KindBlock, KindNot, KindVCall}, seen)
}

func TestWalkSkipsAbsent(t *testing.T) {
	h := tf.Hash(0).Add(tf.Splat(tf.VCall(0, "opts")))
	var seen []Kind
	Walk(h, func(n Node) bool {
		seen = append(seen, n.Kind())
		return true
	})
	assert.Equal(t, []Kind{KindHash, KindVCall}, seen)
}

func TestHashes(t *testing.T) {
	lit := tf.LiteralHash(0)
	kw := tf.Hash(1).Add(tf.KeyPair(sym("a"), lit))
	root := rootOf(tf.FCall(1, "foo", []Node{kw}))
	assert.Equal(t, []*HashNode{kw, lit}, Hashes(root))
}

func TestDump(t *testing.T) {
	kw := tf.Hash(0).Add(tf.KeyPair(sym("a"), num("1"))).Add(tf.Splat(tf.VCall(0, "rest")))
	root := rootOf(tf.LocalAsgn(0, "x", 0, tf.FCall(0, "foo", []Node{kw})))

	want := `RootNode 1 test.rb [asgn]
  BlockNode 1 [asgn]
    LocalAsgnNode 1 x depth=0 [asgn]
      FCallNode 1 foo
        HashNode 1 mixedkwrest
          SymbolNode 1 :a
          IntNode 1 1
          AbsentNode
          VCallNode 1 rest
`
	assert.Equal(t, want, DumpString(root))
}

func TestDumpColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, num("7"), true))
	assert.Equal(t, "\x1b[36mIntNode\x1b[0m 1 \x1b[33m7\x1b[0m\n", buf.String())
}
