package parser

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/rbfront/ast"
	"github.com/rubiojr/rbfront/source"
)

func parseWith(t *testing.T, input string, cfg Configuration) *Result {
	t.Helper()
	src := source.NewBytes("t.rb", cfg.LineNumber(), []byte(input), cfg.DefaultEncoding(), nil)
	res, err := Grammar{}.Parse(src, cfg)
	require.NoError(t, err)
	return res
}

func parse(t *testing.T, input string) *Result {
	t.Helper()
	return parseWith(t, input, NewConfiguration())
}

// stmts returns the top-level statements of input.
func stmts(t *testing.T, input string) []ast.Node {
	t.Helper()
	return parse(t, input).AST.Body.Statements
}

func parseError(t *testing.T, input string) *Error {
	t.Helper()
	src := source.NewBytes("t.rb", 0, []byte(input), source.UTF8, nil)
	_, err := Grammar{}.Parse(src, NewConfiguration())
	var perr *Error
	require.ErrorAs(t, err, &perr)
	return perr
}

func TestParseLiteralHash(t *testing.T) {
	s := stmts(t, "{a: 1}")
	require.Len(t, s, 1)
	h, ok := s[0].(*ast.HashNode)
	require.True(t, ok)
	assert.True(t, h.IsLiteral())
	assert.False(t, h.HasRestKwarg())
	assert.True(t, h.HasOnlySymbolKeys())
	assert.Equal(t, 1, h.Len())
}

func TestParseCallKeywordArgs(t *testing.T) {
	s := stmts(t, "f(a: 1, **b)")
	call, ok := s[0].(*ast.FCallNode)
	require.True(t, ok)
	assert.Equal(t, "f", call.Name)
	h := call.KeywordArgs()
	require.NotNil(t, h)
	assert.False(t, h.IsLiteral())
	assert.True(t, h.HasRestKwarg())
	assert.False(t, h.HasOnlySymbolKeys())
	assert.False(t, h.HasOnlyRestKwargs())

	pairs := h.Pairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, "a", pairs[0].Key.(*ast.SymbolNode).Name)
	assert.Nil(t, pairs[1].Key)
	assert.Equal(t, "b", pairs[1].Value.(*ast.VCallNode).Name)
}

func TestParseOnlyDoubleSplats(t *testing.T) {
	h, ok := stmts(t, "{**x, **y}")[0].(*ast.HashNode)
	require.True(t, ok)
	assert.True(t, h.IsLiteral())
	assert.True(t, h.HasRestKwarg())
	assert.False(t, h.HasOnlySymbolKeys())
	assert.True(t, h.HasOnlyRestKwargs())
}

func TestParseHashRocketKeys(t *testing.T) {
	h := stmts(t, "{\"a\" => 1,\n :b => 2}")[0].(*ast.HashNode)
	assert.Equal(t, 2, h.Len())
	assert.False(t, h.HasOnlySymbolKeys())

	h = stmts(t, "{:a => 1, b: 2}")[0].(*ast.HashNode)
	assert.True(t, h.HasOnlySymbolKeys())
}

func TestParseCommandCallKeywordArgs(t *testing.T) {
	call := stmts(t, "puts 1, a: 2, **opts")[0].(*ast.FCallNode)
	require.Len(t, call.Args, 2)
	h := call.KeywordArgs()
	require.NotNil(t, h)
	assert.Equal(t, "mixedkwrest", h.Label())
}

func TestParseLiteralHashArgument(t *testing.T) {
	call := stmts(t, "foo({a: 1})")[0].(*ast.FCallNode)
	require.Len(t, call.Args, 1)
	assert.Nil(t, call.KeywordArgs())
	assert.True(t, call.Args[0].(*ast.HashNode).IsLiteral())
}

func TestParseMethodCallKeywordArgs(t *testing.T) {
	call := stmts(t, "obj.run(**opts)")[0].(*ast.CallNode)
	assert.Equal(t, "run", call.Name)
	h := call.KeywordArgs()
	require.NotNil(t, h)
	assert.Equal(t, "onlykwrest", h.Label())
}

func TestParsePositionalAfterKeyword(t *testing.T) {
	perr := parseError(t, "foo 1, a: 2, 3")
	assert.Equal(t, "syntax error, positional argument after keyword arguments", perr.Msg)
	assert.Equal(t, 0, perr.Line)
}

func TestParseLocalVariables(t *testing.T) {
	res := parse(t, "x = 1\nx\ny")
	s := res.AST.Body.Statements
	require.Len(t, s, 3)
	assert.IsType(t, &ast.LocalAsgnNode{}, s[0])
	assert.IsType(t, &ast.LocalVarNode{}, s[1])
	assert.IsType(t, &ast.VCallNode{}, s[2])
	assert.Equal(t, []string{"x"}, res.AST.Locals)
	assert.True(t, res.AST.ContainsVariableAssignment())
	assert.Equal(t, 1, s[1].Line())
}

func TestParseOpAssign(t *testing.T) {
	asgn := stmts(t, "n = 0\nn += 2")[1].(*ast.LocalAsgnNode)
	call := asgn.Value.(*ast.CallNode)
	assert.Equal(t, "+", call.Name)
	assert.IsType(t, &ast.LocalVarNode{}, call.Receiver)
}

func TestParseBlockScope(t *testing.T) {
	outer := NewTopScope("outer")
	res := parseWith(t, "outer\ninner = outer", NewConfiguration().ParseAsBlock(outer))

	s := res.AST.Body.Statements
	v := s[0].(*ast.LocalVarNode)
	assert.Equal(t, 1, v.Depth)
	asgn := s[1].(*ast.LocalAsgnNode)
	assert.Equal(t, 0, asgn.Depth)
	assert.Equal(t, 1, asgn.Value.(*ast.LocalVarNode).Depth)

	assert.Equal(t, []string{"inner"}, res.AST.Locals)
	assert.Same(t, outer, res.Scope.Parent())
	assert.True(t, res.Scope.IsBlock())
	assert.Equal(t, []string{"outer"}, outer.Variables(), "the caller's scope is not modified")
}

func TestParseWithoutBlockScope(t *testing.T) {
	res := parse(t, "outer")
	assert.IsType(t, &ast.VCallNode{}, res.AST.Body.Statements[0])
	assert.Nil(t, res.Scope.Parent())
}

func TestParseDef(t *testing.T) {
	s := stmts(t, "def m(a, **opts)\n  b = a\nend\nb")
	require.Len(t, s, 2)
	def := s[0].(*ast.DefNode)
	assert.Equal(t, "m", def.Name)
	assert.Equal(t, []string{"a"}, def.Params)
	assert.Equal(t, "opts", def.KwRest)
	assert.Equal(t, []string{"a", "opts", "b"}, def.Locals)
	assert.False(t, def.ContainsVariableAssignment())
	assert.IsType(t, &ast.LocalVarNode{}, def.Body.Statements[0].(*ast.LocalAsgnNode).Value)
	assert.IsType(t, &ast.VCallNode{}, s[1], "method locals are not visible outside")
}

func TestParseDefErrors(t *testing.T) {
	assert.Equal(t, "duplicated argument name", parseError(t, "def m(a, a)\nend").Msg)
	assert.Equal(t, "syntax error, parameter after **o", parseError(t, "def m(**o, a)\nend").Msg)
}

func TestParseIf(t *testing.T) {
	n := stmts(t, "if x = 1\n  y\nelsif z then 1\nelse\n  2\nend")[0].(*ast.IfNode)
	assert.IsType(t, &ast.LocalAsgnNode{}, n.Condition)
	assert.True(t, n.ContainsVariableAssignment())
	elsif := n.Else.(*ast.IfNode)
	assert.IsType(t, &ast.VCallNode{}, elsif.Condition)
	assert.IsType(t, &ast.BlockNode{}, elsif.Else)
}

func TestParseModifiers(t *testing.T) {
	s := stmts(t, "a if b\nc while d")
	n := s[0].(*ast.IfNode)
	assert.Equal(t, "b", n.Condition.(*ast.VCallNode).Name)
	assert.Equal(t, "a", n.Then.(*ast.VCallNode).Name)
	assert.IsType(t, &ast.WhileNode{}, s[1])
}

func TestParseWhile(t *testing.T) {
	w := stmts(t, "while a do b end")[0].(*ast.WhileNode)
	assert.Len(t, w.Body.(*ast.BlockNode).Statements, 1)
}

func TestParsePrecedence(t *testing.T) {
	sum := stmts(t, "1 + 2 * 3")[0].(*ast.CallNode)
	assert.Equal(t, "+", sum.Name)
	assert.Equal(t, "*", sum.Args[0].(*ast.CallNode).Name)

	pow := stmts(t, "2 ** 3 ** 2")[0].(*ast.CallNode)
	assert.Equal(t, "2", pow.Receiver.(*ast.IntNode).Value)
	assert.Equal(t, "**", pow.Args[0].(*ast.CallNode).Name)

	or := stmts(t, "a && b || !c")[0].(*ast.OrNode)
	assert.IsType(t, &ast.AndNode{}, or.Left)
	assert.IsType(t, &ast.NotNode{}, or.Right)
}

func TestParseUnaryMinus(t *testing.T) {
	assert.Equal(t, "-1", stmts(t, "-1")[0].(*ast.IntNode).Value)
	assert.Equal(t, "-2.5", stmts(t, "-2.5")[0].(*ast.FloatNode).Value)
	assert.Equal(t, "-@", stmts(t, "-a")[0].(*ast.CallNode).Name)
}

func TestParseAttributeAssignment(t *testing.T) {
	set := stmts(t, "a.b = 1")[0].(*ast.CallNode)
	assert.Equal(t, "b=", set.Name)

	idx := stmts(t, "a[1] = 2")[0].(*ast.CallNode)
	assert.Equal(t, "[]=", idx.Name)
	assert.Len(t, idx.Args, 2)
}

func TestParseLiterals(t *testing.T) {
	s := stmts(t, "[1, 2.0, :s, \"str\", nil, true, false, self, Foo, ()]")
	arr := s[0].(*ast.ArrayNode)
	var got []ast.Kind
	for _, e := range arr.Elements {
		got = append(got, e.Kind())
	}
	assert.Equal(t, []ast.Kind{
		ast.KindInt, ast.KindFloat, ast.KindSymbol, ast.KindStr, ast.KindNil,
		ast.KindTrue, ast.KindFalse, ast.KindSelf, ast.KindConst, ast.KindNil,
	}, got)
}

func TestParseEndMarker(t *testing.T) {
	res := parse(t, "p 1\n__END__\nthis is ( not code")
	assert.True(t, res.EndSeen)
	assert.Len(t, res.AST.Body.Statements, 1)

	assert.False(t, parse(t, "p 1\n").EndSeen)
}

func TestParseLineOffset(t *testing.T) {
	res := parseWith(t, "a\nb", NewConfiguration().WithLineNumber(10))
	s := res.AST.Body.Statements
	assert.Equal(t, 10, s[0].Line())
	assert.Equal(t, 11, s[1].Line())
}

func TestParseStringEncoding(t *testing.T) {
	cfg := NewConfiguration().WithEncoding(source.ISO88591)
	str := parseWith(t, "\"caf\xe9\"", cfg).AST.Body.Statements[0].(*ast.StrNode)
	assert.Equal(t, source.ISO88591, str.Encoding)
	decoded, err := str.String()
	require.NoError(t, err)
	assert.Equal(t, "café", decoded)
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
		line  int
	}{
		{"def m\n", "syntax error, unexpected end-of-input, expecting 'end'", 1},
		{"1 +", "syntax error, unexpected end-of-input", 0},
		{"foo(1", "syntax error, unexpected end-of-input, expecting ')'", 0},
		{"{1}", "syntax error, unexpected '}', expecting '=>'", 0},
		{"a b )", "syntax error, unexpected ')'", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			perr := parseError(t, tt.input)
			assert.Equal(t, tt.msg, perr.Msg)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestParseSourceReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader("x = 1\n"), iotest.ErrReader(boom))
	src := source.NewStream("s.rb", 0, r, source.UTF8, nil, nil)

	res, err := Grammar{}.Parse(src, NewConfiguration())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
	var perr *Error
	assert.False(t, errors.As(err, &perr))
}
