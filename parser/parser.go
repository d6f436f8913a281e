// Package parser holds the grammar engine: the tokenizer, the recursive
// descent parser whose semantic actions build ast nodes, the static scopes
// used to resolve local variables, and the parse Configuration.
//
// The engine's contract is small: Grammar.Parse returns a root node or an
// error. Errors are *Error for malformed input (with zero-based lines) or
// the I/O error raised by the source, unwrapped.
package parser

import (
	"fmt"
	"strings"

	"github.com/rubiojr/rbfront/ast"
	"github.com/rubiojr/rbfront/source"
)

// Result is the outcome of a successful parse.
type Result struct {
	AST *ast.RootNode
	// EndSeen reports that parsing stopped at an __END__ marker and the
	// source is positioned at the trailing data.
	EndSeen bool
	// Scope is the outermost scope the program was parsed in.
	Scope *Scope
}

// Grammar is the reference grammar engine for the supported Ruby subset.
// The zero value is ready to use and safe for concurrent parses.
type Grammar struct{}

// Parse runs the engine over src to completion.
func (Grammar) Parse(src source.Source, cfg Configuration) (res *Result, err error) {
	p := &parser{
		lex:  NewLexer(src),
		f:    ast.NewFactory(),
		file: src.Name(),
		enc:  src.Encoding(),
	}
	if cfg.BlockScope() != nil {
		p.scope = NewBlockScope(cfg.BlockScope())
	} else {
		p.scope = NewTopScope()
	}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			res, err = nil, b.err
		}
	}()
	p.advance()
	root := p.parseProgram()
	return &Result{AST: root, EndSeen: p.lex.EndSeen(), Scope: p.scope}, nil
}

type parser struct {
	lex   *Lexer
	f     *ast.Factory
	file  string
	enc   source.Encoding
	scope *Scope
	tok   Token
	ahead []Token
}

func (p *parser) lexNext() Token {
	t, err := p.lex.Next()
	if err != nil {
		panic(bailout{err})
	}
	return t
}

func (p *parser) advance() {
	if len(p.ahead) > 0 {
		p.tok, p.ahead = p.ahead[0], p.ahead[1:]
		return
	}
	p.tok = p.lexNext()
}

func (p *parser) peekTok() Token {
	if len(p.ahead) == 0 {
		p.ahead = append(p.ahead, p.lexNext())
	}
	return p.ahead[0]
}

func (p *parser) at(kinds ...TokenKind) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

func (p *parser) skipNewlines() {
	for p.tok.Kind == TokNewline {
		p.advance()
	}
}

func (p *parser) skipTerms() {
	for p.at(TokNewline, TokSemi) {
		p.advance()
	}
}

func (p *parser) errorf(line int, format string, args ...any) {
	panic(bailout{&Error{File: p.file, Line: line, Msg: fmt.Sprintf(format, args...)}})
}

func (p *parser) unexpected(expecting ...string) {
	msg := "syntax error, unexpected " + p.tok.String()
	if len(expecting) > 0 {
		msg += ", expecting " + strings.Join(expecting, " or ")
	}
	p.errorf(p.tok.Line, "%s", msg)
}

func (p *parser) expect(k TokenKind, spelling string) {
	if p.tok.Kind != k {
		p.unexpected(spelling)
	}
	p.advance()
}

func (p *parser) parseProgram() *ast.RootNode {
	line := p.tok.Line
	body := p.parseStatements()
	if p.tok.Kind != TokEOF {
		p.unexpected()
	}
	return p.f.Root(line, p.file, body, p.scope.Variables())
}

// parseStatements parses statements up to end of input or one of the
// terminators, which is left unconsumed.
func (p *parser) parseStatements(terms ...TokenKind) *ast.BlockNode {
	p.skipTerms()
	line := p.tok.Line
	var stmts []ast.Node
	for !p.at(terms...) && p.tok.Kind != TokEOF {
		stmts = append(stmts, p.parseStatement())
		if !p.at(TokNewline, TokSemi) && !p.at(terms...) && p.tok.Kind != TokEOF {
			p.unexpected()
		}
		p.skipTerms()
	}
	return p.f.Block(line, stmts)
}

func (p *parser) parseStatement() ast.Node {
	stmt := p.parseExpr()
	for {
		line := p.tok.Line
		switch p.tok.Kind {
		case TokIf:
			p.advance()
			stmt = p.f.If(line, p.parseExpr(), stmt, nil)
		case TokWhile:
			p.advance()
			stmt = p.f.While(line, p.parseExpr(), stmt)
		default:
			return stmt
		}
	}
}

func (p *parser) parseExpr() ast.Node {
	if p.tok.Kind == TokIdent {
		switch next := p.peekTok(); next.Kind {
		case TokAssign:
			line, name := p.tok.Line, p.tok.Text
			p.advance()
			p.advance()
			p.skipNewlines()
			depth := p.scope.Declare(name)
			return p.f.LocalAsgn(line, name, depth, p.parseExpr())
		case TokOpAssign:
			line, name := p.tok.Line, p.tok.Text
			p.advance()
			op := p.tok.Text
			p.advance()
			p.skipNewlines()
			depth := p.scope.Declare(name)
			value := p.f.Call(line, p.f.LocalVar(line, name, depth), op, []ast.Node{p.parseExpr()})
			return p.f.LocalAsgn(line, name, depth, value)
		}
	}

	left := p.parseBinary(0)
	if p.tok.Kind != TokAssign {
		return left
	}
	line := p.tok.Line
	call, ok := left.(*ast.CallNode)
	if !ok || call.Name != "[]" && len(call.Args) > 0 {
		p.unexpected()
	}
	p.advance()
	p.skipNewlines()
	value := p.parseExpr()
	if call.Name == "[]" {
		args := append(append([]ast.Node(nil), call.Args...), value)
		return p.f.Call(line, call.Receiver, "[]=", args)
	}
	return p.f.Call(line, call.Receiver, call.Name+"=", []ast.Node{value})
}

var binaryPrec = map[TokenKind]int{
	TokOrOr:    1,
	TokAndAnd:  2,
	TokEq:      3,
	TokNeq:     3,
	TokLt:      4,
	TokGt:      4,
	TokLe:      4,
	TokGe:      4,
	TokPlus:    5,
	TokMinus:   5,
	TokStar:    6,
	TokSlash:   6,
	TokPercent: 6,
	TokDStar:   8,
}

func (p *parser) parseBinary(minPrec int) ast.Node {
	left := p.parseUnary()
	for {
		op := p.tok
		prec, ok := binaryPrec[op.Kind]
		if !ok || prec <= minPrec {
			return left
		}
		p.advance()
		p.skipNewlines()
		next := prec
		if op.Kind == TokDStar {
			next-- // right associative
		}
		right := p.parseBinary(next)
		switch op.Kind {
		case TokAndAnd:
			left = p.f.And(op.Line, left, right)
		case TokOrOr:
			left = p.f.Or(op.Line, left, right)
		default:
			left = p.f.Call(op.Line, left, op.Text, []ast.Node{right})
		}
	}
}

func (p *parser) parseUnary() ast.Node {
	line := p.tok.Line
	switch p.tok.Kind {
	case TokBang:
		p.advance()
		return p.f.Not(line, p.parseUnary())
	case TokMinus:
		p.advance()
		if !p.tok.SpaceBefore {
			switch p.tok.Kind {
			case TokInt:
				n := p.f.Int(line, "-"+p.tok.Text)
				p.advance()
				return p.parsePostfix(n)
			case TokFloat:
				n := p.f.Float(line, "-"+p.tok.Text)
				p.advance()
				return p.parsePostfix(n)
			}
		}
		return p.f.Call(line, p.parseUnary(), "-@", nil)
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *parser) parsePostfix(n ast.Node) ast.Node {
	for {
		line := p.tok.Line
		switch {
		case p.tok.Kind == TokDot:
			p.advance()
			p.skipNewlines()
			if !p.at(TokIdent, TokConst) {
				p.unexpected("method name")
			}
			name := p.tok.Text
			p.advance()
			n = p.f.Call(line, n, name, p.parseCallArgs())
		case p.tok.Kind == TokLBracket && !p.tok.SpaceBefore:
			p.advance()
			n = p.f.Call(line, n, "[]", p.parseArgs(TokRBracket, "']'"))
		default:
			return n
		}
	}
}

// parseCallArgs parses the arguments after a method name: parenthesised,
// command style (foo 1, a: 2) or none.
func (p *parser) parseCallArgs() []ast.Node {
	switch {
	case p.tok.Kind == TokLParen && !p.tok.SpaceBefore:
		p.advance()
		return p.parseArgs(TokRParen, "')'")
	case p.canStartCommandArg():
		return p.parseArgs(TokEOF, "")
	}
	return nil
}

// canStartCommandArg reports whether the current token begins the first
// argument of a call written without parentheses.
func (p *parser) canStartCommandArg() bool {
	if !p.tok.SpaceBefore {
		return false
	}
	switch p.tok.Kind {
	case TokIdent, TokConst, TokInt, TokFloat, TokString, TokSymbol, TokLabel,
		TokNil, TokTrue, TokFalse, TokSelf, TokLBracket, TokBang:
		return true
	case TokDStar:
		return !p.peekTok().SpaceBefore
	}
	return false
}

// parseArgs parses a comma separated argument list. Keyword entries
// (a: 1, k => v, **h) are gathered into one trailing keyword-argument
// hash; a positional argument may not follow them. With closer TokEOF the
// list is a command argument list ended by the first token that is not a
// comma.
func (p *parser) parseArgs(closer TokenKind, spelling string) []ast.Node {
	var args []ast.Node
	var kwargs *ast.HashNode
	delimited := closer != TokEOF
	for {
		if delimited {
			p.skipNewlines()
			if p.tok.Kind == closer {
				break
			}
		}
		line := p.tok.Line
		if pair, ok, expr := p.parseElement(); ok {
			if kwargs == nil {
				kwargs = p.f.Hash(line)
			}
			kwargs.Add(pair)
		} else {
			if kwargs != nil {
				p.errorf(line, "syntax error, positional argument after keyword arguments")
			}
			args = append(args, expr)
		}
		if delimited {
			p.skipNewlines()
		}
		if p.tok.Kind != TokComma {
			break
		}
		p.advance()
		p.skipNewlines()
	}
	if delimited {
		p.expect(closer, spelling)
	}
	if kwargs != nil {
		args = append(args, kwargs)
	}
	return args
}

// parseElement parses one argument or hash entry. It returns the pair and
// true for keyword entries, or the plain expression.
func (p *parser) parseElement() (ast.Pair, bool, ast.Node) {
	switch p.tok.Kind {
	case TokLabel:
		key := p.f.Symbol(p.tok.Line, p.tok.Text)
		p.advance()
		p.skipNewlines()
		return p.f.KeyPair(key, p.parseExpr()), true, nil
	case TokDStar:
		p.advance()
		return p.f.Splat(p.parseUnary()), true, nil
	}
	expr := p.parseExpr()
	if p.tok.Kind == TokRocket {
		p.advance()
		p.skipNewlines()
		return p.f.KeyPair(expr, p.parseExpr()), true, nil
	}
	return ast.Pair{}, false, expr
}

func (p *parser) parsePrimary() ast.Node {
	tok := p.tok
	line := tok.Line
	switch tok.Kind {
	case TokInt:
		p.advance()
		return p.f.Int(line, tok.Text)
	case TokFloat:
		p.advance()
		return p.f.Float(line, tok.Text)
	case TokString:
		p.advance()
		return p.f.Str(line, []byte(tok.Text), p.enc)
	case TokSymbol:
		p.advance()
		return p.f.Symbol(line, tok.Text)
	case TokNil:
		p.advance()
		return p.f.Nil(line)
	case TokTrue:
		p.advance()
		return p.f.True(line)
	case TokFalse:
		p.advance()
		return p.f.False(line)
	case TokSelf:
		p.advance()
		return p.f.Self(line)
	case TokConst:
		p.advance()
		if p.tok.Kind == TokLParen && !p.tok.SpaceBefore {
			return p.f.FCall(line, tok.Text, p.parseCallArgs())
		}
		return p.f.Const(line, tok.Text)
	case TokIdent:
		return p.parseIdentifier()
	case TokLBracket:
		p.advance()
		return p.f.Array(line, p.parseArgs(TokRBracket, "']'"))
	case TokLBrace:
		return p.parseHash()
	case TokLParen:
		p.advance()
		p.skipTerms()
		if p.tok.Kind == TokRParen {
			p.advance()
			return p.f.Nil(line)
		}
		e := p.parseStatement()
		p.skipTerms()
		p.expect(TokRParen, "')'")
		return e
	case TokDef:
		return p.parseDef()
	case TokIf:
		return p.parseIf()
	case TokWhile:
		return p.parseWhile()
	}
	p.unexpected()
	return nil
}

// parseIdentifier resolves a bare name: a call when followed by
// arguments, a local variable when the scope knows it, otherwise a
// variable-or-method call.
func (p *parser) parseIdentifier() ast.Node {
	line, name := p.tok.Line, p.tok.Text
	p.advance()
	if p.tok.Kind == TokLParen && !p.tok.SpaceBefore {
		return p.f.FCall(line, name, p.parseCallArgs())
	}
	if depth := p.scope.Lookup(name); depth >= 0 {
		return p.f.LocalVar(line, name, depth)
	}
	if p.canStartCommandArg() {
		return p.f.FCall(line, name, p.parseArgs(TokEOF, ""))
	}
	return p.f.VCall(line, name)
}

// parseHash parses a brace hash literal. The node is marked literal here,
// the only place that knows the braces were written.
func (p *parser) parseHash() ast.Node {
	h := p.f.LiteralHash(p.tok.Line)
	p.advance()
	for {
		p.skipNewlines()
		if p.tok.Kind == TokRBrace {
			break
		}
		pair, ok, _ := p.parseElement()
		if !ok {
			p.unexpected("'=>'")
		}
		h.Add(pair)
		p.skipNewlines()
		if p.tok.Kind != TokComma {
			break
		}
		p.advance()
	}
	p.expect(TokRBrace, "'}'")
	return h
}

func (p *parser) parseDef() ast.Node {
	line := p.tok.Line
	p.advance()
	if !p.at(TokIdent, TokConst) {
		p.unexpected("method name")
	}
	name := p.tok.Text
	p.advance()

	outer := p.scope
	p.scope = NewLocalScope(outer)
	defer func() { p.scope = outer }()

	var params []string
	var kwrest string
	param := func() {
		if p.tok.Kind == TokDStar {
			p.advance()
			if p.tok.Kind != TokIdent {
				p.unexpected("parameter name")
			}
			kwrest = p.tok.Text
		} else {
			if p.tok.Kind != TokIdent {
				p.unexpected("parameter name")
			}
			if kwrest != "" {
				p.errorf(p.tok.Line, "syntax error, parameter after **%s", kwrest)
			}
			if p.scope.Lookup(p.tok.Text) >= 0 {
				p.errorf(p.tok.Line, "duplicated argument name")
			}
			params = append(params, p.tok.Text)
		}
		p.scope.Declare(p.tok.Text)
		p.advance()
	}
	switch {
	case p.tok.Kind == TokLParen:
		p.advance()
		p.skipNewlines()
		for p.tok.Kind != TokRParen {
			param()
			p.skipNewlines()
			if p.tok.Kind != TokComma {
				break
			}
			p.advance()
			p.skipNewlines()
		}
		p.expect(TokRParen, "')'")
	case p.at(TokIdent, TokDStar):
		for {
			param()
			if p.tok.Kind != TokComma {
				break
			}
			p.advance()
		}
	}

	body := p.parseStatements(TokEnd)
	p.expect(TokEnd, "'end'")
	return p.f.Def(line, name, params, kwrest, body, p.scope.Variables())
}

// parseIf parses if or elsif up to and including the shared end.
func (p *parser) parseIf() ast.Node {
	line := p.tok.Line
	p.advance()
	cond := p.parseExpr()
	p.parseThen(TokThen, "'then'")
	body := p.parseStatements(TokElsif, TokElse, TokEnd)

	var alt ast.Node
	switch p.tok.Kind {
	case TokElsif:
		alt = p.parseIf()
	case TokElse:
		p.advance()
		alt = p.parseStatements(TokEnd)
		p.expect(TokEnd, "'end'")
	default:
		p.expect(TokEnd, "'end'")
	}
	return p.f.If(line, cond, body, alt)
}

func (p *parser) parseWhile() ast.Node {
	line := p.tok.Line
	p.advance()
	cond := p.parseExpr()
	p.parseThen(TokDo, "'do'")
	body := p.parseStatements(TokEnd)
	p.expect(TokEnd, "'end'")
	return p.f.While(line, cond, body)
}

// parseThen consumes the separator between a condition and its body: the
// keyword, a line break, or both.
func (p *parser) parseThen(keyword TokenKind, spelling string) {
	if p.at(TokNewline, TokSemi) {
		p.skipTerms()
		if p.tok.Kind == keyword {
			p.advance()
		}
		return
	}
	p.expect(keyword, spelling)
}
