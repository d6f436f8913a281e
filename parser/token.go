package parser

import "fmt"

// TokenKind identifies the type of a lexer token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokNewline
	TokSemi

	// Literals and names
	TokIdent
	TokConst
	TokInt
	TokFloat
	TokString
	TokSymbol
	TokLabel // name: or "name":

	// Keywords
	TokDef
	TokEnd
	TokIf
	TokElsif
	TokElse
	TokThen
	TokWhile
	TokDo
	TokNil
	TokTrue
	TokFalse
	TokSelf

	// Punctuation and operators
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokLBrace
	TokRBrace
	TokComma
	TokDot
	TokAssign   // =
	TokOpAssign // +=, -=, *=, /=
	TokRocket   // =>
	TokDStar    // **
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokEq
	TokNeq
	TokLt
	TokGt
	TokLe
	TokGe
	TokAndAnd
	TokOrOr
	TokBang
)

var keywords = map[string]TokenKind{
	"def":   TokDef,
	"end":   TokEnd,
	"if":    TokIf,
	"elsif": TokElsif,
	"else":  TokElse,
	"then":  TokThen,
	"while": TokWhile,
	"do":    TokDo,
	"nil":   TokNil,
	"true":  TokTrue,
	"false": TokFalse,
	"self":  TokSelf,
}

// Token is one lexical unit. Text holds the name, literal content or
// operator spelling.
type Token struct {
	Kind        TokenKind
	Text        string
	Line        int
	SpaceBefore bool
}

func (t Token) String() string {
	switch t.Kind {
	case TokEOF:
		return "end-of-input"
	case TokNewline:
		return "newline"
	case TokString:
		return fmt.Sprintf("string literal %q", t.Text)
	case TokLabel:
		return fmt.Sprintf("label '%s:'", t.Text)
	case TokSymbol:
		return fmt.Sprintf("symbol :%s", t.Text)
	}
	return fmt.Sprintf("'%s'", t.Text)
}
