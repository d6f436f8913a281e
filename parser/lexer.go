package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rubiojr/rbfront/source"
)

// Lexer turns a source.Source into tokens. It stops at end of input or
// at an __END__ marker alone on its line, after which EndSeen is true and
// the source is positioned at the first byte of the trailing data.
type Lexer struct {
	src       source.Source
	enc       source.Encoding
	pending   []byte // pushed-back bytes, never newlines
	lineStart bool
	endSeen   bool
}

// NewLexer returns a Lexer reading from src.
func NewLexer(src source.Source) *Lexer {
	return &Lexer{src: src, enc: src.Encoding(), lineStart: true}
}

// EndSeen reports whether the __END__ marker was reached.
func (l *Lexer) EndSeen() bool { return l.endSeen }

// Next returns the next token. Errors are either *Error for malformed
// input or the I/O error returned by the source.
func (l *Lexer) Next() (tok Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	return l.scan(), nil
}

func (l *Lexer) read() (byte, bool) {
	if n := len(l.pending); n > 0 {
		ch := l.pending[n-1]
		l.pending = l.pending[:n-1]
		return ch, true
	}
	ch, err := l.src.Next()
	if errors.Is(err, io.EOF) {
		return 0, false
	}
	if err != nil {
		panic(bailout{err})
	}
	return ch, true
}

func (l *Lexer) peek() (byte, bool) {
	if n := len(l.pending); n > 0 {
		return l.pending[n-1], true
	}
	ch, err := l.src.Peek()
	if errors.Is(err, io.EOF) {
		return 0, false
	}
	if err != nil {
		panic(bailout{err})
	}
	return ch, true
}

func (l *Lexer) unread(ch byte) { l.pending = append(l.pending, ch) }

// accept consumes the next byte if it equals ch.
func (l *Lexer) accept(ch byte) bool {
	if next, ok := l.peek(); ok && next == ch {
		l.read()
		return true
	}
	return false
}

func (l *Lexer) errorf(format string, args ...any) {
	panic(bailout{&Error{File: l.src.Name(), Line: l.src.Line(), Msg: fmt.Sprintf(format, args...)}})
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= 0x80
}

func isIdentChar(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

func (l *Lexer) scan() Token {
	if l.endSeen {
		return Token{Kind: TokEOF, Line: l.src.Line()}
	}
	space := false
	for {
		line := l.src.Line()
		ch, ok := l.read()
		if !ok {
			return Token{Kind: TokEOF, Line: line, SpaceBefore: space}
		}
		atStart := l.lineStart
		l.lineStart = false
		tok := Token{Line: line, SpaceBefore: space}

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v':
			space = true
			continue
		case ch == '\\':
			if !l.accept('\n') {
				l.errorf("unexpected backslash")
			}
			space = true
			continue
		case ch == '#':
			for next, ok := l.peek(); ok && next != '\n'; next, ok = l.peek() {
				l.read()
			}
			continue
		case ch == '\n':
			l.lineStart = true
			tok.Kind, tok.Text = TokNewline, "\n"
			return tok
		case isIdentStart(ch):
			name := l.ident(ch)
			if atStart && name == "__END__" && l.endMarker() {
				l.endSeen = true
				tok.Kind = TokEOF
				return tok
			}
			if l.label() {
				tok.Kind, tok.Text = TokLabel, name
				return tok
			}
			tok.Text = name
			if kw, ok := keywords[name]; ok {
				tok.Kind = kw
			} else if name[0] >= 'A' && name[0] <= 'Z' {
				tok.Kind = TokConst
			} else {
				tok.Kind = TokIdent
			}
			return tok
		case isDigit(ch):
			tok.Kind, tok.Text = l.number(ch)
			return tok
		case ch == '"' || ch == '\'':
			tok.Text = l.str(ch)
			tok.Kind = TokString
			if l.label() {
				tok.Kind = TokLabel
			}
			return tok
		case ch == ':':
			tok.Kind = TokSymbol
			next, ok := l.peek()
			switch {
			case ok && (next == '"' || next == '\''):
				l.read()
				tok.Text = l.str(next)
			case ok && isIdentStart(next):
				l.read()
				tok.Text = l.ident(next)
			default:
				l.errorf("unexpected ':'")
			}
			return tok
		}

		tok.Kind, tok.Text = l.operator(ch)
		return tok
	}
}

// endMarker consumes the line break after __END__ and reports whether the
// marker stands alone on its line.
func (l *Lexer) endMarker() bool {
	next, ok := l.peek()
	switch {
	case !ok:
		return true
	case next == '\n':
		l.read()
		return true
	case next == '\r':
		l.read()
		if l.accept('\n') {
			return true
		}
		l.unread('\r')
	}
	return false
}

// label consumes a ':' that turns the preceding name into a label.
func (l *Lexer) label() bool {
	if !l.accept(':') {
		return false
	}
	if next, ok := l.peek(); ok && next == ':' {
		l.errorf("scoped constant lookup is not supported")
	}
	return true
}

func (l *Lexer) ident(first byte) string {
	var sb strings.Builder
	l.char(&sb, first)
	for {
		next, ok := l.peek()
		if !ok || !isIdentChar(next) {
			return sb.String()
		}
		l.read()
		l.char(&sb, next)
	}
}

// char appends the character starting with lead, validating multibyte
// sequences against the source encoding.
func (l *Lexer) char(sb *strings.Builder, lead byte) {
	n := l.enc.SeqLen(lead)
	seq := []byte{lead}
	for i := 1; i < n; i++ {
		next, ok := l.peek()
		if !ok {
			break
		}
		l.read()
		seq = append(seq, next)
	}
	if !l.enc.Valid(seq) {
		l.errorf("invalid multibyte char (%s)", l.enc)
	}
	sb.Write(seq)
}

func (l *Lexer) number(first byte) (TokenKind, string) {
	var sb strings.Builder
	sb.WriteByte(first)
	kind := TokInt
	digits := func() {
		for next, ok := l.peek(); ok && (isDigit(next) || next == '_'); next, ok = l.peek() {
			l.read()
			if next != '_' {
				sb.WriteByte(next)
			}
		}
	}
	digits()
	if l.accept('.') {
		if next, ok := l.peek(); ok && isDigit(next) {
			kind = TokFloat
			sb.WriteByte('.')
			digits()
		} else {
			l.unread('.')
		}
	}
	if next, ok := l.peek(); ok && (next == 'e' || next == 'E') {
		l.read()
		kind = TokFloat
		sb.WriteByte('e')
		if sign, ok := l.peek(); ok && (sign == '+' || sign == '-') {
			l.read()
			sb.WriteByte(sign)
		}
		if next, ok := l.peek(); !ok || !isDigit(next) {
			l.errorf("trailing 'e' in number")
		}
		digits()
	}
	if next, ok := l.peek(); ok && isIdentStart(next) {
		l.errorf("unexpected character %q after number", next)
	}
	return kind, sb.String()
}

var escapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', 's': ' ', 'e': 0x1b,
	'0': 0, 'a': 7, 'b': 8, 'f': '\f', 'v': '\v',
}

// str reads a string literal body after its opening quote. Double quoted
// strings process escapes; single quoted ones only \\ and \'.
func (l *Lexer) str(quote byte) string {
	var buf, raw []byte
	for {
		ch, ok := l.read()
		if !ok {
			l.errorf("unterminated string meets end of file")
		}
		if ch == quote {
			break
		}
		if ch != '\\' {
			buf = append(buf, ch)
			raw = append(raw, ch)
			continue
		}
		esc, ok := l.read()
		if !ok {
			l.errorf("unterminated string meets end of file")
		}
		switch {
		case quote == '\'':
			if esc != '\\' && esc != '\'' {
				buf = append(buf, '\\')
			}
			buf = append(buf, esc)
		case esc == 'x':
			buf = append(buf, l.hexEscape())
		case esc == '\n':
			// line continuation inside the literal
		default:
			if b, ok := escapes[esc]; ok {
				buf = append(buf, b)
			} else {
				buf = append(buf, esc)
			}
		}
	}
	// Escapes may produce any byte; only the literal text must be valid.
	if !l.enc.Valid(raw) {
		l.errorf("invalid multibyte char (%s)", l.enc)
	}
	return string(buf)
}

func (l *Lexer) hexEscape() byte {
	var v byte
	for i := 0; i < 2; i++ {
		next, ok := l.peek()
		if !ok {
			return v
		}
		var d byte
		switch {
		case isDigit(next):
			d = next - '0'
		case next >= 'a' && next <= 'f':
			d = next - 'a' + 10
		case next >= 'A' && next <= 'F':
			d = next - 'A' + 10
		default:
			return v
		}
		l.read()
		v = v<<4 | d
	}
	return v
}

func (l *Lexer) operator(ch byte) (TokenKind, string) {
	switch ch {
	case ';':
		return TokSemi, ";"
	case '(':
		return TokLParen, "("
	case ')':
		return TokRParen, ")"
	case '[':
		return TokLBracket, "["
	case ']':
		return TokRBracket, "]"
	case '{':
		return TokLBrace, "{"
	case '}':
		return TokRBrace, "}"
	case ',':
		return TokComma, ","
	case '.':
		return TokDot, "."
	case '=':
		switch {
		case l.accept('='):
			return TokEq, "=="
		case l.accept('>'):
			return TokRocket, "=>"
		}
		return TokAssign, "="
	case '!':
		if l.accept('=') {
			return TokNeq, "!="
		}
		return TokBang, "!"
	case '<':
		if l.accept('=') {
			return TokLe, "<="
		}
		return TokLt, "<"
	case '>':
		if l.accept('=') {
			return TokGe, ">="
		}
		return TokGt, ">"
	case '&':
		if l.accept('&') {
			return TokAndAnd, "&&"
		}
	case '|':
		if l.accept('|') {
			return TokOrOr, "||"
		}
	case '*':
		if l.accept('*') {
			return TokDStar, "**"
		}
		if l.accept('=') {
			return TokOpAssign, "*"
		}
		return TokStar, "*"
	case '+', '-', '/', '%':
		if l.accept('=') {
			return TokOpAssign, string(ch)
		}
		return map[byte]TokenKind{'+': TokPlus, '-': TokMinus, '/': TokSlash, '%': TokPercent}[ch], string(ch)
	}
	l.errorf("unexpected character %q", ch)
	return TokEOF, ""
}
