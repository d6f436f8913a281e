package parser

import "fmt"

// Error is a lexical or grammar violation. Line is zero-based, like every
// line the engine tracks; callers presenting it add one.
type Error struct {
	File string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line+1, e.Msg)
}

// bailout carries an error up the recursive descent via panic. Parse
// recovers it; it never escapes the package.
type bailout struct{ err error }
