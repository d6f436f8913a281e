package frontend

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"modernc.org/scanner"

	"github.com/rubiojr/rbfront/parser"
)

// SyntaxError is a lexical or grammar violation. Line is one-based.
type SyntaxError struct {
	File    string
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// SourceReadError wraps an I/O failure while reading the source.
type SourceReadError struct {
	File string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("%s: problem reading source: %v", e.File, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// positioned matches the file:line[:col]: message rendering of positioned
// errors from generated parsers.
var positioned = regexp.MustCompile(`^(.*?):(\d+)(?::\d+)?: (.*)$`)

// translateError maps an engine failure onto the driver's error taxonomy.
// Engine lines are zero-based and gain one here. Errors from generated
// parsers (scanner.ErrList) already carry one-based positions; the first
// entry is reported, and an entry without a position is put on the first
// line. Anything else is an I/O failure of the source.
func translateError(name string, err error) error {
	var perr *parser.Error
	if errors.As(err, &perr) {
		file := perr.File
		if file == "" {
			file = name
		}
		return &SyntaxError{File: file, Line: perr.Line + 1, Message: perr.Msg}
	}
	if el, ok := err.(scanner.ErrList); ok {
		if len(el) == 0 {
			return &SyntaxError{File: name, Line: 1, Message: "syntax error"}
		}
		first := fmt.Sprintf("%s", el[0])
		if m := positioned.FindStringSubmatch(first); m != nil {
			line, _ := strconv.Atoi(m[2])
			file := m[1]
			if file == "" {
				file = name
			}
			return &SyntaxError{File: file, Line: line, Message: m[3]}
		}
		return &SyntaxError{File: name, Line: 1, Message: first}
	}
	return &SourceReadError{File: name, Err: err}
}
