package frontend

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// DataConstant is the global name trailing data after __END__ is
// published under.
const DataConstant = "DATA"

// Environment bundles the runtime side channels a parse coordinates with.
// None of them is owned by the driver; they are passed in explicitly so
// that parsing never reaches for ambient globals.
type Environment struct {
	// ScriptLines captures source lines per file for debuggers. Nil
	// disables capture.
	ScriptLines *ScriptLines
	// Globals receives the trailing data segment.
	Globals *Globals
	// CurrentLine is the runtime's "last line read" counter. Stream
	// sources bump it per line; the driver resets it to zero afterwards.
	CurrentLine *atomic.Int64

	mu    sync.Mutex
	owned map[any]struct{}
}

// NewEnvironment returns an environment with an empty global namespace,
// a fresh line counter and script-line capture disabled.
func NewEnvironment() *Environment {
	return &Environment{
		Globals:     NewGlobals(),
		CurrentLine: new(atomic.Int64),
	}
}

// Retain marks r as externally owned: the driver will not close it.
func (e *Environment) Retain(r any) {
	if !isComparable(r) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.owned == nil {
		e.owned = make(map[any]struct{})
	}
	e.owned[r] = struct{}{}
}

// Release undoes Retain.
func (e *Environment) Release(r any) {
	if !isComparable(r) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.owned, r)
}

// Owned reports whether r was retained.
func (e *Environment) Owned(r any) bool {
	if !isComparable(r) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.owned[r]
	return ok
}

func isComparable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}

// Globals is the runtime's global constant namespace, reduced to what
// parsing needs.
type Globals struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewGlobals() *Globals {
	return &Globals{values: make(map[string]any)}
}

// Publish binds name to v, replacing any previous binding. It reports
// whether a binding was replaced.
func (g *Globals) Publish(name string, v any) bool {
	_, replaced := g.Swap(name, v)
	return replaced
}

// Swap binds name to v and returns the previous binding, if any.
func (g *Globals) Swap(name string, v any) (any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	old, ok := g.values[name]
	g.values[name] = v
	return old, ok
}

// Lookup returns the value bound to name.
func (g *Globals) Lookup(name string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.values[name]
	return v, ok
}

// ScriptLines is the line-capture table: file name to captured lines.
type ScriptLines struct {
	mu    sync.Mutex
	files map[string]*LineList
}

func NewScriptLines() *ScriptLines {
	return &ScriptLines{files: make(map[string]*LineList)}
}

// Start installs a fresh, empty list for name and returns it. A file
// parsed again replaces its earlier capture.
func (s *ScriptLines) Start(name string) *LineList {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &LineList{}
	s.files[name] = l
	return l
}

// Lookup returns the captured lines for name.
func (s *ScriptLines) Lookup(name string) (*LineList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.files[name]
	return l, ok
}

// LineList is an append-only list of source lines. It implements
// source.LineSink.
type LineList struct {
	mu    sync.Mutex
	lines []string
}

func (l *LineList) AppendLine(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

// Lines returns a copy of the captured lines.
func (l *LineList) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
