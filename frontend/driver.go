// Package frontend is the facade over the parsing machinery. A Driver
// accepts source in any of its input shapes, runs the grammar engine over
// it, publishes trailing __END__ data, keeps cumulative parse statistics
// and maps failures onto SyntaxError and SourceReadError.
package frontend

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/rubiojr/rbfront/ast"
	"github.com/rubiojr/rbfront/parser"
	"github.com/rubiojr/rbfront/source"
)

// logger is resolved per call so it picks up whichever backend the
// program installed after package initialization.
func logger() commonlog.Logger { return commonlog.GetLogger("rbfront.frontend") }

// Engine is the grammar engine contract: run to completion over src and
// return the tree, or fail.
type Engine interface {
	Parse(src source.Source, cfg parser.Configuration) (*parser.Result, error)
}

// Driver parses source text into ASTs. A Driver is safe for concurrent
// use; parses share its Environment and Stats.
type Driver struct {
	Env   *Environment
	Stats *Stats
	// Engine defaults to the reference grammar. Generated parsers plug in
	// here too; their scanner.ErrList failures are translated like the
	// grammar's own errors.
	Engine Engine
}

// NewDriver returns a driver over env using the reference grammar. A nil
// env gets a fresh Environment and a nil stats a fresh Stats.
func NewDriver(env *Environment, stats *Stats) *Driver {
	if env == nil {
		env = NewEnvironment()
	}
	if stats == nil {
		stats = &Stats{}
	}
	return &Driver{Env: env, Stats: stats, Engine: parser.Grammar{}}
}

// ParseBuffer parses text whose encoding is already known. The buffer's
// encoding replaces the configured default.
func (d *Driver) ParseBuffer(name string, buf source.Buffer, scope *parser.Scope, cfg parser.Configuration) (*ast.RootNode, error) {
	cfg = cfg.WithEncoding(buf.Encoding)
	src := source.NewBuffer(name, cfg.LineNumber(), buf, d.lineSink(name, cfg))
	return d.ParseSource(name, src, scope, cfg)
}

// ParseBytes parses raw bytes interpreted in the configured encoding.
func (d *Driver) ParseBytes(name string, data []byte, scope *parser.Scope, cfg parser.Configuration) (*ast.RootNode, error) {
	src := source.NewBytes(name, cfg.LineNumber(), data, cfg.DefaultEncoding(), d.lineSink(name, cfg))
	return d.ParseSource(name, src, scope, cfg)
}

// preloaded is implemented by readers whose whole content is already in
// memory, such as bytes.Buffer.
type preloaded interface {
	Bytes() []byte
}

// ParseReader parses a stream line by line. The runtime's current-line
// counter is reset to zero afterwards, and r is closed unless it is
// retained by the environment or now backs the published DATA segment.
// Readers that already hold their content in memory are parsed as bytes.
func (d *Driver) ParseReader(name string, r io.Reader, scope *parser.Scope, cfg parser.Configuration) (*ast.RootNode, error) {
	if p, ok := r.(preloaded); ok {
		return d.ParseBytes(name, p.Bytes(), scope, cfg)
	}

	c, closable := r.(io.Closer)
	closable = closable && !d.Env.Owned(r)
	var data *source.Segment
	defer func() {
		// A stream backing the published DATA segment stays open for
		// its readers; closing the segment closes it.
		if closable && data == nil {
			if err := c.Close(); err != nil {
				logger().Warningf("%s: closing source: %s", name, err)
			}
		}
		// Line-oriented reads move the counter user code sees as the
		// last line read; parsing must leave it untouched.
		if d.Env.CurrentLine != nil {
			d.Env.CurrentLine.Store(0)
		}
	}()

	src := source.NewStream(name, cfg.LineNumber(), r, cfg.DefaultEncoding(), d.lineSink(name, cfg), d.Env.CurrentLine)
	root, seg, err := d.parse(name, src, scope, cfg)
	data = seg
	return root, err
}

// ParseSource runs the engine over an adapted source. The other entry
// points funnel into it.
func (d *Driver) ParseSource(name string, src source.Source, scope *parser.Scope, cfg parser.Configuration) (*ast.RootNode, error) {
	root, _, err := d.parse(name, src, scope, cfg)
	return root, err
}

// parse is ParseSource that also returns the segment published as DATA.
func (d *Driver) parse(name string, src source.Source, scope *parser.Scope, cfg parser.Configuration) (*ast.RootNode, *source.Segment, error) {
	// Only eval-as-block parses pass a scope; identifiers then resolve
	// against it.
	if scope != nil {
		cfg = cfg.ParseAsBlock(scope)
	}

	id := uuid.New()
	start := time.Now()
	res, err := d.engine().Parse(src, cfg)
	if err != nil {
		logger().Debugf("parse %s %s failed: %s", id, name, err)
		return nil, nil, translateError(name, err)
	}

	var data *source.Segment
	if res.EndSeen && cfg.IsSaveData() {
		data = d.publishData(name, src)
	}

	elapsed := time.Since(start)
	d.Stats.record(elapsed, src.Offset())
	logger().Debugf("parse %s %s: %d bytes in %s", id, name, src.Offset(), elapsed)
	return res.AST, data, nil
}

func (d *Driver) engine() Engine {
	if d.Engine == nil {
		return parser.Grammar{}
	}
	return d.Engine
}

// lineSink returns the capture list for name, when capture applies.
func (d *Driver) lineSink(name string, cfg parser.Configuration) source.LineSink {
	if cfg.IsEvalParse() || d.Env.ScriptLines == nil {
		return nil
	}
	return d.Env.ScriptLines.Start(name)
}

// publishData binds the unread input of src to DATA. A segment it
// replaces is closed unless its stream is retained by the environment.
func (d *Driver) publishData(name string, src source.Source) *source.Segment {
	seg, ok := src.Remaining()
	if !ok || d.Env.Globals == nil {
		return nil
	}
	old, replaced := d.Env.Globals.Swap(DataConstant, seg)
	if !replaced {
		return seg
	}
	logger().Debugf("%s: replaced existing %s binding", name, DataConstant)
	if prev, ok := old.(*source.Segment); ok && !d.Env.Owned(prev.Origin()) {
		if err := prev.Close(); err != nil {
			logger().Warningf("%s: closing replaced %s: %s", name, DataConstant, err)
		}
	}
	return seg
}
