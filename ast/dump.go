package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	ansiKind  = "\x1b[36m"
	ansiInfo  = "\x1b[33m"
	ansiReset = "\x1b[0m"
)

// Dump writes an indented outline of the tree to w, one node per line:
// kind, one-based line and kind specific detail. Color adds ANSI escapes.
func Dump(w io.Writer, n Node, color bool) error {
	d := &dumper{w: w, color: color}
	d.dump(n, 0)
	return d.err
}

// DumpString returns the uncolored outline of n.
func DumpString(n Node) string {
	var sb strings.Builder
	_ = Dump(&sb, n, false)
	return sb.String()
}

type dumper struct {
	w     io.Writer
	color bool
	info  string
	err   error
}

func (d *dumper) dump(n Node, depth int) {
	if d.err != nil {
		return
	}
	d.info = ""
	n.Accept(d)

	kind := n.Kind().String()
	info := d.info
	if d.color {
		kind = ansiKind + kind + ansiReset
		if info != "" {
			info = ansiInfo + info + ansiReset
		}
	}
	line := strings.Repeat("  ", depth) + kind
	if n.Kind() != KindAbsent {
		line += " " + strconv.Itoa(n.Line()+1)
	}
	if info != "" {
		line += " " + info
	}
	if n.ContainsVariableAssignment() {
		line += " [asgn]"
	}
	if _, err := fmt.Fprintln(d.w, line); err != nil {
		d.err = err
		return
	}
	for _, c := range n.Children() {
		d.dump(c, depth+1)
	}
}

func (d *dumper) VisitAbsent(*AbsentNode) {}
func (d *dumper) VisitRoot(n *RootNode)   { d.info = n.File }
func (d *dumper) VisitBlock(*BlockNode)   {}
func (d *dumper) VisitDef(n *DefNode) {
	params := append([]string(nil), n.Params...)
	if n.KwRest != "" {
		params = append(params, "**"+n.KwRest)
	}
	d.info = fmt.Sprintf("%s(%s)", n.Name, strings.Join(params, ", "))
}
func (d *dumper) VisitIf(*IfNode)       {}
func (d *dumper) VisitWhile(*WhileNode) {}
func (d *dumper) VisitLocalAsgn(n *LocalAsgnNode) {
	d.info = fmt.Sprintf("%s depth=%d", n.Name, n.Depth)
}
func (d *dumper) VisitLocalVar(n *LocalVarNode) {
	d.info = fmt.Sprintf("%s depth=%d", n.Name, n.Depth)
}
func (d *dumper) VisitCall(n *CallNode)   { d.info = n.Name }
func (d *dumper) VisitFCall(n *FCallNode) { d.info = n.Name }
func (d *dumper) VisitVCall(n *VCallNode) { d.info = n.Name }
func (d *dumper) VisitAnd(*AndNode)       {}
func (d *dumper) VisitOr(*OrNode)         {}
func (d *dumper) VisitNot(*NotNode)       {}
func (d *dumper) VisitArray(*ArrayNode)   {}
func (d *dumper) VisitHash(n *HashNode)   { d.info = n.Label() }
func (d *dumper) VisitSymbol(n *SymbolNode) {
	d.info = ":" + n.Name
}
func (d *dumper) VisitStr(n *StrNode) {
	s, err := n.String()
	if err != nil {
		s = string(n.Value)
	}
	d.info = strconv.Quote(s) + " " + n.Encoding.String()
}
func (d *dumper) VisitInt(n *IntNode)     { d.info = n.Value }
func (d *dumper) VisitFloat(n *FloatNode) { d.info = n.Value }
func (d *dumper) VisitNil(*NilNode)       {}
func (d *dumper) VisitTrue(*TrueNode)     {}
func (d *dumper) VisitFalse(*FalseNode)   {}
func (d *dumper) VisitSelf(*SelfNode)     {}
func (d *dumper) VisitConst(n *ConstNode) { d.info = n.Name }
