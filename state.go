package grantling

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/grantling/grantling/parser"
	"github.com/grantling/grantling/value"
)

// maxTemplateDepth bounds how many templates one render may stack through
// extends, include and create before the render fails. The grammar cannot
// express cycles at parse time (include targets resolve lazily), so a
// self-including template hits this ceiling instead of recursing forever.
const maxTemplateDepth = 64

// renderState walks a node tree against one context. It holds no state
// that outlives the render call; everything persistent lives in the
// context's scope stack.
type renderState struct {
	eng  *Engine
	ctx  *Context
	out  io.Writer
	name string
	// blocks maps block names to the body of the nearest descendant that
	// overrides them, collected while walking down an extends chain.
	blocks map[string][]parser.Stmt
	depth  int
}

// evalTemplate renders a whole template, resolving its extends chain
// first when it has one.
func (s *renderState) evalTemplate(tmpl *parser.Template) error {
	if tmpl.Extends == nil {
		return s.evalStmts(tmpl.Children)
	}

	// Collect this template's blocks as overrides for the ancestors.
	// The nearest descendant that defines a name wins, so only record
	// names not already claimed further down the chain.
	for name, block := range tmpl.Blocks() {
		if _, taken := s.blocks[name]; !taken {
			s.blocks[name] = block.Body
		}
	}

	parent, err := s.loadParent(tmpl)
	if err != nil {
		return err
	}
	if parent == nil {
		// Missing parent is a render-time anomaly: fall back to the
		// child's own node sequence.
		return s.evalStmts(withoutExtends(tmpl.Children))
	}

	s.depth++
	if s.depth > maxTemplateDepth {
		return NewError(ErrRecursionLimit,
			fmt.Sprintf("extends chain deeper than %d templates", maxTemplateDepth)).WithName(s.name)
	}
	defer func() { s.depth-- }()

	return s.evalTemplate(parent.ast)
}

func (s *renderState) loadParent(tmpl *parser.Template) (*Template, error) {
	nameVal := s.evalExpr(tmpl.Extends.Name)
	name := nameVal.String()
	if name == "" {
		s.eng.warn(NewError(ErrBadTag, "extends target resolves to an empty name").WithName(s.name))
		return nil, nil
	}
	parent, err := s.eng.LoadByName(name)
	if err != nil {
		s.eng.warn(err)
		return nil, nil
	}
	return parent, nil
}

func withoutExtends(stmts []parser.Stmt) []parser.Stmt {
	out := make([]parser.Stmt, 0, len(stmts))
	for _, stmt := range stmts {
		if _, ok := stmt.(*parser.Extends); ok {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func (s *renderState) evalStmts(stmts []parser.Stmt) error {
	for _, stmt := range stmts {
		if err := s.evalStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *renderState) evalStmt(stmt parser.Stmt) error {
	switch st := stmt.(type) {
	case *parser.EmitRaw:
		return s.writeString(st.Raw)

	case *parser.EmitExpr:
		v := s.evalExpr(st.Expr)
		if !v.IsValid() {
			if vr, ok := st.Expr.(*parser.Var); ok {
				s.eng.warn(NewError(ErrUndefinedVar, vr.Name).WithName(s.name))
			}
			return nil
		}
		return s.writeValue(v)

	case *parser.ForLoop:
		return s.evalForLoop(st)

	case *parser.IfCond:
		return s.evalIfCond(st)

	case *parser.Block:
		return s.evalBlock(st)

	case *parser.Extends:
		// Handled by evalTemplate before the walk starts.
		return nil

	case *parser.Include:
		return s.evalInclude(st)

	case *parser.Create:
		return s.evalCreate(st)

	default:
		return NewError(ErrBadTag, fmt.Sprintf("unsupported node type %T", stmt)).WithName(s.name)
	}
}

func (s *renderState) evalForLoop(loop *parser.ForLoop) error {
	list := s.evalExpr(loop.Iter).AsList()
	if list == nil || list.Count() == 0 {
		if loop.EmptyBody != nil {
			return s.evalStmts(loop.EmptyBody)
		}
		return nil
	}

	// One scope for the whole loop; the loop variable is overwritten
	// each iteration so nothing set in the body leaks past endfor.
	prior := s.ctx.depth()
	s.ctx.Push()
	defer s.ctx.restore(prior)

	it := list.Iterator()
	for it.First(); ; it.Next() {
		item, ok := it.Current()
		if !ok {
			break
		}
		s.ctx.Set(loop.Target, item)
		if err := s.evalStmts(loop.Body); err != nil {
			return err
		}
	}
	return nil
}

func (s *renderState) evalIfCond(cond *parser.IfCond) error {
	if s.evalExpr(cond.Expr).Bool() {
		return s.evalStmts(cond.TrueBody)
	}
	if cond.FalseBody != nil {
		return s.evalStmts(cond.FalseBody)
	}
	return nil
}

func (s *renderState) evalBlock(block *parser.Block) error {
	body := block.Body
	if override, ok := s.blocks[block.Name]; ok {
		body = override
	}

	prior := s.ctx.depth()
	s.ctx.Push()
	defer s.ctx.restore(prior)
	return s.evalStmts(body)
}

func (s *renderState) evalInclude(inc *parser.Include) error {
	name := s.evalExpr(inc.Name).String()
	if name == "" {
		s.eng.warn(NewError(ErrBadTag, "include target resolves to an empty name").WithName(s.name))
		return nil
	}

	tmpl, err := s.eng.LoadByName(name)
	if err != nil {
		s.eng.warn(err)
		return nil
	}

	s.depth++
	if s.depth > maxTemplateDepth {
		return NewError(ErrRecursionLimit,
			fmt.Sprintf("include chain deeper than %d templates", maxTemplateDepth)).WithName(s.name)
	}
	defer func() { s.depth-- }()

	// Fresh scope on the same context: outer variables stay visible,
	// names the included template sets do not leak back.
	prior := s.ctx.depth()
	s.ctx.Push()
	defer s.ctx.restore(prior)

	child := &renderState{
		eng:    s.eng,
		ctx:    s.ctx,
		out:    s.out,
		name:   tmpl.ast.Name,
		blocks: make(map[string][]parser.Stmt),
		depth:  s.depth,
	}
	return child.evalTemplate(tmpl.ast)
}

// evalCreate renders another template into an in-memory buffer and writes
// it to a file under the context's output directory. It is a side channel:
// nothing is added to the main render stream, and failures are reported
// through the warn hook without aborting the render.
func (s *renderState) evalCreate(cr *parser.Create) error {
	fileName := s.evalExpr(cr.FileName).String()
	tmplName := s.evalExpr(cr.Template).String()
	if fileName == "" || tmplName == "" {
		s.eng.warn(NewError(ErrCreateFailed,
			"create needs a filename and a template name").WithName(s.name))
		return nil
	}

	tmpl, err := s.eng.LoadByName(tmplName)
	if err != nil {
		s.eng.warn(err)
		return nil
	}

	s.depth++
	if s.depth > maxTemplateDepth {
		return NewError(ErrRecursionLimit,
			fmt.Sprintf("create chain deeper than %d templates", maxTemplateDepth)).WithName(s.name)
	}
	defer func() { s.depth-- }()

	prior := s.ctx.depth()
	s.ctx.Push()
	defer s.ctx.restore(prior)

	var buf bytes.Buffer
	child := &renderState{
		eng:    s.eng,
		ctx:    s.ctx,
		out:    &buf,
		name:   tmpl.ast.Name,
		blocks: make(map[string][]parser.Stmt),
		depth:  s.depth,
	}
	if err := child.evalTemplate(tmpl.ast); err != nil {
		s.eng.warn(err)
		return nil
	}

	path := filepath.Join(s.ctx.OutputDirectory(), fileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		s.eng.warn(NewError(ErrCreateFailed, err.Error()).WithName(s.name))
	}
	return nil
}

// evalExpr resolves an expression to a value. Resolution never errors:
// anything that fails yields the invalid value, which renders as nothing.
func (s *renderState) evalExpr(expr parser.Expr) value.Value {
	switch e := expr.(type) {
	case *parser.Const:
		if e.IsInt {
			return value.FromInt(e.Int)
		}
		return value.FromString(e.Str)

	case *parser.Var:
		return s.ctx.Get(e.Name)

	case *parser.Filter:
		v := s.evalExpr(e.Expr)
		f, ok := s.eng.getFilter(e.Name)
		if !ok {
			s.eng.warn(NewError(ErrUnknownFilter, e.Name).WithName(s.name))
			return v
		}
		var arg value.Value
		if e.Arg != nil {
			arg = s.evalExpr(e.Arg)
		}
		return f(v, arg)

	default:
		return value.Value{}
	}
}

func (s *renderState) writeValue(v value.Value) error {
	if !v.IsValid() {
		return nil
	}

	var str string
	if v.Kind() == value.KindFunc {
		// A bare function variant is invoked without arguments.
		str = v.Call(nil)
	} else {
		str = v.String()
	}

	if !v.Raw() && s.ctx.escaper != nil {
		str = s.ctx.escaper.Escape(str)
	}
	return s.writeString(str)
}

func (s *renderState) writeString(str string) error {
	if str == "" {
		return nil
	}
	if _, err := io.WriteString(s.out, str); err != nil {
		return NewError(ErrWriteFailed, err.Error()).WithName(s.name)
	}
	return nil
}
