// Package parser builds the immutable node tree for a template.
package parser

import "github.com/grantling/grantling/lexer"

// Span is a location range in template source.
type Span = lexer.Span

// Node is implemented by every AST node.
type Node interface {
	node()
	Span() Span
}

// Stmt is a renderable statement node.
type Stmt interface {
	Node
	stmt()
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Template is the root of a parsed template.
type Template struct {
	Name     string
	Children []Stmt
	// Extends is set when the template opens with an extends tag; the
	// node also appears in Children.
	Extends *Extends
	span    Span
}

func (t *Template) node()      {}
func (t *Template) stmt()      {}
func (t *Template) Span() Span { return t.span }

// Blocks returns the template's top-level block nodes keyed by name.
func (t *Template) Blocks() map[string]*Block {
	blocks := make(map[string]*Block)
	for _, stmt := range t.Children {
		if b, ok := stmt.(*Block); ok {
			blocks[b.Name] = b
		}
	}
	return blocks
}

// EmitRaw outputs literal template text.
type EmitRaw struct {
	Raw  string
	span Span
}

func (e *EmitRaw) node()      {}
func (e *EmitRaw) stmt()      {}
func (e *EmitRaw) Span() Span { return e.span }

// EmitExpr outputs the result of a variable expansion.
type EmitExpr struct {
	Expr Expr
	span Span
}

func (e *EmitExpr) node()      {}
func (e *EmitExpr) stmt()      {}
func (e *EmitExpr) Span() Span { return e.span }

// ForLoop represents {% for X in EXPR %} ... {% empty %} ... {% endfor %}.
type ForLoop struct {
	Target    string
	Iter      Expr
	Body      []Stmt
	EmptyBody []Stmt // optional
	span      Span
}

func (f *ForLoop) node()      {}
func (f *ForLoop) stmt()      {}
func (f *ForLoop) Span() Span { return f.span }

// IfCond represents {% if EXPR %} ... {% else %} ... {% endif %}.
type IfCond struct {
	Expr      Expr
	TrueBody  []Stmt
	FalseBody []Stmt // optional
	span      Span
}

func (i *IfCond) node()      {}
func (i *IfCond) stmt()      {}
func (i *IfCond) Span() Span { return i.span }

// Block represents a named content region used for inheritance.
type Block struct {
	Name string
	Body []Stmt
	span Span
}

func (b *Block) node()      {}
func (b *Block) stmt()      {}
func (b *Block) Span() Span { return b.span }

// Extends references the parent template. It must be the first construct
// in a template.
type Extends struct {
	Name Expr
	span Span
}

func (e *Extends) node()      {}
func (e *Extends) stmt()      {}
func (e *Extends) Span() Span { return e.span }

// Include references another template to render in place.
type Include struct {
	Name Expr
	span Span
}

func (i *Include) node()      {}
func (i *Include) stmt()      {}
func (i *Include) Span() Span { return i.span }

// Create represents {% create 'FILENAME' from 'TEMPLATE' %}: the named
// template is rendered with the current context and written to a file
// under the context's output directory.
type Create struct {
	FileName Expr
	Template Expr
	span     Span
}

func (c *Create) node()      {}
func (c *Create) stmt()      {}
func (c *Create) Span() Span { return c.span }

// Const is a literal string or integer.
type Const struct {
	Str   string
	Int   int
	IsInt bool
	span  Span
}

func (c *Const) node()      {}
func (c *Const) expr()      {}
func (c *Const) Span() Span { return c.span }

// Var is a dotted variable path, resolved against the context at render
// time.
type Var struct {
	Name string // "a.b.0"
	span Span
}

func (v *Var) node()      {}
func (v *Var) expr()      {}
func (v *Var) Span() Span { return v.span }

// Filter applies a named filter to the wrapped expression. Chains nest
// left-to-right: {{ x|a|b }} parses as Filter b around Filter a around
// Var x.
type Filter struct {
	Name string
	Arg  Expr // optional literal or variable argument
	Expr Expr
	span Span
}

func (f *Filter) node()      {}
func (f *Filter) expr()      {}
func (f *Filter) Span() Span { return f.span }
