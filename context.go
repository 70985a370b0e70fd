package grantling

import (
	"strconv"
	"strings"

	"github.com/grantling/grantling/value"
)

// Escaper escapes the string form of a variable expansion before it is
// written to output. The engine decides when escaping happens (every
// non-raw expansion); the host decides what it does.
type Escaper interface {
	Escape(s string) string
}

// HTMLEscaper is a stock Escaper for HTML output.
type HTMLEscaper struct{}

// Escape replaces the HTML metacharacters in s.
func (HTMLEscaper) Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Context is a stack of name-to-value scopes used to resolve variable
// expressions during rendering. A key is searched starting at the top of
// the stack; the stack creates local scopes for loop bodies, blocks and
// includes. The context also carries the output directory consulted by
// the create tag and the optional escaper applied to non-raw expansions.
//
// A Context is not safe for concurrent use. Independent contexts may
// render against one shared engine concurrently.
type Context struct {
	scopes    []map[string]*value.Value
	outputDir string
	escaper   Escaper
}

// CreateContext returns a fresh context with an empty scope stack and no
// escaper set. Callers typically push one scope before setting variables.
func (e *Engine) CreateContext() *Context {
	return &Context{outputDir: "."}
}

// Push adds a new innermost scope.
func (c *Context) Push() {
	c.scopes = append(c.scopes, make(map[string]*value.Value))
}

// Pop removes the innermost scope.
func (c *Context) Pop() {
	if len(c.scopes) > 0 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

// Set writes a value into the current (innermost) scope, replacing any
// previous binding of the same name there. Setting on an empty stack
// creates the first scope.
func (c *Context) Set(name string, v value.Value) {
	if len(c.scopes) == 0 {
		c.Push()
	}
	c.scopes[len(c.scopes)-1][name] = &v
}

// GetRef returns a pointer to the value bound to name, or nil when the
// name is not bound in any scope. Unlike Get it does not resolve dotted
// paths.
func (c *Context) GetRef(name string) *value.Value {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v
		}
	}
	return nil
}

// Get resolves a possibly dotted variable path. The first segment is
// looked up through the scope stack; each later segment asks the value
// resolved so far for the next step: a struct field by name, or a list
// element by integer index. Resolution stops at the first failure and
// yields the invalid value, never an error.
func (c *Context) Get(name string) value.Value {
	first := name
	rest := ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		first, rest = name[:i], name[i+1:]
	}

	ref := c.GetRef(first)
	if ref == nil {
		return value.Value{}
	}
	v := *ref

	for rest != "" {
		seg := rest
		if i := strings.IndexByte(rest, '.'); i >= 0 {
			seg, rest = rest[:i], rest[i+1:]
		} else {
			rest = ""
		}

		switch {
		case v.AsStruct() != nil:
			v = v.AsStruct().Get(seg)
		case v.AsList() != nil:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return value.Value{}
			}
			v = v.AsList().At(idx)
		default:
			return value.Value{}
		}
		if !v.IsValid() {
			return value.Value{}
		}
	}
	return v
}

// SetOutputDirectory sets the directory files produced by the create tag
// are written under.
func (c *Context) SetOutputDirectory(dir string) {
	c.outputDir = dir
}

// OutputDirectory returns the directory the create tag writes under.
func (c *Context) OutputDirectory() string {
	return c.outputDir
}

// SetEscaper installs the escaping interface applied to every non-raw
// variable expansion. A nil escaper means pass-through.
func (c *Context) SetEscaper(esc Escaper) {
	c.escaper = esc
}

// depth returns the current scope stack depth.
func (c *Context) depth() int {
	return len(c.scopes)
}

// restore pops scopes until the stack is n deep again. Rendering uses it
// to guarantee Push/Pop pairing even when a body fails part-way.
func (c *Context) restore(n int) {
	for len(c.scopes) > n {
		c.Pop()
	}
}
