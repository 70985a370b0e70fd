package grantling

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/grantling/grantling/parser"
)

// LoaderFunc loads template source by name. The stock loader reads files
// under the engine's template directory; SetLoader replaces it when the
// host keeps templates somewhere else.
type LoaderFunc func(name string) (string, error)

// Engine parses and caches templates and creates the contexts they render
// against. The cache is keyed by template name, not content: a file that
// changes after its first load keeps serving the cached parse until the
// host calls Invalidate or runs Watch.
//
// An engine is safe for concurrent renders over independent contexts;
// first-time loads synchronize on the internal cache lock.
type Engine struct {
	templates map[string]*Template
	mu        sync.RWMutex
	filters   map[string]FilterFunc
	loader    LoaderFunc
	dir       string
	warn      func(error)
}

// Template is a parsed, immutable template registered with an engine.
type Template struct {
	eng *Engine
	ast *parser.Template
}

// New creates a template engine with the built-in filters registered and
// the stock file loader rooted at the current directory.
func New() *Engine {
	e := &Engine{
		templates: make(map[string]*Template),
		filters:   make(map[string]FilterFunc),
		dir:       ".",
		warn: func(err error) {
			log.Printf("template: %v", err)
		},
	}
	e.loader = e.loadFile
	registerDefaultFilters(e)
	return e
}

// NewTemplate parses data and registers the result under name so that
// later extends and include tags can reach it without a file load.
func (e *Engine) NewTemplate(name, data string) (*Template, error) {
	ast, err := parser.Parse(data, name)
	if err != nil {
		return nil, err
	}
	tmpl := &Template{eng: e, ast: ast}

	e.mu.Lock()
	e.templates[name] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}

// LoadByName loads, parses and caches the named template. Subsequent
// loads of the same name reuse the cached node tree.
func (e *Engine) LoadByName(name string) (*Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	source, err := e.loader(name)
	if err != nil {
		return nil, NewError(ErrTemplateNotFound, err.Error()).WithName(name)
	}
	return e.NewTemplate(name, source)
}

// SetLoader replaces the template loader.
func (e *Engine) SetLoader(loader LoaderFunc) {
	e.loader = loader
}

// SetTemplateDir points the stock file loader (and Watch) at dir.
func (e *Engine) SetTemplateDir(dir string) {
	e.dir = dir
}

// Invalidate drops the named template from the cache. The next load
// re-reads and re-parses it.
func (e *Engine) Invalidate(name string) {
	e.mu.Lock()
	delete(e.templates, name)
	e.mu.Unlock()
}

// InvalidateAll empties the template cache.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	e.templates = make(map[string]*Template)
	e.mu.Unlock()
}

// AddFilter registers a filter under name, replacing any built-in of the
// same name.
func (e *Engine) AddFilter(name string, f FilterFunc) {
	e.filters[name] = f
}

// SetWarnFunc sets the destination for non-fatal render anomalies:
// undefined variables, unknown filters, missing include targets and
// failed create writes. The default logs through the standard logger.
func (e *Engine) SetWarnFunc(warn func(error)) {
	if warn == nil {
		warn = func(error) {}
	}
	e.warn = warn
}

func (e *Engine) getFilter(name string) (FilterFunc, bool) {
	f, ok := e.filters[name]
	return f, ok
}

func (e *Engine) loadFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(e.dir, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Name returns the name the template was registered under.
func (t *Template) Name() string {
	return t.ast.Name
}

// Render evaluates the template against ctx and writes the output to w.
// Render-time anomalies are reported through the engine's warn hook and
// do not fail the render; only writer errors and exceeding the template
// recursion ceiling do.
func (t *Template) Render(w io.Writer, ctx *Context) error {
	s := &renderState{
		eng:    t.eng,
		ctx:    ctx,
		out:    w,
		name:   t.ast.Name,
		blocks: make(map[string][]parser.Stmt),
	}
	return s.evalTemplate(t.ast)
}

// RenderToString is a convenience wrapper around Render.
func (t *Template) RenderToString(ctx *Context) (string, error) {
	var b strings.Builder
	if err := t.Render(&b, ctx); err != nil {
		return "", err
	}
	return b.String(), nil
}
