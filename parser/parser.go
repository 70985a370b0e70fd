package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grantling/grantling/lexer"
)

// maxNesting bounds how deeply tags can nest inside one template.
const maxNesting = 150

// Error is a parse error, fatal for the template it names. No partial node
// tree is returned alongside one.
type Error struct {
	Detail string
	Name   string
	Line   int
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("syntax error: %s (in %s, line %d)", e.Detail, e.Name, e.Line)
	}
	return fmt.Sprintf("syntax error: %s (line %d)", e.Detail, e.Line)
}

// Parser turns a token stream into a node tree.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	name     string
	blocks   map[string]bool
	depth    int
	lastSpan Span
}

// Parse parses template source and returns its node tree or an error.
func Parse(source, name string) (*Template, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		line := 1
		if le, ok := err.(*lexer.Error); ok {
			line = le.Line
		}
		return nil, &Error{Detail: err.Error(), Name: name, Line: line}
	}

	p := &Parser{
		tokens: tokens,
		name:   name,
		blocks: make(map[string]bool),
	}
	tmpl, perr := p.parse()
	if perr != nil {
		return nil, perr
	}
	return tmpl, nil
}

func (p *Parser) parse() (*Template, *Error) {
	children, err := p.subparse("")
	if err != nil {
		return nil, err
	}

	tmpl := &Template{
		Name:     p.name,
		Children: children,
		span:     p.lastSpan,
	}

	// extends must be the first construct; only whitespace and comments
	// may precede it.
	for i, stmt := range children {
		ext, ok := stmt.(*Extends)
		if !ok {
			continue
		}
		if tmpl.Extends != nil {
			return nil, &Error{
				Detail: "template has more than one extends tag",
				Name:   p.name,
				Line:   ext.Span().StartLine,
			}
		}
		if i > 0 {
			for _, before := range children[:i] {
				raw, isRaw := before.(*EmitRaw)
				if !isRaw || strings.TrimSpace(raw.Raw) != "" {
					return nil, &Error{
						Detail: "extends must be the first tag in the template",
						Name:   p.name,
						Line:   ext.Span().StartLine,
					}
				}
			}
		}
		tmpl.Extends = ext
	}

	return tmpl, nil
}

// subparse collects statements until it sees a block statement whose
// keyword is one of until (comma separated), which it leaves unconsumed
// past the keyword token. An empty until means parse to end of input.
func (p *Parser) subparse(until string) ([]Stmt, *Error) {
	p.depth++
	if p.depth > maxNesting {
		return nil, p.errorAt(p.lastSpan, "template exceeds maximum nesting depth")
	}
	defer func() { p.depth-- }()

	var stmts []Stmt
	for {
		tok := p.current()
		if tok == nil {
			if until != "" {
				return nil, p.errorAt(p.lastSpan,
					fmt.Sprintf("unexpected end of template, expected {%% %s %%}", firstAlt(until)))
			}
			return stmts, nil
		}

		switch tok.Type {
		case lexer.TokenTemplateData:
			p.advance()
			stmts = append(stmts, &EmitRaw{Raw: tok.Value, span: tok.Span})

		case lexer.TokenVariableStart:
			p.advance()
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(lexer.TokenVariableEnd, "}}"); err != nil {
				return nil, err
			}
			stmts = append(stmts, &EmitExpr{Expr: expr, span: tok.Span})

		case lexer.TokenBlockStart:
			kw := p.peekKeyword()
			if kw != "" && matchesAlt(until, kw) {
				// Leave the keyword for the caller.
				p.advance()
				p.advance()
				return stmts, nil
			}
			p.advance()
			stmt, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)

		default:
			return nil, p.errorAt(tok.Span,
				fmt.Sprintf("unexpected token %s", tok))
		}
	}
}

func (p *Parser) parseStmt() (Stmt, *Error) {
	tok := p.advance()
	if tok == nil {
		return nil, p.errorAt(p.lastSpan, "unexpected end of template, expected tag keyword")
	}
	if tok.Type != lexer.TokenIdent {
		return nil, p.errorAt(tok.Span, fmt.Sprintf("expected tag keyword, got %s", tok))
	}
	span := tok.Span

	switch tok.Value {
	case "for":
		return p.parseFor(span)
	case "if":
		return p.parseIf(span)
	case "block":
		return p.parseBlock(span)
	case "extends":
		return p.parseExtends(span)
	case "include":
		return p.parseInclude(span)
	case "create":
		return p.parseCreate(span)
	case "endfor", "endif", "endblock", "empty", "else":
		return nil, p.errorAt(span, fmt.Sprintf("unexpected %s tag", tok.Value))
	default:
		return nil, p.errorAt(span, fmt.Sprintf("unknown tag %s", tok.Value))
	}
}

func (p *Parser) parseFor(span Span) (*ForLoop, *Error) {
	target, err := p.expectIdent("loop variable")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
		return nil, err
	}

	body, err := p.subparse("empty,endfor")
	if err != nil {
		return nil, err
	}

	var emptyBody []Stmt
	if p.lastKeyword() == "empty" {
		if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
			return nil, err
		}
		emptyBody, err = p.subparse("endfor")
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
		return nil, err
	}

	return &ForLoop{
		Target:    target,
		Iter:      iter,
		Body:      body,
		EmptyBody: emptyBody,
		span:      span,
	}, nil
}

func (p *Parser) parseIf(span Span) (*IfCond, *Error) {
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
		return nil, err
	}

	trueBody, err := p.subparse("else,endif")
	if err != nil {
		return nil, err
	}

	var falseBody []Stmt
	if p.lastKeyword() == "else" {
		if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
			return nil, err
		}
		falseBody, err = p.subparse("endif")
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
		return nil, err
	}

	return &IfCond{
		Expr:      cond,
		TrueBody:  trueBody,
		FalseBody: falseBody,
		span:      span,
	}, nil
}

func (p *Parser) parseBlock(span Span) (*Block, *Error) {
	name, err := p.expectIdent("block name")
	if err != nil {
		return nil, err
	}
	if p.blocks[name] {
		return nil, p.errorAt(span, fmt.Sprintf("block %s defined twice", name))
	}
	p.blocks[name] = true

	if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
		return nil, err
	}
	body, err := p.subparse("endblock")
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
		return nil, err
	}

	return &Block{Name: name, Body: body, span: span}, nil
}

func (p *Parser) parseExtends(span Span) (*Extends, *Error) {
	// Nested subparse calls raise the depth past the root body's 1, so a
	// depth above that means the tag sits inside another construct.
	if p.depth > 1 {
		return nil, p.errorAt(span, "extends must be at the top level of the template")
	}
	name, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
		return nil, err
	}
	return &Extends{Name: name, span: span}, nil
}

func (p *Parser) parseInclude(span Span) (*Include, *Error) {
	name, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
		return nil, err
	}
	return &Include{Name: name, span: span}, nil
}

func (p *Parser) parseCreate(span Span) (*Create, *Error) {
	fileName, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	tmplName, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenBlockEnd, "%}"); err != nil {
		return nil, err
	}
	return &Create{FileName: fileName, Template: tmplName, span: span}, nil
}

// --- Expressions ---

// parseExpr parses a primary expression followed by an optional filter
// chain: name.path|filter:"arg"|filter.
func (p *Parser) parseExpr() (Expr, *Error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.skip(lexer.TokenPipe) {
		name, nameSpan, err := p.expectIdentSpan("filter name")
		if err != nil {
			return nil, err
		}
		var arg Expr
		if p.skip(lexer.TokenColon) {
			arg, err = p.parsePrimary()
			if err != nil {
				return nil, err
			}
		}
		expr = &Filter{Name: name, Arg: arg, Expr: expr, span: nameSpan}
	}
	return expr, nil
}

// parsePrimary parses a quoted string, an integer, or a dotted variable
// path.
func (p *Parser) parsePrimary() (Expr, *Error) {
	tok := p.advance()
	if tok == nil {
		return nil, p.errorAt(p.lastSpan, "unexpected end of template, expected expression")
	}

	switch tok.Type {
	case lexer.TokenString:
		return &Const{Str: tok.Value, span: tok.Span}, nil

	case lexer.TokenInteger:
		n, convErr := strconv.Atoi(tok.Value)
		if convErr != nil {
			return nil, p.errorAt(tok.Span, fmt.Sprintf("invalid integer %q", tok.Value))
		}
		return &Const{Int: n, IsInt: true, span: tok.Span}, nil

	case lexer.TokenIdent:
		var path strings.Builder
		path.WriteString(tok.Value)
		for p.skip(lexer.TokenDot) {
			seg := p.advance()
			if seg == nil {
				return nil, p.errorAt(p.lastSpan, "unexpected end of template after '.'")
			}
			if seg.Type != lexer.TokenIdent && seg.Type != lexer.TokenInteger {
				return nil, p.errorAt(seg.Span,
					fmt.Sprintf("expected attribute name after '.', got %s", seg))
			}
			path.WriteByte('.')
			path.WriteString(seg.Value)
		}
		return &Var{Name: path.String(), span: tok.Span}, nil

	default:
		return nil, p.errorAt(tok.Span, fmt.Sprintf("expected expression, got %s", tok))
	}
}

// --- Token helpers ---

func (p *Parser) current() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) advance() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	tok := &p.tokens[p.pos]
	p.lastSpan = tok.Span
	p.pos++
	return tok
}

func (p *Parser) skip(typ lexer.TokenType) bool {
	if tok := p.current(); tok != nil && tok.Type == typ {
		p.advance()
		return true
	}
	return false
}

// peekKeyword returns the tag keyword following a BlockStart at the
// current position, without consuming anything.
func (p *Parser) peekKeyword() string {
	if p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == lexer.TokenIdent {
		return p.tokens[p.pos+1].Value
	}
	return ""
}

// lastKeyword returns the keyword consumed when subparse stopped on an
// end marker.
func (p *Parser) lastKeyword() string {
	if p.pos >= 1 && p.tokens[p.pos-1].Type == lexer.TokenIdent {
		return p.tokens[p.pos-1].Value
	}
	return ""
}

func (p *Parser) expect(typ lexer.TokenType, what string) *Error {
	tok := p.advance()
	if tok == nil {
		return p.errorAt(p.lastSpan, fmt.Sprintf("unexpected end of template, expected %s", what))
	}
	if tok.Type != typ {
		return p.errorAt(tok.Span, fmt.Sprintf("expected %s, got %s", what, tok))
	}
	return nil
}

func (p *Parser) expectIdent(what string) (string, *Error) {
	name, _, err := p.expectIdentSpan(what)
	return name, err
}

func (p *Parser) expectIdentSpan(what string) (string, Span, *Error) {
	tok := p.advance()
	if tok == nil {
		return "", p.lastSpan, p.errorAt(p.lastSpan,
			fmt.Sprintf("unexpected end of template, expected %s", what))
	}
	if tok.Type != lexer.TokenIdent {
		return "", tok.Span, p.errorAt(tok.Span,
			fmt.Sprintf("expected %s, got %s", what, tok))
	}
	return tok.Value, tok.Span, nil
}

func (p *Parser) expectKeyword(kw string) *Error {
	tok := p.advance()
	if tok == nil {
		return p.errorAt(p.lastSpan, fmt.Sprintf("unexpected end of template, expected %s", kw))
	}
	if tok.Type != lexer.TokenIdent || tok.Value != kw {
		return p.errorAt(tok.Span, fmt.Sprintf("expected %s, got %s", kw, tok))
	}
	return nil
}

func (p *Parser) errorAt(span Span, detail string) *Error {
	return &Error{Detail: detail, Name: p.name, Line: span.StartLine}
}

func firstAlt(until string) string {
	if i := strings.IndexByte(until, ','); i >= 0 {
		return until[:i]
	}
	return until
}

func matchesAlt(until, kw string) bool {
	if until == "" {
		return false
	}
	for _, alt := range strings.Split(until, ",") {
		if alt == kw {
			return true
		}
	}
	return false
}
