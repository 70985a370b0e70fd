package lexer

import (
	"fmt"
	"strings"
)

// Error is a lexical error with a source position.
type Error struct {
	Detail string
	Line   int
	Col    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (line %d)", e.Detail, e.Line)
}

// Lexer splits template source into a flat token stream. Comment blocks
// ({# ... #}) are consumed whole and produce no tokens.
type Lexer struct {
	source string
	pos    int
	line   int
	col    int

	start     int
	startLine int
	startCol  int

	// Non-zero while inside a {{ }} or {% %} block; holds the closing
	// delimiter the expression state is looking for.
	closing string
}

const (
	variableStart = "{{"
	variableEnd   = "}}"
	blockStart    = "{%"
	blockEnd      = "%}"
	commentStart  = "{#"
	commentEnd    = "#}"
)

// New creates a Lexer for the given source.
func New(source string) *Lexer {
	return &Lexer{source: source, line: 1}
}

// Tokenize returns all tokens for the given source.
func Tokenize(source string) ([]Token, error) {
	l := New(source)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return tokens, nil
		}
		tokens = append(tokens, *tok)
	}
}

// Next returns the next token, or nil at end of input.
func (l *Lexer) Next() (*Token, error) {
	for {
		if l.pos >= len(l.source) {
			if l.closing != "" {
				return nil, l.errorf("unterminated %s block",
					delimiterName(l.closing))
			}
			return nil, nil
		}
		if l.closing != "" {
			return l.nextExpr()
		}

		tok, err := l.nextData()
		if err != nil {
			return nil, err
		}
		if tok != nil {
			return tok, nil
		}
		// A comment was skipped; go around again.
	}
}

// nextData handles the template-data state: everything up to the next
// delimiter is literal text.
func (l *Lexer) nextData() (*Token, error) {
	l.markStart()
	rest := l.source[l.pos:]
	idx := nextDelimiter(rest)
	if idx < 0 {
		l.advance(len(rest))
		return l.emit(TokenTemplateData, rest), nil
	}
	if idx > 0 {
		text := rest[:idx]
		l.advance(idx)
		return l.emit(TokenTemplateData, text), nil
	}

	// A delimiter starts right here.
	switch {
	case strings.HasPrefix(rest, commentStart):
		end := strings.Index(rest, commentEnd)
		if end < 0 {
			return nil, l.errorf("unterminated comment")
		}
		l.advance(end + len(commentEnd))
		return nil, nil
	case strings.HasPrefix(rest, variableStart):
		l.markStart()
		l.advance(len(variableStart))
		l.closing = variableEnd
		return l.emit(TokenVariableStart, variableStart), nil
	default: // blockStart
		l.markStart()
		l.advance(len(blockStart))
		l.closing = blockEnd
		return l.emit(TokenBlockStart, blockStart), nil
	}
}

// nextExpr handles the state inside {{ }} and {% %}.
func (l *Lexer) nextExpr() (*Token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.source) {
		return nil, l.errorf("unterminated %s block", delimiterName(l.closing))
	}

	l.markStart()
	rest := l.source[l.pos:]

	if strings.HasPrefix(rest, l.closing) {
		closing := l.closing
		l.closing = ""
		l.advance(len(closing))
		if closing == variableEnd {
			return l.emit(TokenVariableEnd, closing), nil
		}
		return l.emit(TokenBlockEnd, closing), nil
	}

	c := rest[0]
	switch {
	case c == '.':
		l.advance(1)
		return l.emit(TokenDot, "."), nil
	case c == '|':
		l.advance(1)
		return l.emit(TokenPipe, "|"), nil
	case c == ':':
		l.advance(1)
		return l.emit(TokenColon, ":"), nil
	case c == '\'' || c == '"':
		return l.lexString(c)
	case c >= '0' && c <= '9':
		n := 1
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		text := rest[:n]
		l.advance(n)
		return l.emit(TokenInteger, text), nil
	case isIdentStart(c):
		n := 1
		for n < len(rest) && isIdentCont(rest[n]) {
			n++
		}
		text := rest[:n]
		l.advance(n)
		return l.emit(TokenIdent, text), nil
	default:
		return nil, l.errorf("unexpected character %q in %s block",
			c, delimiterName(l.closing))
	}
}

func (l *Lexer) lexString(quote byte) (*Token, error) {
	rest := l.source[l.pos:]
	end := -1
	for i := 1; i < len(rest); i++ {
		if rest[i] == quote {
			end = i
			break
		}
		if rest[i] == '\n' {
			break
		}
	}
	if end < 0 {
		return nil, l.errorf("unterminated string literal")
	}
	text := rest[1:end]
	l.advance(end + 1)
	return l.emit(TokenString, text), nil
}

// nextDelimiter returns the offset of the earliest delimiter in s, or -1.
func nextDelimiter(s string) int {
	for i := 0; ; {
		idx := strings.IndexByte(s[i:], '{')
		if idx < 0 {
			return -1
		}
		i += idx
		if i+1 < len(s) {
			switch s[i+1] {
			case '{', '%', '#':
				return i
			}
		}
		i++
		if i >= len(s) {
			return -1
		}
	}
}

func delimiterName(closing string) string {
	if closing == variableEnd {
		return "variable"
	}
	return "tag"
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *Lexer) markStart() {
	l.start = l.pos
	l.startLine = l.line
	l.startCol = l.col
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.source); i++ {
		if l.source[l.pos] == '\n' {
			l.line++
			l.col = 0
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance(1)
		default:
			return
		}
	}
}

func (l *Lexer) emit(typ TokenType, text string) *Token {
	return &Token{
		Type:  typ,
		Value: text,
		Span: Span{
			StartLine:   l.startLine,
			StartCol:    l.startCol,
			StartOffset: l.start,
			EndLine:     l.line,
			EndCol:      l.col,
			EndOffset:   l.pos,
		},
	}
}

func (l *Lexer) errorf(format string, args ...any) *Error {
	return &Error{
		Detail: fmt.Sprintf(format, args...),
		Line:   l.startLine,
		Col:    l.startCol,
	}
}
