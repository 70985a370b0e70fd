// Package lexer tokenizes Django-style template source.
package lexer

import "fmt"

// TokenType represents the type of a token.
type TokenType int

const (
	// Raw text between delimiters.
	TokenTemplateData TokenType = iota

	// Delimiters
	TokenVariableStart // {{
	TokenVariableEnd   // }}
	TokenBlockStart    // {%
	TokenBlockEnd      // %}

	// Literals
	TokenIdent   // identifier
	TokenString  // "string" or 'string'
	TokenInteger // 123

	// Punctuation
	TokenDot   // .
	TokenPipe  // |
	TokenColon // :
)

var tokenTypeNames = map[TokenType]string{
	TokenTemplateData:  "TemplateData",
	TokenVariableStart: "VariableStart",
	TokenVariableEnd:   "VariableEnd",
	TokenBlockStart:    "BlockStart",
	TokenBlockEnd:      "BlockEnd",
	TokenIdent:         "Ident",
	TokenString:        "String",
	TokenInteger:       "Int",
	TokenDot:           "Dot",
	TokenPipe:          "Pipe",
	TokenColon:         "Colon",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Span represents a location range in source code. Positions are
// best-effort: line numbers are reliable, columns are byte offsets within
// the line.
type Span struct {
	StartLine   int
	StartCol    int
	StartOffset int
	EndLine     int
	EndCol      int
	EndOffset   int
}

// Token is a single token from the lexer.
type Token struct {
	Type  TokenType
	Value string // token text (for idents, strings, numbers, template data)
	Span  Span
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}
