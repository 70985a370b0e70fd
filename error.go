package grantling

import "fmt"

// ErrorKind describes the type of a template error.
type ErrorKind int

const (
	ErrTemplateNotFound ErrorKind = iota
	ErrRecursionLimit
	ErrUnknownFilter
	ErrUndefinedVar
	ErrBadTag
	ErrCreateFailed
	ErrWriteFailed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTemplateNotFound:
		return "template not found"
	case ErrRecursionLimit:
		return "recursion limit exceeded"
	case ErrUnknownFilter:
		return "unknown filter"
	case ErrUndefinedVar:
		return "undefined variable"
	case ErrBadTag:
		return "bad tag"
	case ErrCreateFailed:
		return "create failed"
	case ErrWriteFailed:
		return "write failed"
	default:
		return "error"
	}
}

// Error is an error raised while loading or rendering a template. Parse
// errors keep their own type (parser.Error); this covers everything else.
type Error struct {
	Kind    ErrorKind
	Message string
	Name    string // template name, when known
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (in %s)", e.Kind, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates a new error.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WithName attaches a template name to the error.
func (e *Error) WithName(name string) *Error {
	e.Name = name
	return e
}
