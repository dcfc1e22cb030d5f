package doctree

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fatal error classes.
var (
	// ErrSyntax marks lexical or grammar failures that abort a parse.
	ErrSyntax = errors.New("syntax error")
	// ErrIO marks failures reading a source.
	ErrIO = errors.New("i/o error")
)

// ParseError is a fatal lexical or grammar failure.
type ParseError struct {
	Format  string   // Dialect being parsed (e.g. "lite", "docbook")
	Loc     Location // Where the failure was detected
	Message string   // Error details
	Err     error    // Underlying error, if any
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Loc.File != "" || e.Loc.Line != 0 {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Loc, msg)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, msg)
}

// Is lets errors.Is(err, ErrSyntax) match any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrSyntax }

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrSyntax
}

// NewParseError creates a ParseError.
func NewParseError(format string, loc Location, message string) *ParseError {
	return &ParseError{Format: format, Loc: loc, Message: message}
}

// IOError is a failure reading a source, wrapped with its path.
type IOError struct {
	Op   string // Operation being performed (e.g. "open", "read")
	Path string // Source path
	Err  error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

// Is lets errors.Is(err, ErrIO) match any IOError.
func (e *IOError) Is(target error) bool { return target == ErrIO }

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError creates an IOError.
func NewIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}
