package codegen

import (
	"brew/pkg/parser"
	"errors"
	"fmt"
)

var (
	ErrUnknownVariable     = errors.New("unknown variable")
	ErrRedeclared          = errors.New("variable redeclared")
	ErrOutOfScope          = errors.New("variable out of scope")
	ErrTooManyVariables    = errors.New("too many variables")
	ErrBlockTooLarge       = errors.New("conditional block too large")
	ErrLiteralRange        = errors.New("literal out of byte range")
	ErrMalformedExpression = errors.New("malformed expression")
)

// CompileError reports why a compile call was aborted
type CompileError struct {
	Err    error  // error kind, matchable with errors.Is
	Line   int    // 1-based source line, 0 when not tied to a line
	Source string // offending source line
}

func (e *CompileError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("compile error: %v", e.Err)
	}

	return fmt.Sprintf("compile error at line %d: %v (%q)", e.Line, e.Err, e.Source)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// newCompileError attaches a statement location to err unless it already has one
func newCompileError(err error, pos parser.Pos) error {
	var ce *CompileError
	if errors.As(err, &ce) {
		return err
	}

	var se *parser.SyntaxError
	if errors.As(err, &se) {
		return &CompileError{Err: se.Err, Line: se.Line, Source: se.Source}
	}

	return &CompileError{Err: err, Line: pos.Line, Source: pos.Source}
}
