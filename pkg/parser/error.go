package parser

import (
	"errors"
	"fmt"
)

var (
	ErrMismatchedParen      = errors.New("mismatched parenthesis")
	ErrAmbiguousConditional = errors.New("ambiguous conditional")
	ErrMissingRelational    = errors.New("missing relational operator")
	ErrMalformedCondition   = errors.New("malformed condition")
	ErrMissingAssign        = errors.New("missing assignment operator")
	ErrMultipleAssign       = errors.New("more than one assignment operator")
	ErrMalformedStatement   = errors.New("malformed statement")
	ErrInvalidType          = errors.New("invalid data type")
	ErrInvalidName          = errors.New("invalid variable name")
	ErrUnterminatedBlock    = errors.New("unterminated block")
	ErrUnbalancedBlock      = errors.New("unbalanced closing brace")
)

// SyntaxError ties a parse failure to the source line it came from
type SyntaxError struct {
	Err    error  // underlying error kind
	Line   int    // 1-based line number
	Source string // offending line, trimmed
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %v (%q)", e.Line, e.Err, e.Source)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
