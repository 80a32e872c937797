package interpreter

import (
	"brew/pkg/parser/codegen"
	"errors"
	"fmt"
)

var (
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrInvalidTruthValue = errors.New("invalid truth value")
	ErrBadFrame          = errors.New("invalid frame")
	ErrBadSlot           = errors.New("invalid slot")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrBadJump           = errors.New("branch target before program start")
	ErrUnknownOpcode     = codegen.ErrUnknownOpcode
	ErrTruncated         = codegen.ErrTruncated
)

// RuntimeError stops an interpretation run. Err is the error kind.
type RuntimeError struct {
	Err error          // error kind, matchable with errors.Is
	IP  int            // offset of the failing instruction
	Op  codegen.Opcode // failing opcode
	Msg string         // detail
}

func (e *RuntimeError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("runtime error at %d (%s): %v", e.IP, e.Op, e.Err)
	}

	return fmt.Sprintf("runtime error at %d (%s): %v: %s", e.IP, e.Op, e.Err, e.Msg)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
