package repl

import (
	"bytes"
	"io"
	"strings"

	"brew/pkg/interpreter"
	"brew/pkg/parser/codegen"
)

// Var is a session variable and its value after the last run
type Var struct {
	Name  string
	Value int8
}

// Session keeps the statements accepted so far. Every Eval recompiles and
// reruns the whole history so variables keep their values.
type Session struct {
	out  io.Writer
	fuel int

	history []string
	cg      *codegen.Codegen
	program []byte
	it      *interpreter.Interpreter
	printed []byte // debug output of the accepted history
}

// NewSession creates an empty session writing debug output to out
func NewSession(out io.Writer, fuel int) *Session {
	s := &Session{out: out, fuel: fuel}
	s.Reset()
	return s
}

// Reset forgets every accepted statement
func (s *Session) Reset() {
	s.history = nil
	s.cg = codegen.NewCodegen()
	s.program = nil
	s.it = nil
	s.printed = nil
}

// Eval appends src (one or more lines) to the history and runs the result.
// A statement that fails to compile or run is not kept.
func (s *Session) Eval(src string) error {
	lines := append(append([]string(nil), s.history...), strings.Split(src, "\n")...)

	cg := codegen.NewCodegen()
	program, err := cg.Compile(lines)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	it, err := interpreter.Exec(program, interpreter.WithWriter(&buf), interpreter.WithFuel(s.fuel))
	s.flush(buf.Bytes())
	if err != nil {
		return err
	}

	s.history, s.cg, s.program, s.it = lines, cg, program, it
	s.printed = append(s.printed[:0], buf.Bytes()...)
	return nil
}

// flush writes the part of out not shown by the last accepted run
func (s *Session) flush(out []byte) {
	fresh := out
	if bytes.HasPrefix(out, s.printed) {
		fresh = out[len(s.printed):]
	}

	s.out.Write(fresh)
}

// Exhausted reports whether the last run stopped on its fuel budget
func (s *Session) Exhausted() bool {
	return s.it != nil && s.it.Exhausted()
}

// Program returns the bytecode of the last successful run
func (s *Session) Program() []byte {
	return s.program
}

// Vars lists the top-level variables in declaration order
func (s *Session) Vars() []Var {
	if s.it == nil {
		return nil
	}

	syms := s.cg.Symbols()
	out := make([]Var, 0, len(syms))
	for _, sym := range syms {
		v, err := s.it.Variable(sym.Address)
		if err != nil {
			continue
		}
		out = append(out, Var{Name: sym.Name, Value: v})
	}

	return out
}

// BlockDepth counts the if blocks left open by src
func BlockDepth(src string) int {
	return strings.Count(src, "{") - strings.Count(src, "}")
}
