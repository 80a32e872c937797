package codegen

import (
	"brew/pkg/parser"

	"github.com/charmbracelet/log"
)

// Codegen compiles Brew source to bytecode. Its session scope persists across
// Compile calls until Reset; a Codegen must not be shared between goroutines.
type Codegen struct {
	root *Scope // session symbol table (frame 0)
}

// NewCodegen creates a new Codegen instance
func NewCodegen() *Codegen {
	return &Codegen{
		root: NewScope(),
	}
}

// Reset forgets every variable declared in this session
func (c *Codegen) Reset() {
	c.root = NewScope()
}

// Symbols lists the session variables in slot order
func (c *Codegen) Symbols() []Symbol {
	return c.root.Symbols()
}

// Lookup resolves a session variable by name
func (c *Codegen) Lookup(name string) (Address, error) {
	return c.root.Resolve(name)
}

// Compile compiles source lines into a program wrapped in a top-level frame.
// On error the session is left as it was and no bytecode is returned.
func (c *Codegen) Compile(lines []string) ([]byte, error) {
	stmts, err := parser.ParseProgram(lines)
	if err != nil {
		return nil, newCompileError(err, parser.Pos{})
	}

	scope := c.root.Clone()
	body, err := c.compileBody(scope, stmts)
	if err != nil {
		return nil, err
	}

	program := frame(scope, body)
	c.root = scope

	log.Debug("Compiled program", "lines", len(lines), "bytes", len(program), "variables", scope.Len())
	return program, nil
}

// CompileExpression compiles an arithmetic expression against the session scope
func (c *Codegen) CompileExpression(src string) ([]byte, error) {
	code, err := c.compileExpression(c.root, src)
	if err != nil {
		return nil, newCompileError(err, parser.Pos{Source: src})
	}

	return code, nil
}

// CompileAssignment compiles one assignment statement against the session
// scope, without any frame bracket
func (c *Codegen) CompileAssignment(src string) ([]byte, error) {
	stmt, err := parser.ParseAssignment(src)
	if err != nil {
		return nil, newCompileError(err, parser.Pos{Source: src})
	}

	scope := c.root.Clone()
	code, err := c.compileAssignment(scope, stmt)
	if err != nil {
		return nil, newCompileError(err, parser.Pos{Source: src})
	}

	c.root = scope
	return code, nil
}

// CompileIf compiles an `if (cond)` header guarding a body of bodyLen bytes
func (c *Codegen) CompileIf(header string, bodyLen int) ([]byte, error) {
	cond, err := parser.ParseIfHeader(header)
	if err != nil {
		return nil, newCompileError(err, parser.Pos{Source: header})
	}

	code, err := c.compileConditional(c.root, cond, bodyLen)
	if err != nil {
		return nil, newCompileError(err, parser.Pos{Source: header})
	}

	return code, nil
}

// frame brackets a block body with its frame allocation
func frame(scope *Scope, body []byte) []byte {
	return Compose(Make(OpPushFrame, byte(scope.Len())), body, Make(OpPopFrame))
}
