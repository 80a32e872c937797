package codegen

import (
	"brew/pkg/parser"
	"fmt"

	"github.com/charmbracelet/log"
)

// compileBody compiles the statements of one block, without its frame bracket
func (c *Codegen) compileBody(scope *Scope, stmts []parser.Stmt) ([]byte, error) {
	var out []byte

	for _, stmt := range stmts {
		code, err := c.compileStatement(scope, stmt)
		if err != nil {
			return nil, newCompileError(err, stmt.Position())
		}

		log.Debug("emit", "line", stmt.Position().Line, "frame", scope.Depth(), "bytes", len(code))
		out = append(out, code...)
	}

	return out, nil
}

func (c *Codegen) compileStatement(scope *Scope, stmt parser.Stmt) ([]byte, error) {
	switch s := stmt.(type) {
	case *parser.DebugStmt:
		return Make(OpDebugStack), nil

	case *parser.AssignStmt:
		return c.compileAssignment(scope, s)

	case *parser.IfStmt:
		return c.compileIf(scope, s)

	default:
		return nil, fmt.Errorf("%w: unsupported statement %T", parser.ErrMalformedStatement, stmt)
	}
}

// compileAssignment emits the right hand side followed by PUSH_VAR. The right
// hand side is compiled before a declared name becomes visible.
func (c *Codegen) compileAssignment(scope *Scope, s *parser.AssignStmt) ([]byte, error) {
	rhs, err := c.compileExpression(scope, s.Expr)
	if err != nil {
		return nil, err
	}

	var addr Address
	if s.Declares() {
		addr, err = scope.Declare(s.Name)
	} else {
		addr, err = scope.Resolve(s.Name)
	}
	if err != nil {
		return nil, err
	}

	return Compose(rhs, Make(OpPushVar, addr.Frame, addr.Slot)), nil
}

// compileIf compiles the body in a child scope, then the guarding conditional
func (c *Codegen) compileIf(scope *Scope, s *parser.IfStmt) ([]byte, error) {
	child, err := scope.Child()
	if err != nil {
		return nil, err
	}

	body, err := c.compileBody(child, s.Body)
	if err != nil {
		return nil, err
	}
	block := frame(child, body)
	scope.Retire(child)

	cond, err := c.compileConditional(scope, s.Cond, len(block))
	if err != nil {
		return nil, err
	}

	return Compose(cond, block), nil
}
