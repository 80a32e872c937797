package codegen

import (
	"brew/pkg/lexer"
	"brew/pkg/parser"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// compileExpression turns infix source into stack code that leaves one value
func (c *Codegen) compileExpression(scope *Scope, src string) ([]byte, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}

	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}

	postfix, err := parser.ToPostfix(tokens)
	if err != nil {
		return nil, err
	}

	if err := checkPostfix(postfix, src); err != nil {
		return nil, err
	}

	return c.emitPostfix(scope, postfix)
}

// checkPostfix verifies every operator has two operands and exactly one value remains
func checkPostfix(postfix []lexer.Token, src string) error {
	depth := 0
	for _, tok := range postfix {
		if tok.Type.IsOperator() {
			if depth < 2 {
				return fmt.Errorf("%w: operator %q is missing an operand in %q", ErrMalformedExpression, tok.Lexeme, src)
			}
			depth--
			continue
		}
		depth++
	}

	if depth != 1 {
		return fmt.Errorf("%w: %q does not reduce to a single value", ErrMalformedExpression, src)
	}

	return nil
}

// emitPostfix generates PUSH / PULL_VAR / arithmetic instructions for a postfix sequence
func (c *Codegen) emitPostfix(scope *Scope, postfix []lexer.Token) ([]byte, error) {
	out := make([]byte, 0, 2*len(postfix))

	for _, tok := range postfix {
		switch tok.Type {
		case lexer.NUM:
			v, err := strconv.ParseInt(tok.Lexeme, 10, 8)
			if err != nil {
				if errors.Is(err, strconv.ErrRange) {
					return nil, fmt.Errorf("%w: %s", ErrLiteralRange, tok.Lexeme)
				}
				return nil, fmt.Errorf("%w: bad literal %s", ErrMalformedExpression, tok.Lexeme)
			}
			out = append(out, Make(OpPush, byte(int8(v)))...)

		case lexer.ID:
			addr, err := scope.Resolve(tok.Lexeme)
			if err != nil {
				return nil, err
			}
			out = append(out, Make(OpPullVar, addr.Frame, addr.Slot)...)

		default:
			op, ok := operatorOpcode(tok.Type)
			if !ok {
				return nil, fmt.Errorf("%w %q", lexer.ErrUnrecognizedToken, tok.Lexeme)
			}
			out = append(out, Make(op)...)
		}
	}

	return out, nil
}

// compileConditional emits rhs, lhs, the comparison and an IF that skips bodyLen
// bytes when the comparison fails
func (c *Codegen) compileConditional(scope *Scope, cond string, bodyLen int) ([]byte, error) {
	if bodyLen > MaxBranch {
		return nil, fmt.Errorf("%w: body is %d bytes, at most %d fit in a branch", ErrBlockTooLarge, bodyLen, MaxBranch)
	}

	lhs, relop, rhs, err := parser.SplitConditional(cond)
	if err != nil {
		return nil, err
	}

	cmp, ok := ComparisonOpcode(relop)
	if !ok {
		return nil, fmt.Errorf("%w %q", parser.ErrMissingRelational, relop)
	}

	left, err := c.compileExpression(scope, lhs)
	if err != nil {
		return nil, err
	}

	right, err := c.compileExpression(scope, rhs)
	if err != nil {
		return nil, err
	}

	return Compose(right, left, Make(cmp), Make(OpIf, byte(bodyLen))), nil
}
