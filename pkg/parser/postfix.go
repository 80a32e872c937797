package parser

import (
	"brew/pkg/lexer"
	"brew/pkg/stack"
	"fmt"
)

// Precedence returns the binding strength of an arithmetic operator, 0 for anything else
func Precedence(t lexer.TokenType) int {
	switch t {
	case lexer.MULT, lexer.DIV:
		return 3
	case lexer.PLUS, lexer.MINUS:
		return 2
	default:
		return 0
	}
}

// ToPostfix reorders an infix token sequence into postfix (shunting-yard).
// All operators are left-associative.
func ToPostfix(tokens []lexer.Token) ([]lexer.Token, error) {
	output := make([]lexer.Token, 0, len(tokens))
	operators := stack.NewStack[lexer.Token]()

	for _, tok := range tokens {
		switch {
		case tok.Type.IsOperand():
			output = append(output, tok)

		case tok.Type == lexer.LPAREN:
			operators.Push(tok)

		case tok.Type == lexer.RPAREN:
			matched := false
			for operators.Size() > 0 {
				top, _ := operators.Pop()
				if top.Type == lexer.LPAREN {
					matched = true
					break
				}
				output = append(output, top)
			}
			if !matched {
				return nil, fmt.Errorf("%w: unexpected ')'", ErrMismatchedParen)
			}

		case tok.Type.IsOperator():
			for operators.Size() > 0 {
				top, _ := operators.Peek()
				if top.Type == lexer.LPAREN || Precedence(top.Type) < Precedence(tok.Type) {
					break
				}
				operators.Pop()
				output = append(output, top)
			}
			operators.Push(tok)

		default:
			return nil, fmt.Errorf("%w %q", lexer.ErrUnrecognizedToken, tok.Lexeme)
		}
	}

	for operators.Size() > 0 {
		top, _ := operators.Pop()
		if top.Type == lexer.LPAREN {
			return nil, fmt.Errorf("%w: unclosed '('", ErrMismatchedParen)
		}
		output = append(output, top)
	}

	return output, nil
}
