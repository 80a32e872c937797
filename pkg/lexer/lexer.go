package lexer

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedToken = errors.New("unrecognized token")
	ErrTrailingOperator  = errors.New("expression ends with an operator")
	ErrDanglingMinus     = errors.New("unary minus must precede a number")
)

type Lexer struct {
	input        string // input with all whitespace removed
	length       int    // length of the input string
	position     int    // current position in the input string
	currentToken Token  // previously emitted token (unary minus handling)
}

// Create a new lexer instance. Whitespace is stripped up front.
func NewLexer(s string) *Lexer {
	input := StripWhitespace(s)
	return &Lexer{
		input:        input,
		length:       len(input),
		position:     0,
		currentToken: Token{},
	}
}

// Tokenize splits an expression into its full token sequence
func Tokenize(s string) ([]Token, error) {
	l := NewLexer(s)
	tokens := make([]Token, 0, l.length)

	for l.HasMore() {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			if tok.Lexeme == "-" {
				return nil, fmt.Errorf("%w in %q", ErrDanglingMinus, s)
			}
			return nil, fmt.Errorf("%w %q in %q", ErrUnrecognizedToken, tok.Lexeme, s)
		}

		if tok.Type.IsOperator() && l.Peek().Type == EOF {
			return nil, fmt.Errorf("%w: %q", ErrTrailingOperator, s)
		}

		tokens = append(tokens, tok)
	}

	return tokens, nil
}

// Get the next token from the input
func (l *Lexer) NextToken() Token {
	// End of input
	if l.position >= l.length {
		tok := NewToken(EOF, "")
		l.currentToken = tok
		return tok
	}

	// '-' followed by digits is one signed NUM when the previous token cannot
	// end an operand
	if l.input[l.position] == '-' && l.prevAllowsUnary() {
		if l.position+1 < l.length && isDigit(l.input[l.position+1]) {
			lex := NUM.Regex().FindString(l.input[l.position+1:])
			return l.emit(NUM, "-"+lex)
		}

		l.position++
		tok := NewToken(ILLEGAL, "-")
		l.currentToken = tok
		return tok
	}

	remaining := l.input[l.position:]
	tokenType, lexeme, matched := MatchToken(remaining)
	if !matched {
		l.position++
		tok := NewToken(ILLEGAL, lexeme)
		l.currentToken = tok
		return tok
	}

	return l.emit(tokenType, lexeme)
}

// View next token without advancing the position
func (l *Lexer) Peek() Token {
	cpos := l.position
	ctok := l.currentToken

	token := l.NextToken()

	l.position = cpos
	l.currentToken = ctok

	return token
}

// Check if there are more characters to read
func (l *Lexer) HasMore() bool {
	return l.position < l.length
}

func (l *Lexer) emit(t TokenType, lexeme string) Token {
	tok := NewToken(t, lexeme)
	l.position += len(lexeme)
	l.currentToken = tok
	return tok
}

// Check if the previous token allows a unary minus
func (l *Lexer) prevAllowsUnary() bool {
	if l.position == 0 {
		return true
	}

	switch l.currentToken.Type {
	case NUM, ID, RPAREN:
		return false
	default:
		return true
	}
}
