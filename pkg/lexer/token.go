package lexer

import (
	"fmt"
)

type TokenType int

type Token struct {
	Type   TokenType // Type of the token
	Lexeme string    // Actual string from source code
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string) Token {
	return Token{
		Type:   tokenType,
		Lexeme: lexeme,
	}
}

const (
	EOF TokenType = iota // End of input

	ID  // id (identifier)
	NUM // num (optionally signed integer)

	PLUS  // +
	MINUS // -
	MULT  // *
	DIV   // /

	LPAREN // (
	RPAREN // )

	ILLEGAL // illegal token
)

var tokenNames = map[TokenType]string{
	ID:      "id",
	NUM:     "num",
	PLUS:    "+",
	MINUS:   "-",
	MULT:    "*",
	DIV:     "/",
	LPAREN:  "(",
	RPAREN:  ")",
	EOF:     "$",
	ILLEGAL: "illegal",
}

// String returns a string representation of the Token
func (t Token) String() string {
	return fmt.Sprintf("T_{%s, %v}", t.Type, t.Lexeme)
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if str, ok := tokenNames[t]; ok {
		return str
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// IsOperator reports whether the token is one of the four arithmetic operators
func (t TokenType) IsOperator() bool {
	switch t {
	case PLUS, MINUS, MULT, DIV:
		return true
	default:
		return false
	}
}

// IsOperand reports whether the token pushes a value (literal or variable)
func (t TokenType) IsOperand() bool {
	return t == NUM || t == ID
}

// Lexemes flattens tokens to their source text
func Lexemes(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Lexeme)
	}

	return out
}
