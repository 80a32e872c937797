package lexer

import (
	"regexp"
)

// Token regex patterns
var tokenRegexes = map[TokenType]*regexp.Regexp{
	PLUS:   regexp.MustCompile(`^\+`),
	MINUS:  regexp.MustCompile(`^-`),
	MULT:   regexp.MustCompile(`^\*`),
	DIV:    regexp.MustCompile(`^/`),
	LPAREN: regexp.MustCompile(`^\(`),
	RPAREN: regexp.MustCompile(`^\)`),

	NUM: regexp.MustCompile(`^\d+`),
	ID:  regexp.MustCompile(`^[a-zA-Z]+`),
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Token precedence order for matching
var tokenPrecedenceOrder = []TokenType{
	PLUS, MINUS, MULT, DIV, LPAREN, RPAREN, NUM, ID,
}

// Get the regex pattern for a token type
func (t TokenType) Regex() *regexp.Regexp {
	return tokenRegexes[t]
}

// MatchToken matches the token at the start of the string
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	}

	for _, tokenType := range tokenPrecedenceOrder {
		if regex, ok := tokenRegexes[tokenType]; ok {
			if match := regex.FindString(s); match != "" {
				return tokenType, match, true
			}
		}
	}

	return ILLEGAL, string(s[0]), false
}

// IsIdentifier reports whether s is a well-formed variable name
func IsIdentifier(s string) bool {
	return s != "" && ID.Regex().FindString(s) == s
}

// StripWhitespace removes every whitespace character from s
func StripWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(s, "")
}

// Check if a byte is a digit
func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
