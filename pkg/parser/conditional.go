package parser

import (
	"brew/pkg/lexer"
	"fmt"
)

// Relational operators, two-character forms first so ">=" is never read as ">"
var relationalOperators = []string{">=", "<=", "==", ">", "<"}

// SplitConditional breaks `lhs OP rhs` into its three parts with all whitespace
// removed. Exactly one relational operator may appear.
func SplitConditional(expr string) (lhs, op, rhs string, err error) {
	s := lexer.StripWhitespace(expr)
	at := -1

	for i := 0; i < len(s); {
		found := ""
		for _, candidate := range relationalOperators {
			if len(s)-i >= len(candidate) && s[i:i+len(candidate)] == candidate {
				found = candidate
				break
			}
		}

		if found == "" {
			i++
			continue
		}

		if at != -1 {
			return "", "", "", fmt.Errorf("%w: %q has more than one relational operator", ErrAmbiguousConditional, expr)
		}

		at, op = i, found
		i += len(found)
	}

	if at == -1 {
		return "", "", "", fmt.Errorf("%w in %q", ErrMissingRelational, expr)
	}

	lhs, rhs = s[:at], s[at+len(op):]
	if lhs == "" || rhs == "" {
		return "", "", "", fmt.Errorf("%w: %q is missing an operand", ErrMalformedCondition, expr)
	}

	return lhs, op, rhs, nil
}
