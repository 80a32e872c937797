package parser

import (
	"brew/pkg/lexer"
	"fmt"
	"strings"
)

const (
	TypeByte     = "byte"
	DebugKeyword = "DEBUG"
	IfKeyword    = "if"
)

var keywords = map[string]bool{
	TypeByte:     true,
	DebugKeyword: true,
	IfKeyword:    true,
}

// IsKeyword reports whether a word is reserved
func IsKeyword(word string) bool {
	return keywords[word]
}

// Stmt is one parsed Brew statement
type Stmt interface {
	Position() Pos
}

// Pos locates a statement in the source
type Pos struct {
	Line   int    // 1-based line number
	Source string // trimmed source line
}

// Position returns the statement location
func (p Pos) Position() Pos { return p }

// DebugStmt dumps the operand stack
type DebugStmt struct {
	Pos
}

// AssignStmt is `[byte] name = expr`; Type is empty for a plain assignment
type AssignStmt struct {
	Pos
	Type string
	Name string
	Expr string
}

// Declares reports whether the statement introduces a new variable
func (a *AssignStmt) Declares() bool {
	return a.Type != ""
}

// IfStmt is `if (cond) { body }`
type IfStmt struct {
	Pos
	Cond string
	Body []Stmt
}

// ParseProgram turns source lines into a statement tree, matching if blocks
// with their closing braces
func ParseProgram(lines []string) ([]Stmt, error) {
	stmts, _, err := parseBlock(lines, 0, -1)
	return stmts, err
}

// parseBlock reads statements from lines[i:] until the closing brace of the
// block opened at line open (-1 for the top level)
func parseBlock(lines []string, i, open int) ([]Stmt, int, error) {
	var out []Stmt

	for i < len(lines) {
		src := strings.TrimSpace(lines[i])
		pos := Pos{Line: i + 1, Source: src}

		switch {
		case src == "":
			i++

		case src == "}":
			if open < 0 {
				return nil, i, &SyntaxError{Err: ErrUnbalancedBlock, Line: pos.Line, Source: src}
			}
			return out, i + 1, nil

		case IsIfHeader(src):
			cond, err := ParseIfHeader(src)
			if err != nil {
				return nil, i, &SyntaxError{Err: err, Line: pos.Line, Source: src}
			}

			body, next, err := parseBlock(lines, i+1, i)
			if err != nil {
				return nil, next, err
			}

			out = append(out, &IfStmt{Pos: pos, Cond: cond, Body: body})
			i = next

		default:
			stmt, err := ParseStatement(src)
			if err != nil {
				return nil, i, &SyntaxError{Err: err, Line: pos.Line, Source: src}
			}

			switch s := stmt.(type) {
			case *DebugStmt:
				s.Pos = pos
			case *AssignStmt:
				s.Pos = pos
			}

			out = append(out, stmt)
			i++
		}
	}

	if open >= 0 {
		src := strings.TrimSpace(lines[open])
		return nil, i, &SyntaxError{Err: ErrUnterminatedBlock, Line: open + 1, Source: src}
	}

	return out, i, nil
}

// IsIfHeader reports whether a trimmed line opens an if block
func IsIfHeader(src string) bool {
	if !strings.HasPrefix(src, IfKeyword) || len(src) == len(IfKeyword) {
		return false
	}

	next := src[len(IfKeyword)]
	return next == '(' || next == ' ' || next == '\t'
}

// ParseIfHeader extracts the relational expression from `if (cond) {`.
// The opening brace is optional.
func ParseIfHeader(src string) (string, error) {
	s := strings.TrimSpace(src)
	if !IsIfHeader(s) {
		return "", fmt.Errorf("%w: %q is not an if statement", ErrMalformedStatement, src)
	}

	s = strings.TrimSpace(s[len(IfKeyword):])
	s = strings.TrimSpace(strings.TrimSuffix(s, "{"))

	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return "", fmt.Errorf("%w: condition must be wrapped in parentheses", ErrMalformedCondition)
	}

	return s[1 : len(s)-1], nil
}

// ParseStatement parses a single non-block statement
func ParseStatement(src string) (Stmt, error) {
	src = strings.TrimSpace(src)
	if src == DebugKeyword {
		return &DebugStmt{Pos: Pos{Source: src}}, nil
	}

	return ParseAssignment(src)
}

// ParseAssignment parses `[byte] name = expr`
func ParseAssignment(src string) (*AssignStmt, error) {
	src = strings.TrimSpace(src)

	switch n := strings.Count(src, "="); {
	case n == 0:
		return nil, ErrMissingAssign
	case n > 1:
		return nil, fmt.Errorf("%w: found %d", ErrMultipleAssign, n)
	}

	lhs, rhs, _ := strings.Cut(src, "=")
	stmt := &AssignStmt{Pos: Pos{Source: src}, Expr: strings.TrimSpace(rhs)}

	fields := strings.Fields(lhs)
	switch len(fields) {
	case 1:
		stmt.Name = fields[0]
	case 2:
		if fields[0] != TypeByte {
			return nil, fmt.Errorf("%w %q", ErrInvalidType, fields[0])
		}
		stmt.Type, stmt.Name = fields[0], fields[1]
	default:
		return nil, fmt.Errorf("%w: left hand side must be a data type and a name, or a name", ErrMalformedStatement)
	}

	if !lexer.IsIdentifier(stmt.Name) || IsKeyword(stmt.Name) {
		return nil, fmt.Errorf("%w %q", ErrInvalidName, stmt.Name)
	}

	return stmt, nil
}
