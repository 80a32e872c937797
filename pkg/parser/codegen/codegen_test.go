package codegen_test

import (
	"brew/pkg/lexer"
	"brew/pkg/parser"
	"brew/pkg/parser/codegen"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func program(parts ...[]byte) []byte {
	return codegen.Compose(parts...)
}

var (
	push     = func(v int8) []byte { return codegen.Make(codegen.OpPush, byte(v)) }
	pullVar  = func(f, s byte) []byte { return codegen.Make(codegen.OpPullVar, f, s) }
	pushVar  = func(f, s byte) []byte { return codegen.Make(codegen.OpPushVar, f, s) }
	op       = func(o codegen.Opcode) []byte { return codegen.Make(o) }
	ifSkip   = func(n byte) []byte { return codegen.Make(codegen.OpIf, n) }
	frameOf  = func(n byte) []byte { return codegen.Make(codegen.OpPushFrame, n) }
	popFrame = op(codegen.OpPopFrame)
)

func TestCompileExpression(t *testing.T) {
	tests := []struct {
		src      string
		expected []byte
	}{
		{"5 + 10", program(push(5), push(10), op(codegen.OpAdd))},
		{"8 + 6 / 3", program(push(8), push(6), push(3), op(codegen.OpDivide), op(codegen.OpAdd))},
		{"4 * -4", program(push(4), push(-4), op(codegen.OpMultiply))},
		{"(1 - 2) * 3", program(push(1), push(2), op(codegen.OpSubtract), push(3), op(codegen.OpMultiply))},
		{"-128", push(-128)},
	}

	for _, test := range tests {
		got, err := codegen.NewCodegen().CompileExpression(test.src)
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.src, err)
			continue
		}
		if !bytes.Equal(got, test.expected) {
			t.Errorf("%q: expected %v, got %v", test.src, test.expected, got)
		}
	}
}

func TestCompileExpressionErrors(t *testing.T) {
	tests := []struct {
		src      string
		expected error
	}{
		{"", codegen.ErrMalformedExpression},
		{"()", codegen.ErrMalformedExpression},
		{"x5", codegen.ErrMalformedExpression},
		{"(1)(2)", codegen.ErrMalformedExpression},
		{"(1 + 2", parser.ErrMismatchedParen},
		{"1 + 2)", parser.ErrMismatchedParen},
		{"1 +", lexer.ErrTrailingOperator},
		{"* 2", codegen.ErrMalformedExpression},
		{"128", codegen.ErrLiteralRange},
		{"-129", codegen.ErrLiteralRange},
		{"y", codegen.ErrUnknownVariable},
		{"1 $ 2", lexer.ErrUnrecognizedToken},
	}

	for _, test := range tests {
		_, err := codegen.NewCodegen().CompileExpression(test.src)
		if !errors.Is(err, test.expected) {
			t.Errorf("%q: expected %v, got %v", test.src, test.expected, err)
		}
	}
}

func TestCompileConditional(t *testing.T) {
	cg := codegen.NewCodegen()

	got, err := cg.CompileIf("if (5 + 10 > 5 - 7)", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := program(
		push(5), push(7), op(codegen.OpSubtract),
		push(5), push(10), op(codegen.OpAdd),
		op(codegen.OpGreaterThan), ifSkip(0),
	)
	if !bytes.Equal(got, expected) {
		t.Errorf("expected rhs, lhs, comparison, IF\n%v\ngot\n%v", expected, got)
	}

	if _, err := cg.CompileAssignment("byte x = 5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err = cg.CompileIf("if (x >= 3) {", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected = program(push(3), pullVar(0, 0), op(codegen.OpGreaterThanEqual), ifSkip(2))
	if !bytes.Equal(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	if _, err := cg.CompileIf("if (x > 1)", codegen.MaxBranch+1); !errors.Is(err, codegen.ErrBlockTooLarge) {
		t.Errorf("expected block too large, got %v", err)
	}
	if _, err := cg.CompileIf("if (x > 1 < 2)", 1); !errors.Is(err, parser.ErrAmbiguousConditional) {
		t.Errorf("expected ambiguous conditional, got %v", err)
	}
}

func TestCompileAssignment(t *testing.T) {
	cg := codegen.NewCodegen()

	got, err := cg.CompileAssignment("byte foo = 4 * -4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := program(push(4), push(-4), op(codegen.OpMultiply), pushVar(0, 0))
	if !bytes.Equal(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	got, err = cg.CompileAssignment("byte bar = foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, program(pullVar(0, 0), pushVar(0, 1))) {
		t.Errorf("second variable should take slot 1, got %v", got)
	}

	for _, src := range []string{"byte x = y", "byte x = x"} {
		if _, err := codegen.NewCodegen().CompileAssignment(src); !errors.Is(err, codegen.ErrUnknownVariable) {
			t.Errorf("%q: expected unknown variable, got %v", src, err)
		}
	}
}

func TestCompileProgram(t *testing.T) {
	got, err := codegen.NewCodegen().Compile([]string{
		"byte x = 5",
		"if (x > 3) {",
		"byte t = 1",
		"x = t",
		"}",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	block := program(frameOf(1), push(1), pushVar(1, 0), pullVar(1, 0), pushVar(0, 0), popFrame)
	expected := program(
		frameOf(1),
		push(5), pushVar(0, 0),
		push(3), pullVar(0, 0), op(codegen.OpGreaterThan), ifSkip(byte(len(block))),
		block,
		popFrame,
	)

	if !bytes.Equal(got, expected) {
		want, _ := codegen.Disassemble(expected)
		have, _ := codegen.Disassemble(got)
		t.Errorf("expected\n%s\ngot\n%s", want, have)
	}
}

func TestCompileDebug(t *testing.T) {
	got, err := codegen.NewCodegen().Compile([]string{"DEBUG"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(got, program(frameOf(0), op(codegen.OpDebugStack), popFrame)) {
		t.Errorf("unexpected code %v", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected error
		line     int
	}{
		{"undeclared", []string{"byte x = 2", "z = x + y"}, codegen.ErrUnknownVariable, 2},
		{"redeclared", []string{"byte x = 2", "byte x = 3"}, codegen.ErrRedeclared, 2},
		{"inner variable from outer block", []string{"byte x = 1", "if (x == 1) {", "byte t = 2", "}", "x = t"}, codegen.ErrOutOfScope, 5},
		{"inner variable in later condition", []string{"byte x = 1", "if (x == 1) {", "byte t = 2", "}", "if (t > 0) {", "}"}, codegen.ErrOutOfScope, 5},
		{"nested error keeps its line", []string{"byte x = 1", "if (x == 1) {", "x = q", "}"}, codegen.ErrUnknownVariable, 3},
		{"missing assignment", []string{"byte x 1"}, parser.ErrMissingAssign, 1},
		{"bad type", []string{"word x = 1"}, parser.ErrInvalidType, 1},
		{"mismatched parenthesis", []string{"byte x = (1 + 2"}, parser.ErrMismatchedParen, 1},
		{"empty right hand side", []string{"byte x ="}, codegen.ErrMalformedExpression, 1},
		{"ambiguous conditional", []string{"byte x = 1", "if (x > 1 > 0) {", "}"}, parser.ErrAmbiguousConditional, 2},
		{"unterminated block", []string{"byte x = 1", "if (x > 1) {"}, parser.ErrUnterminatedBlock, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, err := codegen.NewCodegen().Compile(test.lines)
			if !errors.Is(err, test.expected) {
				t.Fatalf("expected %v, got %v", test.expected, err)
			}
			if code != nil {
				t.Errorf("expected no bytecode on error, got %v", code)
			}

			var ce *codegen.CompileError
			if !errors.As(err, &ce) || ce.Line != test.line {
				t.Errorf("expected a CompileError on line %d, got %v", test.line, err)
			}
		})
	}
}

func TestRedeclarationAcrossBlocks(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		line  int
	}{
		{"shadowing an outer variable", []string{"byte x = 1", "if (x == 1) {", "byte x = 2", "}"}, 3},
		{"sibling blocks", []string{"byte x = 1", "if (x == 1) {", "byte t = 2", "}", "if (x == 1) {", "byte t = 3", "}"}, 6},
		{"outer level after the block", []string{"byte x = 1", "if (x == 1) {", "byte t = 2", "}", "byte t = 3"}, 5},
		{"nested inside a block", []string{"byte x = 1", "if (x == 1) {", "byte t = 2", "if (t == 2) {", "byte x = 3", "}", "}"}, 5},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, err := codegen.NewCodegen().Compile(test.lines)
			if !errors.Is(err, codegen.ErrRedeclared) {
				t.Fatalf("expected %v, got %v", codegen.ErrRedeclared, err)
			}
			if code != nil {
				t.Errorf("expected no bytecode on error, got %v", code)
			}

			var ce *codegen.CompileError
			if !errors.As(err, &ce) || ce.Line != test.line {
				t.Errorf("expected a CompileError on line %d, got %v", test.line, err)
			}
		})
	}
}

func letterName(i int) string {
	return string(rune('a'+i/26)) + string(rune('a'+i%26))
}

func TestTooManyVariables(t *testing.T) {
	lines := make([]string, 0, codegen.MaxFrameSize+1)
	for i := 0; i < codegen.MaxFrameSize; i++ {
		lines = append(lines, fmt.Sprintf("byte %s = %d", letterName(i), i))
	}

	code, err := codegen.NewCodegen().Compile(lines)
	if err != nil {
		t.Fatalf("%d variables should fit, got %v", codegen.MaxFrameSize, err)
	}
	if code[1] != codegen.MaxFrameSize {
		t.Errorf("expected PUSH_FRAME %d, got %d", codegen.MaxFrameSize, code[1])
	}

	lines = append(lines, fmt.Sprintf("byte %s = 0", letterName(codegen.MaxFrameSize)))
	if _, err := codegen.NewCodegen().Compile(lines); !errors.Is(err, codegen.ErrTooManyVariables) {
		t.Errorf("expected too many variables, got %v", err)
	}
}

func TestBlockTooLarge(t *testing.T) {
	lines := []string{"byte x = 0", "if (x == 0) {"}
	for i := 0; i < 25; i++ {
		lines = append(lines, "x = 1")
	}
	lines = append(lines, "}")

	if _, err := codegen.NewCodegen().Compile(lines); !errors.Is(err, codegen.ErrBlockTooLarge) {
		t.Errorf("expected block too large, got %v", err)
	}

	// 24 assignments plus the frame bracket is 123 bytes
	lines = append(lines[:26], "}")
	if _, err := codegen.NewCodegen().Compile(lines); err != nil {
		t.Errorf("expected a 123 byte block to compile, got %v", err)
	}
}

func TestSessionPersistsAcrossCompiles(t *testing.T) {
	cg := codegen.NewCodegen()

	if _, err := cg.Compile([]string{"byte x = 1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code, err := cg.Compile([]string{"byte y = x + 1"})
	if err != nil {
		t.Fatalf("x should still be declared, got %v", err)
	}
	if code[1] != 2 {
		t.Errorf("top-level frame should hold both session variables, got size %d", code[1])
	}

	if _, err := cg.Compile([]string{"byte z = 1", "q = 2"}); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := cg.Lookup("z"); !errors.Is(err, codegen.ErrUnknownVariable) {
		t.Errorf("a failed compile must not declare z, got %v", err)
	}

	syms := cg.Symbols()
	if len(syms) != 2 || syms[0].Name != "x" || syms[1].Name != "y" || syms[1].Address.Slot != 1 {
		t.Errorf("unexpected symbols %+v", syms)
	}

	cg.Reset()
	if _, err := cg.Compile([]string{"y = 1"}); !errors.Is(err, codegen.ErrUnknownVariable) {
		t.Errorf("Reset should forget y, got %v", err)
	}
}

func TestCompileErrorMessage(t *testing.T) {
	_, err := codegen.NewCodegen().Compile([]string{"byte x = 2", "z = x + y"})
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected the line number in %v", err)
	}
}
