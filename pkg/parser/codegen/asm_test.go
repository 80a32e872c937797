package codegen_test

import (
	"brew/pkg/parser/codegen"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestAssemble(t *testing.T) {
	src := []string{
		"# doubles until above 32",
		"      PUSH 1",
		"loop: DUPLICATE",
		"      ADD",
		"      DUPLICATE",
		"      PUSH 32      ; limit",
		"      GREATER_THAN",
		"      IF again",
		"      GOTO end",
		"again: GOTO loop",
		"end:",
	}

	got, err := codegen.Assemble(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := program(
		push(1),
		op(codegen.OpDuplicate),
		op(codegen.OpAdd),
		op(codegen.OpDuplicate),
		push(32),
		op(codegen.OpGreaterThan),
		ifSkip(2),
		codegen.Make(codegen.OpGoto, 14),
		codegen.Make(codegen.OpGoto, 2),
	)

	if !bytes.Equal(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := [][]string{
		{"FROB"},
		{"PUSH"},
		{"PUSH 1 2"},
		{"PUSH 128"},
		{"PUSH_VAR 0 256"},
		{"PUSH_FRAME -1"},
		{"GOTO nowhere"},
		{"a: PUSH 1", "a: PUSH 2"},
		{"x: PUSH x"},
	}

	for _, src := range tests {
		if _, err := codegen.Assemble(src); !errors.Is(err, codegen.ErrAssembly) {
			t.Errorf("%q: expected assembly error, got %v", src, err)
		}
	}
}

func TestDisassembleRoundTrip(t *testing.T) {
	code, err := codegen.NewCodegen().Compile([]string{
		"byte x = -5",
		"if (x < 0) {",
		"x = x * -1",
		"}",
		"DEBUG",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := codegen.Disassemble(code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(text, "0000  PUSH_FRAME 1\n0002  PUSH -5\n") {
		t.Errorf("unexpected listing\n%s", text)
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		// drop the offset column
		lines = append(lines, strings.TrimSpace(line[4:]))
	}

	again, err := codegen.Assemble(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(code, again) {
		t.Errorf("round trip changed the program\n%v\n%v", code, again)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := codegen.Decode([]byte{0x42}, 0); !errors.Is(err, codegen.ErrUnknownOpcode) {
		t.Errorf("expected unknown opcode, got %v", err)
	}
	if _, err := codegen.Decode([]byte{byte(codegen.OpPushVar), 0}, 0); !errors.Is(err, codegen.ErrTruncated) {
		t.Errorf("expected truncated instruction, got %v", err)
	}

	text, err := codegen.Disassemble([]byte{byte(codegen.OpAdd), 0x42})
	if !errors.Is(err, codegen.ErrUnknownOpcode) || !strings.Contains(text, "ADD") {
		t.Errorf("expected a partial listing and an error, got %q, %v", text, err)
	}
}
