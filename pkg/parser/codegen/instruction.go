package codegen

import (
	"brew/pkg/lexer"
	"errors"
	"fmt"
	"strings"
)

type Opcode byte

// Brew bytecode. Values are part of the wire format shared with the interpreter.
const (
	OpDuplicate        Opcode = 0x00
	OpPush             Opcode = 0x01
	OpAdd              Opcode = 0x02
	OpSubtract         Opcode = 0x03
	OpDivide           Opcode = 0x04
	OpMultiply         Opcode = 0x05
	OpDebugOut         Opcode = 0x06
	OpDebugStack       Opcode = 0x07
	OpGoto             Opcode = 0x08
	OpIf               Opcode = 0x09
	OpGreaterThan      Opcode = 0x0A
	OpGreaterThanEqual Opcode = 0x0B
	OpLessThan         Opcode = 0x0C
	OpLessThanEqual    Opcode = 0x0D
	OpEqualTo          Opcode = 0x0E
	OpPushVar          Opcode = 0x0F
	OpPullVar          Opcode = 0x10
	OpPushFrame        Opcode = 0x11
	OpPopFrame         Opcode = 0x12
)

// MaxBranch is the longest forward skip an IF operand can encode
const MaxBranch = 126

// MaxFrameSize is the largest number of slots a frame may hold
const MaxFrameSize = 127

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrTruncated     = errors.New("truncated instruction")
)

// Definition describes how an opcode is encoded
type Definition struct {
	Name     string
	Operands int
}

var definitions = map[Opcode]Definition{
	OpDuplicate:        {"DUPLICATE", 0},
	OpPush:             {"PUSH", 1},
	OpAdd:              {"ADD", 0},
	OpSubtract:         {"SUBTRACT", 0},
	OpDivide:           {"DIVIDE", 0},
	OpMultiply:         {"MULTIPLY", 0},
	OpDebugOut:         {"DEBUG_OUT", 0},
	OpDebugStack:       {"DEBUG_STACK", 0},
	OpGoto:             {"GOTO", 1},
	OpIf:               {"IF", 1},
	OpGreaterThan:      {"GREATER_THAN", 0},
	OpGreaterThanEqual: {"GREATER_THAN_EQUAL", 0},
	OpLessThan:         {"LESS_THAN", 0},
	OpLessThanEqual:    {"LESS_THAN_EQUAL", 0},
	OpEqualTo:          {"EQUAL_TO", 0},
	OpPushVar:          {"PUSH_VAR", 2},
	OpPullVar:          {"PULL_VAR", 2},
	OpPushFrame:        {"PUSH_FRAME", 1},
	OpPopFrame:         {"POP_FRAME", 0},
}

var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(definitions))
	for op, def := range definitions {
		m[def.Name] = op
	}
	return m
}()

// Lookup returns the encoding of an opcode
func Lookup(op byte) (Definition, error) {
	def, ok := definitions[Opcode(op)]
	if !ok {
		return Definition{}, fmt.Errorf("%w 0x%02X", ErrUnknownOpcode, op)
	}

	return def, nil
}

// Width is the full instruction length: opcode plus operands
func (d Definition) Width() int {
	return 1 + d.Operands
}

// String returns the mnemonic
func (op Opcode) String() string {
	if def, ok := definitions[op]; ok {
		return def.Name
	}

	return fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))
}

// IsArithmetic reports whether op pops two values and pushes their arithmetic result
func (op Opcode) IsArithmetic() bool {
	return op >= OpAdd && op <= OpMultiply
}

// IsComparison reports whether op pops two values and pushes 0 or 1
func (op Opcode) IsComparison() bool {
	return op >= OpGreaterThan && op <= OpEqualTo
}

// Instruction is one decoded opcode with its operand bytes
type Instruction struct {
	Offset   int
	Op       Opcode
	Operands []byte
}

// String returns a string representation of the instruction
func (i Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.Op.String())

	for n, operand := range i.Operands {
		b.WriteByte(' ')
		if n == 0 && (i.Op == OpPush || i.Op == OpIf) {
			fmt.Fprintf(&b, "%d", int8(operand))
		} else {
			fmt.Fprintf(&b, "%d", operand)
		}
	}

	return b.String()
}

// Make encodes one instruction
func Make(op Opcode, operands ...byte) []byte {
	out := make([]byte, 0, 1+len(operands))
	out = append(out, byte(op))
	return append(out, operands...)
}

// Compose concatenates instruction fragments into one program
func Compose(parts ...[]byte) []byte {
	length := 0
	for _, p := range parts {
		length += len(p)
	}

	out := make([]byte, 0, length)
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

// Decode reads the instruction starting at offset
func Decode(program []byte, offset int) (Instruction, error) {
	if offset < 0 || offset >= len(program) {
		return Instruction{}, fmt.Errorf("%w: offset %d outside program", ErrTruncated, offset)
	}

	def, err := Lookup(program[offset])
	if err != nil {
		return Instruction{}, err
	}

	if offset+def.Width() > len(program) {
		return Instruction{}, fmt.Errorf("%w: %s at %d needs %d operand(s)", ErrTruncated, def.Name, offset, def.Operands)
	}

	return Instruction{
		Offset:   offset,
		Op:       Opcode(program[offset]),
		Operands: program[offset+1 : offset+def.Width()],
	}, nil
}

// DecodeAll walks a program from offset 0, one instruction at a time
func DecodeAll(program []byte) ([]Instruction, error) {
	var out []Instruction

	for offset := 0; offset < len(program); {
		ins, err := Decode(program, offset)
		if err != nil {
			return out, err
		}

		out = append(out, ins)
		offset += 1 + len(ins.Operands)
	}

	return out, nil
}

// operatorOpcode maps an arithmetic token to its opcode
func operatorOpcode(t lexer.TokenType) (Opcode, bool) {
	switch t {
	case lexer.PLUS:
		return OpAdd, true
	case lexer.MINUS:
		return OpSubtract, true
	case lexer.MULT:
		return OpMultiply, true
	case lexer.DIV:
		return OpDivide, true
	default:
		return 0, false
	}
}

// ComparisonOpcode maps a relational operator to its opcode
func ComparisonOpcode(op string) (Opcode, bool) {
	switch op {
	case ">":
		return OpGreaterThan, true
	case ">=":
		return OpGreaterThanEqual, true
	case "<":
		return OpLessThan, true
	case "<=":
		return OpLessThanEqual, true
	case "==":
		return OpEqualTo, true
	default:
		return 0, false
	}
}
