package codegen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrAssembly = errors.New("assembly error")

// Disassemble renders a program one instruction per line, prefixed by its byte offset
func Disassemble(program []byte) (string, error) {
	var b strings.Builder

	instructions, err := DecodeAll(program)
	for _, ins := range instructions {
		fmt.Fprintf(&b, "%04d  %s\n", ins.Offset, ins)
	}

	return b.String(), err
}

type asmLine struct {
	no       int
	mnemonic string
	args     []string
	offset   int
}

// Assemble translates mnemonic text (one instruction per line) into bytecode.
// `name:` defines a label; GOTO takes a label as its absolute target and IF
// takes a label as the end of the skipped region. `#` and `;` start comments.
func Assemble(lines []string) ([]byte, error) {
	labels := make(map[string]int)
	var parsed []asmLine
	offset := 0

	for n, raw := range lines {
		src := raw
		if i := strings.IndexAny(src, "#;"); i >= 0 {
			src = src[:i]
		}

		fields := strings.Fields(src)
		if len(fields) == 0 {
			continue
		}

		if label, ok := strings.CutSuffix(fields[0], ":"); ok {
			if _, dup := labels[label]; dup || label == "" {
				return nil, fmt.Errorf("%w: line %d: bad or duplicate label %q", ErrAssembly, n+1, label)
			}
			labels[label] = offset
			fields = fields[1:]
			if len(fields) == 0 {
				continue
			}
		}

		op, ok := opcodesByName[strings.ToUpper(fields[0])]
		if !ok {
			return nil, fmt.Errorf("%w: line %d: unknown mnemonic %q", ErrAssembly, n+1, fields[0])
		}

		def := definitions[op]
		if len(fields)-1 != def.Operands {
			return nil, fmt.Errorf("%w: line %d: %s takes %d operand(s), got %d", ErrAssembly, n+1, def.Name, def.Operands, len(fields)-1)
		}

		parsed = append(parsed, asmLine{no: n + 1, mnemonic: def.Name, args: fields[1:], offset: offset})
		offset += def.Width()
	}

	program := make([]byte, 0, offset)
	for _, line := range parsed {
		op := opcodesByName[line.mnemonic]
		operands := make([]byte, 0, len(line.args))

		for _, arg := range line.args {
			v, err := assembleOperand(op, arg, line, labels)
			if err != nil {
				return nil, err
			}
			operands = append(operands, v)
		}

		program = append(program, Make(op, operands...)...)
	}

	return program, nil
}

func assembleOperand(op Opcode, arg string, line asmLine, labels map[string]int) (byte, error) {
	if target, ok := labels[arg]; ok {
		switch op {
		case OpGoto:
			if target > 255 {
				return 0, fmt.Errorf("%w: line %d: label %q at %d is beyond GOTO range", ErrAssembly, line.no, arg, target)
			}
			return byte(target), nil
		case OpIf:
			skip := target - (line.offset + 2)
			if skip < -128 || skip > 127 {
				return 0, fmt.Errorf("%w: line %d: label %q is %d bytes away", ErrAssembly, line.no, arg, skip)
			}
			return byte(int8(skip)), nil
		default:
			return 0, fmt.Errorf("%w: line %d: %s does not take a label", ErrAssembly, line.no, op)
		}
	}

	v, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: bad operand %q", ErrAssembly, line.no, arg)
	}

	signed := op == OpPush || op == OpIf
	if (signed && (v < -128 || v > 127)) || (!signed && (v < 0 || v > 255)) {
		return 0, fmt.Errorf("%w: line %d: operand %d out of range for %s", ErrAssembly, line.no, v, op)
	}

	return byte(v), nil
}
