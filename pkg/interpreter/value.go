package interpreter

import (
	"brew/pkg/parser/codegen"
	"fmt"
)

// arithmetic evaluates a op b with 8-bit wraparound
func arithmetic(op codegen.Opcode, a, b int8) (int8, error) {
	switch op {
	case codegen.OpAdd:
		return a + b, nil
	case codegen.OpSubtract:
		return a - b, nil
	case codegen.OpMultiply:
		return a * b, nil
	case codegen.OpDivide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("%w: %s is not arithmetic", ErrUnknownOpcode, op)
	}
}

// compare evaluates a op b and returns 1 or 0
func compare(op codegen.Opcode, a, b int8) (int8, error) {
	var result bool

	switch op {
	case codegen.OpGreaterThan:
		result = a > b
	case codegen.OpGreaterThanEqual:
		result = a >= b
	case codegen.OpLessThan:
		result = a < b
	case codegen.OpLessThanEqual:
		result = a <= b
	case codegen.OpEqualTo:
		result = a == b
	default:
		return 0, fmt.Errorf("%w: %s is not a comparison", ErrUnknownOpcode, op)
	}

	if result {
		return 1, nil
	}

	return 0, nil
}
