package interpreter

import (
	"fmt"

	"brew/pkg/parser/codegen"

	"github.com/charmbracelet/log"
)

// coreStep is the main single-step execution function
// it returns (halted, error).
func coreStep(i *Interpreter) (bool, error) {
	pc := i.rt.ip

	in, err := codegen.Decode(i.program, pc)
	if err != nil {
		return false, &RuntimeError{Err: err, IP: pc, Op: codegen.Opcode(i.program[pc])}
	}

	if i.trace {
		log.Debug("exec", "ip", pc, "ins", in.String(), "stack", i.stack.Size(), "frames", i.rt.Depth())
	}

	next := pc + 1 + len(in.Operands)

	switch op := in.Op; {
	case op == codegen.OpPush:
		i.stack.Push(int8(in.Operands[0]))

	case op == codegen.OpDuplicate:
		if err := i.need(in, 1); err != nil {
			return false, err
		}
		top, _ := i.stack.Peek()
		i.stack.Push(top)

	case op.IsArithmetic():
		if err := i.need(in, 2); err != nil {
			return false, err
		}
		b, _ := i.stack.Pop()
		a, _ := i.stack.Pop()
		res, err := arithmetic(op, a, b)
		if err != nil {
			return false, i.fail(in, err, fmt.Sprintf("%d %s %d", a, op, b))
		}
		i.stack.Push(res)

	case op.IsComparison():
		if err := i.need(in, 2); err != nil {
			return false, err
		}
		// a is the left hand side: the compiler pushes it last
		a, _ := i.stack.Pop()
		b, _ := i.stack.Pop()
		res, err := compare(op, a, b)
		if err != nil {
			return false, i.fail(in, err, "")
		}
		i.stack.Push(res)

	case op == codegen.OpDebugOut:
		if err := i.need(in, 1); err != nil {
			return false, err
		}
		top, _ := i.stack.Peek()
		fmt.Fprintf(i.out, "[DEBUG] %d\n", top)

	case op == codegen.OpDebugStack:
		i.dumpStack()

	case op == codegen.OpGoto:
		next = int(in.Operands[0])

	case op == codegen.OpIf:
		if err := i.need(in, 1); err != nil {
			return false, err
		}
		cond, _ := i.stack.Pop()
		switch cond {
		case 1:
		case 0:
			next += int(int8(in.Operands[0]))
			if next < 0 {
				return false, i.fail(in, ErrBadJump, fmt.Sprintf("target %d", next))
			}
		default:
			return false, i.fail(in, ErrInvalidTruthValue, fmt.Sprintf("%d", cond))
		}

	case op == codegen.OpPushVar:
		if err := i.need(in, 1); err != nil {
			return false, err
		}
		v, _ := i.stack.Pop()
		if err := i.rt.Store(in.Operands[0], in.Operands[1], v); err != nil {
			return false, i.fail(in, err, "")
		}

	case op == codegen.OpPullVar:
		v, err := i.rt.Load(in.Operands[0], in.Operands[1])
		if err != nil {
			return false, i.fail(in, err, "")
		}
		i.stack.Push(v)

	case op == codegen.OpPushFrame:
		if err := i.rt.PushFrame(int(in.Operands[0])); err != nil {
			return false, i.fail(in, err, "")
		}

	case op == codegen.OpPopFrame:
		if err := i.rt.PopFrame(); err != nil {
			return false, i.fail(in, err, "")
		}

	default:
		return false, i.fail(in, ErrUnknownOpcode, "")
	}

	i.rt.ip = next
	return false, nil
}

// need checks the operand stack holds at least n values
func (i *Interpreter) need(in codegen.Instruction, n int) error {
	if size := i.stack.Size(); size < n {
		return i.fail(in, ErrStackUnderflow, fmt.Sprintf("needs %d value(s), stack holds %d", n, size))
	}

	return nil
}

// fail builds a RuntimeError for in
func (i *Interpreter) fail(in codegen.Instruction, err error, msg string) error {
	return &RuntimeError{Err: err, IP: in.Offset, Op: in.Op, Msg: msg}
}

// dumpStack prints every element on the operand stack, bottom first
func (i *Interpreter) dumpStack() {
	fmt.Fprintln(i.out, "[DEBUG STACK]")
	for n, v := range i.stack.Array() {
		fmt.Fprintf(i.out, "%d: %d\n", n, v)
	}
}
