package llvm

import (
	"fmt"

	"brew/pkg/interpreter"
	"brew/pkg/parser/codegen"

	"github.com/charmbracelet/log"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// runtime error messages, shared with the interpreter
var (
	errUnderflow = interpreter.ErrStackUnderflow.Error()
	errOverflow  = "stack overflow"
	errTruth     = interpreter.ErrInvalidTruthValue.Error()
	errFrame     = interpreter.ErrBadFrame.Error()
	errSlot      = interpreter.ErrBadSlot.Error()
	errDivision  = interpreter.ErrDivisionByZero.Error()
	errJump      = interpreter.ErrBadJump.Error()
)

// Generate translates the bytecode into an LLVM module with one block per instruction
func (l *llvmGen) Generate() error {
	instructions, err := codegen.DecodeAll(l.program)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	// a failed run may have left a half built module
	l.module = ir.NewModule()
	l.blocks = make(map[int]*ir.Block)
	l.cstrings = make(map[string]*ir.Global)
	l.code = ""

	l.declareRuntime()
	l.main = l.module.NewFunc("main", types.I32)

	entry := l.main.NewBlock("entry")
	for _, ins := range instructions {
		l.blocks[ins.Offset] = l.main.NewBlock(fmt.Sprintf("op%d", ins.Offset))
	}

	l.halt = l.main.NewBlock("halt")
	l.halt.NewRet(i32(0))

	first, err := l.target(0)
	if err != nil {
		return err
	}
	entry.NewBr(first)

	for _, ins := range instructions {
		l.cur = l.blocks[ins.Offset]
		l.seq = 0

		l.burnFuel(ins.Offset)
		if err := l.emit(ins); err != nil {
			return err
		}
	}

	l.code = l.module.String()
	log.Debug("Generated LLVM IR", "instructions", len(instructions), "blocks", len(l.main.Blocks))

	return nil
}

// target is the block starting at offset; offsets past the end halt
func (l *llvmGen) target(offset int) (*ir.Block, error) {
	if offset >= len(l.program) {
		return l.halt, nil
	}

	b, ok := l.blocks[offset]
	if !ok {
		return nil, fmt.Errorf("%w: jump to %d is not an instruction boundary", ErrUnsupported, offset)
	}

	return b, nil
}

// emit translates one instruction and terminates its last block
func (l *llvmGen) emit(ins codegen.Instruction) error {
	ip := ins.Offset
	next, err := l.target(ip + 1 + len(ins.Operands))
	if err != nil {
		return err
	}

	switch op := ins.Op; {
	case op == codegen.OpPush:
		l.push(ip, i8(int64(int8(ins.Operands[0]))))

	case op == codegen.OpDuplicate:
		l.need(ip, 1)
		l.push(ip, l.peek())

	case op.IsArithmetic():
		l.need(ip, 2)
		b := l.cur.NewSExt(l.pop(), types.I32)
		a := l.cur.NewSExt(l.pop(), types.I32)
		l.push(ip, l.cur.NewTrunc(l.arithmetic(ip, op, a, b), types.I8))

	case op.IsComparison():
		l.need(ip, 2)
		a := l.pop()
		b := l.pop()
		cmp := l.cur.NewICmp(comparisons[op], a, b)
		l.push(ip, l.cur.NewZExt(cmp, types.I8))

	case op == codegen.OpDebugOut:
		l.need(ip, 1)
		l.cur.NewCall(l.printf, l.cstr("[DEBUG] %d\n"), l.cur.NewSExt(l.peek(), types.I32))

	case op == codegen.OpDebugStack:
		l.cur.NewCall(l.dump)

	case op == codegen.OpGoto:
		dest, err := l.target(int(ins.Operands[0]))
		if err != nil {
			return err
		}
		l.cur.NewBr(dest)
		return nil

	case op == codegen.OpIf:
		return l.branch(ins, next)

	case op == codegen.OpPushVar:
		l.need(ip, 1)
		v := l.pop()
		l.cur.NewStore(v, l.slot(ip, ins.Operands[0], ins.Operands[1]))

	case op == codegen.OpPullVar:
		ptr := l.slot(ip, ins.Operands[0], ins.Operands[1])
		l.push(ip, l.cur.NewLoad(types.I8, ptr))

	case op == codegen.OpPushFrame:
		size := int(ins.Operands[0])
		if size > codegen.MaxFrameSize {
			l.trap(l.cur, ip, errFrame)
			return nil
		}
		l.pushFrame(ip, size)

	case op == codegen.OpPopFrame:
		depth := l.cur.NewLoad(types.I32, l.depth)
		l.check(l.cur.NewICmp(enum.IPredSGT, depth, i32(0)), ip, errFrame)
		l.cur.NewStore(l.cur.NewSub(depth, i32(1)), l.depth)

	default:
		return fmt.Errorf("%w: opcode %s", ErrUnsupported, op)
	}

	l.cur.NewBr(next)
	return nil
}

var comparisons = map[codegen.Opcode]enum.IPred{
	codegen.OpGreaterThan:      enum.IPredSGT,
	codegen.OpGreaterThanEqual: enum.IPredSGE,
	codegen.OpLessThan:         enum.IPredSLT,
	codegen.OpLessThanEqual:    enum.IPredSLE,
	codegen.OpEqualTo:          enum.IPredEQ,
}

// arithmetic works on sign extended operands so every result wraps like int8
func (l *llvmGen) arithmetic(ip int, op codegen.Opcode, a, b value.Value) value.Value {
	switch op {
	case codegen.OpAdd:
		return l.cur.NewAdd(a, b)
	case codegen.OpSubtract:
		return l.cur.NewSub(a, b)
	case codegen.OpMultiply:
		return l.cur.NewMul(a, b)
	default:
		l.check(l.cur.NewICmp(enum.IPredNE, b, i32(0)), ip, errDivision)
		return l.cur.NewSDiv(a, b)
	}
}

// branch falls through on 1, skips on 0 and fails on anything else
func (l *llvmGen) branch(ins codegen.Instruction, next *ir.Block) error {
	ip := ins.Offset
	l.need(ip, 1)

	cond := l.pop()
	isTrue := l.cur.NewICmp(enum.IPredEQ, cond, i8(1))
	isFalse := l.cur.NewICmp(enum.IPredEQ, cond, i8(0))
	l.check(l.cur.NewOr(isTrue, isFalse), ip, errTruth)

	skip := ip + 2 + int(int8(ins.Operands[0]))
	if skip < 0 {
		bad := l.block(ip, "jump")
		l.trap(bad, ip, errJump)
		l.cur.NewCondBr(isTrue, next, bad)
		return nil
	}

	dest, err := l.target(skip)
	if err != nil {
		return err
	}

	l.cur.NewCondBr(isTrue, next, dest)
	return nil
}

// pushFrame zeroes and records a frame of size slots at the current depth
func (l *llvmGen) pushFrame(ip, size int) {
	depth := l.cur.NewLoad(types.I32, l.depth)
	l.check(l.cur.NewICmp(enum.IPredSLT, depth, i32(interpreter.MaxFrames)), ip, errFrame)

	sizePtr := l.cur.NewGetElementPtr(sizesType, l.sizes, i32(0), depth)
	l.cur.NewStore(i32(int64(size)), sizePtr)

	for s := 0; s < size; s++ {
		ptr := l.cur.NewGetElementPtr(framesType, l.frames, i32(0), depth, i32(int64(s)))
		l.cur.NewStore(i8(0), ptr)
	}

	l.cur.NewStore(l.cur.NewAdd(depth, i32(1)), l.depth)
}
