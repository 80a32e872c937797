package llvm

import (
	"errors"

	"brew/pkg/interpreter"
	"brew/pkg/parser/codegen"
	"brew/pkg/parser/codegen/assembly"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// StackSize is the operand stack capacity of a native program
const StackSize = 1024

var ErrUnsupported = errors.New("program cannot be compiled natively")

var (
	stackType  = types.NewArray(StackSize, types.I8)
	framesType = types.NewArray(interpreter.MaxFrames, types.NewArray(codegen.MaxFrameSize, types.I8))
	sizesType  = types.NewArray(interpreter.MaxFrames, types.I32)
)

type llvmGen struct {
	program []byte // bytecode
	output  string // executable path
	fuel    int    // instruction budget (<= 0 = unlimited)

	module *ir.Module
	main   *ir.Func
	cur    *ir.Block         // block receiving instructions
	blocks map[int]*ir.Block // instruction offset -> block
	halt   *ir.Block
	seq    int // per instruction block counter

	stack  *ir.Global // operand stack
	sp     *ir.Global // operand stack height
	frames *ir.Global // frame slots, indexed by frame id
	sizes  *ir.Global // frame sizes
	depth  *ir.Global // live frames
	steps  *ir.Global // executed instructions

	printf *ir.Func
	fail   *ir.Func
	dump   *ir.Func

	cstrings map[string]*ir.Global

	code string
}

// NewLLVM creates a generator translating program to LLVM IR
func NewLLVM(program []byte, output string, fuel int) assembly.Assembly {
	return &llvmGen{
		program:  append([]byte(nil), program...),
		output:   output,
		fuel:     fuel,
		module:   ir.NewModule(),
		blocks:   make(map[int]*ir.Block),
		cstrings: make(map[string]*ir.Global),
	}
}

// GetCode returns the generated LLVM IR
func (l *llvmGen) GetCode() string {
	return l.code
}
