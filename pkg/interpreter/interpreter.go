package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"brew/pkg/parser/codegen"
	"brew/pkg/stack"
)

// DefaultFuel is the instruction budget of a run unless WithFuel says otherwise
const DefaultFuel = 300

// Interpreter executes Brew bytecode on an operand stack and a frame stack
type Interpreter struct {
	program []byte             // instruction stream
	rt      *Runtime           // ip, executed count, frames
	stack   *stack.Stack[int8] // operand stack

	out   io.Writer // output writer for the debug opcodes
	trace bool      // log every executed instruction

	// Exec hook, defaults to coreStep
	execStep func(*Interpreter) (halted bool, err error)

	fuel      int  // instruction budget (<= 0 = unlimited)
	exhausted bool // the last run stopped on its budget
}

type Option func(*Interpreter)

// WithWriter sets the output writer for DEBUG_OUT and DEBUG_STACK
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithFuel sets the number of instructions a run may execute (<= 0 = unlimited)
func WithFuel(n int) Option {
	return func(i *Interpreter) { i.fuel = n }
}

// WithTrace logs each instruction at debug level
func WithTrace(enabled bool) Option {
	return func(i *Interpreter) { i.trace = enabled }
}

// NewInterpreter creates a new Interpreter instance
func NewInterpreter(program []byte, opts ...Option) *Interpreter {
	it := &Interpreter{
		program: append([]byte(nil), program...),
		rt:      newRuntime(),
		stack:   stack.NewStack[int8](),
		out:     nil, // caller should set, or use WithWriter
		fuel:    DefaultFuel,
	}

	for _, o := range opts {
		o(it)
	}

	if it.out == nil {
		it.out = os.Stdout
	}

	if it.execStep == nil {
		it.execStep = coreStep
	}

	return it
}

// Exec runs program once and returns the finished interpreter for inspection
func Exec(program []byte, opts ...Option) (*Interpreter, error) {
	it := NewInterpreter(program, opts...)
	return it, it.Run()
}

// Load replaces the current program, resetting state
func (i *Interpreter) Load(program []byte) {
	i.program = append([]byte(nil), program...)
	i.Reset()
}

// Reset clears runtime state (operand stack, frames, IP, counters)
func (i *Interpreter) Reset() {
	i.rt = newRuntime()
	i.stack.Clear()
	i.exhausted = false
}

// Program returns the loaded program
func (i *Interpreter) Program() []byte {
	return i.program
}

// Output returns the writer used by the debug opcodes
func (i *Interpreter) Output() io.Writer {
	return i.out
}

// SetExecStep replaces the single-instruction executor
func (i *Interpreter) SetExecStep(fn func(*Interpreter) (bool, error)) {
	i.execStep = fn
}

// Step executes a single instruction, returning (halted, error)
func (i *Interpreter) Step() (bool, error) {
	if i.execStep == nil {
		return false, ErrNotImplemented
	}

	if i.rt.ip < 0 || i.rt.ip >= len(i.program) {
		return true, nil
	}

	if i.fuel > 0 && i.rt.steps >= i.fuel {
		i.exhausted = true
		return true, nil
	}

	halted, err := i.execStep(i)
	i.rt.steps++

	return halted, err
}

// Run executes until the end of the program, the fuel budget, or an error
func (i *Interpreter) Run() error {
	for {
		halted, err := i.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}

// IP returns the current instruction pointer
func (i *Interpreter) IP() int {
	return i.rt.ip
}

// Steps returns the number of instructions executed so far
func (i *Interpreter) Steps() int {
	return i.rt.steps
}

// Exhausted reports whether the run stopped because it ran out of fuel
func (i *Interpreter) Exhausted() bool {
	return i.exhausted
}

// Stack returns the operand stack, bottom first
func (i *Interpreter) Stack() []int8 {
	return i.stack.Array()
}

// Top returns the value on top of the operand stack
func (i *Interpreter) Top() (int8, bool) {
	return i.stack.Peek()
}

// Depth returns the number of live frames
func (i *Interpreter) Depth() int {
	return i.rt.Depth()
}

// Frame returns the contents of frame id; once a frame is popped its last
// contents stay readable until a frame at that depth is popped again
func (i *Interpreter) Frame(id int) ([]int8, bool) {
	return i.rt.Frame(id)
}

// Variable reads one slot through Frame
func (i *Interpreter) Variable(addr codegen.Address) (int8, error) {
	f, ok := i.rt.Frame(int(addr.Frame))
	if !ok {
		return 0, fmt.Errorf("%w: frame %d was never pushed", ErrBadFrame, addr.Frame)
	}

	if int(addr.Slot) >= len(f) {
		return 0, fmt.Errorf("%w: slot %d in frame %d of size %d", ErrBadSlot, addr.Slot, addr.Frame, len(f))
	}

	return f[addr.Slot], nil
}

var ErrNotImplemented = errors.New("interpreter step function not linked")
