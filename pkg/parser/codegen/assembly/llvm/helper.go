package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func i32(v int64) *constant.Int {
	return constant.NewInt(types.I32, v)
}

func i8(v int64) *constant.Int {
	return constant.NewInt(types.I8, v)
}

// cstr returns a pointer to a NUL terminated string constant
func (l *llvmGen) cstr(s string) constant.Constant {
	g, ok := l.cstrings[s]
	if !ok {
		g = l.module.NewGlobalDef(fmt.Sprintf(".str.%d", len(l.cstrings)), constant.NewCharArrayFromString(s+"\x00"))
		g.Immutable = true
		l.cstrings[s] = g
	}

	return constant.NewGetElementPtr(g.ContentType, g, i32(0), i32(0))
}

// block opens a fresh block belonging to instruction ip
func (l *llvmGen) block(ip int, suffix string) *ir.Block {
	l.seq++
	return l.main.NewBlock(fmt.Sprintf("op%d.%s%d", ip, suffix, l.seq))
}

// check continues in a new block when ok holds, otherwise reports msg for ip
func (l *llvmGen) check(ok value.Value, ip int, msg string) {
	pass := l.block(ip, "ok")
	fail := l.block(ip, "err")

	l.cur.NewCondBr(ok, pass, fail)
	l.trap(fail, ip, msg)
	l.cur = pass
}

// trap ends b with a runtime error
func (l *llvmGen) trap(b *ir.Block, ip int, msg string) {
	b.NewCall(l.fail, i32(int64(ip)), l.cstr(msg))
	b.NewUnreachable()
}

func (l *llvmGen) loadSP() value.Value {
	return l.cur.NewLoad(types.I32, l.sp)
}

// need checks the operand stack holds at least n values
func (l *llvmGen) need(ip, n int) {
	ok := l.cur.NewICmp(enum.IPredSGE, l.loadSP(), i32(int64(n)))
	l.check(ok, ip, errUnderflow)
}

func (l *llvmGen) push(ip int, v value.Value) {
	sp := l.loadSP()
	l.check(l.cur.NewICmp(enum.IPredSLT, sp, i32(StackSize)), ip, errOverflow)

	slot := l.cur.NewGetElementPtr(stackType, l.stack, i32(0), sp)
	l.cur.NewStore(v, slot)
	l.cur.NewStore(l.cur.NewAdd(sp, i32(1)), l.sp)
}

// pop removes the top value; callers check the height first
func (l *llvmGen) pop() value.Value {
	sp := l.cur.NewSub(l.loadSP(), i32(1))
	l.cur.NewStore(sp, l.sp)

	slot := l.cur.NewGetElementPtr(stackType, l.stack, i32(0), sp)
	return l.cur.NewLoad(types.I8, slot)
}

func (l *llvmGen) peek() value.Value {
	sp := l.cur.NewSub(l.loadSP(), i32(1))
	slot := l.cur.NewGetElementPtr(stackType, l.stack, i32(0), sp)
	return l.cur.NewLoad(types.I8, slot)
}

// slot returns the address of frame[s] after checking both exist
func (l *llvmGen) slot(ip int, frame, s byte) value.Value {
	depth := l.cur.NewLoad(types.I32, l.depth)
	l.check(l.cur.NewICmp(enum.IPredSLT, i32(int64(frame)), depth), ip, errFrame)

	sizePtr := l.cur.NewGetElementPtr(sizesType, l.sizes, i32(0), i32(int64(frame)))
	size := l.cur.NewLoad(types.I32, sizePtr)
	l.check(l.cur.NewICmp(enum.IPredSLT, i32(int64(s)), size), ip, errSlot)

	return l.cur.NewGetElementPtr(framesType, l.frames, i32(0), i32(int64(frame)), i32(int64(s)))
}

// burnFuel halts the program once the instruction budget is spent
func (l *llvmGen) burnFuel(ip int) {
	if l.fuel <= 0 {
		return
	}

	steps := l.cur.NewLoad(types.I64, l.steps)
	left := l.cur.NewICmp(enum.IPredSLT, steps, constant.NewInt(types.I64, int64(l.fuel)))

	run := l.block(ip, "run")
	l.cur.NewCondBr(left, run, l.halt)
	l.cur = run

	l.cur.NewStore(l.cur.NewAdd(steps, constant.NewInt(types.I64, 1)), l.steps)
}

// declareRuntime adds the globals and support functions every program uses
func (l *llvmGen) declareRuntime() {
	m := l.module

	l.stack = m.NewGlobalDef("brew.stack", constant.NewZeroInitializer(stackType))
	l.sp = m.NewGlobalDef("brew.sp", i32(0))
	l.frames = m.NewGlobalDef("brew.frames", constant.NewZeroInitializer(framesType))
	l.sizes = m.NewGlobalDef("brew.sizes", constant.NewZeroInitializer(sizesType))
	l.depth = m.NewGlobalDef("brew.depth", i32(0))
	l.steps = m.NewGlobalDef("brew.steps", constant.NewInt(types.I64, 0))

	l.printf = m.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	l.printf.Sig.Variadic = true
	exit := m.NewFunc("exit", types.Void, ir.NewParam("status", types.I32))

	// brew.fail(ip, msg) prints a runtime error and exits with status 1
	ip := ir.NewParam("ip", types.I32)
	msg := ir.NewParam("msg", types.I8Ptr)
	l.fail = m.NewFunc("brew.fail", types.Void, ip, msg)
	entry := l.fail.NewBlock("entry")
	entry.NewCall(l.printf, l.cstr("runtime error at %d: %s\n"), ip, msg)
	entry.NewCall(exit, i32(1))
	entry.NewUnreachable()

	// brew.dump() prints the operand stack, bottom first
	l.dump = m.NewFunc("brew.dump", types.Void)
	entry = l.dump.NewBlock("entry")
	loop := l.dump.NewBlock("loop")
	body := l.dump.NewBlock("body")
	done := l.dump.NewBlock("done")

	i := entry.NewAlloca(types.I32)
	entry.NewStore(i32(0), i)
	entry.NewCall(l.printf, l.cstr("[DEBUG STACK]\n"))
	entry.NewBr(loop)

	n := loop.NewLoad(types.I32, i)
	loop.NewCondBr(loop.NewICmp(enum.IPredSLT, n, loop.NewLoad(types.I32, l.sp)), body, done)

	v := body.NewLoad(types.I8, body.NewGetElementPtr(stackType, l.stack, i32(0), n))
	body.NewCall(l.printf, l.cstr("%d: %d\n"), n, body.NewSExt(v, types.I32))
	body.NewStore(body.NewAdd(n, i32(1)), i)
	body.NewBr(loop)

	done.NewRet(nil)
}
