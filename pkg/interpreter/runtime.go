package interpreter

import (
	"brew/pkg/parser/codegen"
	"fmt"
)

// MaxFrames bounds the frame stack; frame ids are single bytes
const MaxFrames = 256

// Runtime holds the instruction pointer, the executed instruction count and
// the frame stack of one run
type Runtime struct {
	ip      int
	steps   int
	frames  [][]int8
	retired map[int][]int8 // last contents of popped frames, by frame id
}

func newRuntime() *Runtime {
	return &Runtime{
		frames:  make([][]int8, 0, 4),
		retired: make(map[int][]int8),
	}
}

// PushFrame allocates a zeroed frame of size slots
func (r *Runtime) PushFrame(size int) error {
	if size > codegen.MaxFrameSize {
		return fmt.Errorf("%w: frame of %d slots exceeds %d", ErrBadFrame, size, codegen.MaxFrameSize)
	}

	if len(r.frames) >= MaxFrames {
		return fmt.Errorf("%w: more than %d nested frames", ErrBadFrame, MaxFrames)
	}

	r.frames = append(r.frames, make([]int8, size))
	return nil
}

// PopFrame discards the innermost frame
func (r *Runtime) PopFrame() error {
	n := len(r.frames)
	if n == 0 {
		return fmt.Errorf("%w: no frame to pop", ErrBadFrame)
	}

	r.retired[n-1] = r.frames[n-1]
	r.frames = r.frames[:n-1]
	return nil
}

// Load reads frame[slot]
func (r *Runtime) Load(frame, slot uint8) (int8, error) {
	f, err := r.frame(frame, slot)
	if err != nil {
		return 0, err
	}

	return f[slot], nil
}

// Store writes frame[slot]
func (r *Runtime) Store(frame, slot uint8, v int8) error {
	f, err := r.frame(frame, slot)
	if err != nil {
		return err
	}

	f[slot] = v
	return nil
}

func (r *Runtime) frame(frame, slot uint8) ([]int8, error) {
	if int(frame) >= len(r.frames) {
		return nil, fmt.Errorf("%w: frame %d (depth is %d)", ErrBadFrame, frame, len(r.frames))
	}

	f := r.frames[frame]
	if int(slot) >= len(f) {
		return nil, fmt.Errorf("%w: slot %d in frame %d of size %d", ErrBadSlot, slot, frame, len(f))
	}

	return f, nil
}

// Depth is the number of live frames
func (r *Runtime) Depth() int {
	return len(r.frames)
}

// Frame returns a copy of the live frame id, or of the last frame popped at
// that depth when none is live
func (r *Runtime) Frame(id int) ([]int8, bool) {
	if id >= 0 && id < len(r.frames) {
		return append([]int8(nil), r.frames[id]...), true
	}

	if f, ok := r.retired[id]; ok {
		return append([]int8(nil), f...), true
	}

	return nil, false
}
