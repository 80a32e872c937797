package codegen

import (
	"fmt"
	"sort"
)

// Address locates a variable: frame id (nesting depth) and slot within that frame
type Address struct {
	Frame uint8
	Slot  uint8
}

func (a Address) String() string {
	return fmt.Sprintf("%d:%d", a.Frame, a.Slot)
}

// Symbol is a named variable and its address
type Symbol struct {
	Name    string
	Address Address
}

// Scope is the symbol table of one block. Entering a block creates a child
// scope; leaving it retires the child's names into the parent.
type Scope struct {
	parent  *Scope
	depth   uint8
	names   map[string]Address // variables declared directly in this block
	retired map[string]Address // variables of finished child blocks
}

// NewScope creates a top-level (frame 0) scope
func NewScope() *Scope {
	return &Scope{
		names:   make(map[string]Address),
		retired: make(map[string]Address),
	}
}

// Child opens a nested block one frame deeper. Slot numbering restarts at 0.
func (s *Scope) Child() (*Scope, error) {
	if s.depth == 255 {
		return nil, fmt.Errorf("%w: blocks nested deeper than 255 frames", ErrTooManyVariables)
	}

	child := NewScope()
	child.parent = s
	child.depth = s.depth + 1
	return child, nil
}

// Retire closes a child block; its names become out of scope here
func (s *Scope) Retire(child *Scope) {
	for name, addr := range child.retired {
		s.retired[name] = addr
	}
	for name, addr := range child.names {
		s.retired[name] = addr
	}
}

// Depth is the frame id of this block
func (s *Scope) Depth() uint8 {
	return s.depth
}

// Len is the number of variables declared directly in this block
func (s *Scope) Len() int {
	return len(s.names)
}

// Declare allocates the next slot of this frame for name. A name owns one
// address per compile: one that is visible from here or belonged to a closed
// block cannot be declared again.
func (s *Scope) Declare(name string) (Address, error) {
	for scope := s; scope != nil; scope = scope.parent {
		_, visible := scope.names[name]
		_, retired := scope.retired[name]
		if visible || retired {
			return Address{}, fmt.Errorf("%w: variable %q already exists", ErrRedeclared, name)
		}
	}

	if len(s.names) >= MaxFrameSize {
		return Address{}, fmt.Errorf("%w: at most %d variables per frame", ErrTooManyVariables, MaxFrameSize)
	}

	addr := Address{Frame: s.depth, Slot: uint8(len(s.names))}
	s.names[name] = addr

	return addr, nil
}

// Resolve finds the visible declaration of name
func (s *Scope) Resolve(name string) (Address, error) {
	for scope := s; scope != nil; scope = scope.parent {
		if addr, ok := scope.names[name]; ok {
			if addr.Frame > s.depth {
				return Address{}, fmt.Errorf("%w: variable %q lives in frame %d", ErrOutOfScope, name, addr.Frame)
			}
			return addr, nil
		}
	}

	for scope := s; scope != nil; scope = scope.parent {
		if _, ok := scope.retired[name]; ok {
			return Address{}, fmt.Errorf("%w: variable %q is not visible from this scope", ErrOutOfScope, name)
		}
	}

	return Address{}, fmt.Errorf("%w %q", ErrUnknownVariable, name)
}

// Symbols lists the variables of this block in slot order
func (s *Scope) Symbols() []Symbol {
	out := make([]Symbol, 0, len(s.names))
	for name, addr := range s.names {
		out = append(out, Symbol{Name: name, Address: addr})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Address.Slot < out[j].Address.Slot })
	return out
}

// Clone copies this scope (not its parents) so a compile can be abandoned
func (s *Scope) Clone() *Scope {
	c := &Scope{
		parent:  s.parent,
		depth:   s.depth,
		names:   make(map[string]Address, len(s.names)),
		retired: make(map[string]Address, len(s.retired)),
	}

	for k, v := range s.names {
		c.names[k] = v
	}
	for k, v := range s.retired {
		c.retired[k] = v
	}

	return c
}
