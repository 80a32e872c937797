package codegen_test

import (
	"brew/pkg/parser/codegen"
	"errors"
	"testing"
)

func TestScopeDeclareResolve(t *testing.T) {
	root := codegen.NewScope()

	x, err := root.Declare("x")
	if err != nil || x != (codegen.Address{Frame: 0, Slot: 0}) {
		t.Fatalf("unexpected declaration %v, %v", x, err)
	}
	y, _ := root.Declare("y")
	if y.Slot != 1 {
		t.Errorf("expected slot 1, got %d", y.Slot)
	}

	if _, err := root.Declare("x"); !errors.Is(err, codegen.ErrRedeclared) {
		t.Errorf("expected redeclaration error, got %v", err)
	}

	child, err := root.Child()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if child.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", child.Depth())
	}

	t1, _ := child.Declare("t")
	if t1 != (codegen.Address{Frame: 1, Slot: 0}) {
		t.Errorf("child slots should restart at 0, got %v", t1)
	}

	if addr, err := child.Resolve("y"); err != nil || addr != y {
		t.Errorf("child should see y at %v, got %v, %v", y, addr, err)
	}

	if _, err := child.Declare("x"); !errors.Is(err, codegen.ErrRedeclared) {
		t.Errorf("shadowing x in a child should be rejected, got %v", err)
	}
	if addr, _ := child.Resolve("x"); addr != x {
		t.Errorf("child should still see the outer x, got %v", addr)
	}

	root.Retire(child)
	if _, err := root.Resolve("t"); !errors.Is(err, codegen.ErrOutOfScope) {
		t.Errorf("expected out of scope, got %v", err)
	}
	if addr, _ := root.Resolve("x"); addr != x {
		t.Errorf("outer x should be visible again, got %v", addr)
	}
	if _, err := root.Resolve("nope"); !errors.Is(err, codegen.ErrUnknownVariable) {
		t.Errorf("expected unknown variable, got %v", err)
	}

	// a retired name keeps its address
	if _, err := root.Declare("t"); !errors.Is(err, codegen.ErrRedeclared) {
		t.Errorf("redeclaring retired t should be rejected, got %v", err)
	}
	if _, err := root.Resolve("t"); !errors.Is(err, codegen.ErrOutOfScope) {
		t.Errorf("t should stay out of scope, got %v", err)
	}

	// so does a name retired by a sibling block
	sibling, _ := root.Child()
	if _, err := sibling.Declare("t"); !errors.Is(err, codegen.ErrRedeclared) {
		t.Errorf("reusing t in a sibling block should be rejected, got %v", err)
	}
	if _, err := sibling.Declare("u"); err != nil {
		t.Errorf("fresh name in a sibling block: %v", err)
	}
}

func TestScopeClone(t *testing.T) {
	root := codegen.NewScope()
	root.Declare("a")

	clone := root.Clone()
	clone.Declare("b")

	if root.Len() != 1 || clone.Len() != 2 {
		t.Errorf("clone must not share names: root %d, clone %d", root.Len(), clone.Len())
	}

	syms := clone.Symbols()
	if len(syms) != 2 || syms[0].Name != "a" || syms[1].Name != "b" {
		t.Errorf("unexpected symbols %+v", syms)
	}
}

func TestScopeNestingLimit(t *testing.T) {
	s := codegen.NewScope()
	for i := 0; i < 255; i++ {
		child, err := s.Child()
		if err != nil {
			t.Fatalf("depth %d: unexpected error %v", i+1, err)
		}
		s = child
	}

	if _, err := s.Child(); err == nil {
		t.Error("expected an error past frame 255")
	}
}
