package color_test

import (
	"brew/pkg/color"
	"strings"
	"testing"
)

func TestDisabled(t *testing.T) {
	color.EnableColor(false)
	defer color.EnableColor(false)

	if color.IsColorEnabled() {
		t.Error("color should be disabled")
	}
	if got := color.RedText("x"); got != "x" {
		t.Errorf("expected plain text, got %q", got)
	}

	if got := color.Success("2 passed"); got != "2 passed" {
		t.Errorf("expected the bare message, got %q", got)
	}

	expected := "Error at line 2: unknown variable\n  z = x + y"
	if got := color.ErrorAtLine(2, "unknown variable", "z = x + y"); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestEnabled(t *testing.T) {
	color.EnableColor(true)
	defer color.EnableColor(false)

	if !color.IsColorEnabled() {
		t.Error("color should be enabled")
	}

	got := color.GreenText("ok")
	if got == "ok" || !strings.Contains(got, "ok") || !strings.HasPrefix(got, "\x1b[") {
		t.Errorf("expected an ANSI sequence around the text, got %q", got)
	}

	if got := color.Success("2 passed"); !strings.Contains(got, "Success: ") || !strings.HasSuffix(got, "2 passed") {
		t.Errorf("expected a success prefix, got %q", got)
	}

	if got := color.Highlight("a x b", "x"); !strings.Contains(got, "\x1b[") {
		t.Errorf("expected highlighted text, got %q", got)
	}
}
