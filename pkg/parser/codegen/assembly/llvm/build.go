package llvm

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Build writes the IR to a temporary file and compiles it with clang
func (l *llvmGen) Build() error {
	if l.code == "" {
		if err := l.Generate(); err != nil {
			return err
		}
	}

	tempDir, err := os.MkdirTemp("", "brew_build_")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	irFile := filepath.Join(tempDir, "program.ll")
	if err := os.WriteFile(irFile, []byte(l.code), 0644); err != nil {
		return fmt.Errorf("failed to write IR file: %w", err)
	}

	cmd := exec.Command("clang", "-O2", "-Wno-override-module", "-o", l.output, irFile)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("clang failed: %w\nOutput: %s", err, output)
	}

	log.Info("Built native executable", "output", l.output)
	return nil
}
