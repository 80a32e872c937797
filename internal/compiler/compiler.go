package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"brew/internal/conformance"
	"brew/pkg/color"
	"brew/pkg/interpreter"
	"brew/pkg/parser/codegen"
	"brew/pkg/parser/codegen/assembly"
	"brew/pkg/parser/codegen/assembly/llvm"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

type Compiler struct {
	Help            bool   // Show help message
	Verbose         bool   // Enable verbose output
	ShouldInterpret bool   // Whether to interpret the code
	ShouldCompile   bool   // Whether to build a native executable
	Disassemble     bool   // Print the bytecode listing
	AssemblyInput   bool   // Source file holds mnemonics instead of Brew
	Trace           bool   // Log every executed instruction
	NoColor         bool   // Disable colored output
	Interactive     bool   // Start the REPL
	Fuel            int    // Instruction budget (<= 0 = unlimited)
	ConfigFile      string // Optional YAML config
	SuiteDir        string // Conformance suite directory
	SourceFile      string // Path to the source file
	OutputFile      string // Path to the output file

	Stdout io.Writer // program and report output, defaults to os.Stdout
}

func (opts *Compiler) stdout() io.Writer {
	if opts.Stdout == nil {
		return os.Stdout
	}
	return opts.Stdout
}

// Compile reads the source file, translates it to bytecode, and then runs it,
// builds it natively, or both, based on the options set.
func (opts *Compiler) Compile() error {
	log.Info("Processing file", "file", opts.SourceFile)
	out := opts.stdout()

	input, err := os.ReadFile(opts.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.SourceFile, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(input), "\r\n", "\n"), "\n")

	cg := codegen.NewCodegen()
	var program []byte
	if opts.AssemblyInput {
		program, err = codegen.Assemble(lines)
	} else {
		program, err = cg.Compile(lines)
	}

	if err != nil {
		var ce *codegen.CompileError
		if errors.As(err, &ce) && ce.Line > 0 {
			fmt.Fprintln(out, color.ErrorAtLine(ce.Line, ce.Err.Error(), ce.Source))
		} else {
			fmt.Fprintln(out, color.Error(err.Error()))
		}
		return fmt.Errorf("compilation failed: %w", err)
	}

	if opts.Verbose || opts.Disassemble {
		fmt.Fprintln(out, color.GreenText("=== Bytecode ==="))
		listing, err := codegen.Disassemble(program)
		fmt.Fprint(out, listing)
		if err != nil {
			return fmt.Errorf("disassembly failed: %w", err)
		}
	}

	if opts.Verbose {
		fmt.Fprintf(out, "%s %s, %s variables\n",
			color.GrayText("program size"),
			humanize.Bytes(uint64(len(program))),
			humanize.Comma(int64(len(cg.Symbols()))))
	}

	if opts.ShouldCompile {
		var arch assembly.Assembly = llvm.NewLLVM(program, opts.OutputFile, opts.Fuel)

		if err := arch.Generate(); err != nil {
			return fmt.Errorf("code generation failed: %w", err)
		}

		if opts.Verbose {
			fmt.Fprintln(out, color.GreenText("\n=== Generated LLVM IR ==="))
			fmt.Fprintln(out, arch.GetCode())
		}

		if err := arch.Build(); err != nil {
			return fmt.Errorf("native build failed: %w", err)
		}
	}

	if opts.ShouldInterpret {
		return opts.interpret(cg, program)
	}

	return nil
}

func (opts *Compiler) interpret(cg *codegen.Codegen, program []byte) error {
	out := opts.stdout()

	fmt.Fprintln(out, color.GreenText("=== Program Output ==="))
	it, err := interpreter.Exec(program,
		interpreter.WithWriter(out),
		interpreter.WithFuel(opts.Fuel),
		interpreter.WithTrace(opts.Trace))
	if err != nil {
		fmt.Fprintln(out, color.Error(err.Error()))
		return fmt.Errorf("interpretation failed: %w", err)
	}

	if it.Exhausted() {
		log.Warn("Program ran out of fuel", "steps", it.Steps())
	}

	if opts.Verbose {
		fmt.Fprintln(out, color.GreenText("\n=== Variables ==="))
		for _, sym := range cg.Symbols() {
			v, err := it.Variable(sym.Address)
			if err != nil {
				continue
			}
			fmt.Fprintf(out, "%s = %d\n", color.CyanText(sym.Name), v)
		}
		fmt.Fprintf(out, "%s %s\n", color.GrayText("executed instructions"), humanize.Comma(int64(it.Steps())))
	}

	return nil
}

// RunSuite runs every conformance suite under dir and reports failures
func (opts *Compiler) RunSuite(ctx context.Context) error {
	out := opts.stdout()

	tests, err := conformance.LoadDir(opts.SuiteDir)
	if err != nil {
		return fmt.Errorf("loading suites: %w", err)
	}

	results, err := conformance.NewRunner().RunAll(ctx, tests)
	if err != nil {
		return err
	}

	for _, r := range results {
		if !r.Passed && !r.Skipped {
			fmt.Fprintf(out, "%s %s/%s: %v\n", color.BrightRedText("FAIL"), r.Test.File, r.Test.Test.Name, r.Error)
		}
	}

	stats := conformance.ComputeStats(results)
	summary := conformance.FormatStats(stats)

	if stats.Failed > 0 {
		fmt.Fprintln(out, summary)
		return fmt.Errorf("%s failed", humanize.Comma(int64(stats.Failed)))
	}

	fmt.Fprintln(out, color.Success(summary))
	return nil
}
