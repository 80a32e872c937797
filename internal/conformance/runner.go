package conformance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"brew/pkg/interpreter"
	"brew/pkg/lexer"
	"brew/pkg/parser"
	"brew/pkg/parser/codegen"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// TestResult represents the outcome of running a single test
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error
}

// Runner executes conformance tests. Each case gets its own compiler and
// interpreter, so cases run concurrently.
type Runner struct {
	parallel int
}

// NewRunner creates a runner using one worker per CPU
func NewRunner() *Runner {
	return &Runner{parallel: runtime.GOMAXPROCS(0)}
}

// WithParallel sets the number of cases run at once
func (r *Runner) WithParallel(n int) *Runner {
	if n > 0 {
		r.parallel = n
	}
	return r
}

// errorKinds maps sentinel messages to the sentinels
var errorKinds = func() map[string]error {
	kinds := []error{
		lexer.ErrUnrecognizedToken, lexer.ErrTrailingOperator, lexer.ErrDanglingMinus,
		parser.ErrMismatchedParen, parser.ErrAmbiguousConditional, parser.ErrMissingRelational,
		parser.ErrMalformedCondition, parser.ErrMissingAssign, parser.ErrMultipleAssign,
		parser.ErrMalformedStatement, parser.ErrInvalidType, parser.ErrInvalidName,
		parser.ErrUnterminatedBlock, parser.ErrUnbalancedBlock,
		codegen.ErrUnknownVariable, codegen.ErrRedeclared, codegen.ErrOutOfScope,
		codegen.ErrTooManyVariables, codegen.ErrBlockTooLarge, codegen.ErrLiteralRange,
		codegen.ErrMalformedExpression, codegen.ErrAssembly,
		interpreter.ErrStackUnderflow, interpreter.ErrInvalidTruthValue, interpreter.ErrBadFrame,
		interpreter.ErrBadSlot, interpreter.ErrDivisionByZero, interpreter.ErrBadJump,
		interpreter.ErrUnknownOpcode, interpreter.ErrTruncated,
	}

	m := make(map[string]error, len(kinds))
	for _, k := range kinds {
		m[k.Error()] = k
	}
	return m
}()

// Run executes one test case
func (r *Runner) Run(test LoadedTest) TestResult {
	result := TestResult{Test: test}

	if skip, reason := test.Test.IsSkipped(); skip {
		result.Skipped = true
		result.SkipReason = reason
		return result
	}

	if err := r.run(test); err != nil {
		result.Error = err
		return result
	}

	result.Passed = true
	return result
}

func (r *Runner) run(test LoadedTest) error {
	tc := test.Test
	expect := tc.Expect

	fuel := interpreter.DefaultFuel
	if test.Suite.Fuel != nil {
		fuel = *test.Suite.Fuel
	}
	if tc.Fuel != nil {
		fuel = *tc.Fuel
	}

	cg := codegen.NewCodegen()

	var program []byte
	var err error
	if tc.Asm != "" {
		program, err = codegen.Assemble(strings.Split(tc.Asm, "\n"))
	} else {
		program, err = cg.Compile(strings.Split(strings.TrimRight(tc.Source, "\n"), "\n"))
	}

	if expect.CompileError != "" {
		return matchError("compile", expect.CompileError, err)
	}
	if err != nil {
		return fmt.Errorf("unexpected compile error: %w", err)
	}

	var out bytes.Buffer
	it, err := interpreter.Exec(program, interpreter.WithWriter(&out), interpreter.WithFuel(fuel))

	if expect.RuntimeError != "" {
		return matchError("runtime", expect.RuntimeError, err)
	}
	if err != nil {
		return fmt.Errorf("unexpected runtime error: %w", err)
	}

	return checkExpectation(expect, cg, it, out.String())
}

// matchError checks err is of the kind named by the sentinel message want
func matchError(stage, want string, err error) error {
	kind, ok := errorKinds[want]
	if !ok {
		return fmt.Errorf("unknown error kind %q", want)
	}

	if err == nil {
		return fmt.Errorf("expected %s error %q, got none", stage, want)
	}

	if !errors.Is(err, kind) {
		return fmt.Errorf("expected %s error %q, got %v", stage, want, err)
	}

	return nil
}

// checkExpectation compares a finished run with the expected outcome
func checkExpectation(expect Expectation, cg *codegen.Codegen, it *interpreter.Interpreter, output string) error {
	if it.Exhausted() != expect.Exhausted {
		return fmt.Errorf("expected exhausted=%v after %d steps", expect.Exhausted, it.Steps())
	}

	if expect.Steps != 0 && it.Steps() != expect.Steps {
		return fmt.Errorf("expected %d steps, got %d", expect.Steps, it.Steps())
	}

	for name, want := range expect.Vars {
		addr, err := cg.Lookup(name)
		if err != nil {
			return err
		}

		got, err := it.Variable(addr)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}

		if int(got) != want {
			return fmt.Errorf("expected %s == %d, got %d", name, want, got)
		}
	}

	if expect.Stack != nil {
		got := make([]int, 0, len(it.Stack()))
		for _, v := range it.Stack() {
			got = append(got, int(v))
		}

		if !slices.Equal(got, expect.Stack) {
			return fmt.Errorf("expected stack %v, got %v", expect.Stack, got)
		}
	}

	if expect.Output != nil && output != *expect.Output {
		return fmt.Errorf("expected output %q, got %q", *expect.Output, output)
	}

	return nil
}

// RunAll executes tests concurrently; results keep the input order
func (r *Runner) RunAll(ctx context.Context, tests []LoadedTest) ([]TestResult, error) {
	results := make([]TestResult, len(tests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)

	for i, test := range tests {
		i, test := i, test
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = r.Run(test)
			log.Debug("conformance", "file", test.File, "test", test.Test.Name, "passed", results[i].Passed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// SummaryStats computes statistics from test results
type SummaryStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// ComputeStats generates statistics from test results
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			stats.Skipped++
		} else if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// FormatStats returns a human-readable summary
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)",
		stats.Passed, stats.Failed, stats.Skipped, stats.Total)
}
