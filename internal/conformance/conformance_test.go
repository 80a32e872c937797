package conformance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestConformance(t *testing.T) {
	tests, err := LoadDir(TestPath)
	if err != nil {
		t.Fatalf("Failed to load tests: %v", err)
	}

	if len(tests) == 0 {
		t.Fatal("No tests loaded")
	}

	results, err := NewRunner().RunAll(context.Background(), tests)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	fileGroups := make(map[string][]TestResult)
	for _, result := range results {
		fileGroups[result.Test.File] = append(fileGroups[result.Test.File], result)
	}

	for file, fileResults := range fileGroups {
		t.Run(file, func(t *testing.T) {
			for _, result := range fileResults {
				t.Run(result.Test.Test.Name, func(t *testing.T) {
					if result.Skipped {
						t.Skipf("Skipped: %s", result.SkipReason)
					} else if !result.Passed {
						t.Errorf("Test failed: %v", result.Error)
					}
				})
			}
		})
	}

	t.Logf("\n=== Summary ===\n%s", FormatStats(ComputeStats(results)))
}

func TestRunnerReportsFailures(t *testing.T) {
	tests := []LoadedTest{
		{File: "inline", Test: TestCase{Name: "wrong value", Source: "byte x = 1", Expect: Expectation{Vars: map[string]int{"x": 2}}}},
		{File: "inline", Test: TestCase{Name: "missing error", Source: "byte x = 1", Expect: Expectation{CompileError: "unknown variable"}}},
		{File: "inline", Test: TestCase{Name: "unknown kind", Source: "byte x = y", Expect: Expectation{CompileError: "no such kind"}}},
		{File: "inline", Test: TestCase{Name: "skipped", Skip: "not today", Source: "byte x = y"}},
	}

	results, err := NewRunner().WithParallel(2).RunAll(context.Background(), tests)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stats := ComputeStats(results)
	if stats.Failed != 3 || stats.Skipped != 1 || stats.Passed != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}

	for i, result := range results {
		if result.Test.Test.Name != tests[i].Test.Name {
			t.Errorf("results out of order at %d: %s", i, result.Test.Test.Name)
		}
	}
}

func TestLoadRejectsAmbiguousCases(t *testing.T) {
	dir := t.TempDir()
	suite := "name: bad\ntests:\n  - name: both\n    source: byte x = 1\n    asm: PUSH 1\n    expect: {}\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(suite), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadDir(dir); err == nil {
		t.Error("expected an error for a case with both source and asm")
	}
}

func TestRunAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []LoadedTest{{Test: TestCase{Name: "any", Source: "byte x = 1"}}}
	if _, err := NewRunner().RunAll(ctx, tests); err == nil {
		t.Error("expected a cancelled run to fail")
	}
}
