package conformance

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestPath is the bundled suite directory, relative to this package
const TestPath = "testdata"

// LoadedTest represents a test with its source file path
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadDir walks dir and loads every .yaml suite in it
func LoadDir(dir string) ([]LoadedTest, error) {
	var loaded []LoadedTest

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || (filepath.Ext(path) != ".yaml" && filepath.Ext(path) != ".yml") {
			return nil
		}

		tests, err := loadTestFile(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}

		relPath, _ := filepath.Rel(dir, path)
		for _, test := range tests {
			test.File = relPath
			loaded = append(loaded, test)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return loaded, nil
}

// loadTestFile parses a single YAML file and returns all test cases
func loadTestFile(path string) ([]LoadedTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}

	var tests []LoadedTest
	for _, test := range suite.Tests {
		if (test.Source == "") == (test.Asm == "") {
			return nil, fmt.Errorf("test %q needs exactly one of source or asm", test.Name)
		}

		tests = append(tests, LoadedTest{
			Suite: suite,
			Test:  test,
		})
	}

	return tests, nil
}
