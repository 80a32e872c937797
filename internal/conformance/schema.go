package conformance

// TestSuite represents a complete YAML test file
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Fuel        *int       `yaml:"fuel,omitempty"` // default budget for every case
	Tests       []TestCase `yaml:"tests"`
}

// TestCase represents a single program and what running it must produce
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"`   // bool or string
	Source      string      `yaml:"source,omitempty"` // Brew statements, one per line
	Asm         string      `yaml:"asm,omitempty"`    // bytecode mnemonics, one per line
	Fuel        *int        `yaml:"fuel,omitempty"`
	Expect      Expectation `yaml:"expect"`
}

// Expectation defines the observable outcome of a case. Error kinds are the
// messages of the error sentinels, e.g. "unknown variable".
type Expectation struct {
	Vars         map[string]int `yaml:"vars,omitempty"`  // top-level variables after the run
	Stack        []int          `yaml:"stack,omitempty"` // operand stack, bottom first
	Output       *string        `yaml:"output,omitempty"`
	Steps        int            `yaml:"steps,omitempty"`
	Exhausted    bool           `yaml:"exhausted,omitempty"`
	CompileError string         `yaml:"compile_error,omitempty"`
	RuntimeError string         `yaml:"runtime_error,omitempty"`
}

// IsSkipped returns true if this test should be skipped
func (tc *TestCase) IsSkipped() (bool, string) {
	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
		return false, ""
	case string:
		return true, v
	default:
		return false, ""
	}
}
