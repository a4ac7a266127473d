// Package conformance runs YAML-described VM programs end to end:
// translate, assemble, execute on the emulated machine, then check the
// resulting memory state.
package conformance

// TestSuite represents a complete YAML test file.
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase is a single program plus its expected end state.
type TestCase struct {
	Name string `yaml:"name"`
	Skip string `yaml:"skip,omitempty"` // non-empty: skip with this reason

	// Units maps source unit names to VM source text. The unit name
	// scopes the static segment, exactly like a .vm file name.
	Units map[string]string `yaml:"units"`

	// Cycles bounds the run; 0 means the default budget.
	Cycles int `yaml:"cycles,omitempty"`

	Expect Expectation `yaml:"expect"`
}

// Expectation describes the machine state after the program halts.
// Untouched fields are not checked.
type Expectation struct {
	Top    *int        `yaml:"top,omitempty"`    // top of stack, signed
	SP     *int        `yaml:"sp,omitempty"`     // stack pointer
	RAM    map[int]int `yaml:"ram,omitempty"`    // address -> signed value
	Halted *bool       `yaml:"halted,omitempty"` // defaults to true
}
