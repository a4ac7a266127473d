package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestDir holds the YAML suites, relative to this package.
const TestDir = "testdata"

// LoadedTest is a single test case with its source file path.
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadAllTests reads every .yaml file under TestDir and returns the
// test cases in file order.
func LoadAllTests() ([]LoadedTest, error) {
	var loaded []LoadedTest

	err := filepath.Walk(TestDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		tests, err := loadTestFile(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		loaded = append(loaded, tests...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("no test cases found under %s", TestDir)
	}
	return loaded, nil
}

func loadTestFile(path string) ([]LoadedTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if suite.Name == "" {
		return nil, fmt.Errorf("suite has no name")
	}

	var loaded []LoadedTest
	for _, test := range suite.Tests {
		if test.Name == "" {
			return nil, fmt.Errorf("suite %q has a test with no name", suite.Name)
		}
		if len(test.Units) == 0 && test.Skip == "" {
			return nil, fmt.Errorf("test %q has no source units", test.Name)
		}
		loaded = append(loaded, LoadedTest{File: path, Suite: suite, Test: test})
	}
	return loaded, nil
}
