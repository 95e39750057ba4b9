package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines an end-to-end build scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the build ID and
	// the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Compiler selects the fake ikvmc installed at <workspace>/ikvm.
	Compiler string `yaml:"compiler"`

	// Files are written into the workspace before the build.
	Files map[string]string `yaml:"files,omitempty"`

	// Jars are zip archives written into the workspace, keyed by path,
	// holding the given entries.
	Jars map[string]map[string]string `yaml:"jars,omitempty"`

	// Descriptor is the build descriptor document.
	Descriptor string `yaml:"descriptor"`

	// Assertions validate the build outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one property of a build outcome.
type Assertion struct {
	Type   string   `yaml:"type"`
	Value  string   `yaml:"value,omitempty"`
	Values []string `yaml:"values,omitempty"`
	Path   string   `yaml:"path,omitempty"`
}

// Compiler names.
const (
	CompilerOK       = "ok"
	CompilerWarnings = "warnings"
	CompilerFail     = "fail"
	CompilerNone     = "none"
)

// Assertion type constants.
const (
	AssertStatus     = "status"
	AssertErrorKind  = "error_kind"
	AssertWarnings   = "warnings"
	AssertFileExists = "file_exists"
	AssertFileAbsent = "file_absent"
	AssertArgPresent = "arg_present"
	AssertLastArg    = "last_arg"
	AssertHistory    = "history"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Descriptor == "" {
		return fmt.Errorf("descriptor is required")
	}

	switch s.Compiler {
	case CompilerOK, CompilerWarnings, CompilerFail, CompilerNone:
	default:
		return fmt.Errorf("compiler must be one of ok, warnings, fail, none (got %q)", s.Compiler)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}

	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertStatus, AssertHistory, AssertArgPresent, AssertLastArg:
		if a.Value == "" {
			return fmt.Errorf("%s requires value", a.Type)
		}
	case AssertErrorKind, AssertWarnings:
	case AssertFileExists, AssertFileAbsent:
		if a.Path == "" {
			return fmt.Errorf("%s requires path", a.Type)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
