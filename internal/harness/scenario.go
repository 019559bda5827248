package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/verror"
)

// Scenario is a named list of validation cases.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup lists rows created in the store before any case runs.
	// Setup rows are validated as create payloads and must succeed.
	Setup []SetupStep `yaml:"setup,omitempty"`

	// Cases are run in order against the same store.
	Cases []Case `yaml:"cases"`
}

// SetupStep creates one row.
type SetupStep struct {
	Entity string         `yaml:"entity"`
	Data   map[string]any `yaml:"data"`
}

// Case is one operation input and its expected outcome.
type Case struct {
	Name   string `yaml:"name"`
	Entity string `yaml:"entity"`
	Op     string `yaml:"op"`

	// Input is the argument envelope. A missing input is an empty envelope.
	Input any `yaml:"input,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect is the expected outcome of a case. Exactly one of OK and Error is set.
type Expect struct {
	// OK expects the input to validate.
	OK bool `yaml:"ok,omitempty"`

	// Error is the expected error kind, e.g. SHAPE_MISMATCH.
	Error string `yaml:"error,omitempty"`

	// Path is the expected dotted error path. Empty means the input root.
	Path *string `yaml:"path,omitempty"`

	// Message is a substring of the expected error message.
	Message string `yaml:"message,omitempty"`

	// IDs are the ids of the rows returned by the store, in order.
	IDs []string `yaml:"ids,omitempty"`

	// Count is the number returned by count or removed by deleteMany.
	Count *int64 `yaml:"count,omitempty"`
}

// operations whose results can be compared against expected ids or counts.
var (
	idOps    = []string{queryir.OpFindMany, queryir.OpFindFirst, queryir.OpCreate}
	countOps = []string{queryir.OpCount, queryir.OpDeleteMany}
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expected:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
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

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Entity == "" {
			return fmt.Errorf("setup[%d]: entity is required", i)
		}
		if step.Data == nil {
			return fmt.Errorf("setup[%d]: data is required (use empty map if no fields)", i)
		}
	}

	names := make(map[string]int, len(s.Cases))
	for i, c := range s.Cases {
		if err := validateCase(c); err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		if prev, dup := names[c.Name]; dup {
			return fmt.Errorf("cases[%d]: name %q already used by cases[%d]", i, c.Name, prev)
		}
		names[c.Name] = i
	}

	return nil
}

// validateCase validates a single case and its expectation.
func validateCase(c Case) error {
	switch {
	case c.Name == "":
		return fmt.Errorf("name is required")
	case c.Entity == "":
		return fmt.Errorf("entity is required")
	case c.Op == "":
		return fmt.Errorf("op is required")
	case !slices.Contains(queryir.Operations, c.Op):
		return fmt.Errorf("unknown op %q", c.Op)
	}

	e := c.Expect
	if e.OK == (e.Error != "") {
		return fmt.Errorf("expect: exactly one of ok and error is required")
	}
	if e.OK {
		if e.Path != nil || e.Message != "" {
			return fmt.Errorf("expect: path and message require error")
		}
		if e.IDs != nil && !slices.Contains(idOps, c.Op) {
			return fmt.Errorf("expect: ids is not supported for %s", c.Op)
		}
		if e.Count != nil && !slices.Contains(countOps, c.Op) {
			return fmt.Errorf("expect: count is not supported for %s", c.Op)
		}
		return nil
	}

	if _, ok := verror.ParseKind(e.Error); !ok {
		return fmt.Errorf("expect: unknown error kind %q", e.Error)
	}
	if e.IDs != nil || e.Count != nil {
		return fmt.Errorf("expect: ids and count require ok")
	}
	return nil
}
