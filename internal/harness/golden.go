package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/querygate/internal/ir"
)

// Snapshot captures the outcomes of a scenario execution.
// Messages and normalized trees are left out so that rewording an error
// does not churn every golden file.
type Snapshot struct {
	ScenarioName string    `json:"scenario_name"`
	Outcomes     []Outcome `json:"outcomes"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	outcomes := make([]any, len(s.Outcomes))
	for i, o := range s.Outcomes {
		m := map[string]any{
			"case":   o.Case,
			"entity": o.Entity,
			"op":     o.Op,
			"status": o.Status,
		}
		if o.Status == StatusRejected {
			m["kind"] = o.Kind
			m["path"] = o.Path
		}
		if o.IDs != nil {
			m["ids"] = o.IDs
		}
		if o.Count != nil {
			m["count"] = *o.Count
		}
		outcomes[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"outcomes":      outcomes,
	}
}

// RunWithGolden executes a scenario and compares its outcomes against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if outcomes don't match the golden file.
func RunWithGolden(t *testing.T, h *Harness, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := h.Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's outcomes against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Outcomes:     result.Outcomes,
	}

	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
