package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SuiteResult summarizes the execution of several scenario files.
type SuiteResult struct {
	TotalScenarios int               `json:"total_scenarios"`
	TotalCases     int               `json:"total_cases"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Failures       []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure represents a scenario that failed to load, run or pass.
type ScenarioFailure struct {
	Scenario     string   `json:"scenario,omitempty"`
	ScenarioPath string   `json:"scenario_path"`
	Errors       []string `json:"errors"`
}

// FindScenarios expands path into scenario files. A directory yields its
// *.yaml and *.yml files in lexical order; a file yields itself.
func FindScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scenario path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", path)
	}
	return files, nil
}

// RunFiles loads and runs every scenario file in order. A scenario that
// fails to load or run is reported as a failure; it does not stop the
// remaining files.
func (h *Harness) RunFiles(ctx context.Context, paths []string) *SuiteResult {
	result := &SuiteResult{}

	for _, path := range paths {
		result.TotalScenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				ScenarioPath: path,
				Errors:       []string{fmt.Sprintf("failed to load scenario: %v", err)},
			})
			continue
		}
		result.TotalCases += len(scenario.Cases)

		run, err := h.Run(ctx, scenario)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Scenario:     scenario.Name,
				ScenarioPath: path,
				Errors:       []string{fmt.Sprintf("scenario execution failed: %v", err)},
			})
			continue
		}

		if !run.Pass {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Scenario:     scenario.Name,
				ScenarioPath: path,
				Errors:       run.Errors,
			})
			continue
		}

		result.Passed++
	}

	return result
}
