package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/querygate/internal/harness"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern on the file name)
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenarios.yaml|dir>",
		Short: "Run scenario files",
		Long: `Run scenario files against the schema.

Each case validates one input and compares the outcome with its expectation:
acceptance, or a rejection kind with its path. Cases expecting ids or a
count also run against a fresh in-memory database seeded by the setup.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  querygate check scenarios/bookmarks.yaml
  querygate check scenarios/
  querygate check scenarios/ --filter "feed-*" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command, path string) error {
	f := opts.Formatter(cmd)
	cat, err := opts.Catalog(cmd, f)
	if err != nil {
		return err
	}

	files, err := harness.FindScenarios(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "failed to find scenarios", err.Error())
	}
	if files, err = filterScenarios(files, opts.Filter); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "invalid filter pattern", err.Error())
	}

	logger := GetLogger(cmd.Context())
	h := harness.New(cat.Registry, harness.WithLogger(logger))
	result := h.RunFiles(cmd.Context(), files)
	logger.Debug("scenarios completed", "total", result.TotalScenarios, "failed", result.Failed)

	if err := f.Text(result, func(w io.Writer) { writeSuite(w, result) }); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if result.Failed > 0 {
		return reported{NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.TotalScenarios))}
	}
	return nil
}

// filterScenarios keeps the files whose base name, without extension,
// matches pattern. An empty pattern keeps every file.
func filterScenarios(files []string, pattern string) ([]string, error) {
	if pattern == "" {
		return files, nil
	}
	var out []string
	for _, file := range files {
		base := filepath.Base(file)
		name := base[:len(base)-len(filepath.Ext(base))]
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, file)
		}
	}
	return out, nil
}

func writeSuite(w io.Writer, result *harness.SuiteResult) {
	for _, failure := range result.Failures {
		name := failure.Scenario
		if name == "" {
			name = filepath.Base(failure.ScenarioPath)
		}
		fmt.Fprintf(w, "✗ %s (%s)\n", name, failure.ScenarioPath)
		for _, e := range failure.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "%d scenarios, %d cases: %d passed, %d failed\n",
		result.TotalScenarios, result.TotalCases, result.Passed, result.Failed)
}
