package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/querygate/internal/harness"
	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/validator"
	"github.com/roach88/querygate/internal/verror"
)

// ValidateResult is the payload of an accepted input.
type ValidateResult struct {
	Entity      string `json:"entity"`
	Operation   string `json:"operation"`
	Normalized  any    `json:"normalized"`
	Fingerprint string `json:"fingerprint"`
}

// RejectionDetails locates a rejected input.
type RejectionDetails struct {
	Entity    string `json:"entity"`
	Operation string `json:"operation"`
	Path      string `json:"path"`
	Segments  []any  `json:"segments"` // path keys and array indices
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <Entity> <operation> <input|->",
		Short: "Validate an operation input",
		Long: `Validate one operation input against the schema.

The input is a JSON or YAML file, or "-" to read standard input.
An accepted input prints its normalized form; a rejected input prints the
error kind, the path of the offending value and a message.

Exit codes:
  0 - Input accepted
  1 - Input rejected
  2 - Command error (unreadable input, invalid schema, etc.)

Examples:
  querygate validate Bookmark findMany query.json
  echo '{"where":{"id":"b1"}}' | querygate validate Bookmark findUnique -
  querygate validate User create user.yaml --format json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args[0], args[1], args[2])
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, entity, op, inputArg string) error {
	f := opts.Formatter(cmd)
	cat, err := opts.Catalog(cmd, f)
	if err != nil {
		return err
	}
	input, err := readInput(cmd, f, inputArg)
	if err != nil {
		return err
	}

	v := validator.New(cat.Registry, validator.WithLogger(GetLogger(cmd.Context())))
	args, verr := validateInput(v, f, entity, op, input)
	if verr != nil {
		return verr
	}

	result := ValidateResult{Entity: entity, Operation: op, Normalized: args.Wire()}
	if result.Fingerprint, err = queryir.Fingerprint(op, args); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to fingerprint input", err.Error())
	}
	canonical, err := ir.MarshalCanonical(result.Normalized)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to encode input", err.Error())
	}

	return f.Text(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s.%s accepted\n", entity, op)
		fmt.Fprintf(w, "%s\n", canonical)
		fmt.Fprintf(w, "fingerprint: %s\n", result.Fingerprint)
	})
}

// validateInput validates input and writes a rejection through f.
func validateInput(v *validator.Validator, f *OutputFormatter, entity, op string, input any) (queryir.Args, error) {
	args, err := v.Validate(entity, op, input)
	if err == nil {
		return args, nil
	}
	ve, ok := verror.As(err)
	if !ok {
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, "validation failed", err.Error())
	}
	details := RejectionDetails{Entity: entity, Operation: op, Path: ve.Path.String(), Segments: ve.Path.Elements()}
	if f.Format != "json" {
		fmt.Fprintf(f.Writer, "✗ %s.%s rejected at %q\n", entity, op, details.Path)
	}
	return nil, f.Fail(ExitFailure, string(ve.Kind), ve.Message, details)
}

// readInput reads a JSON or YAML input from a file, or from stdin for "-".
func readInput(cmd *cobra.Command, f *OutputFormatter, arg string) (any, error) {
	var (
		data []byte
		err  error
	)
	if arg == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("failed to read input %s", arg), err.Error())
	}

	input, err := harness.ParseInput(data)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeInvalidInput, "input is not valid JSON or YAML", err.Error())
	}
	return input, nil
}
