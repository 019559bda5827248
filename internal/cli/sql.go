package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/querysql"
	"github.com/roach88/querygate/internal/validator"
)

// sqlOps are the operations with a SQL rendering.
var sqlOps = []string{queryir.OpFindMany, queryir.OpFindFirst, queryir.OpCount, queryir.OpDeleteMany}

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Op string
}

// SQLResult is the payload of the sql command.
type SQLResult struct {
	Entity    string `json:"entity"`
	Operation string `json:"operation"`
	SQL       string `json:"sql"`
	Params    []any  `json:"params"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <Entity> <input|->",
		Short: "Render a validated read as SQLite SQL",
		Long: `Validate a read and render it as one parameterized SQLite statement.

Reads using features without a portable SQL form (full-text search,
relevance ordering, case-insensitive matching of non-ASCII text) are
reported instead of rendered.

Exit codes:
  0 - SQL rendered
  1 - Input rejected
  2 - Command error (not portable, unreadable input, etc.)

Examples:
  querygate sql Bookmark query.json
  querygate sql Bookmark - --op count < where.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", queryir.OpFindMany, "operation (findMany|findFirst|count|deleteMany)")
	_ = cmd.RegisterFlagCompletionFunc("op", cobra.FixedCompletions(sqlOps, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func runSQL(opts *SQLOptions, cmd *cobra.Command, entity, inputArg string) error {
	f := opts.Formatter(cmd)
	if !slices.Contains(sqlOps, opts.Op) {
		return f.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("operation %q has no SQL rendering", opts.Op),
			map[string]any{"operations": sqlOps})
	}
	cat, err := opts.Catalog(cmd, f)
	if err != nil {
		return err
	}
	input, err := readInput(cmd, f, inputArg)
	if err != nil {
		return err
	}

	v := validator.New(cat.Registry, validator.WithLogger(GetLogger(cmd.Context())))
	args, err := validateInput(v, f, entity, opts.Op, input)
	if err != nil {
		return err
	}

	query, params, err := querysql.NewSQLCompiler(cat.Registry).Compile(entity, firstRow(opts.Op, args))
	if err != nil {
		return compileFailure(f, err)
	}
	if params == nil {
		params = []any{}
	}

	result := SQLResult{Entity: entity, Operation: opts.Op, SQL: query, Params: params}
	return f.Text(result, func(w io.Writer) {
		fmt.Fprintln(w, query)
		encoded, _ := json.Marshal(params)
		fmt.Fprintf(w, "-- params: %s\n", encoded)
	})
}

// firstRow limits a findFirst without take to one row.
func firstRow(op string, args queryir.Args) queryir.Args {
	fa, ok := args.(*queryir.FindArgs)
	if op != queryir.OpFindFirst || !ok || fa.Take != nil {
		return args
	}
	first := *fa
	one := int64(1)
	first.Take = &one
	return &first
}

// compileFailure reports a read that cannot be rendered.
func compileFailure(f *OutputFormatter, err error) error {
	var pe *querysql.PortabilityError
	if errors.As(err, &pe) {
		return f.Fail(ExitCommandError, ErrCodeNotPortable, "read is not portable to SQL", pe.Warnings)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to render SQL", err.Error())
}
