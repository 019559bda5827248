package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/querysql"
	"github.com/roach88/querygate/internal/store"
	"github.com/roach88/querygate/internal/validator"
)

// queryOps are the operations the query command executes.
var queryOps = []string{queryir.OpFindMany, queryir.OpFindFirst, queryir.OpCount}

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Op string
}

// QueryResult is the payload of the query command. Rows is set for finds
// and Count for count.
type QueryResult struct {
	Entity    string           `json:"entity"`
	Operation string           `json:"operation"`
	Rows      []map[string]any `json:"rows,omitempty"`
	Count     *int64           `json:"count,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <Entity> <input|->",
		Short: "Validate a read and run it against a SQLite database",
		Long: `Validate a read, render it as SQL and run it against a SQLite database.

The database is created with one table per entity if it does not exist.

Exit codes:
  0 - Query executed
  1 - Input rejected
  2 - Command error (no database, not portable, etc.)

Examples:
  querygate query Bookmark query.json --database bookmarks.db
  QUERYGATE_DATABASE=bookmarks.db querygate query User - --op count < where.json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().String("database", "", "path to the SQLite database (config key database)")
	cmd.Flags().StringVar(&opts.Op, "op", queryir.OpFindMany, "operation (findMany|findFirst|count)")
	_ = cmd.RegisterFlagCompletionFunc("op", cobra.FixedCompletions(queryOps, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command, entity, inputArg string) error {
	f := opts.Formatter(cmd)
	if !slices.Contains(queryOps, opts.Op) {
		return f.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("operation %q is not a supported read", opts.Op),
			map[string]any{"operations": queryOps})
	}
	if opts.Config.Database == "" {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "database is required (--database or QUERYGATE_DATABASE)", nil)
	}
	cat, err := opts.Catalog(cmd, f)
	if err != nil {
		return err
	}
	input, err := readInput(cmd, f, inputArg)
	if err != nil {
		return err
	}

	logger := GetLogger(cmd.Context())
	v := validator.New(cat.Registry, validator.WithLogger(logger))
	args, err := validateInput(v, f, entity, opts.Op, input)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Config.Database, cat.Registry)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err.Error())
	}
	defer st.Close()
	logger.Debug("database opened", "path", opts.Config.Database)

	result := QueryResult{Entity: entity, Operation: opts.Op}
	ctx := cmd.Context()
	switch a := args.(type) {
	case *queryir.FindArgs:
		var rows []store.Row
		if opts.Op == queryir.OpFindFirst {
			var row store.Row
			if row, err = st.FindFirst(ctx, entity, a); row != nil {
				rows = []store.Row{row}
			}
		} else {
			rows, err = st.FindMany(ctx, entity, a)
		}
		result.Rows = make([]map[string]any, len(rows))
		for i, r := range rows {
			result.Rows[i] = r.Wire()
		}
	case *queryir.CountArgs:
		var n int64
		n, err = st.Count(ctx, entity, a)
		result.Count = &n
	default:
		err = fmt.Errorf("unexpected arguments %T", args)
	}
	if err != nil {
		var pe *querysql.PortabilityError
		if errors.As(err, &pe) {
			return compileFailure(f, pe)
		}
		return f.Fail(ExitCommandError, ErrCodeDatabase, "query failed", err.Error())
	}
	logger.Debug("query executed", "entity", entity, "operation", opts.Op, "rows", len(result.Rows))

	return f.Text(result, func(w io.Writer) {
		if result.Count != nil {
			fmt.Fprintln(w, *result.Count)
			return
		}
		for _, row := range result.Rows {
			line, err := ir.MarshalCanonical(row)
			if err != nil {
				fmt.Fprintf(w, "%v\n", row)
				continue
			}
			fmt.Fprintf(w, "%s\n", line)
		}
		fmt.Fprintf(w, "(%d rows)\n", len(result.Rows))
	})
}
