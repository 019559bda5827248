package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/querygate/internal/catalog"
	"github.com/roach88/querygate/internal/ir"
)

// RootOptions holds global flags and the state resolved before a command runs.
type RootOptions struct {
	ConfigFile string
	Verbose    bool

	Config  *Config
	TraceID string

	catalog *catalog.Catalog
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the querygate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "querygate",
		Short: "Schema-driven query and mutation validation",
		Long: `querygate validates query and mutation inputs against a declared entity
schema, reports the first problem with its path, and renders accepted reads
as parameterized SQLite SQL.`,
		Version:       ir.EngineVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default querygate.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().String("format", "text", "output format (json|text)")
	cmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("log-format", "text", "log format (text|json)")
	cmd.PersistentFlags().String("schema-dir", "", "directory of a CUE entity catalog (default: built-in catalog)")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(ValidFormats, cobra.ShellCompDirectiveNoFileComp))

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

// prepare loads the config and stores the logger in the command context.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	cfg, path, err := LoadConfig(o.ConfigFile, cmd.Flags())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	o.Config = cfg
	o.TraceID = NewTraceID()

	logger := NewLogger(cfg, cmd.ErrOrStderr()).With("trace_id", o.TraceID)
	if path != "" {
		logger.Debug("config loaded", "file", path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(WithLogger(ctx, logger))
	return nil
}

// Formatter returns the output formatter of a command.
func (o *RootOptions) Formatter(cmd *cobra.Command) *OutputFormatter {
	format := "text"
	if o.Config != nil {
		format = o.Config.Format
	}
	return &OutputFormatter{
		Format:    format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		TraceID:   o.TraceID,
	}
}

// Catalog loads the configured catalog once per invocation. Load failures
// are written through f.
func (o *RootOptions) Catalog(cmd *cobra.Command, f *OutputFormatter) (*catalog.Catalog, error) {
	if o.catalog != nil {
		return o.catalog, nil
	}
	dir := ""
	if o.Config != nil {
		dir = o.Config.SchemaDir
	}
	cat, err := LoadCatalog(dir)
	if err != nil {
		return nil, f.Fail(ExitCommandError, loadErrorCode(err), "failed to load schema", loadErrorDetails(err))
	}
	for _, w := range cat.Warnings {
		GetLogger(cmd.Context()).Info("relation cycle", "path", w.Path, "level", w.Level)
	}
	o.catalog = cat
	return cat, nil
}

// loadErrorCode returns the code of the first LoadError in err.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}
