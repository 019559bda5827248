package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/querygate/internal/compiler"
	"github.com/roach88/querygate/internal/schema"
)

// SchemaResult is the payload of the schema command.
type SchemaResult struct {
	Fingerprint string                  `json:"fingerprint"`
	Entities    map[string]any          `json:"entities"`
	Warnings    []compiler.CycleWarning `json:"warnings,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [Entity]",
		Short: "Print the entity schema",
		Long: `Print the entities of the schema with their fields, relations and
unique keys, or a single entity when one is named.

The fingerprint identifies the schema: two schemas with the same
fingerprint accept and normalize inputs identically.

Examples:
  querygate schema
  querygate schema Bookmark
  querygate schema --schema-dir ./catalog --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runSchema(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := opts.Formatter(cmd)
	cat, err := opts.Catalog(cmd, f)
	if err != nil {
		return err
	}
	reg := cat.Registry

	entities := reg.Entities()
	if len(args) == 1 {
		e, ok := reg.Entity(args[0])
		if !ok {
			return f.Fail(ExitCommandError, ErrCodeNotFound,
				fmt.Sprintf("unknown entity %q", args[0]),
				map[string]any{"entities": reg.Names()})
		}
		entities = []*schema.Entity{e}
	}

	result := SchemaResult{
		Fingerprint: reg.Fingerprint(),
		Entities:    make(map[string]any, len(entities)),
		Warnings:    cat.Warnings,
	}
	for _, e := range entities {
		result.Entities[e.Name] = e.Describe()
	}

	return f.Text(result, func(w io.Writer) {
		for i, e := range entities {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeEntity(w, e)
		}
		if len(args) == 0 {
			for _, warn := range cat.Warnings {
				fmt.Fprintf(w, "\n%s: %s\n", warn.Level, warn.Message)
			}
		}
		fmt.Fprintf(w, "\nfingerprint: %s\n", result.Fingerprint)
	})
}

// writeEntity renders one entity as an indented block.
func writeEntity(w io.Writer, e *schema.Entity) {
	fmt.Fprintf(w, "%s\n", e.Name)
	for _, f := range e.Fields() {
		var attrs []string
		if f.ID {
			attrs = append(attrs, "@id")
		}
		if f.Unique {
			attrs = append(attrs, "@unique")
		}
		switch f.Default {
		case schema.DefaultNone:
		case schema.DefaultValue:
			attrs = append(attrs, fmt.Sprintf("@default(%v)", f.Value))
		default:
			attrs = append(attrs, fmt.Sprintf("@default(%s)", f.Default))
		}
		line := fmt.Sprintf("  %-20s %-12s %s", f.Name, f.Type, strings.Join(attrs, " "))
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	for _, r := range e.Relations() {
		line := fmt.Sprintf("  %-20s -> %s (%s)", r.Name, r.Target.Name, r.Kind)
		if len(r.Fields) > 0 {
			line += fmt.Sprintf(" fields [%s] references [%s]",
				strings.Join(r.Fields, ", "), strings.Join(r.References, ", "))
		}
		fmt.Fprintln(w, line)
	}
	for _, k := range e.UniqueKeys() {
		if !k.Compound() {
			continue
		}
		label := "unique"
		if k.Primary {
			label = "id"
		}
		fmt.Fprintf(w, "  @@%s(%s) %s\n", label, strings.Join(k.Fields, ", "), k.Name)
	}
}
