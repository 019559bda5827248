package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
)

// columnType maps a field type to its SQLite storage class.
func columnType(t scalar.Type) string {
	if t.List {
		return "TEXT"
	}
	switch t.Kind {
	case scalar.Int, scalar.Boolean:
		return "INTEGER"
	case scalar.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

// CreateTable renders the table of e. Every unique key becomes a
// constraint and every owning relation a foreign key. Required relations
// cascade on delete, optional ones are cleared.
//
// The statement is idempotent.
func CreateTable(e *schema.Entity) string {
	var defs []string
	for _, f := range e.Fields() {
		def := ident(f.Name) + " " + columnType(f.Type)
		switch {
		case f.Type.List:
			def += " NOT NULL DEFAULT '[]'"
		case !f.Type.Nullable:
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	pk := e.PrimaryKey()
	defs = append(defs, "PRIMARY KEY ("+identList(pk.Fields)+")")
	for _, k := range e.UniqueKeys() {
		if k.Name == pk.Name {
			continue
		}
		defs = append(defs, "UNIQUE ("+identList(k.Fields)+")")
	}
	for _, r := range e.Relations() {
		if !r.Owning() {
			continue
		}
		action := "CASCADE"
		if r.Optional() {
			action = "SET NULL"
		}
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
			identList(r.Fields), ident(r.Target.Name), identList(r.References), action))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", ident(e.Name), strings.Join(defs, ",\n  "))
}

// Insert renders an INSERT of one row. Values are bound in the order of
// fields.
func Insert(e *schema.Entity, fields []queryir.FieldValue) (string, []any, error) {
	if len(fields) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", ident(e.Name)), nil, nil
	}
	names := make([]string, len(fields))
	params := make([]any, len(fields))
	for i, fv := range fields {
		f, ok := e.Field(fv.Field)
		if !ok {
			return "", nil, fmt.Errorf("unknown field %q of %s", fv.Field, e.Name)
		}
		p, err := ColumnValue(f.Type, fv.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", fv.Field, err)
		}
		names[i] = fv.Field
		params[i] = p
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", ident(e.Name), identList(names), placeholders(len(names)))
	return sql, params, nil
}

func identList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = ident(n)
	}
	return strings.Join(quoted, ", ")
}

// Lookup renders a SELECT of columns from the row of e identified by key.
// Returns (sql, params, error) tuple.
func Lookup(e *schema.Entity, columns []string, key queryir.KeyMatch) (string, []any, error) {
	terms := make([]string, len(key.Values))
	params := make([]any, len(key.Values))
	for i, fv := range key.Values {
		f, ok := e.Field(fv.Field)
		if !ok {
			return "", nil, fmt.Errorf("unknown field %q of %s", fv.Field, e.Name)
		}
		p, err := ColumnValue(f.Type, fv.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", fv.Field, err)
		}
		terms[i] = ident(fv.Field) + " = ?"
		params[i] = p
	}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s", identList(columns), ident(e.Name), strings.Join(terms, " AND "))
	return sql, params, nil
}
