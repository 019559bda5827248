package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/schema"
)

// SQLCompiler compiles normalized reads to parameterized SQL for SQLite.
//
// Every SELECT ends in ORDER BY with the primary key as the final
// tiebreaker, so results are deterministic. Values are always bound as
// parameters and never interpolated.
//
// A compiler is immutable and safe for concurrent use.
type SQLCompiler struct {
	registry *schema.Registry
}

// NewSQLCompiler creates a compiler over the entities of reg.
func NewSQLCompiler(reg *schema.Registry) *SQLCompiler {
	return &SQLCompiler{registry: reg}
}

// PortabilityError reports a read outside the portable fragment.
type PortabilityError struct {
	Warnings []string
}

func (e *PortabilityError) Error() string {
	return "read is not portable to SQL: " + strings.Join(e.Warnings, "; ")
}

// Compile converts normalized arguments of entity to parameterized SQL.
// Returns (sql, params, error) tuple.
//
// Supported arguments: *queryir.FindArgs (findMany and findFirst),
// *queryir.CountArgs and *queryir.DeleteManyArgs.
func (c *SQLCompiler) Compile(entity string, args queryir.Args) (string, []any, error) {
	if args == nil {
		return "", nil, fmt.Errorf("cannot compile nil arguments")
	}
	e, ok := c.registry.Entity(entity)
	if !ok {
		return "", nil, fmt.Errorf("unknown entity %q", entity)
	}

	result := queryir.Validate(args)
	warnings := result.Warnings
	if find, ok := args.(*queryir.FindArgs); ok {
		warnings = append(warnings, relationSelections(e, "select", find.Select)...)
		warnings = append(warnings, relationSelections(e, "include", find.Include)...)
	}
	if len(warnings) > 0 {
		return "", nil, &PortabilityError{Warnings: warnings}
	}

	q := &compilation{}
	switch a := args.(type) {
	case *queryir.FindArgs:
		return q.compileFind(e, a)
	case *queryir.CountArgs:
		return q.compileCount(e, a)
	case *queryir.DeleteManyArgs:
		return q.compileDeleteMany(e, a)
	default:
		return "", nil, fmt.Errorf("unsupported arguments type: %T", args)
	}
}

// relationSelections lists the related rows a selection asks for. Reads
// that load relations need more than one statement.
func relationSelections(e *schema.Entity, name string, sel *queryir.Selection) []string {
	if sel == nil {
		return nil
	}
	var warnings []string
	for _, it := range sel.Items {
		if _, ok := e.Relation(it.Name); ok && it.Enabled {
			warnings = append(warnings, fmt.Sprintf("Relation %s of %q - portable fragment returns root columns only", name, it.Name))
		}
	}
	return warnings
}

// compilation carries the alias counter of one statement. Each correlated
// subquery gets a fresh table alias.
type compilation struct {
	aliases int
}

func (q *compilation) alias() string {
	a := fmt.Sprintf("t%d", q.aliases)
	q.aliases++
	return a
}

// Columns returns the columns a find returns, in entity declaration order.
// A select tree narrows them to the selected scalar fields.
func Columns(e *schema.Entity, sel *queryir.Selection) []string {
	all := e.ScalarNames()
	if sel == nil {
		return all
	}
	var cols []string
	for _, name := range all {
		if it, ok := sel.Item(name); ok && it.Enabled {
			cols = append(cols, name)
		}
	}
	if len(cols) == 0 {
		return all
	}
	return cols
}

// compileFind compiles findMany/findFirst arguments to a SELECT.
// MANDATORY: includes ORDER BY with the primary key tiebreaker.
func (q *compilation) compileFind(e *schema.Entity, a *queryir.FindArgs) (string, []any, error) {
	root := q.alias()
	cols := Columns(e, a.Select)

	b, err := q.compileBody(e, root, a.Where, a.OrderBy, a.Take, a.Skip)
	if err != nil {
		return "", nil, err
	}

	selected := make([]string, len(cols))
	for i, name := range cols {
		selected[i] = column(root, name)
	}

	if a.Take == nil || *a.Take >= 0 {
		sql := fmt.Sprintf("SELECT %s FROM %s AS %s%s", strings.Join(selected, ", "), ident(e.Name), root, b)
		return sql, b.params, nil
	}

	// A negative take reads the last rows of the order: the inner query
	// walks the reversed order and numbers the rows, the outer query puts
	// them back in the requested order.
	outer := make([]string, len(cols))
	for i, name := range cols {
		outer[i] = column("page", name)
	}
	sql := fmt.Sprintf("SELECT %s FROM (SELECT %s, ROW_NUMBER() OVER (ORDER BY %s) AS \"_pos\" FROM %s AS %s%s) AS page ORDER BY page.\"_pos\" DESC",
		strings.Join(outer, ", "),
		strings.Join(selected, ", "),
		b.order,
		ident(e.Name), root, b)
	return sql, b.params, nil
}

// compileCount compiles count arguments. Ordering and paging apply to the
// rows before they are counted.
func (q *compilation) compileCount(e *schema.Entity, a *queryir.CountArgs) (string, []any, error) {
	root := q.alias()
	b, err := q.compileBody(e, root, a.Where, a.OrderBy, a.Take, a.Skip)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT COUNT(*) FROM (SELECT 1 FROM %s AS %s%s) AS counted", ident(e.Name), root, b)
	return sql, b.params, nil
}

// compileDeleteMany compiles deleteMany arguments. The matching rows are
// selected by primary key so that a limit deletes a deterministic prefix.
func (q *compilation) compileDeleteMany(e *schema.Entity, a *queryir.DeleteManyArgs) (string, []any, error) {
	root := q.alias()
	b, err := q.compileBody(e, root, a.Where, nil, a.Limit, nil)
	if err != nil {
		return "", nil, err
	}

	pk := e.PrimaryKey().Fields
	keyCols := make([]string, len(pk))
	innerCols := make([]string, len(pk))
	for i, f := range pk {
		keyCols[i] = ident(f)
		innerCols[i] = column(root, f)
	}
	target := keyCols[0]
	if len(pk) > 1 {
		target = "(" + strings.Join(keyCols, ", ") + ")"
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT %s FROM %s AS %s%s)",
		ident(e.Name), target, strings.Join(innerCols, ", "), ident(e.Name), root, b)
	return sql, b.params, nil
}

// body is the rendered WHERE, ORDER BY, LIMIT and OFFSET of a statement
// over the root alias, with its parameters in placeholder order.
type body struct {
	where  string
	order  string
	page   string
	params []any
}

// String renders the clauses in statement order.
func (b body) String() string {
	var sb strings.Builder
	if b.where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(b.where)
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(b.order)
	sb.WriteString(b.page)
	return sb.String()
}

// compileBody renders the clauses for the root alias. A negative take
// reverses every ordering term.
func (q *compilation) compileBody(e *schema.Entity, root string, where *queryir.Where, orders []queryir.OrderBy, take, skip *int64) (body, error) {
	var b body

	if !where.IsEmpty() {
		filterSQL, filterParams, err := q.compileWhere(e, root, where)
		if err != nil {
			return body{}, fmt.Errorf("compile filter: %w", err)
		}
		b.where = filterSQL
		b.params = append(b.params, filterParams...)
	}

	// MANDATORY: always add ORDER BY. Ordering terms never bind parameters.
	reverse := take != nil && *take < 0
	orderSQL, err := q.compileOrder(e, root, orders, reverse)
	if err != nil {
		return body{}, fmt.Errorf("compile order: %w", err)
	}
	b.order = orderSQL

	switch {
	case take != nil:
		n := *take
		if n < 0 {
			n = -n
		}
		b.page = " LIMIT ?"
		b.params = append(b.params, n)
	case skip != nil:
		b.page = " LIMIT -1"
	}
	if skip != nil {
		b.page += " OFFSET ?"
		b.params = append(b.params, *skip)
	}
	return b, nil
}
