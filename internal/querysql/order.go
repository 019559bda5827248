package querysql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
)

// orderTerm is one ORDER BY entry before rendering.
type orderTerm struct {
	expr  string
	text  bool
	sort  string
	nulls string
}

func (t orderTerm) render(reverse bool) string {
	sort := t.sort
	nulls := t.nulls
	if reverse {
		sort = flip(sort, queryir.SortAsc, queryir.SortDesc)
		if nulls != "" {
			nulls = flip(nulls, queryir.NullsFirst, queryir.NullsLast)
		}
	}

	var b strings.Builder
	b.WriteString(t.expr)
	if t.text {
		b.WriteString(" COLLATE BINARY")
	}
	b.WriteString(" ")
	b.WriteString(strings.ToUpper(sort))
	if nulls != "" {
		b.WriteString(" NULLS ")
		b.WriteString(strings.ToUpper(nulls))
	}
	return b.String()
}

func flip(v, a, b string) string {
	if v == a {
		return b
	}
	return a
}

// compileOrder renders the ORDER BY terms of orders followed by the
// primary key tiebreaker.
// MANDATORY: every statement orders by the full primary key last, with
// COLLATE BINARY for deterministic text ordering.
func (q *compilation) compileOrder(e *schema.Entity, root string, orders []queryir.OrderBy, reverse bool) (string, error) {
	var terms []string
	ordered := map[string]bool{}
	for _, o := range orders {
		t, err := q.orderTerm(e, root, o)
		if err != nil {
			return "", err
		}
		if fo, ok := o.(queryir.FieldOrder); ok {
			ordered[fo.Field] = true
		}
		terms = append(terms, t.render(reverse))
	}

	for _, f := range q.stableOrderKey(e) {
		if ordered[f] {
			continue
		}
		tie := orderTerm{expr: column(root, f), text: true, sort: queryir.SortAsc}
		terms = append(terms, tie.render(reverse))
	}
	return strings.Join(terms, ", "), nil
}

// stableOrderKey returns the tiebreaker columns: the primary key.
func (q *compilation) stableOrderKey(e *schema.Entity) []string {
	return slices.Clone(e.PrimaryKey().Fields)
}

func (q *compilation) orderTerm(e *schema.Entity, alias string, o queryir.OrderBy) (orderTerm, error) {
	switch order := o.(type) {
	case queryir.FieldOrder:
		f, ok := e.Field(order.Field)
		if !ok {
			return orderTerm{}, fmt.Errorf("unknown field %q", order.Field)
		}
		return orderTerm{
			expr:  column(alias, order.Field),
			text:  f.Type.Kind == scalar.String,
			sort:  order.Sort,
			nulls: order.Nulls,
		}, nil
	case queryir.RelationOrder:
		r, ok := e.Relation(order.Relation)
		if !ok {
			return orderTerm{}, fmt.Errorf("unknown relation %q", order.Relation)
		}
		inner := q.alias()
		t, err := q.orderTerm(r.Target, inner, order.Order)
		if err != nil {
			return orderTerm{}, fmt.Errorf("%s: %w", order.Relation, err)
		}
		t.expr = fmt.Sprintf("(SELECT %s FROM %s AS %s WHERE %s)",
			t.expr, ident(r.Target.Name), inner, joinCondition(r, alias, inner))
		return t, nil
	case queryir.RelationCountOrder:
		r, ok := e.Relation(order.Relation)
		if !ok {
			return orderTerm{}, fmt.Errorf("unknown relation %q", order.Relation)
		}
		inner := q.alias()
		return orderTerm{
			expr: fmt.Sprintf("(SELECT COUNT(*) FROM %s AS %s WHERE %s)",
				ident(r.Target.Name), inner, joinCondition(r, alias, inner)),
			sort: order.Sort,
		}, nil
	default:
		return orderTerm{}, fmt.Errorf("unsupported order type: %T", o)
	}
}
