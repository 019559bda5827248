package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/querysql"
	"github.com/roach88/querygate/internal/schema"
)

// ErrUnsupportedWrite reports a nested write the reference store does not
// execute. Only a single connect on an owning to-one relation is applied.
var ErrUnsupportedWrite = errors.New("unsupported nested write")

// ErrNotFound reports a connect whose unique lookup matched no row.
var ErrNotFound = errors.New("no row matches the unique lookup")

// Create inserts one row from a validated create payload and returns the
// stored row. Omitted fields get their defaults: a fresh id for `cuid`,
// the store clock for `now` and `updatedAt`, the declared value otherwise,
// and an empty array for lists.
func (s *Store) Create(ctx context.Context, entity string, data *queryir.CreateData) (Row, error) {
	e, err := s.entity(entity)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	values := make(map[string]ir.IRValue, len(e.Fields()))
	for _, fv := range data.Fields {
		values[fv.Field] = fv.Value
	}
	for _, rw := range data.Relations {
		if err := s.connect(ctx, e, rw, values); err != nil {
			return nil, fmt.Errorf("create %s: %w", entity, err)
		}
	}
	if err := s.applyDefaults(e, values); err != nil {
		return nil, fmt.Errorf("create %s: %w", entity, err)
	}

	var fields []queryir.FieldValue
	row := make(Row, len(e.Fields()))
	for _, f := range e.Fields() {
		v, ok := values[f.Name]
		if !ok {
			row[f.Name] = ir.IRNull{}
			continue
		}
		fields = append(fields, queryir.FieldValue{Field: f.Name, Value: v})
		row[f.Name] = v
	}

	query, params, err := querysql.Insert(e, fields)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", entity, err)
	}
	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return nil, fmt.Errorf("create %s: %w", entity, err)
	}
	return row, nil
}

// applyDefaults fills the generated fields a payload omits.
func (s *Store) applyDefaults(e *schema.Entity, values map[string]ir.IRValue) error {
	for _, f := range e.Fields() {
		if _, ok := values[f.Name]; ok {
			continue
		}
		switch f.Default {
		case schema.DefaultCUID:
			values[f.Name] = ir.IRString(s.newID())
		case schema.DefaultNow, schema.DefaultUpdatedAt:
			values[f.Name] = ir.NewIRTime(s.now())
		case schema.DefaultValue:
			v, err := ir.FromJSON(f.Value)
			if err != nil {
				return fmt.Errorf("default of %s: %w", f.Name, err)
			}
			values[f.Name] = v
		default:
			if f.Type.List {
				values[f.Name] = ir.IRArray{}
			}
		}
	}
	return nil
}

// connect applies a nested connect on an owning to-one relation by copying
// the referenced key of the matched row into the foreign-key fields.
func (s *Store) connect(ctx context.Context, e *schema.Entity, rw queryir.RelationWrite, values map[string]ir.IRValue) error {
	r, ok := e.Relation(rw.Relation)
	if !ok {
		return fmt.Errorf("unknown relation %q", rw.Relation)
	}
	op, ok := rw.Op(queryir.OpNameConnect)
	if !r.ToOne() || !r.Owning() || !ok || len(rw.Ops) != 1 {
		return fmt.Errorf("%w: %s on %s", ErrUnsupportedWrite, opNames(rw), rw.Relation)
	}
	where := op.(queryir.NestedConnect).Where[0]
	if !where.Refine.IsEmpty() {
		return fmt.Errorf("%w: connect with extra filters on %s", ErrUnsupportedWrite, rw.Relation)
	}
	key := where.Keys[0]

	// The lookup key may already carry the referenced values.
	refs := make([]ir.IRValue, len(r.References))
	complete := true
	for i, ref := range r.References {
		v, ok := key.Value(ref)
		if !ok {
			complete = false
			break
		}
		refs[i] = v
	}
	if !complete {
		var err error
		if refs, err = s.lookup(ctx, r.Target, r.References, key); err != nil {
			return fmt.Errorf("connect %s: %w", rw.Relation, err)
		}
	}
	for i, fk := range r.Fields {
		values[fk] = refs[i]
	}
	return nil
}

// lookup reads columns of the row of e identified by key.
func (s *Store) lookup(ctx context.Context, e *schema.Entity, columns []string, key queryir.KeyMatch) ([]ir.IRValue, error) {
	query, params, err := querysql.Lookup(e, columns, key)
	if err != nil {
		return nil, err
	}
	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(ptrs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := make([]ir.IRValue, len(columns))
	for i, name := range columns {
		f, _ := e.Field(name)
		v, err := unmarshalColumn(f.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[i] = v
	}
	return out, nil
}

func opNames(rw queryir.RelationWrite) string {
	names := make([]string, len(rw.Ops))
	for i, op := range rw.Ops {
		names[i] = op.Name()
	}
	slices.Sort(names)
	return strings.Join(names, "+")
}

// DeleteMany deletes the rows matching a validated deleteMany and returns
// how many were removed.
func (s *Store) DeleteMany(ctx context.Context, entity string, args *queryir.DeleteManyArgs) (int64, error) {
	query, params, err := s.compiler.Compile(entity, args)
	if err != nil {
		return 0, fmt.Errorf("delete many: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, fmt.Errorf("delete many: %w", err)
	}
	return res.RowsAffected()
}
