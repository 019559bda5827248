package store

import (
	"context"
	"fmt"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/querysql"
)

// FindMany returns the rows matching validated findMany arguments, in the
// requested order with the primary key as the final tiebreaker.
// Only the selected scalar columns are populated.
func (s *Store) FindMany(ctx context.Context, entity string, args *queryir.FindArgs) ([]Row, error) {
	e, err := s.entity(entity)
	if err != nil {
		return nil, fmt.Errorf("find many: %w", err)
	}
	query, params, err := s.compiler.Compile(entity, args)
	if err != nil {
		return nil, fmt.Errorf("find many: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("find many: %w", err)
	}
	defer rows.Close()

	columns := querysql.Columns(e, args.Select)
	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	result := []Row{}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		row := make(Row, len(columns))
		for i, name := range columns {
			f, _ := e.Field(name)
			v, err := unmarshalColumn(f.Type, raw[i])
			if err != nil {
				return nil, fmt.Errorf("scan %s.%s: %w", entity, name, err)
			}
			row[name] = v
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", entity, err)
	}
	return result, nil
}

// FindFirst returns the first matching row, or nil when none matches.
func (s *Store) FindFirst(ctx context.Context, entity string, args *queryir.FindArgs) (Row, error) {
	first := *args
	if first.Take == nil {
		one := int64(1)
		first.Take = &one
	}
	rows, err := s.FindMany(ctx, entity, &first)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Count returns the number of rows matching validated count arguments.
func (s *Store) Count(ctx context.Context, entity string, args *queryir.CountArgs) (int64, error) {
	query, params, err := s.compiler.Compile(entity, args)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
