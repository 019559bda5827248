package validator

import (
	"slices"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

var (
	findKeys      = []string{"where", "orderBy", "cursor", "take", "skip", "distinct", "select", "include"}
	uniqueKeys    = []string{"where", "select", "include"}
	createKeys    = []string{"data", "select", "include"}
	updateKeys    = []string{"where", "data", "select", "include"}
	upsertKeys    = []string{"where", "create", "update", "select", "include"}
	aggregateKeys = []string{"where", "orderBy", "cursor", "take", "skip", queryir.AggCount, queryir.AggAvg, queryir.AggSum, queryir.AggMin, queryir.AggMax}
	groupByKeys   = []string{"by", "where", "having", "orderBy", "take", "skip", queryir.AggCount, queryir.AggAvg, queryir.AggSum, queryir.AggMin, queryir.AggMax}
	countKeys     = []string{"where", "orderBy", "cursor", "take", "skip", "select"}
)

// run resolves the entity and reports a rejection through reject.
func (v *Validator) run(op, entity string, fn func(e *schema.Entity) (queryir.Args, error)) (queryir.Args, error) {
	e, err := v.entity(entity)
	if err != nil {
		return nil, v.reject(op, entity, err)
	}
	args, err := fn(e)
	if err != nil {
		return nil, v.reject(op, entity, err)
	}
	return args, nil
}

// FindMany validates the arguments of findMany.
func (v *Validator) FindMany(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpFindMany, entity, func(e *schema.Entity) (queryir.Args, error) {
		return v.find(e, input, "FindManyArgs")
	})
}

// FindFirst validates the arguments of findFirst.
func (v *Validator) FindFirst(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpFindFirst, entity, func(e *schema.Entity) (queryir.Args, error) {
		return v.find(e, input, "FindFirstArgs")
	})
}

func (v *Validator) find(e *schema.Entity, input any, shape string) (*queryir.FindArgs, error) {
	obj, err := envelope(input, nil, e.InputName(shape), nil, findKeys...)
	if err != nil {
		return nil, err
	}
	pg, err := v.paging(e, obj, nil)
	if err != nil {
		return nil, err
	}
	a := &queryir.FindArgs{
		Where:    pg.where,
		OrderBy:  pg.orderBy,
		Cursor:   pg.cursor,
		Take:     pg.take,
		Skip:     pg.skip,
		Distinct: pg.distinct,
	}
	if a.Select, a.Include, err = v.selections(e, obj, nil); err != nil {
		return nil, err
	}
	return a, nil
}

// FindUnique validates the arguments of findUnique.
func (v *Validator) FindUnique(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpFindUnique, entity, func(e *schema.Entity) (queryir.Args, error) {
		return v.unique(e, input, "FindUniqueArgs")
	})
}

// Delete validates the arguments of delete.
func (v *Validator) Delete(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpDelete, entity, func(e *schema.Entity) (queryir.Args, error) {
		return v.unique(e, input, "DeleteArgs")
	})
}

func (v *Validator) unique(e *schema.Entity, input any, shape string) (*queryir.UniqueArgs, error) {
	obj, err := envelope(input, nil, e.InputName(shape), []string{"where"}, uniqueKeys...)
	if err != nil {
		return nil, err
	}
	a := &queryir.UniqueArgs{}
	if a.Where, err = v.whereUnique(e, obj["where"], verror.Root("where")); err != nil {
		return nil, err
	}
	if a.Select, a.Include, err = v.selections(e, obj, nil); err != nil {
		return nil, err
	}
	return a, nil
}

// Create validates the arguments of create.
func (v *Validator) Create(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpCreate, entity, func(e *schema.Entity) (queryir.Args, error) {
		obj, err := envelope(input, nil, e.InputName("CreateArgs"), []string{"data"}, createKeys...)
		if err != nil {
			return nil, err
		}
		a := &queryir.CreateArgs{}
		if a.Data, err = v.createData(e, obj["data"], verror.Root("data"), nesting{}); err != nil {
			return nil, err
		}
		if a.Select, a.Include, err = v.selections(e, obj, nil); err != nil {
			return nil, err
		}
		return a, nil
	})
}

// CreateMany validates the arguments of createMany. data is one row or an
// array of rows carrying scalar fields only.
func (v *Validator) CreateMany(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpCreateMany, entity, func(e *schema.Entity) (queryir.Args, error) {
		obj, err := envelope(input, nil, e.InputName("CreateManyArgs"), []string{"data"}, "data", "skipDuplicates")
		if err != nil {
			return nil, err
		}
		a := &queryir.CreateManyArgs{}
		elems, paths := items(obj["data"], verror.Root("data"))
		a.Data = make([]*queryir.CreateData, 0, len(elems))
		for i, elem := range elems {
			d, err := v.createData(e, elem, paths[i], nesting{scalarOnly: true})
			if err != nil {
				return nil, err
			}
			a.Data = append(a.Data, d)
		}
		if val, ok := obj["skipDuplicates"]; ok {
			b, err := boolean(val, verror.Root("skipDuplicates"))
			if err != nil {
				return nil, err
			}
			a.SkipDuplicates = &b
		}
		return a, nil
	})
}

// Update validates the arguments of update.
func (v *Validator) Update(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpUpdate, entity, func(e *schema.Entity) (queryir.Args, error) {
		obj, err := envelope(input, nil, e.InputName("UpdateArgs"), []string{"where", "data"}, updateKeys...)
		if err != nil {
			return nil, err
		}
		a := &queryir.UpdateArgs{}
		if a.Where, err = v.whereUnique(e, obj["where"], verror.Root("where")); err != nil {
			return nil, err
		}
		if a.Data, err = v.updateData(e, obj["data"], verror.Root("data"), nesting{}); err != nil {
			return nil, err
		}
		if a.Select, a.Include, err = v.selections(e, obj, nil); err != nil {
			return nil, err
		}
		return a, nil
	})
}

// UpdateMany validates the arguments of updateMany.
func (v *Validator) UpdateMany(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpUpdateMany, entity, func(e *schema.Entity) (queryir.Args, error) {
		obj, err := envelope(input, nil, e.InputName("UpdateManyArgs"), []string{"data"}, "where", "data", "limit")
		if err != nil {
			return nil, err
		}
		a := &queryir.UpdateManyArgs{}
		if val, ok := obj["where"]; ok {
			if a.Where, err = v.where(e, val, verror.Root("where"), whereMode{}); err != nil {
				return nil, err
			}
		}
		if a.Data, err = v.updateData(e, obj["data"], verror.Root("data"), nesting{scalarOnly: true}); err != nil {
			return nil, err
		}
		if val, ok := obj["limit"]; ok {
			if a.Limit, err = count(val, verror.Root("limit"), false); err != nil {
				return nil, err
			}
		}
		return a, nil
	})
}

// Upsert validates the arguments of upsert.
func (v *Validator) Upsert(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpUpsert, entity, func(e *schema.Entity) (queryir.Args, error) {
		obj, err := envelope(input, nil, e.InputName("UpsertArgs"), []string{"where", "create", "update"}, upsertKeys...)
		if err != nil {
			return nil, err
		}
		a := &queryir.UpsertArgs{}
		if a.Where, err = v.whereUnique(e, obj["where"], verror.Root("where")); err != nil {
			return nil, err
		}
		if a.Create, err = v.createData(e, obj["create"], verror.Root("create"), nesting{}); err != nil {
			return nil, err
		}
		if a.Update, err = v.updateData(e, obj["update"], verror.Root("update"), nesting{}); err != nil {
			return nil, err
		}
		if a.Select, a.Include, err = v.selections(e, obj, nil); err != nil {
			return nil, err
		}
		return a, nil
	})
}

// DeleteMany validates the arguments of deleteMany.
func (v *Validator) DeleteMany(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpDeleteMany, entity, func(e *schema.Entity) (queryir.Args, error) {
		obj, err := envelope(input, nil, e.InputName("DeleteManyArgs"), nil, "where", "limit")
		if err != nil {
			return nil, err
		}
		a := &queryir.DeleteManyArgs{}
		if val, ok := obj["where"]; ok {
			if a.Where, err = v.where(e, val, verror.Root("where"), whereMode{}); err != nil {
				return nil, err
			}
		}
		if val, ok := obj["limit"]; ok {
			if a.Limit, err = count(val, verror.Root("limit"), false); err != nil {
				return nil, err
			}
		}
		return a, nil
	})
}

// GroupBy validates the arguments of groupBy. Plain fields in orderBy and
// having must be grouped; aggregates may name any field they apply to.
func (v *Validator) GroupBy(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpGroupBy, entity, func(e *schema.Entity) (queryir.Args, error) {
		obj, err := envelope(input, nil, e.InputName("GroupByArgs"), []string{"by"}, groupByKeys...)
		if err != nil {
			return nil, err
		}
		a := &queryir.GroupByArgs{}
		if a.By, err = groupFields(e, obj["by"], verror.Root("by")); err != nil {
			return nil, err
		}
		if val, ok := obj["where"]; ok {
			if a.Where, err = v.where(e, val, verror.Root("where"), whereMode{}); err != nil {
				return nil, err
			}
		}
		if val, ok := obj["having"]; ok {
			p := verror.Root("having")
			if a.Having, err = v.where(e, val, p, whereMode{scalarOnly: true, aggregates: true}); err != nil {
				return nil, err
			}
			if err := grouped(a.Having, a.By, p); err != nil {
				return nil, err
			}
		}
		if val, ok := obj["orderBy"]; ok {
			if a.OrderBy, err = v.orderBy(e, val, verror.Root("orderBy"), orderMode{by: a.By}); err != nil {
				return nil, err
			}
		}
		if val, ok := obj["skip"]; ok {
			if a.Skip, err = count(val, verror.Root("skip"), false); err != nil {
				return nil, err
			}
		}
		if val, ok := obj["take"]; ok {
			if a.Take, err = count(val, verror.Root("take"), true); err != nil {
				return nil, err
			}
		}
		if a.Aggregates, err = aggregates(e, obj, nil); err != nil {
			return nil, err
		}
		return a, nil
	})
}

// groupFields validates the by list: one scalar field name or a non-empty
// array of them.
func groupFields(e *schema.Entity, in any, path verror.Path) ([]string, error) {
	if arr, ok := in.([]any); ok && len(arr) == 0 {
		return nil, verror.Shape(path, "by needs at least one field")
	}
	return distinct(e, in, path)
}

// grouped checks that every plain condition of a having filter targets a
// grouped field.
func grouped(w *queryir.Where, by []string, path verror.Path) error {
	for _, ff := range w.Fields {
		if slices.Contains(by, ff.Field) {
			continue
		}
		if sf, ok := ff.Condition.(*queryir.ScalarFilter); ok && sf.HasAggregates() && !sf.HasPlainOperators() {
			continue
		}
		return verror.Shape(path.Key(ff.Field), "%s must appear in by or be wrapped in an aggregate", ff.Field)
	}
	groups := []struct {
		name    string
		members []*queryir.Where
	}{{"AND", w.AND}, {"NOT", w.NOT}, {"OR", w.OR}}
	for _, g := range groups {
		for i, sub := range g.members {
			if err := grouped(sub, by, path.Key(g.name).Index(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Aggregate validates the arguments of aggregate.
func (v *Validator) Aggregate(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpAggregate, entity, func(e *schema.Entity) (queryir.Args, error) {
		obj, err := envelope(input, nil, e.InputName("AggregateArgs"), nil, aggregateKeys...)
		if err != nil {
			return nil, err
		}
		pg, err := v.paging(e, obj, nil)
		if err != nil {
			return nil, err
		}
		a := &queryir.AggregateArgs{Where: pg.where, OrderBy: pg.orderBy, Cursor: pg.cursor, Take: pg.take, Skip: pg.skip}
		if a.Aggregates, err = aggregates(e, obj, nil); err != nil {
			return nil, err
		}
		return a, nil
	})
}

// Count validates the arguments of count. select is `true` for a row
// count or an object of `_all` and field flags.
func (v *Validator) Count(entity string, input any) (queryir.Args, error) {
	return v.run(queryir.OpCount, entity, func(e *schema.Entity) (queryir.Args, error) {
		obj, err := envelope(input, nil, e.InputName("CountArgs"), nil, countKeys...)
		if err != nil {
			return nil, err
		}
		pg, err := v.paging(e, obj, nil)
		if err != nil {
			return nil, err
		}
		a := &queryir.CountArgs{Where: pg.where, OrderBy: pg.orderBy, Cursor: pg.cursor, Take: pg.take, Skip: pg.skip}
		if val, ok := obj["select"]; ok {
			if a.Select, err = aggregateSelect(e, queryir.AggCount, val, verror.Root("select")); err != nil {
				return nil, err
			}
		}
		return a, nil
	})
}
