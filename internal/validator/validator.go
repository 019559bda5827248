package validator

import (
	"context"
	"log/slog"
	"slices"
	"sort"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

// Validator validates operation inputs against a registry.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	reg    *schema.Registry
	logger *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger logs every rejected input at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = l
	}
}

// New creates a Validator over reg.
func New(reg *schema.Registry, opts ...Option) *Validator {
	v := &Validator{reg: reg}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Registry returns the registry the validator checks against.
func (v *Validator) Registry() *schema.Registry {
	return v.reg
}

// Validate dispatches to the method of operation op.
func (v *Validator) Validate(entity, op string, input any) (queryir.Args, error) {
	switch op {
	case queryir.OpFindMany:
		return v.FindMany(entity, input)
	case queryir.OpFindFirst:
		return v.FindFirst(entity, input)
	case queryir.OpFindUnique:
		return v.FindUnique(entity, input)
	case queryir.OpCreate:
		return v.Create(entity, input)
	case queryir.OpCreateMany:
		return v.CreateMany(entity, input)
	case queryir.OpUpdate:
		return v.Update(entity, input)
	case queryir.OpUpdateMany:
		return v.UpdateMany(entity, input)
	case queryir.OpUpsert:
		return v.Upsert(entity, input)
	case queryir.OpDelete:
		return v.Delete(entity, input)
	case queryir.OpDeleteMany:
		return v.DeleteMany(entity, input)
	case queryir.OpGroupBy:
		return v.GroupBy(entity, input)
	case queryir.OpAggregate:
		return v.Aggregate(entity, input)
	case queryir.OpCount:
		return v.Count(entity, input)
	default:
		return nil, v.reject(op, entity, verror.Enum(nil, op, queryir.Operations))
	}
}

// entity resolves an entity name.
func (v *Validator) entity(name string) (*schema.Entity, error) {
	e, ok := v.reg.Entity(name)
	if !ok {
		return nil, verror.Enum(nil, name, v.reg.Names())
	}
	return e, nil
}

// reject logs err and returns it unchanged.
func (v *Validator) reject(op, entity string, err error) error {
	if v.logger == nil || err == nil {
		return err
	}
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("entity", entity),
	}
	if ve, ok := verror.As(err); ok {
		attrs = append(attrs,
			slog.String("kind", string(ve.Kind)),
			slog.String("path", ve.Path.String()),
		)
	}
	v.logger.LogAttrs(context.Background(), slog.LevelDebug, "input rejected", attrs...)
	return err
}

// object asserts that in is a JSON object.
func object(in any, path verror.Path, shape string) (map[string]any, error) {
	obj, ok := in.(map[string]any)
	if !ok {
		return nil, verror.Shape(path, "expected %s object, got %s", shape, jsonType(in))
	}
	return obj, nil
}

// items spreads a value that may be a single element or an array of
// elements. Single elements keep the path of the value itself.
func items(in any, path verror.Path) ([]any, []verror.Path) {
	arr, ok := in.([]any)
	if !ok {
		return []any{in}, []verror.Path{path}
	}
	paths := make([]verror.Path, len(arr))
	for i := range arr {
		paths[i] = path.Index(i)
	}
	return arr, paths
}

// boolean asserts that in is true or false.
func boolean(in any, path verror.Path) (bool, error) {
	b, ok := in.(bool)
	if !ok {
		return false, verror.Shape(path, "expected boolean, got %s", jsonType(in))
	}
	return b, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case float64, float32, int, int32, int64, uint64:
		return "number"
	default:
		return "value"
	}
}

// sortDirections is the closed set of sort values.
var sortDirections = []string{queryir.SortAsc, queryir.SortDesc}

// nullPlacements is the closed set of nulls values.
var nullPlacements = []string{queryir.NullsFirst, queryir.NullsLast}

// envelope asserts that in is an object with only the allowed keys and
// every required one. A missing envelope is empty when nothing is
// required.
func envelope(in any, path verror.Path, shape string, required []string, allowed ...string) (map[string]any, error) {
	if in == nil && len(required) == 0 {
		return map[string]any{}, nil
	}
	obj, err := object(in, path, shape)
	if err != nil {
		return nil, err
	}
	for _, key := range sortedKeys(obj) {
		if !slices.Contains(allowed, key) {
			return nil, verror.UnknownKey(path, key, shape)
		}
	}
	for _, key := range required {
		if _, ok := obj[key]; !ok {
			return nil, verror.Shape(path.Key(key), "%s requires %s", shape, key)
		}
	}
	return obj, nil
}
