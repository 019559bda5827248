package queryir

import (
	"fmt"

	"github.com/roach88/querygate/internal/ir"
)

// ValidationResult contains portability analysis of a normalized read.
//
// The portable fragment is the subset of the normalized IR that the SQL
// renderer can express as one parameterized statement. Reads outside the
// fragment are still valid; executing them needs a richer collaborator.
type ValidationResult struct {
	// IsPortable indicates if the read uses only portable fragment features.
	IsPortable bool

	// Warnings lists non-portable features used in the read.
	// Empty when IsPortable is true.
	Warnings []string
}

// Validate checks if normalized read arguments conform to the portable
// fragment rules.
//
// Portable fragment rules:
//  1. No full-text search - `search` needs an engine-specific index
//  2. No relevance ordering - same reason
//  3. No cursor pagination - the cursor row must be fetched first
//  4. No distinct - needs per-column deduplication after sorting
//  5. No relation selection - related rows need additional statements
//  6. JSON null markers compare columns, not paths
//
// Validate is a pure function with no side effects.
func Validate(args Args) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateArgs(args)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

// addWarning appends a warning message.
func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateArgs(a Args) {
	switch args := a.(type) {
	case *FindArgs:
		v.validateWhere("where", args.Where)
		v.validateOrders(args.OrderBy)
		v.validatePaging(args.Cursor, args.Distinct)
		v.validateSelection("select", args.Select)
		v.validateSelection("include", args.Include)
	case *CountArgs:
		v.validateWhere("where", args.Where)
		v.validateOrders(args.OrderBy)
		v.validatePaging(args.Cursor, nil)
		if args.Select != nil && len(args.Select.Fields) > 0 {
			v.addWarning("Per-field count selection - portable fragment counts rows only")
		}
	case *DeleteManyArgs:
		v.validateWhere("where", args.Where)
	case nil:
		v.addWarning("nil arguments - portable fragment requires a read envelope")
	default:
		v.addWarning("Unknown arguments type: %T - portability cannot be verified", a)
	}
}

func (v *validator) validatePaging(cursor *WhereUnique, distinct []string) {
	if cursor != nil {
		v.addWarning("Cursor pagination - portable fragment supports take/skip only")
	}
	if len(distinct) > 0 {
		v.addWarning("Distinct on %v - portable fragment has no per-column deduplication", distinct)
	}
}

func (v *validator) validateOrders(orders []OrderBy) {
	for _, o := range orders {
		switch order := o.(type) {
		case RelevanceOrder:
			v.addWarning("Relevance ordering on %v - portable fragment has no full-text ranking", order.Fields)
		case RelationOrder:
			v.validateOrders([]OrderBy{order.Order})
		case AggregateOrder:
			v.addWarning("Aggregate ordering on %s - portable fragment orders rows, not groups", order.Field)
		}
	}
}

func (v *validator) validateSelection(name string, sel *Selection) {
	if sel == nil {
		return
	}
	for _, it := range sel.Items {
		if it.Args != nil || it.Count != nil {
			v.addWarning("Relation %s of %q - portable fragment returns root columns only", name, it.Name)
		}
	}
}

// validateWhere recursively validates a filter tree.
func (v *validator) validateWhere(path string, w *Where) {
	if w == nil {
		return // nil filters are valid (no constraint)
	}
	for _, f := range w.Fields {
		v.validateCondition(path+"."+f.Field, f.Condition)
	}
	for i, sub := range w.AND {
		v.validateWhere(fmt.Sprintf("%s.AND[%d]", path, i), sub)
	}
	for i, sub := range w.OR {
		v.validateWhere(fmt.Sprintf("%s.OR[%d]", path, i), sub)
	}
	for i, sub := range w.NOT {
		v.validateWhere(fmt.Sprintf("%s.NOT[%d]", path, i), sub)
	}
}

func (v *validator) validateCondition(path string, c Condition) {
	switch cond := c.(type) {
	case *ScalarFilter:
		v.validateScalar(path, cond)
	case *JSONFilter:
		if cond.Path != nil && (isMarker(cond.Equals) || isMarker(cond.Not)) {
			v.addWarning("Field '%s' compares a JSON path to a null marker - portable fragment compares markers on whole columns", path)
		}
	case *ListFilter:
		// Lists are stored as JSON arrays; every operator renders.
	case *ToOneFilter:
		v.validateWhere(path+".is", cond.Is)
		v.validateWhere(path+".isNot", cond.IsNot)
	case *ToManyFilter:
		v.validateWhere(path+".every", cond.Every)
		v.validateWhere(path+".some", cond.Some)
		v.validateWhere(path+".none", cond.None)
	default:
		v.addWarning("Unknown condition type: %T - portability cannot be verified", c)
	}
}

func (v *validator) validateScalar(path string, f *ScalarFilter) {
	if f.Search != nil {
		v.addWarning("Field '%s' uses full-text search - portable fragment has no search index", path)
	}
	if f.HasAggregates() {
		v.addWarning("Field '%s' filters an aggregate - portable fragment filters rows only", path)
	}
	if f.Not != nil {
		v.validateScalar(path+".not", f.Not)
	}
}

func isMarker(v ir.IRValue) bool {
	_, ok := v.(ir.NullMarker)
	return ok
}
